package database

// -----------------------------------------------------------------------------
// IMMUTABLE QUERY (COPY-ON-WRITE BUILDER)
// -----------------------------------------------------------------------------
// ImmutableQuery'nin her metodu önce state'in derin bir kopyasını alır,
// değişikliği kopyaya uygular ve kopyayı döndürür. Alıcı hiçbir zaman
// değişmez; bu sayede ortak bir temel sorgudan güvenle dallanılabilir:
//
//	active := conn.BuildImmutable().Select().From("users").Where("active = 1")
//	admins := active.WhereMap(database.Criteria{database.C("role", database.Str("admin"))})
//	// active hâlâ tek bir WHERE koşulu içerir
// -----------------------------------------------------------------------------

// ImmutableQuery, copy-on-write SQL builder'ıdır.
type ImmutableQuery struct {
	builder
}

// BuildImmutable, bağlantıya bağlı boş bir immutable builder döndürür.
func (c *Connection) BuildImmutable() *ImmutableQuery {
	return &ImmutableQuery{builder: newBuilder(c)}
}

// mutation, alıcının bağımsız bir kopyasını döndürür.
func (q *ImmutableQuery) mutation() *ImmutableQuery {
	return &ImmutableQuery{builder: q.builder.clone()}
}

// Mutable, aynı state'e sahip bağımsız bir mutable Query döndürür.
func (q *ImmutableQuery) Mutable() *Query {
	return &Query{builder: q.builder.clone()}
}

func (q *ImmutableQuery) Select(exprs ...string) *ImmutableQuery {
	m := q.mutation()
	m.setSelect(exprs)
	return m
}

func (q *ImmutableQuery) SelectAs(alias, expr string) *ImmutableQuery {
	m := q.mutation()
	m.setSelectMap(Projections{{Expr: expr, Alias: alias}})
	return m
}

func (q *ImmutableQuery) SelectMap(projections Projections) *ImmutableQuery {
	m := q.mutation()
	m.setSelectMap(projections)
	return m
}

func (q *ImmutableQuery) Insert(table string) *ImmutableQuery {
	m := q.mutation()
	m.setKind(KindInsert, table)
	return m
}

func (q *ImmutableQuery) Update(table string) *ImmutableQuery {
	m := q.mutation()
	m.setKind(KindUpdate, table)
	return m
}

func (q *ImmutableQuery) Upsert(table string) *ImmutableQuery {
	m := q.mutation()
	m.setKind(KindUpsert, table)
	return m
}

func (q *ImmutableQuery) Delete(table string) *ImmutableQuery {
	m := q.mutation()
	m.setKind(KindDelete, table)
	return m
}

func (q *ImmutableQuery) Table(table string, alias ...string) *ImmutableQuery {
	m := q.mutation()
	m.setTable(TableRefs{{Table: table, Alias: first(alias)}})
	return m
}

func (q *ImmutableQuery) From(table string, alias ...string) *ImmutableQuery {
	return q.Table(table, alias...)
}

func (q *ImmutableQuery) Into(table string, alias ...string) *ImmutableQuery {
	return q.Table(table, alias...)
}

func (q *ImmutableQuery) FromTables(refs TableRefs) *ImmutableQuery {
	m := q.mutation()
	m.setTable(refs)
	return m
}

func (q *ImmutableQuery) FromSub(sub Statement, alias string) *ImmutableQuery {
	m := q.mutation()
	m.setTable(TableRefs{{Sub: sub, Alias: alias}})
	return m
}

func (q *ImmutableQuery) Join(table, alias, on, kind string) *ImmutableQuery {
	m := q.mutation()
	m.setJoin(table, nil, alias, on, kind)
	return m
}

func (q *ImmutableQuery) JoinSub(sub Statement, alias, on, kind string) *ImmutableQuery {
	m := q.mutation()
	m.setJoin("", sub, alias, on, kind)
	return m
}

func (q *ImmutableQuery) InnerJoin(table, alias, on string) *ImmutableQuery {
	return q.Join(table, alias, on, JoinInner)
}

func (q *ImmutableQuery) LeftJoin(table, alias, on string) *ImmutableQuery {
	return q.Join(table, alias, on, JoinLeft)
}

func (q *ImmutableQuery) RightJoin(table, alias, on string) *ImmutableQuery {
	return q.Join(table, alias, on, JoinRight)
}

func (q *ImmutableQuery) Values(fields Fields) *ImmutableQuery {
	m := q.mutation()
	m.values = fields.clone()
	return m
}

func (q *ImmutableQuery) Set(fields Fields) *ImmutableQuery {
	m := q.mutation()
	m.set = fields.clone()
	return m
}

func (q *ImmutableQuery) Where(template string, params ...Value) *ImmutableQuery {
	m := q.mutation()
	m.setWhere(template, params)
	return m
}

func (q *ImmutableQuery) WhereMap(criteria Criteria) *ImmutableQuery {
	m := q.mutation()
	m.setWhereMap(criteria)
	return m
}

func (q *ImmutableQuery) GroupBy(expr string) *ImmutableQuery {
	m := q.mutation()
	m.groupBy = expr
	return m
}

func (q *ImmutableQuery) Having(template string, params ...Value) *ImmutableQuery {
	m := q.mutation()
	m.setHaving(template, params)
	return m
}

func (q *ImmutableQuery) HavingMap(criteria Criteria) *ImmutableQuery {
	m := q.mutation()
	m.setHavingMap(criteria)
	return m
}

func (q *ImmutableQuery) OrderBy(expr string) *ImmutableQuery {
	m := q.mutation()
	m.orderBy = expr
	return m
}

func (q *ImmutableQuery) Limit(n int) *ImmutableQuery {
	m := q.mutation()
	m.limit = n
	return m
}

func (q *ImmutableQuery) Offset(n int) *ImmutableQuery {
	m := q.mutation()
	m.offset = n
	return m
}
