package database

// -----------------------------------------------------------------------------
// QUERY (MUTABLE BUILDER)
// -----------------------------------------------------------------------------
// Query, her metodda kendi state'ini yerinde değiştirip aynı pointer'ı
// döndüren klasik fluent builder'dır. Ara referanslar paylaşılır:
//
//	update := conn.Update("users").Set(fields)
//	update.Where("id = ?", database.Int(1)) // update de değişir
//
// Aynı builder'ı farklı varyasyonlar için dallandırmak gerekiyorsa
// ImmutableQuery kullanın.
// -----------------------------------------------------------------------------

// Query, mutable SQL builder'ıdır.
type Query struct {
	builder
}

// Build, bağlantıya bağlı boş bir mutable builder döndürür.
func (c *Connection) Build() *Query {
	return &Query{builder: newBuilder(c)}
}

// Select, SELECT ifadelerini ekler. Çağrılar birikir; argüman verilmezse `*`.
// Her argüman virgülden bölünerek ayrı ifadeler olarak saklanır.
//
// Örnek:
//
//	conn.Build().Select("id").Select("username").SelectClause()
//	// id,username
func (q *Query) Select(exprs ...string) *Query {
	q.setSelect(exprs)
	return q
}

// SelectAs, `<expr> AS <alias>` ifadesi ekler.
func (q *Query) SelectAs(alias, expr string) *Query {
	q.setSelectMap(Projections{{Expr: expr, Alias: alias}})
	return q
}

// SelectMap, sıralı Projection listesini ekler.
func (q *Query) SelectMap(projections Projections) *Query {
	q.setSelectMap(projections)
	return q
}

// Insert, ifade tipini INSERT yapar. table boş değilse tablo da eklenir.
func (q *Query) Insert(table string) *Query {
	q.setKind(KindInsert, table)
	return q
}

// Update, ifade tipini UPDATE yapar.
func (q *Query) Update(table string) *Query {
	q.setKind(KindUpdate, table)
	return q
}

// Upsert, ifade tipini INSERT ... ON DUPLICATE KEY UPDATE yapar.
func (q *Query) Upsert(table string) *Query {
	q.setKind(KindUpsert, table)
	return q
}

// Delete, ifade tipini DELETE yapar.
func (q *Query) Delete(table string) *Query {
	q.setKind(KindDelete, table)
	return q
}

// Table, tablo setine bir tablo ekler ve mevcut join'leri sıfırlar.
// Aynı alias (veya alias yoksa aynı tablo adı) tekrar verilirse
// önceki kaydın yerini alır.
//
// Örnek:
//
//	q.Table("users", "u").FromClause() // `users` u
func (q *Query) Table(table string, alias ...string) *Query {
	q.setTable(TableRefs{{Table: table, Alias: first(alias)}})
	return q
}

// From, Table ile aynıdır.
func (q *Query) From(table string, alias ...string) *Query {
	return q.Table(table, alias...)
}

// Into, Table ile aynıdır.
func (q *Query) Into(table string, alias ...string) *Query {
	return q.Table(table, alias...)
}

// FromTables, birden fazla tabloyu sırasıyla ekler.
func (q *Query) FromTables(refs TableRefs) *Query {
	q.setTable(refs)
	return q
}

// FromSub, bir alt sorguyu `(<sql>) <alias>` olarak tablo setine ekler.
func (q *Query) FromSub(sub Statement, alias string) *Query {
	q.setTable(TableRefs{{Sub: sub, Alias: alias}})
	return q
}

// Join, bir tabloyu verilen join türüyle bağlar. kind boşsa INNER JOIN.
// Aynı alias ile tekrar join edilirse önceki join'in yerini alır. Alias
// verilmeyen join'ler render edilmiş kaynakla (tablo veya alt sorgu)
// anahtarlanır; aynı kaynağın ikinci join'i öncekinin yerini alır.
func (q *Query) Join(table, alias, on, kind string) *Query {
	q.setJoin(table, nil, alias, on, kind)
	return q
}

// JoinSub, bir alt sorguyu parantez içinde join eder.
func (q *Query) JoinSub(sub Statement, alias, on, kind string) *Query {
	q.setJoin("", sub, alias, on, kind)
	return q
}

func (q *Query) InnerJoin(table, alias, on string) *Query {
	return q.Join(table, alias, on, JoinInner)
}

func (q *Query) LeftJoin(table, alias, on string) *Query {
	return q.Join(table, alias, on, JoinLeft)
}

func (q *Query) RightJoin(table, alias, on string) *Query {
	return q.Join(table, alias, on, JoinRight)
}

// Values, INSERT/UPSERT kolon ve değerlerini belirler (önceki listeyi değiştirir).
func (q *Query) Values(fields Fields) *Query {
	q.values = fields.clone()
	return q
}

// Set, UPDATE ve UPSERT'in atama listesini belirler (önceki listeyi değiştirir).
func (q *Query) Set(fields Fields) *Query {
	q.set = fields.clone()
	return q
}

// Where, template formunda bir koşul ekler. params verilmişse yer tutucular
// merge edilir.
//
// Örnek:
//
//	q.Where("username=? AND email=?", database.Str("john"), database.Str("john@example.com"))
func (q *Query) Where(template string, params ...Value) *Query {
	q.setWhere(template, params)
	return q
}

// WhereMap, map formundaki her koşulu ayrı bir WHERE fragment'ı olarak ekler.
func (q *Query) WhereMap(criteria Criteria) *Query {
	q.setWhereMap(criteria)
	return q
}

// GroupBy, GROUP BY ifadesini belirler (önceki değeri değiştirir).
func (q *Query) GroupBy(expr string) *Query {
	q.groupBy = expr
	return q
}

// Having, template formunda bir HAVING koşulu ekler.
func (q *Query) Having(template string, params ...Value) *Query {
	q.setHaving(template, params)
	return q
}

// HavingMap, `<expr>=<değer>` formunda HAVING koşulları ekler. Anahtarlar
// aggregate ifadeler olduğu için quote edilmez.
func (q *Query) HavingMap(criteria Criteria) *Query {
	q.setHavingMap(criteria)
	return q
}

// OrderBy, ORDER BY ifadesini belirler (önceki değeri değiştirir).
func (q *Query) OrderBy(expr string) *Query {
	q.orderBy = expr
	return q
}

// Limit, döndürülecek satır sayısını sınırlar. 0 limiti kaldırır.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Offset, atlanacak satır sayısını belirler. Limit olmadan render edilmez.
func (q *Query) Offset(n int) *Query {
	q.offset = n
	return q
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
