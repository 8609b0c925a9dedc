package database

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// QUERY BUILDER: ORTAK STATE
// -----------------------------------------------------------------------------
// Bu dosya, Query (mutable) ve ImmutableQuery (copy-on-write) tiplerinin
// paylaştığı clause state'ini ve render algoritmasını içerir.
//
// İki tip de builder struct'ını gömer. Setter'lar (setSelect, setTable ...)
// sadece state'i değiştirir; state'in kopyalanıp kopyalanmayacağına dış tip
// karar verir. Render tarafı (SQL, clause getter'ları, Query/Fetch/Execute)
// iki tipte de aynıdır ve gömme yoluyla dışarı açılır.
//
// Clause sırası her tip için sabittir, boş clause'lar hiç yazılmaz:
//
//	SELECT  → SELECT / FROM / WHERE / GROUP BY / HAVING / ORDER BY / LIMIT
//	INSERT  → INSERT INTO / (kolonlar) / VALUES (değerler)
//	UPDATE  → UPDATE / SET / WHERE / ORDER BY / LIMIT
//	UPSERT  → INSERT gövdesi / ON DUPLICATE KEY UPDATE / set listesi
//	DELETE  → DELETE FROM / WHERE / LIMIT
// -----------------------------------------------------------------------------

// Kind, builder'ın hangi SQL ifadesini üreteceğini belirler.
type Kind int

const (
	KindNone Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindUpsert
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindUpsert:
		return "UPSERT"
	case KindDelete:
		return "DELETE"
	}
	return "NONE"
}

// Join türleri.
const (
	JoinInner = "INNER JOIN"
	JoinLeft  = "LEFT JOIN"
	JoinRight = "RIGHT JOIN"
)

// Projection, SELECT listesindeki tek bir ifadedir. Alias boşsa ifade
// olduğu gibi yazılır, doluysa `<Expr> AS <Alias>` üretilir.
type Projection struct {
	Expr  string
	Alias string
}

// Projections, sıralı SELECT ifade listesidir.
type Projections []Projection

// P, bir Projection oluşturur.
//
// Örnek:
//
//	qb.SelectMap(database.Projections{
//	    database.P("id"),
//	    database.P("MIN(price)", "min_price"),
//	})
//	// id,MIN(price) AS min_price
func P(expr string, alias ...string) Projection {
	p := Projection{Expr: expr}
	if len(alias) > 0 {
		p.Alias = alias[0]
	}
	return p
}

// TableRef, FROM listesindeki tek bir tablodur. Sub doluysa Table yerine
// alt sorgu parantez içinde yazılır.
type TableRef struct {
	Table string
	Alias string
	Sub   Statement
}

// TableRefs, sıralı tablo listesidir.
type TableRefs []TableRef

// keyed, alias veya tablo adı ile anahtarlanmış render edilmiş bir fragment.
// Aynı anahtar tekrar eklendiğinde yerindeki fragment değiştirilir.
type keyed struct {
	key  string
	text string
}

type builder struct {
	conn *Connection

	kind        Kind
	expressions []string
	tables      []keyed
	joins       []keyed
	values      Fields
	set         Fields
	where       []string
	groupBy     string
	having      []string
	orderBy     string
	limit       int
	offset      int

	// err, render sırasında dönülecek ilk hata (strict merge, alt sorgu render).
	err error
}

func newBuilder(conn *Connection) builder {
	return builder{conn: conn}
}

// clone, state'in bağımsız bir kopyasını döndürür. Slice'lar ve List
// değerleri kopyalanır, nil slice'lar nil kalır.
func (b *builder) clone() builder {
	c := *b
	c.expressions = slices.Clone(b.expressions)
	c.tables = slices.Clone(b.tables)
	c.joins = slices.Clone(b.joins)
	c.values = b.values.clone()
	c.set = b.set.clone()
	c.where = slices.Clone(b.where)
	c.having = slices.Clone(b.having)
	return c
}

func (b *builder) escaper() Escaper {
	if b.conn == nil || b.conn.escaper == nil {
		return MySQLEscaper{}
	}
	return b.conn.escaper
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// -----------------------------------------------------------------------------
// SETTERS
// -----------------------------------------------------------------------------

// setSelect, ifadeleri virgülden bölüp ekler. Boş parçalar atlanır; hiç
// ifade kalmazsa `*` eklenir.
func (b *builder) setSelect(exprs []string) {
	b.kind = KindSelect
	added := 0
	for _, expr := range exprs {
		for _, part := range strings.Split(expr, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			b.expressions = append(b.expressions, part)
			added++
		}
	}
	if added == 0 {
		b.expressions = append(b.expressions, "*")
	}
}

func (b *builder) setSelectMap(projections Projections) {
	b.kind = KindSelect
	for _, p := range projections {
		if strings.TrimSpace(p.Expr) == "" {
			continue
		}
		if p.Alias != "" {
			b.expressions = append(b.expressions, p.Expr+" AS "+p.Alias)
			continue
		}
		b.expressions = append(b.expressions, p.Expr)
	}
}

func (b *builder) setKind(kind Kind, table string) {
	b.kind = kind
	if table != "" {
		b.setTable(TableRefs{{Table: table}})
	}
}

func (b *builder) setTable(refs TableRefs) {
	b.joins = nil
	for _, ref := range refs {
		expr := b.source(ref.Table, ref.Sub)
		switch {
		case ref.Alias != "":
			b.tables = upsertKeyed(b.tables, ref.Alias, expr+" "+ref.Alias)
		case ref.Sub != nil:
			b.tables = upsertKeyed(b.tables, expr, expr)
		default:
			b.tables = upsertKeyed(b.tables, ref.Table, expr)
		}
	}
}

func (b *builder) setJoin(table string, sub Statement, alias, on, kind string) {
	if kind == "" {
		kind = JoinInner
	}
	expr := b.source(table, sub)
	if alias == "" {
		b.joins = upsertKeyed(b.joins, expr, kind+" "+expr+" ON "+on)
		return
	}
	b.joins = upsertKeyed(b.joins, alias, kind+" "+expr+" "+alias+" ON "+on)
}

// source, bir tablo adını quote eder veya bir alt sorguyu parantez içinde
// render eder.
func (b *builder) source(table string, sub Statement) string {
	if sub == nil {
		return QuoteIdentifier(table)
	}
	sql, err := sub.SQL()
	if err != nil {
		b.fail(err)
	}
	return "(" + sql + ")"
}

func (b *builder) setWhere(template string, params []Value) {
	b.where = append(b.where, b.mergeFragment(template, params))
}

func (b *builder) setWhereMap(criteria Criteria) {
	fragments, err := compileCriteria(b.escaper(), criteria, QuoteIdentifier)
	if err != nil {
		b.fail(err)
		return
	}
	b.where = append(b.where, fragments...)
}

func (b *builder) setHaving(template string, params []Value) {
	b.having = append(b.having, b.mergeFragment(template, params))
}

func (b *builder) setHavingMap(criteria Criteria) {
	fragments, err := compileCriteria(b.escaper(), criteria, rawExpression)
	if err != nil {
		b.fail(err)
		return
	}
	b.having = append(b.having, fragments...)
}

func (b *builder) mergeFragment(template string, params []Value) string {
	strict := b.conn != nil && b.conn.strictMerge
	merged, err := merge(b.escaper(), template, params, strict)
	if err != nil {
		b.fail(err)
		return template
	}
	return merged
}

func upsertKeyed(list []keyed, key, text string) []keyed {
	for i := range list {
		if list[i].key == key {
			list[i].text = text
			return list
		}
	}
	return append(list, keyed{key: key, text: text})
}

func keyedTexts(list []keyed) []string {
	out := make([]string, len(list))
	for i, k := range list {
		out[i] = k.text
	}
	return out
}

// -----------------------------------------------------------------------------
// CLAUSE GETTERS
// -----------------------------------------------------------------------------

// Kind, builder'ın mevcut ifade tipini döndürür.
func (b *builder) Kind() Kind {
	return b.kind
}

// SelectClause, virgülle ayrılmış SELECT ifadelerini döndürür.
func (b *builder) SelectClause() string {
	return strings.Join(b.expressions, ",")
}

// TableClause, virgülle ayrılmış tablo listesini döndürür.
func (b *builder) TableClause() string {
	return strings.Join(keyedTexts(b.tables), ",")
}

// FromClause, tablo listesi ve join'leri alt alta döndürür.
func (b *builder) FromClause() string {
	var parts []string
	if len(b.tables) > 0 {
		parts = append(parts, b.TableClause())
	}
	parts = append(parts, keyedTexts(b.joins)...)
	return strings.Join(parts, "\n")
}

// ColumnsClause, INSERT kolon listesini parantez içinde döndürür.
func (b *builder) ColumnsClause() string {
	cols := make([]string, len(b.values))
	for i, f := range b.values {
		cols[i] = QuoteIdentifier(f.Column)
	}
	return "(" + strings.Join(cols, ",") + ")"
}

// ValuesClause, INSERT değer listesini parantez içinde döndürür.
func (b *builder) ValuesClause() string {
	esc := b.escaper()
	vals := make([]string, len(b.values))
	for i, f := range b.values {
		vals[i] = quoteValue(esc, f.Value)
	}
	return "(" + strings.Join(vals, ",") + ")"
}

// SetClause, `col`='value' atamalarını virgülle ayrılmış döndürür.
func (b *builder) SetClause() string {
	esc := b.escaper()
	assignments := make([]string, len(b.set))
	for i, f := range b.set {
		assignments[i] = QuoteIdentifier(f.Column) + "=" + quoteValue(esc, f.Value)
	}
	return strings.Join(assignments, ",")
}

// WhereClause, WHERE fragment'larını AND ile birleştirir.
func (b *builder) WhereClause() string {
	return joinFragments(b.where)
}

func (b *builder) GroupByClause() string {
	return b.groupBy
}

// HavingClause, HAVING fragment'larını AND ile birleştirir.
func (b *builder) HavingClause() string {
	return joinFragments(b.having)
}

func (b *builder) OrderByClause() string {
	return b.orderBy
}

// LimitClause, `limit` veya `offset,limit` döndürür. Limit yoksa offset
// tek başına yazılmaz.
func (b *builder) LimitClause() string {
	if b.limit <= 0 {
		return ""
	}
	if b.offset > 0 {
		return strconv.Itoa(b.offset) + "," + strconv.Itoa(b.limit)
	}
	return strconv.Itoa(b.limit)
}

// -----------------------------------------------------------------------------
// RENDER
// -----------------------------------------------------------------------------

// SQL, builder'ın tipine göre tam SQL ifadesini üretir.
//
// Döndürür:
//   - string: Render edilmiş SQL
//   - error: Tip seçilmemişse ErrNoQueryType, builder kurulurken bir hata
//     kaydedildiyse o hata
func (b *builder) SQL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	switch b.kind {
	case KindSelect:
		return b.renderSelect(), nil
	case KindInsert:
		return b.renderInsert(), nil
	case KindUpdate:
		return b.renderUpdate(), nil
	case KindUpsert:
		return b.renderUpsert(), nil
	case KindDelete:
		return b.renderDelete(), nil
	}
	return "", ErrNoQueryType
}

// SelectSQL, tipten bağımsız olarak SELECT yolunu render eder. In/NotIn
// alt sorguları bu metni kullanır.
func (b *builder) SelectSQL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return b.renderSelect(), nil
}

// String, SQL metnini döndürür; hata durumunda boş string.
func (b *builder) String() string {
	sql, _ := b.SQL()
	return sql
}

func (b *builder) renderSelect() string {
	var sb strings.Builder
	sb.WriteString("SELECT " + b.SelectClause())
	if len(b.tables) > 0 || len(b.joins) > 0 {
		sb.WriteString("\nFROM " + b.FromClause())
	}
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE " + b.WhereClause())
	}
	if b.groupBy != "" {
		sb.WriteString("\nGROUP BY " + b.groupBy)
	}
	if len(b.having) > 0 {
		sb.WriteString("\nHAVING " + b.HavingClause())
	}
	if b.orderBy != "" {
		sb.WriteString("\nORDER BY " + b.orderBy)
	}
	if b.limit > 0 {
		sb.WriteString("\nLIMIT " + b.LimitClause())
	}
	return sb.String()
}

func (b *builder) renderInsert() string {
	return "INSERT INTO " + b.TableClause() +
		"\n" + b.ColumnsClause() +
		"\nVALUES " + b.ValuesClause()
}

func (b *builder) renderUpdate() string {
	var sb strings.Builder
	sb.WriteString("UPDATE " + b.TableClause())
	sb.WriteString("\nSET " + b.SetClause())
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE " + b.WhereClause())
	}
	if b.orderBy != "" {
		sb.WriteString("\nORDER BY " + b.orderBy)
	}
	if b.limit > 0 {
		sb.WriteString("\nLIMIT " + b.LimitClause())
	}
	return sb.String()
}

func (b *builder) renderUpsert() string {
	return b.renderInsert() +
		"\nON DUPLICATE KEY UPDATE" +
		"\n" + b.SetClause()
}

func (b *builder) renderDelete() string {
	var sb strings.Builder
	sb.WriteString("DELETE FROM " + b.TableClause())
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE " + b.WhereClause())
	}
	if b.limit > 0 {
		sb.WriteString("\nLIMIT " + b.LimitClause())
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// EXECUTION
// -----------------------------------------------------------------------------

// Query, render edilen SQL'i bağlantı üzerinde çalıştırır ve ileri yönlü bir
// Result döndürür.
func (b *builder) Query(ctx context.Context) (*Result, error) {
	sql, err := b.SQL()
	if err != nil {
		return nil, err
	}
	return b.conn.Query(ctx, sql)
}

// Fetch, render edilen SQL'in tüm satırlarını belleğe alır.
func (b *builder) Fetch(ctx context.Context) (*FetchedResult, error) {
	sql, err := b.SQL()
	if err != nil {
		return nil, err
	}
	return b.conn.Fetch(ctx, sql)
}

// Execute, render edilen SQL'i çalıştırır ve etkilenen satır sayısını döner.
func (b *builder) Execute(ctx context.Context) (int64, error) {
	sql, err := b.SQL()
	if err != nil {
		return 0, err
	}
	return b.conn.Execute(ctx, sql)
}

// Remember, Fetch sonucunu bağlantının cache'i üzerinden ttl süresince saklar.
func (b *builder) Remember(ctx context.Context, ttl time.Duration) (*FetchedResult, error) {
	sql, err := b.SQL()
	if err != nil {
		return nil, err
	}
	return b.conn.Remember(ctx, ttl, sql)
}
