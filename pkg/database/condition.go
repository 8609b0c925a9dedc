// -----------------------------------------------------------------------------
// Comparison Conditions
// -----------------------------------------------------------------------------
// Criteria map'inde değer yerine kullanılabilen karşılaştırma operatörleri.
//
// Her constructor girdisini hemen doğrular ve uyumsuz tipte
// *TypeMismatchError döner; hata render anına ertelenmez.
//
//	between, _ := database.Between(database.Int(0), database.Int(5))
//	qb.WhereMap(database.Criteria{database.C("age", between)})
//	→ `age` BETWEEN '0' AND '5'
// -----------------------------------------------------------------------------

package database

import "fmt"

// Operand, bir Criterion'ın sağ tarafında kullanılabilen ifadedir:
// bir Value veya bir Comparison.
type Operand interface {
	operand()
}

// Comparison, operatörü ve quote edilmiş sağ tarafı üreten koşuldur.
// Dönen metin kolon adının hemen arkasına eklenir, bu yüzden boşlukla başlar.
type Comparison interface {
	Operand
	Condition(esc Escaper) (string, error)
}

// BetweenCondition, ` BETWEEN <min> AND <max>` üretir.
type BetweenCondition struct {
	min Value
	max Value
}

// Between, min ve max arasında kalma koşulu oluşturur.
//
// Parametreler:
//   - min, max: Int veya Time olmalıdır
//
// Döndürür:
//   - *BetweenCondition
//   - error: Diğer tiplerde *TypeMismatchError
func Between(min, max Value) (*BetweenCondition, error) {
	if !betweenable(min) || !betweenable(max) {
		return nil, &TypeMismatchError{
			Condition: "between",
			Got:       fmt.Sprintf("min: %s, max: %s", typeName(min), typeName(max)),
			Accepted:  "int, time",
		}
	}
	return &BetweenCondition{min: min, max: max}, nil
}

func betweenable(v Value) bool {
	switch v.(type) {
	case Int, Time:
		return true
	}
	return false
}

func (*BetweenCondition) operand() {}

// Condition implements Comparison.
func (b *BetweenCondition) Condition(esc Escaper) (string, error) {
	return " BETWEEN " + quoteValue(esc, b.min) + " AND " + quoteValue(esc, b.max), nil
}

// NotEqualsCondition, ` != <value>` veya ` IS NOT NULL` üretir.
type NotEqualsCondition struct {
	value Value
}

// NotEquals, eşitsizlik koşulu oluşturur. Null değer IS NOT NULL'a dönüşür.
// List kabul edilmez.
func NotEquals(value Value) (*NotEqualsCondition, error) {
	if _, ok := value.(List); ok {
		return nil, &TypeMismatchError{
			Condition: "not equals",
			Got:       typeName(value),
			Accepted:  "null, bool, int, string, time",
		}
	}
	return &NotEqualsCondition{value: value}, nil
}

func (*NotEqualsCondition) operand() {}

// Condition implements Comparison.
func (n *NotEqualsCondition) Condition(esc Escaper) (string, error) {
	if isNull(n.value) {
		return " IS NOT NULL", nil
	}
	return " != " + quoteValue(esc, n.value), nil
}

// InCondition, ` IN (...)` veya ` NOT IN (...)` üretir.
type InCondition struct {
	negate bool
	kind   inKind
	list   List
	raw    string
	query  Statement
}

type inKind int

const (
	inList inKind = iota
	inRaw
	inQuery
)

// In, üyelik koşulu oluşturur.
//
// Parametre:
//   - data: List veya []Value (quote edilir), string (ham SQL olarak
//     yazılır) ya da Statement (alt sorgu olarak render edilir)
//
// Örnek:
//
//	database.In(database.Ints(1, 2))                 →  IN ('1','2')
//	database.In("1, 2, 3")                            →  IN (1, 2, 3)
//	database.In(conn.Select("id").From("users"))      →  IN (SELECT id FROM `users`)
func In(data any) (*InCondition, error) {
	return newIn("in", data, false)
}

// NotIn, In'in olumsuz halidir.
func NotIn(data any) (*InCondition, error) {
	return newIn("not in", data, true)
}

func newIn(name string, data any, negate bool) (*InCondition, error) {
	cond := &InCondition{negate: negate}
	switch d := data.(type) {
	case List:
		cond.kind, cond.list = inList, d
	case []Value:
		cond.kind, cond.list = inList, List(d)
	case string:
		cond.kind, cond.raw = inRaw, d
	case Statement:
		cond.kind, cond.query = inQuery, d
	default:
		return nil, &TypeMismatchError{
			Condition: name,
			Got:       fmt.Sprintf("%T", data),
			Accepted:  "string, list, statement",
		}
	}
	return cond, nil
}

func (*InCondition) operand() {}

// Condition implements Comparison.
func (i *InCondition) Condition(esc Escaper) (string, error) {
	op := " IN ("
	if i.negate {
		op = " NOT IN ("
	}
	switch i.kind {
	case inQuery:
		sql, err := selectSQL(i.query)
		if err != nil {
			return "", err
		}
		return op + sql + ")", nil
	case inList:
		return op + quoteValue(esc, i.list) + ")", nil
	default:
		return op + i.raw + ")", nil
	}
}

// selectSQL, bir alt sorgunun SELECT metnini döndürür. Builder'lar tipinden
// bağımsız olarak SELECT yolu ile render edilir.
func selectSQL(stmt Statement) (string, error) {
	if s, ok := stmt.(interface{ SelectSQL() (string, error) }); ok {
		return s.SelectSQL()
	}
	return stmt.SQL()
}

func typeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Str:
		return "string"
	case Time:
		return "time"
	case List:
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
