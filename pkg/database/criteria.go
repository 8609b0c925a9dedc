// -----------------------------------------------------------------------------
// Criteria & Fields
// -----------------------------------------------------------------------------
// Go map'leri sırasız olduğu için kolon → değer eşlemeleri sıralı slice'lar
// ile temsil edilir. Render sırası her zaman ekleme sırasıdır.
//
//   - Fields:   INSERT kolon/değer listesi ve UPDATE/UPSERT SET atamaları
//   - Criteria: WHERE/HAVING için map formundaki koşullar
//
// Criteria derleme kuralları:
//
//	NULL       → `col` IS NULL
//	List       → `col` IN ('1','2','3')
//	Comparison → `col` BETWEEN '1' AND '5'  (condition.go)
//	diğerleri  → `col`='value'
// -----------------------------------------------------------------------------

package database

import "strings"

// Field, tek bir kolon = değer atamasıdır.
type Field struct {
	Column string
	Value  Value
}

// Fields, sıralı kolon → değer listesidir.
type Fields []Field

// F, bir Field oluşturur.
//
// Örnek:
//
//	conn.Insert("users").Values(database.Fields{
//	    database.F("id", database.Int(1)),
//	    database.F("username", database.Str("john")),
//	})
func F(column string, value Value) Field {
	return Field{Column: column, Value: value}
}

func (f Fields) clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for i, field := range f {
		out[i] = Field{Column: field.Column, Value: cloneValue(field.Value)}
	}
	return out
}

// Criterion, map formundaki tek bir koşuldur.
type Criterion struct {
	Column  string
	Operand Operand
}

// Criteria, AND ile birleştirilecek sıralı koşul listesidir.
type Criteria []Criterion

// C, bir Criterion oluşturur. Operand bir Value veya Comparison olabilir.
//
// Örnek:
//
//	database.Criteria{
//	    database.C("deleted_at", nil),
//	    database.C("id", database.Ints(1, 2, 3)),
//	}
func C(column string, operand Operand) Criterion {
	return Criterion{Column: column, Operand: operand}
}

// compileCriteria, her koşul için bir SQL fragment'ı üretir.
//
// column fonksiyonu sol tarafı render eder: WHERE için QuoteIdentifier,
// HAVING için ifade olduğu gibi kullanılır.
func compileCriteria(esc Escaper, criteria Criteria, column func(string) string) ([]string, error) {
	fragments := make([]string, 0, len(criteria))
	for _, c := range criteria {
		col := column(c.Column)

		switch op := c.Operand.(type) {
		case nil:
			fragments = append(fragments, col+" IS NULL")
		case Comparison:
			cond, err := op.Condition(esc)
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, col+cond)
		case Value:
			switch v := op.(type) {
			case Null:
				fragments = append(fragments, col+" IS NULL")
			case List:
				fragments = append(fragments, col+" IN ("+quoteValue(esc, v)+")")
			default:
				fragments = append(fragments, col+"="+quoteValue(esc, v))
			}
		}
	}
	return fragments, nil
}

// CompileConditions, map formundaki koşulları WHERE fragment'larına çevirir.
// Kolonlar QuoteIdentifier ile sarmalanır.
func (c *Connection) CompileConditions(criteria Criteria) ([]string, error) {
	return compileCriteria(c.escaper, criteria, QuoteIdentifier)
}

// rawExpression, HAVING koşullarında sol tarafı olduğu gibi bırakır.
func rawExpression(expr string) string {
	return expr
}

// joinFragments, fragment'ları AND ile alt alta birleştirir.
func joinFragments(fragments []string) string {
	return strings.Join(fragments, "\nAND ")
}
