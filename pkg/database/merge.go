// -----------------------------------------------------------------------------
// Placeholder Merge
// -----------------------------------------------------------------------------
// Bu dosya, `?` yer tutucularını quote edilmiş değerlerle değiştiren merge
// algoritmasını içerir.
//
// Kural: Bir `?` ancak kendisinden SONRA gelen escape edilmemiş tek tırnak
// (') sayısı çift ise yer tutucudur. Tek sayıda tırnak kalıyorsa `?` bir
// string literal'in içindedir ve olduğu gibi bırakılır:
//
//	WHERE foo='?' AND bar=?   (1, 3)  →  WHERE foo='?' AND bar='1'
//
// Önünde tek sayıda ters bölü olan tırnak (\') escape edilmiştir ve
// sayılmaz. İkilenmiş tırnaklar ('') çift sayıldığı için pariteyi bozmaz.
//
// Değerler tükendiğinde kalan yer tutucular literal `?` olarak kalır.
// Strict modda ise ErrMissingParameter döner.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"
)

// Merge, template içindeki yer tutucuları sırasıyla verilen değerlerle
// doldurur.
//
// Parametreler:
//   - template: `?` yer tutucuları içeren SQL
//   - values: Yer tutuculara soldan sağa atanacak değerler
//
// Döndürür:
//   - string: Değerleri gömülmüş SQL
//   - error: Sadece WithStrictMerge açıkken ve değer eksikse
//
// Örnek:
//
//	sql, _ := conn.Merge("WHERE foo=? AND bar=?", database.Int(1))
//	// WHERE foo='1' AND bar=?
func (c *Connection) Merge(template string, values ...Value) (string, error) {
	return merge(c.escaper, template, values, c.strictMerge)
}

// MergeStrict, Merge ile aynıdır ancak bağlantı ayarından bağımsız olarak
// eksik değerlerde hata döner.
func (c *Connection) MergeStrict(template string, values ...Value) (string, error) {
	return merge(c.escaper, template, values, true)
}

func merge(esc Escaper, template string, values []Value, strict bool) (string, error) {
	if len(values) == 0 {
		return template, nil
	}

	// Yer tutucunun sağında kalan tırnak sayısı.
	remaining := countQuotes(template)

	var b strings.Builder
	b.Grow(len(template) + len(values)*4)

	placeholder := 0
	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch {
		case ch == '\'':
			if !escapedAt(template, i) {
				remaining--
			}
			b.WriteByte(ch)
		case ch == '?' && remaining%2 == 0:
			placeholder++
			if len(values) == 0 {
				if strict {
					return "", fmt.Errorf("%w: placeholder #%d in %q", ErrMissingParameter, placeholder, template)
				}
				b.WriteByte('?')
				continue
			}
			b.WriteString(quoteValue(esc, values[0]))
			values = values[1:]
		default:
			b.WriteByte(ch)
		}
	}

	return b.String(), nil
}

// Placeholders, template içindeki geçerli yer tutucu sayısını döndürür.
func Placeholders(template string) int {
	remaining := countQuotes(template)
	count := 0
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '\'':
			if !escapedAt(template, i) {
				remaining--
			}
		case '?':
			if remaining%2 == 0 {
				count++
			}
		}
	}
	return count
}

// countQuotes, escape edilmemiş tek tırnakları sayar.
func countQuotes(template string) int {
	count := 0
	for i := 0; i < len(template); i++ {
		if template[i] == '\'' && !escapedAt(template, i) {
			count++
		}
	}
	return count
}

// escapedAt, i konumundaki karakterin önünde tek sayıda ters bölü olup
// olmadığını döndürür. `\\'` literal bir ters bölü ve kapanan tırnaktır.
func escapedAt(template string, i int) bool {
	backslashes := 0
	for j := i - 1; j >= 0 && template[j] == '\\'; j-- {
		backslashes++
	}
	return backslashes%2 == 1
}
