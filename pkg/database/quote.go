// -----------------------------------------------------------------------------
// Quoting
// -----------------------------------------------------------------------------
// Değer ve identifier quote işlemleri.
//
// Değerler prepared statement ile bağlanmaz; SQL metnine escape edilmiş
// literal olarak gömülür. Bu yüzden string escape işlemi tek bir noktada,
// Escaper arayüzünde toplanır. NULL, boolean, tarih ve liste değerleri bu
// dosyada literal'e çevrilir; geri kalan her şey Escaper'a gider.
//
// Identifier'lar (tablo/kolon adları) MySQL backtick'leri ile sarmalanır,
// içerideki backtick karakterleri ikilenir:
//
//	users.id  → `users`.`id`
//	a`b       → `a``b`
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeFormat, Time değerlerinin SQL'e yazıldığı formattır (MySQL DATETIME).
const TimeFormat = "2006-01-02 15:04:05"

// Escaper, bir string'i driver'ın kurallarına göre tek tırnaklı SQL literal'ine
// çevirir. SQL injection koruması tamamen bu arayüzün doğruluğuna bağlıdır.
type Escaper interface {
	QuoteString(s string) string
}

// MySQLEscaper, MySQL client kütüphanesinin backslash escape kurallarını uygular.
//
// Escape edilen karakterler: \0, \n, \r, \\, ', ", \x1a
//
// Örnek:
//
//	MySQLEscaper{}.QuoteString("it's") → 'it\'s'
type MySQLEscaper struct{}

// QuoteString implements Escaper.
func (MySQLEscaper) QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1a':
			b.WriteString(`\Z`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// ANSIEscaper, tek tırnakları ikileyerek escape eder.
//
// NO_BACKSLASH_ESCAPES modunda çalışan MySQL sunucuları ve SQLite için
// kullanılır.
type ANSIEscaper struct{}

// QuoteString implements Escaper.
func (ANSIEscaper) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Quote, bir değeri SQL literal'ine çevirir.
//
// Parametre:
//   - value: Quote edilecek değer (nil, NULL kabul edilir)
//
// Döndürür:
//   - string: SQL literal'i
//
// Örnek:
//
//	conn.Quote(database.Int(5))              → '5'
//	conn.Quote(nil)                          → NULL
//	conn.Quote(database.Bool(false))         → '0'
//	conn.Quote(database.Ints(1, 2))          → '1','2'
func (c *Connection) Quote(value Value) string {
	return quoteValue(c.escaper, value)
}

func quoteValue(esc Escaper, value Value) string {
	switch v := value.(type) {
	case nil, Null:
		return "NULL"
	case Bool:
		if v {
			return esc.QuoteString("1")
		}
		return esc.QuoteString("0")
	case Int:
		return esc.QuoteString(strconv.FormatInt(int64(v), 10))
	case Str:
		return esc.QuoteString(string(v))
	case Time:
		return esc.QuoteString(time.Time(v).Format(TimeFormat))
	case List:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = quoteValue(esc, item)
		}
		return strings.Join(parts, ",")
	default:
		// Value sealed bir interface; buraya ulaşılamaz.
		panic(fmt.Sprintf("database: unsupported value type %T", value))
	}
}

// QuoteIdentifier, bir identifier'ı backtick ile sarmalar.
//
// İlk noktadan bölünür ve her iki taraf ayrı ayrı quote edilir, böylece
// schema.table.column gibi derin referanslar da desteklenir.
//
// Örnek:
//
//	QuoteIdentifier("table.id") → `table`.`id`
//	QuoteIdentifier("a`b")      → `a``b`
func QuoteIdentifier(identifier string) string {
	if head, tail, found := strings.Cut(identifier, "."); found {
		return QuoteIdentifier(head) + "." + QuoteIdentifier(tail)
	}
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// QuoteIdentifier, paket seviyesindeki QuoteIdentifier'a delege eder.
func (c *Connection) QuoteIdentifier(identifier string) string {
	return QuoteIdentifier(identifier)
}
