// -----------------------------------------------------------------------------
// Typed Values
// -----------------------------------------------------------------------------
// Bu dosya, SQL metnine literal olarak gömülen değerlerin kapalı (sealed) tip
// kümesini tanımlar. Quote fonksiyonu bu küme üzerinde tam bir type switch
// yapar; küme dışında bir tip derleme zamanında reddedilir.
//
// Desteklenen tipler:
//   - Null:  NULL literal'i
//   - Bool:  '1' / '0'
//   - Int:   driver tarafından escape edilen tamsayı
//   - Str:   driver tarafından escape edilen string
//   - Time:  'YYYY-MM-DD HH:MM:SS'
//   - List:  virgülle ayrılmış değer listesi (IN (...) için)
// -----------------------------------------------------------------------------

package database

import "time"

// Value, SQL'e gömülebilen bir değeri temsil eder.
//
// Interface dışarıdan implement edilemez; nil bir Value, Null gibi davranır.
type Value interface {
	Operand
	isValue()
}

// Null, SQL NULL değeridir.
type Null struct{}

// Bool, '1' veya '0' olarak quote edilen boolean değerdir.
type Bool bool

// Int, tamsayı değerdir.
type Int int64

// Str, string değerdir.
type Str string

// Time, saniye hassasiyetinde tarih/saat değeridir.
// Değer kendi location'ında formatlanır, timezone bilgisi yazılmaz.
type Time time.Time

// List, aynı tipteki değerlerin sıralı listesidir.
type List []Value

// NullValue, tekrar tekrar Null{} yazmamak için hazır NULL değeridir.
var NullValue Value = Null{}

func (Null) isValue() {}
func (Bool) isValue() {}
func (Int) isValue()  {}
func (Str) isValue()  {}
func (Time) isValue() {}
func (List) isValue() {}

func (Null) operand() {}
func (Bool) operand() {}
func (Int) operand()  {}
func (Str) operand()  {}
func (Time) operand() {}
func (List) operand() {}

// Ints, []int değerlerini bir List'e çevirir.
//
// Örnek:
//
//	database.C("id", database.Ints(1, 2, 3)) // `id` IN ('1','2','3')
func Ints(values ...int) List {
	list := make(List, len(values))
	for i, v := range values {
		list[i] = Int(v)
	}
	return list
}

// Strs, string değerlerini bir List'e çevirir.
func Strs(values ...string) List {
	list := make(List, len(values))
	for i, v := range values {
		list[i] = Str(v)
	}
	return list
}

// At, time.Time değerini Time'a çevirir.
func At(t time.Time) Time {
	return Time(t)
}

// isNull, nil interface'i ve Null{} değerini aynı kabul eder.
func isNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// cloneValue, List değerlerini derin kopyalar. Diğer tipler değer semantiğine
// sahip olduğu için olduğu gibi döner.
func cloneValue(v Value) Value {
	list, ok := v.(List)
	if !ok {
		return v
	}
	out := make(List, len(list))
	for i, item := range list {
		out[i] = cloneValue(item)
	}
	return out
}
