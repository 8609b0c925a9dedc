package database

// -----------------------------------------------------------------------------
// FETCHED RESULT
// -----------------------------------------------------------------------------
// FetchedResult, bellekteki satırlar üzerinde rastgele erişimli bir
// cursor'dur. Satırlar sorgu anında tamamen okunduğu için veritabanı
// bağlantısını tutmaz; Remember ile cache'lenebilir.
//
// Cursor metodları (Row, Value, Next, Seek, Rewind) aynı iç pozisyonu
// paylaşır:
//
//	res.Row()    // 0. satır, cursor → 1
//	res.Value()  // 1. satırın ilk kolonu, cursor → 2
//	res.Rewind() // cursor → 0
// -----------------------------------------------------------------------------

// FetchedResult, belleğe alınmış sorgu sonucudur.
type FetchedResult struct {
	columns []string
	rows    [][]any
	cursor  int
}

// NewFetchedResult, kolon adları ve satır hücrelerinden bir FetchedResult
// oluşturur. Her satır kolon sayısı kadar hücre içermelidir.
func NewFetchedResult(columns []string, rows [][]any) *FetchedResult {
	return &FetchedResult{columns: columns, rows: rows}
}

// Count, satır sayısını döndürür.
func (f *FetchedResult) Count() int {
	return len(f.rows)
}

// Columns, kolon adlarını döndürür.
func (f *FetchedResult) Columns() []string {
	return f.columns
}

// Rows, tüm satırları döndürür. Cursor'u etkilemez.
func (f *FetchedResult) Rows() []Row {
	out := make([]Row, len(f.rows))
	for i, cells := range f.rows {
		out[i] = toRow(f.columns, cells)
	}
	return out
}

// Row, cursor'daki satırı döndürür ve cursor'u ilerletir. Satır kalmadıysa
// false döner.
func (f *FetchedResult) Row() (Row, bool) {
	if !f.Valid() {
		return nil, false
	}
	row := toRow(f.columns, f.rows[f.cursor])
	f.cursor++
	return row, true
}

// Value, cursor'daki satırdan tek bir hücre döndürür ve cursor'u ilerletir.
// Kolon verilmezse ilk kolon okunur.
//
// Örnek:
//
//	res.Value()                        // ilk kolon
//	res.Value(database.Pos(1))         // ikinci kolon
//	res.Value(database.Col("username"))
func (f *FetchedResult) Value(col ...Column) (any, bool) {
	if !f.Valid() {
		return nil, false
	}
	i := pickColumn(col).index(f.columns)
	cells := f.rows[f.cursor]
	f.cursor++
	if i < 0 {
		return nil, false
	}
	return cells[i], true
}

// Values, tüm satırlardan tek bir kolonu döndürür. Cursor'u etkilemez.
// Kolon yoksa nil döner.
func (f *FetchedResult) Values(col ...Column) []any {
	i := pickColumn(col).index(f.columns)
	if i < 0 {
		return nil
	}
	out := make([]any, len(f.rows))
	for r, cells := range f.rows {
		out[r] = cells[i]
	}
	return out
}

// Each, her satırın hücrelerini sırasıyla fn'e verir. fn hata dönerse durur.
func (f *FetchedResult) Each(fn func(cells []any) error) error {
	for _, cells := range f.rows {
		if err := fn(cells); err != nil {
			return err
		}
	}
	return nil
}

// Rewind, cursor'u başa alır.
func (f *FetchedResult) Rewind() {
	f.cursor = 0
}

// Seek, cursor'u verilen pozisyona taşır.
func (f *FetchedResult) Seek(position int) {
	f.cursor = position
}

// Next, cursor'u bir ilerletir.
func (f *FetchedResult) Next() {
	f.cursor++
}

// Valid, cursor'un geçerli bir satırı gösterip göstermediğini döndürür.
func (f *FetchedResult) Valid() bool {
	return f.cursor >= 0 && f.cursor < len(f.rows)
}

// Current, cursor'daki satırı ilerletmeden döndürür. Geçersizse nil.
func (f *FetchedResult) Current() Row {
	if !f.Valid() {
		return nil
	}
	return toRow(f.columns, f.rows[f.cursor])
}

// Key, cursor pozisyonunu döndürür.
func (f *FetchedResult) Key() int {
	return f.cursor
}
