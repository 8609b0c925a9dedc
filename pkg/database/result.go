package database

import (
	"database/sql"
	"fmt"
	"slices"
	"strconv"
)

// -----------------------------------------------------------------------------
// RESULT
// -----------------------------------------------------------------------------
// Result, *sql.Rows üzerinde ileri yönlü okuma yapar. Satırlar sadece bir
// kez okunabilir; tüm satırları tüketen metodlar (Rows, Values, Each,
// ScanAll) işleri bitince Result'ı kapatır.
//
// Hücre değerleri driver'ın döndürdüğü tiplerdir, tek istisna []byte:
// metin olarak okunması için string'e çevrilir.
// -----------------------------------------------------------------------------

// Row, kolon adı → hücre değeri eşlemesidir.
type Row map[string]any

// Column, bir satırdaki hücreyi adı veya sırası ile seçer.
type Column struct {
	name string
	pos  int
}

// Col, kolonu adıyla seçer.
func Col(name string) Column {
	return Column{name: name, pos: -1}
}

// Pos, kolonu 0 tabanlı sırasıyla seçer.
func Pos(i int) Column {
	return Column{pos: i}
}

func (c Column) String() string {
	if c.name != "" {
		return c.name
	}
	return "#" + strconv.Itoa(c.pos)
}

// index, kolonun verilen kolon listesindeki sırasını döndürür; yoksa -1.
func (c Column) index(columns []string) int {
	if c.name != "" {
		return slices.Index(columns, c.name)
	}
	if c.pos >= 0 && c.pos < len(columns) {
		return c.pos
	}
	return -1
}

// pickColumn, isteğe bağlı kolon argümanını çözer. Verilmezse ilk kolon.
func pickColumn(cols []Column) Column {
	if len(cols) == 0 {
		return Pos(0)
	}
	return cols[0]
}

// toRow, hücreleri kolon adlarıyla eşler.
func toRow(columns []string, cells []any) Row {
	row := make(Row, len(columns))
	for i, name := range columns {
		row[name] = cells[i]
	}
	return row
}

// normalizeCell, driver'dan gelen []byte değerlerini string'e çevirir.
func normalizeCell(v any) any {
	switch c := v.(type) {
	case []byte:
		return string(c)
	case sql.RawBytes:
		return string(c)
	}
	return v
}

// Result, ileri yönlü sorgu sonucudur.
type Result struct {
	rows    *sql.Rows
	columns []string
}

func newResult(rows *sql.Rows) *Result {
	return &Result{rows: rows}
}

// Columns, sonuç kümesinin kolon adlarını döndürür.
func (r *Result) Columns() ([]string, error) {
	if r.columns == nil {
		cols, err := r.rows.Columns()
		if err != nil {
			return nil, err
		}
		r.columns = cols
	}
	return r.columns, nil
}

// next, sıradaki satırın hücrelerini okur. Satır kalmadıysa nil, nil döner
// ve Result kapatılır.
func (r *Result) next() ([]any, error) {
	cols, err := r.Columns()
	if err != nil {
		return nil, err
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, err
		}
		return nil, r.rows.Close()
	}

	cells := make([]any, len(cols))
	pointers := make([]any, len(cols))
	for i := range cells {
		pointers[i] = &cells[i]
	}
	if err := r.rows.Scan(pointers...); err != nil {
		return nil, err
	}
	for i := range cells {
		cells[i] = normalizeCell(cells[i])
	}
	return cells, nil
}

// Row, sıradaki satırı döndürür. Satır kalmadıysa nil döner.
func (r *Result) Row() (Row, error) {
	cells, err := r.next()
	if err != nil || cells == nil {
		return nil, err
	}
	return toRow(r.columns, cells), nil
}

// Rows, kalan tüm satırları okur ve Result'ı kapatır.
func (r *Result) Rows() ([]Row, error) {
	defer r.rows.Close()

	rows := make([]Row, 0)
	for {
		cells, err := r.next()
		if err != nil {
			return nil, err
		}
		if cells == nil {
			return rows, nil
		}
		rows = append(rows, toRow(r.columns, cells))
	}
}

// Value, sıradaki satırdan tek bir hücre okur. Kolon verilmezse ilk kolon.
//
// Döndürür:
//   - any: Hücre değeri
//   - error: Satır kalmadıysa sql.ErrNoRows, kolon yoksa hata
//
// Örnek:
//
//	count, err := conn.Select("COUNT(1)").From("users").Query(ctx)
//	n, err := count.Value()
func (r *Result) Value(col ...Column) (any, error) {
	cells, err := r.next()
	if err != nil {
		return nil, err
	}
	if cells == nil {
		return nil, sql.ErrNoRows
	}
	c := pickColumn(col)
	i := c.index(r.columns)
	if i < 0 {
		return nil, fmt.Errorf("database: unknown column %s", c)
	}
	return cells[i], nil
}

// Values, kalan tüm satırlardan tek bir kolonu okur ve Result'ı kapatır.
func (r *Result) Values(col ...Column) ([]any, error) {
	defer r.rows.Close()

	cols, err := r.Columns()
	if err != nil {
		return nil, err
	}
	c := pickColumn(col)
	i := c.index(cols)
	if i < 0 {
		return nil, fmt.Errorf("database: unknown column %s", c)
	}

	values := make([]any, 0)
	for {
		cells, err := r.next()
		if err != nil {
			return nil, err
		}
		if cells == nil {
			return values, nil
		}
		values = append(values, cells[i])
	}
}

// Each, kalan her satırın hücrelerini sırasıyla fn'e verir. fn hata dönerse
// okuma durur ve hata döner.
func (r *Result) Each(fn func(cells []any) error) error {
	defer r.rows.Close()

	for {
		cells, err := r.next()
		if err != nil {
			return err
		}
		if cells == nil {
			return nil
		}
		if err := fn(cells); err != nil {
			return err
		}
	}
}

// Scan, sıradaki satırı dest struct'ına `db` tag'lerine göre okur.
//
// Döndürür:
//   - error: Satır kalmadıysa sql.ErrNoRows
func (r *Result) Scan(dest any) error {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		r.rows.Close()
		return sql.ErrNoRows
	}
	return ScanStruct(r.rows, dest)
}

// ScanAll, kalan tüm satırları dest slice'ına okur ve Result'ı kapatır.
func (r *Result) ScanAll(dest any) error {
	defer r.rows.Close()
	return ScanSlice(r.rows, dest)
}

// Close, alttaki *sql.Rows'u kapatır.
func (r *Result) Close() error {
	return r.rows.Close()
}

// fetchAll, kalan satırları bir FetchedResult'a toplar.
func (r *Result) fetchAll() (*FetchedResult, error) {
	defer r.rows.Close()

	cols, err := r.Columns()
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0)
	for {
		cells, err := r.next()
		if err != nil {
			return nil, err
		}
		if cells == nil {
			return NewFetchedResult(cols, rows), nil
		}
		rows = append(rows, cells)
	}
}
