package database

import (
	"context"
	"fmt"
	"strconv"
)

// -----------------------------------------------------------------------------
// SCHEMA & TABLE
// -----------------------------------------------------------------------------
// Şema ve tablo seviyesinde ince kısayollar. Gerçek bir şema introspection
// katmanı değildir; INFORMATION_SCHEMA'dan sadece tablo adlarını okur ve
// geri kalan her şeyi Connection'ın builder'larına devreder.
// -----------------------------------------------------------------------------

// Table, tek bir tabloya bağlı kısayolları sunar.
type Table struct {
	conn *Connection
	name string
}

// Table, verilen ad için bir Table döndürür. Ad `schema.table` olabilir.
func (c *Connection) Table(name string) *Table {
	return &Table{conn: c, name: name}
}

// Name, tablonun adını döndürür.
func (t *Table) Name() string {
	return t.name
}

// Count, tablodaki satır sayısını döndürür.
func (t *Table) Count(ctx context.Context) (int64, error) {
	res, err := t.conn.Select("COUNT(1)").From(t.name).Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return countValue(res)
}

// Select, `<alias>.*` seçen bir builder döndürür. alias boşsa tablo adı
// kullanılır.
//
// Örnek:
//
//	conn.Table("users").Select("u").Where("u.active = 1")
//	// SELECT u.* FROM `users` u WHERE u.active = 1
func (t *Table) Select(alias string) *Query {
	prefix := alias
	if prefix == "" {
		prefix = t.name
	}
	return t.conn.Select(prefix+".*").From(t.name, alias)
}

// Insert, satırı tabloya ekler.
func (t *Table) Insert(ctx context.Context, fields Fields) (int64, error) {
	return t.conn.InsertValues(ctx, t.name, fields)
}

// Update, koşula uyan satırları günceller.
func (t *Table) Update(ctx context.Context, fields Fields, where Criteria) (int64, error) {
	return t.conn.UpdateWhere(ctx, t.name, fields, where)
}

// Delete, koşula uyan satırları siler.
func (t *Table) Delete(ctx context.Context, where Criteria) (int64, error) {
	return t.conn.DeleteWhere(ctx, t.name, where)
}

// Schema, bir veritabanı şemasına bağlı kısayolları sunar.
type Schema struct {
	conn *Connection
	name string
}

// Schema, verilen şema adı için bir Schema döndürür.
func (c *Connection) Schema(name string) *Schema {
	return &Schema{conn: c, name: name}
}

// Name, şemanın adını döndürür.
func (s *Schema) Name() string {
	return s.name
}

// Count, şemadaki tablo sayısını döndürür.
func (s *Schema) Count(ctx context.Context) (int64, error) {
	res, err := s.conn.Fetch(ctx,
		"SELECT COUNT(1) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ?", Str(s.name))
	if err != nil {
		return 0, err
	}
	return countValue(res)
}

// Table, şemadaki bir tablo için `schema.table` adıyla Table döndürür.
func (s *Schema) Table(name string) *Table {
	return s.conn.Table(s.name + "." + name)
}

// Tables, şemadaki tabloları adlarıyla döndürür.
func (s *Schema) Tables(ctx context.Context) (map[string]*Table, error) {
	res, err := s.conn.Fetch(ctx,
		"SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ?", Str(s.name))
	if err != nil {
		return nil, err
	}
	tables := make(map[string]*Table, res.Count())
	for _, v := range res.Values() {
		name := fmt.Sprint(v)
		tables[name] = s.Table(name)
	}
	return tables, nil
}

// countValue, COUNT(1) sonucunu int64'e çevirir. Driver'a göre hücre int64
// veya metin olarak gelebilir.
func countValue(res *FetchedResult) (int64, error) {
	v, ok := res.Value()
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		out, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("database: invalid count %q: %w", n, err)
		}
		return out, nil
	}
	return 0, fmt.Errorf("database: unexpected count type %T", v)
}
