package database

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Reflection-Based Struct Scanner
// -----------------------------------------------------------------------------
// Result.Scan ve Result.ScanAll satırları struct'lara bu dosyadaki scanner
// ile okur.
//
// Kolon → alan eşlemesi:
//   - `db:"kolon"` tag'i varsa o ad kullanılır
//   - `db:"-"` alanı atlar
//   - tag yoksa alan adının küçük harfli hali kullanılır
//   - gömülü (anonymous) struct'ların alanları üst struct'a aitmiş gibi
//     eşlenir
//
// Struct'ta karşılığı olmayan kolonlar okunur ve atılır. Her tip için
// eşleme bir kez hesaplanır ve cache'lenir.
// -----------------------------------------------------------------------------

// fieldMap, kolon adı → reflect alan index yolu.
type fieldMap map[string][]int

// Scanner, tip başına alan eşlemelerini cache'ler.
type Scanner struct {
	mu    sync.RWMutex
	cache map[reflect.Type]fieldMap
}

// NewScanner, boş cache'li bir Scanner oluşturur.
func NewScanner() *Scanner {
	return &Scanner{cache: make(map[reflect.Type]fieldMap)}
}

var defaultScanner = NewScanner()

// fields, struct tipinin alan eşlemesini döndürür.
func (s *Scanner) fields(structType reflect.Type) fieldMap {
	s.mu.RLock()
	mapping, ok := s.cache[structType]
	s.mu.RUnlock()
	if ok {
		return mapping
	}

	mapping = make(fieldMap)
	collectFields(structType, nil, mapping)

	s.mu.Lock()
	s.cache[structType] = mapping
	s.mu.Unlock()
	return mapping
}

func collectFields(structType reflect.Type, prefix []int, mapping fieldMap) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		index := append(append([]int{}, prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, mapping)
			continue
		}
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}
		if _, exists := mapping[tag]; !exists {
			mapping[tag] = index
		}
	}
}

// Scan, rows'un mevcut satırını dest struct'ına okur. rows.Next çağrılmış
// olmalıdır.
func (s *Scanner) Scan(rows *sql.Rows, dest any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("scanner: dest bir struct pointer olmalıdır, %T alındı", dest)
	}
	destElem := destValue.Elem()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	mapping := s.fields(destElem.Type())

	scanArgs := make([]any, len(cols))
	for i, col := range cols {
		index, ok := mapping[col]
		if !ok {
			scanArgs[i] = new(sql.RawBytes)
			continue
		}
		fieldVal := destElem.FieldByIndex(index)
		if !fieldVal.CanSet() {
			return fmt.Errorf("scanner: '%s' alanı ayarlanamıyor", col)
		}
		scanArgs[i] = fieldVal.Addr().Interface()
	}

	return rows.Scan(scanArgs...)
}

// ScanSlice, kalan tüm satırları dest'in gösterdiği struct slice'ına ekler.
func (s *Scanner) ScanSlice(rows *sql.Rows, dest any) error {
	sliceValue := reflect.ValueOf(dest)
	if sliceValue.Kind() != reflect.Ptr || sliceValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("scanner: dest bir slice pointer olmalıdır, %T alındı", dest)
	}

	sliceElem := sliceValue.Elem()
	elemType := sliceElem.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}

	for rows.Next() {
		item := reflect.New(elemType)
		if err := s.Scan(rows, item.Interface()); err != nil {
			return err
		}
		if isPtr {
			sliceElem.Set(reflect.Append(sliceElem, item))
		} else {
			sliceElem.Set(reflect.Append(sliceElem, item.Elem()))
		}
	}

	return rows.Err()
}

// ScanStruct, varsayılan scanner ile tek bir satırı okur.
func ScanStruct(rows *sql.Rows, dest any) error {
	return defaultScanner.Scan(rows, dest)
}

// ScanSlice, varsayılan scanner ile tüm satırları okur.
func ScanSlice(rows *sql.Rows, dest any) error {
	return defaultScanner.ScanSlice(rows, dest)
}
