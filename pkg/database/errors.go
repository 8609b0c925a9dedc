// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------
// Paketin döndürdüğü hata tipleri.
//
// Builder ve condition hataları programcı hatasıdır (yanlış API kullanımı);
// retry edilmemelidir. Driver hataları QueryError ile sarmalanır ama
// Unwrap sayesinde errors.Is/As ile orijinal hataya ulaşılabilir.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNoQueryType, select/insert/update/upsert/delete çağrılmadan SQL
	// üretilmeye çalışıldığında döner.
	ErrNoQueryType = errors.New("database: no query type set")

	// ErrTypeMismatch, bir condition constructor'ı desteklemediği bir tip
	// aldığında döner. Detay için *TypeMismatchError kullanın.
	ErrTypeMismatch = errors.New("database: type mismatch")

	// ErrMissingParameter, strict merge modunda yer tutucu sayısı değer
	// sayısından fazla olduğunda döner.
	ErrMissingParameter = errors.New("database: missing merge parameter")

	ErrNestedTransaction = errors.New("database: cannot start nested transaction")
	ErrNoTransaction     = errors.New("database: no transaction started")
	ErrAlreadyLocked     = errors.New("database: tables already locked, locking again would release existing locks")
	ErrNotLocked         = errors.New("database: cannot release locks when none are acquired")
)

// TypeMismatchError, hangi condition'ın hangi tipi reddettiğini taşır.
type TypeMismatchError struct {
	Condition string
	Got       string
	Accepted  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("database: %s: incompatible type %s, compatible types: %s", e.Condition, e.Got, e.Accepted)
}

// Unwrap, errors.Is(err, ErrTypeMismatch) kontrolünü mümkün kılar.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// QueryError, driver'dan dönen bir hatayı çalıştırılan SQL ile birlikte taşır.
//
// Alanlar:
//   - Query: Hataya sebep olan SQL
//   - Number: MySQL hata numarası (MySQL dışı driver'larda 0)
//   - SQLState: ANSI SQLSTATE kodu (varsa)
//   - Err: Driver'ın orijinal hatası
type QueryError struct {
	Query    string
	Number   uint16
	SQLState string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// newQueryError, driver hatasını sarmalar. MySQL hataları için hata numarası
// ve SQLSTATE alanları doldurulur.
func newQueryError(query string, err error) error {
	if err == nil {
		return nil
	}
	qe := &QueryError{Query: query, Err: err}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		qe.Number = myErr.Number
		if myErr.SQLState != [5]byte{} {
			qe.SQLState = string(myErr.SQLState[:])
		}
	}
	return qe
}

// IsDuplicateEntry, hatanın bir unique key ihlali (MySQL 1062) olup
// olmadığını kontrol eder.
func IsDuplicateEntry(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Number == 1062
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
