// -----------------------------------------------------------------------------
// Event System - Core Interfaces
// -----------------------------------------------------------------------------
// Bu dosya, event-driven architecture için temel yapıları içerir.
//
// Event Nedir?
// Event (olay), sistemde meydana gelen önemli bir durumu temsil eder.
// Örnek: QueryExecuted, QueryFailed, TransactionCommitted
//
// Neden Event-Driven Architecture?
// - Loose coupling (bağımlılıkların azaltılması)
// - Separation of concerns (sorumlulukların ayrılması)
// - Scalability (ölçeklenebilirlik)
// - Testability (test edilebilirlik)
//
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

// Event, tüm event'lerin implement etmesi gereken interface.
//
// Her event şu bilgileri sağlamalıdır:
//   - Name: Event'in unique adı
//   - OccurredAt: Event'in gerçekleşme zamanı
//   - Payload: Event ile taşınan veri
type Event interface {
	// Name, event'in benzersiz adını döndürür.
	// Örnek: "query.executed", "transaction.committed"
	Name() string

	// OccurredAt, event'in gerçekleşme zamanını döndürür.
	OccurredAt() time.Time

	// Payload, event ile taşınan veriyi döndürür.
	// Generic interface{} olduğu için her türlü data taşınabilir.
	Payload() interface{}
}

// BaseEvent, tüm custom event'ler için temel yapıdır.
//
// Custom event oluştururken BaseEvent'i embed edin:
//
//	type SlowQuery struct {
//	    events.BaseEvent
//	    Threshold time.Duration
//	}
//
// Bu sayede Name() ve OccurredAt() metodlarını otomatik implement etmiş olursunuz.
type BaseEvent struct {
	name       string
	occurredAt time.Time
	payload    interface{}
}

// NewBaseEvent, yeni bir BaseEvent oluşturur.
//
// Parametreler:
//   - name: Event adı (örn: "query.executed")
//   - payload: Event verisi (optional, nil olabilir)
//
// Döndürür:
//   - *BaseEvent: BaseEvent instance
//
// Örnek:
//
//	event := events.NewBaseEvent("query.executed", payload)
func NewBaseEvent(name string, payload interface{}) *BaseEvent {
	return &BaseEvent{
		name:       name,
		occurredAt: time.Now(),
		payload:    payload,
	}
}

// Name, event adını döndürür.
func (e *BaseEvent) Name() string {
	return e.name
}

// OccurredAt, event zamanını döndürür.
func (e *BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// Payload, event verisini döndürür.
func (e *BaseEvent) Payload() interface{} {
	return e.payload
}

// -----------------------------------------------------------------------------
// Query Events
// -----------------------------------------------------------------------------
// database.Connection'ın yayınladığı event'ler. Hepsinin payload'ı
// QueryPayload'dır.

const (
	// Statement Events
	EventQueryExecuted = "query.executed"
	EventQueryFailed   = "query.failed"

	// Transaction Events
	EventTransactionStarted    = "transaction.started"
	EventTransactionCommitted  = "transaction.committed"
	EventTransactionRolledBack = "transaction.rolled_back"

	// Cache Events (Remember)
	EventCacheHit  = "cache.hit"
	EventCacheMiss = "cache.miss"
)

// QueryPayload, sorgu event'lerinin taşıdığı veridir.
type QueryPayload struct {
	SQL          string        // Çalıştırılan SQL (merge edilmiş hali)
	Duration     time.Duration // Çalışma süresi
	RowsAffected int64         // Etkilenen satır sayısı, bilinmiyorsa -1
	Err          error         // Hata (sadece query.failed için)
}

// NewQueryEvent, verilen ad ve payload ile bir sorgu event'i oluşturur.
//
// Kullanım:
//
//	dispatcher.Listen(events.EventQueryFailed, events.ListenerFunc(func(e events.Event) error {
//	    p := e.Payload().(events.QueryPayload)
//	    log.Printf("yavaş/başarısız sorgu: %s (%v)", p.SQL, p.Err)
//	    return nil
//	}))
func NewQueryEvent(name string, payload QueryPayload) Event {
	return NewBaseEvent(name, payload)
}
