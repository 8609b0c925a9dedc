// -----------------------------------------------------------------------------
// Event Dispatcher
// -----------------------------------------------------------------------------
// Bu dosya, event'leri dispatch eden ve listener'ları yöneten merkezi yapıdır.
//
// database.Connection her ifade ve transaction adımı için bir event
// yayınlar. Bu yüzden Dispatch sıcak yoldadır: listener yoksa log yazmadan
// hemen döner.
//
// Kullanım:
//
//	dispatcher := events.NewDispatcher(logger)
//	defer dispatcher.Shutdown()
//
//	dispatcher.Listen(events.EventQueryFailed, alertListener)
//	dispatcher.Listen(events.Wildcard, auditListener) // tüm event'ler
//
//	conn := database.New(db, database.WithDispatcher(dispatcher))
// -----------------------------------------------------------------------------

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Wildcard, tüm event'leri dinleyen listener'ların kayıt adıdır.
const Wildcard = "*"

// Dispatcher, event'leri yöneten merkezi yapıdır.
//
// Özellikler:
// - Thread-safe (concurrent kullanım için güvenli)
// - Multiple listeners per event
// - Wildcard listener desteği
// - Synchronous ve asynchronous dispatch
// - Graceful shutdown with context
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    Logger
	wg        sync.WaitGroup // Async event'leri takip etmek için
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewDispatcher, yeni bir Dispatcher oluşturur.
//
// Dispatcher kullanımı bittiğinde Shutdown() çağrılmalıdır:
//
//	defer dispatcher.Shutdown()
func NewDispatcher(logger Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Listen, belirtilen event'e bir listener kaydeder.
//
// Bir event'e birden fazla listener kayıt edilebilir; kayıt sırasıyla
// çağrılırlar. eventName olarak Wildcard verilirse listener tüm event'leri
// alır.
//
// Örnek:
//
//	dispatcher.Listen(events.EventQueryExecuted, events.ListenerFunc(func(e events.Event) error {
//	    p := e.Payload().(events.QueryPayload)
//	    metrics.Observe(p.Duration)
//	    return nil
//	}))
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
	d.logger.Printf("✅ Listener registered for event: %s", eventName)
}

// Dispatch, bir event'i tüm kayıtlı listener'lara gönderir.
//
// Önce event'e özel listener'lar, sonra wildcard listener'lar çalışır.
// Bir listener hata dönerse diğerleri yine de çalışır.
//
// Döndürür:
//   - error: Listener hatalarının errors.Join ile birleşimi (hepsi başarılıysa nil)
func (d *Dispatcher) Dispatch(event Event) error {
	d.mu.RLock()
	specific := d.listeners[event.Name()]
	wildcard := d.listeners[Wildcard]
	d.mu.RUnlock()

	if len(specific) == 0 && len(wildcard) == 0 {
		return nil
	}

	var errs []error
	for _, group := range [][]Listener{specific, wildcard} {
		for _, listener := range group {
			if err := listener.Handle(event); err != nil {
				errs = append(errs, err)
				d.logger.Printf("❌ Listener error for '%s': %v", event.Name(), err)
			}
		}
	}

	return errors.Join(errs...)
}

// DispatchAsync, event'i asenkron olarak dispatch eder ve hemen döner.
//
// Async dispatch edilen event'lerin hataları sadece log'a yazılır.
// Shutdown() çağrıldıktan sonra async event'ler dispatch edilmez.
func (d *Dispatcher) DispatchAsync(event Event) {
	select {
	case <-d.ctx.Done():
		d.logger.Printf("⚠️  Dispatcher is shutting down, async event '%s' ignored", event.Name())
		return
	default:
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		select {
		case <-d.ctx.Done():
			d.logger.Printf("⚠️  Async event '%s' cancelled due to shutdown", event.Name())
			return
		default:
		}

		if err := d.Dispatch(event); err != nil {
			d.logger.Printf("❌ Async dispatch error for '%s': %v", event.Name(), err)
		}
	}()
}

// Forget, belirtilen event için tüm listener'ları kaldırır.
func (d *Dispatcher) Forget(eventName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, eventName)
	d.logger.Printf("🗑️  All listeners removed for event: %s", eventName)
}

// GetListeners, belirtilen event'in listener sayısını döndürür. Wildcard
// listener'lar sayılmaz.
func (d *Dispatcher) GetListeners(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.listeners[eventName])
}

// HasListeners, belirtilen event için listener olup olmadığını kontrol eder.
func (d *Dispatcher) HasListeners(eventName string) bool {
	return d.GetListeners(eventName) > 0
}

// Subscribe, bir listener'ı birden fazla event'e aynı anda kaydeder.
//
// Örnek:
//
//	dispatcher.Subscribe([]string{
//	    events.EventTransactionCommitted,
//	    events.EventTransactionRolledBack,
//	}, txAuditListener)
func (d *Dispatcher) Subscribe(eventNames []string, listener Listener) {
	for _, eventName := range eventNames {
		d.Listen(eventName, listener)
	}
}

// Clear, tüm listener'ları temizler.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = make(map[string][]Listener)
	d.logger.Println("🗑️  All event listeners cleared")
}

// Stats, event adı → listener sayısı eşlemesini döndürür.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int, len(d.listeners))
	for event, listeners := range d.listeners {
		stats[event] = len(listeners)
	}
	return stats
}

// Shutdown, yeni async event'leri engeller ve bekleyenlerin tamamlanmasını
// bekler.
func (d *Dispatcher) Shutdown() {
	d.logger.Println("🔄 Shutting down event dispatcher...")
	d.cancel()
	d.wg.Wait()
	d.logger.Println("✅ Event dispatcher shutdown complete")
}

// ShutdownWithTimeout, Shutdown gibidir ama en fazla timeout kadar bekler.
//
// Döndürür:
//   - error: Timeout aşılırsa hata döner
func (d *Dispatcher) ShutdownWithTimeout(timeout time.Duration) error {
	d.logger.Printf("🔄 Shutting down event dispatcher (timeout: %v)...", timeout)
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Println("✅ Event dispatcher shutdown complete")
		return nil
	case <-time.After(timeout):
		d.logger.Println("⚠️  Event dispatcher shutdown timeout - some events may not have completed")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
