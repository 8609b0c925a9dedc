// -----------------------------------------------------------------------------
// Event Listeners
// -----------------------------------------------------------------------------
// Bu dosya, event listener interface'ini ve yardımcı tipleri içerir.
//
// Listener Nedir?
// Listener, bir event gerçekleştiğinde çalışacak kod bloğudur.
// Event dispatch edildiğinde, o event'e kayıtlı tüm listener'lar çalıştırılır.
//
// Örnek:
//
//	// Listener tanımla
//	type SlowQueryLogger struct{ Threshold time.Duration }
//
//	func (l *SlowQueryLogger) Handle(event events.Event) error {
//	    p := event.Payload().(events.QueryPayload)
//	    if p.Duration > l.Threshold {
//	        log.Printf("yavaş sorgu (%s): %s", p.Duration, p.SQL)
//	    }
//	    return nil
//	}
//
//	// Listener'ı kaydet
//	dispatcher.Listen(events.EventQueryExecuted, &SlowQueryLogger{Threshold: time.Second})
// -----------------------------------------------------------------------------

package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Listener, event'leri dinleyen ve işleyen interface.
//
// Her listener, Handle() metodunu implement etmelidir.
// Handle metodu, event gerçekleştiğinde çağrılır.
type Listener interface {
	// Handle, event'i işler.
	//
	// Parametre:
	//   - event: Gerçekleşen event
	//
	// Döndürür:
	//   - error: İşlem başarısızsa hata döner
	//
	// Hata Yönetimi:
	// Handle metodu error dönerse, dispatcher bu hatayı loglar
	// ancak diğer listener'ların çalışmasını engellemez.
	Handle(event Event) error
}

// ListenerFunc, fonksiyonları Listener interface'ine çevirir.
//
// Bu adapter pattern sayesinde, struct tanımlamadan
// fonksiyon olarak listener yazabilirsiniz:
//
//	dispatcher.Listen(events.EventQueryFailed, events.ListenerFunc(func(e events.Event) error {
//	    log.Println("sorgu hatası:", e.Payload().(events.QueryPayload).Err)
//	    return nil
//	}))
type ListenerFunc func(Event) error

// Handle, ListenerFunc'ı Listener interface'ine uyumlu hale getirir.
func (f ListenerFunc) Handle(event Event) error {
	return f(event)
}

// -----------------------------------------------------------------------------
// Async Listener
// -----------------------------------------------------------------------------
// Sorgu event'leri sıcak yoldan (her ifade için) yayınlanır. Yavaş bir
// listener (uzak log servisi, dosya) sorguyu bekletmemeli; AsyncListener
// event'leri sınırlı bir kuyruğa alır ve tek bir goroutine'de sırayla işler.
// Kuyruk doluysa event düşürülür ve loglanır, sorgu asla bloke olmaz.

// Logger, log interface'i (dependency injection için).
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// AsyncListener, listener'ı arka planda kuyruk üzerinden çalıştıran wrapper.
//
// Kullanım:
//
//	async := events.NewAsyncListener(events.NewQueryLogListener(logger, 0), logger, 64)
//	defer async.Close()
//	dispatcher.Listen(events.Wildcard, async)
type AsyncListener struct {
	listener Listener
	logger   Logger

	mu      sync.RWMutex
	queue   chan Event
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewAsyncListener, kuyruk kapasitesi buffer olan bir AsyncListener oluşturur
// ve worker goroutine'ini başlatır.
//
// Parametreler:
//   - listener: Arka planda çalıştırılacak listener
//   - logger: Listener hatalarının ve düşen event'lerin loglanacağı logger
//   - buffer: Kuyruk kapasitesi (1'den küçükse 1)
func NewAsyncListener(listener Listener, logger Logger, buffer int) *AsyncListener {
	if buffer < 1 {
		buffer = 1
	}
	a := &AsyncListener{
		listener: listener,
		logger:   logger,
		queue:    make(chan Event, buffer),
		done:     make(chan struct{}),
	}
	go a.work()
	return a
}

func (a *AsyncListener) work() {
	defer close(a.done)
	for event := range a.queue {
		if err := a.listener.Handle(event); err != nil {
			a.logger.Printf("❌ Async listener hatası (%s): %v", event.Name(), err)
		}
	}
}

// Handle, event'i kuyruğa ekler ve hemen döner. Close'dan sonra veya kuyruk
// doluyken event düşürülür.
func (a *AsyncListener) Handle(event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.drop(event, "listener kapalı")
		return nil
	}
	select {
	case a.queue <- event:
	default:
		a.drop(event, "kuyruk dolu")
	}
	return nil
}

func (a *AsyncListener) drop(event Event, reason string) {
	a.dropped.Add(1)
	a.logger.Printf("⚠️  Event düşürüldü (%s): %s", reason, event.Name())
}

// Dropped, kuyruğa alınamadan düşürülen event sayısını döndürür.
func (a *AsyncListener) Dropped() int64 {
	return a.dropped.Load()
}

// Close, yeni event kabulünü durdurur ve kuyruktaki event'ler işlenene kadar
// bekler. Birden fazla kez çağrılabilir.
func (a *AsyncListener) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}

// -----------------------------------------------------------------------------
// Query Log Listener
// -----------------------------------------------------------------------------

// QueryLogListener, sorgu event'lerini logger'a yazar.
//
// Başarısız sorgular her zaman, çalışan sorgular ise süresi Threshold'u
// aşıyorsa loglanır (Threshold 0 ise hepsi). Transaction ve cache event'leri
// tek satır olarak yazılır.
type QueryLogListener struct {
	logger    Logger
	threshold time.Duration
}

// NewQueryLogListener, yeni bir QueryLogListener oluşturur.
func NewQueryLogListener(logger Logger, threshold time.Duration) *QueryLogListener {
	return &QueryLogListener{logger: logger, threshold: threshold}
}

// Handle implements Listener. QueryPayload taşımayan event'ler yok sayılır.
func (q *QueryLogListener) Handle(event Event) error {
	p, ok := event.Payload().(QueryPayload)
	if !ok {
		return nil
	}
	switch event.Name() {
	case EventQueryFailed:
		q.logger.Printf("❌ [%s] %s (%s): %v", event.Name(), p.SQL, p.Duration, p.Err)
	case EventQueryExecuted:
		if p.Duration < q.threshold {
			return nil
		}
		if q.threshold > 0 {
			q.logger.Printf("🐢 [%s] yavaş sorgu (%s): %s", event.Name(), p.Duration, p.SQL)
			return nil
		}
		q.logger.Printf("🔍 [%s] (%s): %s", event.Name(), p.Duration, p.SQL)
	default:
		q.logger.Printf("ℹ️  [%s] %s", event.Name(), p.SQL)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Conditional Listener
// -----------------------------------------------------------------------------

// ConditionalListener, sadece belirli koşullarda çalışan listener.
//
// Kullanım:
//
//	slow := func(e events.Event) bool {
//	    return e.Payload().(events.QueryPayload).Duration > time.Second
//	}
//	dispatcher.Listen(events.EventQueryExecuted, events.NewConditionalListener(alert, slow))
type ConditionalListener struct {
	listener  Listener
	condition func(Event) bool
}

// NewConditionalListener, yeni bir ConditionalListener oluşturur.
func NewConditionalListener(listener Listener, condition func(Event) bool) *ConditionalListener {
	return &ConditionalListener{
		listener:  listener,
		condition: condition,
	}
}

// Handle, koşul sağlanıyorsa listener'ı çalıştırır.
func (c *ConditionalListener) Handle(event Event) error {
	if c.condition(event) {
		return c.listener.Handle(event)
	}
	return nil // Koşul sağlanmadı, skip
}
