// Package resolver приводит идентификатор из адреса страницы инцидента к каноническому.
//
// Resolver сначала запрашивает инцидент напрямую, затем ищет его в общем списке.
// Найдя запись с другим каноническим id, он один раз переходит на канонический адрес.
// Если записи нет, NotFound публикуется только после короткой задержки.
package resolver

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/shenikar/railguard/internal/client"
	"github.com/shenikar/railguard/internal/events"
	"github.com/sirupsen/logrus"
)

// DefaultNotFoundDelay - задержка перед показом "не найдено"
const DefaultNotFoundDelay = 600 * time.Millisecond

// Fetcher - источник инцидентов (обычно *client.Client)
type Fetcher interface {
	GetIncident(ctx context.Context, id string) (*client.Document, error)
	ListIncidents(ctx context.Context) ([]client.Document, error)
}

// Navigator заменяет текущий адрес страницы
type Navigator interface {
	Replace(canonicalID string)
}

type State int

const (
	StateLoading State = iota
	StateReady
	StateNotFound
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateNotFound:
		return "not_found"
	case StateRedirecting:
		return "redirecting"
	}
	return "unknown"
}

// Result - очередное состояние экрана инцидента
type Result struct {
	RouteID    string
	State      State
	View       *View
	RedirectTo string
}

// Observer получает состояния по порядку. Вызывать Close из Observer нельзя.
type Observer func(Result)

type Option func(*Resolver)

func WithNotFoundDelay(d time.Duration) Option {
	return func(r *Resolver) { r.notFoundDelay = d }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// Resolver обслуживает один идентификатор из адреса. Флаг перехода живет в экземпляре:
// новый адрес получает новый Resolver.
type Resolver struct {
	routeID       string
	fetcher       Fetcher
	nav           Navigator
	bus           *Bus
	observer      Observer
	logger        *logrus.Logger
	notFoundDelay time.Duration

	emitMu sync.Mutex

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	timer       *time.Timer
	redirected  bool
	closed      bool
	refreshing  *events.IncidentUpdated
	current     *View
	unsubscribe func()
	wg          sync.WaitGroup
}

func New(routeID string, fetcher Fetcher, nav Navigator, bus *Bus, observer Observer, opts ...Option) *Resolver {
	r := &Resolver{
		routeID:       routeID,
		fetcher:       fetcher,
		nav:           nav,
		bus:           bus,
		observer:      observer,
		notFoundDelay: DefaultNotFoundDelay,
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = logrus.New()
		r.logger.SetOutput(io.Discard)
	}
	return r
}

func (r *Resolver) RouteID() string {
	return r.routeID
}

// Redirected - выполнен ли уже переход на канонический адрес
func (r *Resolver) Redirected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirected
}

// Start подписывается на шину и запускает первый цикл загрузки
func (r *Resolver) Start() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.bus != nil && r.unsubscribe == nil {
		r.unsubscribe = r.bus.Subscribe(r.onUpdated)
	}
	r.mu.Unlock()

	r.start(nil)
}

// Refresh перезапускает загрузку с первого шага (кнопка "Повторить")
func (r *Resolver) Refresh() {
	r.start(nil)
}

// Close отменяет загрузку, таймер "не найдено" и подписку, затем ждет фоновую горутину
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	cancel, unsubscribe := r.cancel, r.unsubscribe
	r.stopTimerLocked()
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Resolver) onUpdated(event events.IncidentUpdated) {
	r.start(&event)
}

// concernsLocked - относится ли оповещение к этому экрану
func (r *Resolver) concernsLocked(event events.IncidentUpdated) bool {
	if event.ID == "" || event.ID == r.routeID {
		return true
	}
	return r.current != nil && r.current.Document.Matches(event.ID)
}

func (r *Resolver) start(trigger *events.IncidentUpdated) {
	log := r.logger.WithFields(logrus.Fields{"route_id": r.routeID})

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if trigger != nil && !r.concernsLocked(*trigger) {
		r.mu.Unlock()
		return
	}
	if r.redirected {
		// экран уже уходит на канонический адрес
		r.mu.Unlock()
		log.Debug("Refresh ignored, redirect is underway")
		return
	}
	if trigger != nil && r.refreshing != nil && *r.refreshing == *trigger {
		r.mu.Unlock()
		log.WithField("event", *trigger).Debug("Identical update coalesced with the in-flight fetch")
		return
	}

	if r.cancel != nil {
		r.cancel()
	}
	r.stopTimerLocked()
	r.generation++
	gen := r.generation
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.refreshing = nil
	if trigger != nil {
		t := *trigger
		r.refreshing = &t
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(ctx, gen)
}

func (r *Resolver) run(ctx context.Context, gen uint64) {
	r.emit(gen, Result{State: StateLoading})
	redirectTo := r.cycle(ctx, gen)
	r.wg.Done()

	// Replace может закрыть этот Resolver, поэтому вызывается после wg.Done
	if redirectTo != "" && r.nav != nil {
		r.nav.Replace(redirectTo)
	}
}

func (r *Resolver) cycle(ctx context.Context, gen uint64) string {
	doc := r.lookup(ctx)

	r.mu.Lock()
	if gen != r.generation || r.closed {
		r.mu.Unlock()
		return ""
	}
	r.refreshing = nil

	if doc == nil {
		r.timer = time.AfterFunc(r.notFoundDelay, func() { r.notFound(gen) })
		r.mu.Unlock()
		return ""
	}

	view := NewView(*doc)
	r.current = &view
	if view.CanonicalID != "" && view.CanonicalID != r.routeID && !r.redirected {
		r.redirected = true
		r.mu.Unlock()
		r.logger.WithFields(logrus.Fields{
			"route_id":     r.routeID,
			"canonical_id": view.CanonicalID,
		}).Debug("Redirecting to canonical incident id")
		r.emit(gen, Result{State: StateRedirecting, View: &view, RedirectTo: view.CanonicalID})
		return view.CanonicalID
	}
	r.mu.Unlock()

	r.emit(gen, Result{State: StateReady, View: &view})
	return ""
}

// lookup - прямой запрос, затем поиск по списку. Любая ошибка означает "документа нет".
func (r *Resolver) lookup(ctx context.Context) *client.Document {
	log := r.logger.WithFields(logrus.Fields{"route_id": r.routeID})

	doc, err := r.fetcher.GetIncident(ctx, r.routeID)
	if err == nil && doc != nil {
		return doc
	}
	if ctx.Err() != nil {
		return nil
	}
	log.WithError(err).Debug("Direct fetch produced no document, scanning the list")

	docs, err := r.fetcher.ListIncidents(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Debug("List fetch failed")
		}
		return nil
	}
	for i := range docs {
		if docs[i].Matches(r.routeID) {
			found := docs[i]
			return &found
		}
	}
	return nil
}

func (r *Resolver) notFound(gen uint64) {
	r.mu.Lock()
	if gen != r.generation || r.closed {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.mu.Unlock()

	r.emit(gen, Result{State: StateNotFound})
}

// emit доставляет состояние, только если цикл gen все еще актуален
func (r *Resolver) emit(gen uint64, res Result) {
	res.RouteID = r.routeID

	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	current := gen == r.generation && !r.closed
	r.mu.Unlock()

	if current && r.observer != nil {
		r.observer(res)
	}
}

func (r *Resolver) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
