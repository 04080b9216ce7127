package resolver

import "sync"

// Page - экран инцидента. Каждый переход монтирует новый Resolver, старый закрывается.
type Page struct {
	fetcher  Fetcher
	bus      *Bus
	observer Observer
	opts     []Option

	mu      sync.Mutex
	current *Resolver
	history []string
	closed  bool
}

func NewPage(fetcher Fetcher, bus *Bus, observer Observer, opts ...Option) *Page {
	return &Page{
		fetcher:  fetcher,
		bus:      bus,
		observer: observer,
		opts:     opts,
	}
}

// Open открывает инцидент по идентификатору из адреса
func (p *Page) Open(routeID string) {
	p.mount(routeID)
}

// Replace реализует Navigator
func (p *Page) Replace(canonicalID string) {
	p.mount(canonicalID)
}

// RouteID - текущий адрес
func (p *Page) RouteID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ""
	}
	return p.current.RouteID()
}

// History - все адреса, которые открывались на странице
func (p *Page) History() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.history...)
}

// Refresh перезапускает загрузку текущего инцидента
func (p *Page) Refresh() {
	p.mu.Lock()
	r := p.current
	p.mu.Unlock()
	if r != nil {
		r.Refresh()
	}
}

func (p *Page) Close() {
	p.mu.Lock()
	p.closed = true
	r := p.current
	p.current = nil
	p.mu.Unlock()

	if r != nil {
		r.Close()
	}
}

func (p *Page) mount(routeID string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	old := p.current
	r := New(routeID, p.fetcher, p, p.bus, p.observer, p.opts...)
	p.current = r
	p.history = append(p.history, routeID)
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}
	r.Start()
}
