package resolver

import (
	"sync"

	"github.com/shenikar/railguard/internal/events"
)

// Bus - шина оповещений incident:updated в пределах экрана инцидента
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(events.IncidentUpdated)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(events.IncidentUpdated))}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки
func (b *Bus) Subscribe(fn func(events.IncidentUpdated)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish синхронно вызывает всех подписчиков
func (b *Bus) Publish(event events.IncidentUpdated) {
	b.mu.RLock()
	handlers := make([]func(events.IncidentUpdated), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}
