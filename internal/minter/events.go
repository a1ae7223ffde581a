// internal/minter/events.go
package minter

import "context"

// EventStatus описывает состояние стадии в событии.
type EventStatus string

const (
	EventStarted EventStatus = "started"
	EventDone    EventStatus = "done"
	EventFailed  EventStatus = "failed"
)

// Event сообщает о ходе конвейера подписчику (TUI).
type Event struct {
	Stage  Stage
	Status EventStatus
	Detail string
	Err    error
}

// emit блокируется, пока подписчик не примет событие или ctx не отменён.
func (m *Minter) emit(ctx context.Context, ev Event) {
	if m.events == nil {
		return
	}
	select {
	case m.events <- ev:
	case <-ctx.Done():
	}
}
