package worm

type EventType int

const (
	EventStep EventType = iota
	EventReset
	EventPause
)

type Event struct {
	Type  EventType
	Worm  int      // index in the set, -1 when not worm specific
	Move  MoveType // type of the newly appended move (EventStep)
	Point Point    // new head joint (EventStep)
	On    bool     // pause state (EventPause)
}

type EventHandler func(Event)

type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

// Emit is safe on a nil bus.
func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
}
