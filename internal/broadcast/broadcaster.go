package broadcast

// Broadcaster publishes events. Publish must not block and must not fail
// visibly: undeliverable events are dropped.
type Broadcaster interface {
	Publish(evt Event)
}

// Func adapts a function to the Broadcaster interface.
type Func func(evt Event)

// Publish calls f(evt).
func (f Func) Publish(evt Event) {
	f(evt)
}

type nop struct{}

func (nop) Publish(Event) {}

// Nop returns a Broadcaster that discards every event.
func Nop() Broadcaster {
	return nop{}
}
