package engine

// Observer is notified after every state change of a game it watches
type Observer interface {
	OnUpdate(g Game)
}

// Subject keeps an ordered observer list. Embed it in a game controller.
// Observers are compared with ==, so they should be pointers.
type Subject struct {
	observers []Observer
}

// RegisterObserver adds o once; registering the same observer again is a no-op
func (s *Subject) RegisterObserver(o Observer) {
	if o == nil {
		return
	}
	for _, existing := range s.observers {
		if existing == o {
			return
		}
	}
	s.observers = append(s.observers, o)
}

// RemoveObserver drops o; removing an absent observer is a no-op
func (s *Subject) RemoveObserver(o Observer) {
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// ObserverCount returns the number of registered observers
func (s *Subject) ObserverCount() int { return len(s.observers) }

// NotifyObservers calls every observer in registration order
func (s *Subject) NotifyObservers(g Game) {
	snapshot := make([]Observer, len(s.observers))
	copy(snapshot, s.observers)
	for _, o := range snapshot {
		o.OnUpdate(g)
	}
}
