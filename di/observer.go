package di

// Observer is notified around every construction a context performs. Resolve
// is called before the binding runs; the returned func receives the outcome.
type Observer interface {
	Resolve(key Key) func(err error)
}

type nopObserver struct{}

func (nopObserver) Resolve(Key) func(error) { return func(error) {} }
