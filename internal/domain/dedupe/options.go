package dedupe

// Option configures an in-memory Deduper.
type Option func(*keySet)

// WithMaxSize bounds the number of recorded keys. Zero or negative means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *keySet) {
		d.maxSize = maxSize
	}
}
