package watcher

import "time"

// DefaultSettleDelay is used when Options.SettleDelay is zero.
const DefaultSettleDelay = 250 * time.Millisecond

// Options configures the watcher.
type Options struct {
	// SettleDelay is how long the file must stay unchanged before an event
	// is emitted. Editors and exporters often write in several steps.
	SettleDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
}
