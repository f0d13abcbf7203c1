// Package debounce coalesces bursts of calls into a single delayed one.
package debounce

import (
	"slices"
	"sync"
	"time"
)

var afterFunc = time.AfterFunc

// Debouncer runs fn once delay has passed without another Trigger.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
	fn    func()
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = afterFunc(d.delay, func() { d.fire(gen) })
}

// fire drops callbacks from timers that were replaced or stopped after
// they had already been scheduled.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Batch collects keys between flushes and hands them to fn sorted and
// without duplicates.
type Batch struct {
	mu      sync.Mutex
	pending map[string]struct{}
	d       *Debouncer
	fn      func([]string)
}

func NewBatch(delay time.Duration, fn func([]string)) *Batch {
	b := &Batch{pending: map[string]struct{}{}, fn: fn}
	b.d = New(delay, b.flush)
	return b
}

func (b *Batch) Add(key string) {
	b.mu.Lock()
	b.pending[key] = struct{}{}
	b.mu.Unlock()
	b.d.Trigger()
}

// Stop cancels a pending flush and forgets collected keys.
func (b *Batch) Stop() {
	b.d.Stop()
	b.mu.Lock()
	clear(b.pending)
	b.mu.Unlock()
}

func (b *Batch) flush() {
	b.mu.Lock()
	keys := make([]string, 0, len(b.pending))
	for k := range b.pending {
		keys = append(keys, k)
	}
	clear(b.pending)
	b.mu.Unlock()
	if len(keys) == 0 {
		return
	}
	slices.Sort(keys)
	b.fn(keys)
}
