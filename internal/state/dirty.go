package state

import "sync"

// Section names a slice of the document for change signalling.
type Section string

const (
	SectionWallet  Section = "wallet"
	SectionTime    Section = "time"
	SectionActions Section = "actions"
	SectionAssets  Section = "assets"
	SectionEvents  Section = "events"
	SectionLog     Section = "log"
	SectionDay     Section = "day"
)

// DirtyBus collects section invalidations between flushes. Engines mark
// sections as they mutate; the server drains the set once per request
// (or tick) and pushes one coalesced notification.
type DirtyBus struct {
	mu      sync.Mutex
	pending map[Section]struct{}
	subs    []chan []Section
}

func NewDirtyBus() *DirtyBus {
	return &DirtyBus{pending: map[Section]struct{}{}}
}

// Mark records sections as changed. Safe for concurrent use, though the
// engine itself serializes mutations.
func (b *DirtyBus) Mark(sections ...Section) {
	if b == nil || len(sections) == 0 {
		return
	}
	b.mu.Lock()
	for _, sec := range sections {
		b.pending[sec] = struct{}{}
	}
	b.mu.Unlock()
}

// Flush drains the pending set and fans it out to subscribers. Returns
// the drained sections, sorted stably enough for tests (insertion order
// is not kept; callers sort if they care).
func (b *DirtyBus) Flush() []Section {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}
	out := make([]Section, 0, len(b.pending))
	for sec := range b.pending {
		out = append(out, sec)
	}
	b.pending = map[Section]struct{}{}
	subs := b.subs
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- out:
		default:
			// Slow subscriber; drop rather than block the sim.
		}
	}
	return out
}

// Subscribe registers a channel that receives each flush batch.
func (b *DirtyBus) Subscribe() chan []Section {
	ch := make(chan []Section, 8)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a previously subscribed channel.
func (b *DirtyBus) Unsubscribe(ch chan []Section) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
