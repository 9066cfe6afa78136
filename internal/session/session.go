// Package session holds the state shared by a group of related renders:
// scoping counters, the set of component types whose shared stylesheets
// were already emitted, the custom tag map, and the presentation context
// (theme, i18n data, message resolver).
package session

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/prerender/internal/component"
	"github.com/conneroisu/prerender/internal/dom"
)

// MessageResolver resolves a localized message from the session's i18n
// data.
type MessageResolver func(data interface{}, key string, args ...interface{}) string

// Config is the presentation context of a session.
type Config struct {
	Theme           interface{}
	I18nData        interface{}
	MessageResolver MessageResolver
}

// AnonymousPrefix starts the names given to descriptors without a tag.
const AnonymousPrefix = "anon-element-"

var storeIDs atomic.Uint64

// store is the numbering state shared by sessions. Merged stores forward
// to a single surviving store, so every session that ever shared state
// with another keeps seeing the same counters.
type store struct {
	id      uint64
	mu      sync.Mutex
	forward atomic.Pointer[store]

	tags     map[string]*component.Descriptor
	counters map[*component.Descriptor]int
	emitted  map[*component.Descriptor]bool
	anon     int
}

func newStore() *store {
	return &store{
		id:       storeIDs.Add(1),
		tags:     make(map[string]*component.Descriptor),
		counters: make(map[*component.Descriptor]int),
		emitted:  make(map[*component.Descriptor]bool),
	}
}

func (s *store) find() *store {
	r := s
	for next := r.forward.Load(); next != nil; next = r.forward.Load() {
		r = next
	}
	return r
}

// acquire locks and returns the store s currently forwards to.
func (s *store) acquire() *store {
	for {
		r := s.find()
		r.mu.Lock()
		if r.forward.Load() == nil {
			return r
		}
		r.mu.Unlock()
	}
}

// acquirePair locks the stores a and b forward to, in id order. The
// returned stores are equal when a and b already share state.
func acquirePair(a, b *store) (*store, *store) {
	for {
		ra, rb := a.find(), b.find()
		if ra == rb {
			ra.mu.Lock()
			if ra.forward.Load() == nil {
				return ra, ra
			}
			ra.mu.Unlock()
			continue
		}
		first, second := ra, rb
		if second.id < first.id {
			first, second = second, first
		}
		first.mu.Lock()
		second.mu.Lock()
		if ra.forward.Load() == nil && rb.forward.Load() == nil {
			return ra, rb
		}
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// absorb folds o into s. Counters add up, sets and the tag map are
// unioned with entries already in s winning.
func (s *store) absorb(o *store) {
	for tag, desc := range o.tags {
		if _, ok := s.tags[tag]; !ok {
			s.tags[tag] = desc
		}
	}
	for desc, n := range o.counters {
		s.counters[desc] += n
	}
	for desc := range o.emitted {
		s.emitted[desc] = true
	}
	s.anon += o.anon
}

// Session is the unit of shared state for a group of expansions. It is
// safe for concurrent use, but numbering across concurrent renders is
// only deterministic when renders are serialized.
type Session struct {
	store *store

	mu     sync.RWMutex
	config Config
}

// New creates a session with the given presentation context.
func New(cfg Config) *Session {
	return &Session{store: newStore(), config: cfg}
}

// Config returns the presentation context.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// MergeConfig overrides presentation fields with the non-empty fields of
// cfg.
func (s *Session) MergeConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.Theme != nil {
		s.config.Theme = cfg.Theme
	}
	if cfg.I18nData != nil {
		s.config.I18nData = cfg.I18nData
	}
	if cfg.MessageResolver != nil {
		s.config.MessageResolver = cfg.MessageResolver
	}
}

// Merge folds other into s and returns s. Afterwards both sessions share
// one set of counters, so numbering continues as if every render of
// either had happened under a single session. Non-empty presentation
// fields of other win.
func (s *Session) Merge(other *Session) *Session {
	if other == nil || other == s {
		return s
	}

	a, b := acquirePair(s.store, other.store)
	if a != b {
		a.absorb(b)
		b.forward.Store(a)
		b.tags, b.counters, b.emitted = nil, nil, nil
		b.mu.Unlock()
	}
	a.mu.Unlock()

	s.MergeConfig(other.Config())
	return s
}

// Clone returns a session sharing this session's counters, sets, and tag
// map, with its own copy of the presentation context.
func (s *Session) Clone() *Session {
	return &Session{store: s.store, config: s.Config()}
}

// SharesState reports whether s and other use the same counters.
func (s *Session) SharesState(other *Session) bool {
	return s.store.find() == other.store.find()
}

// Register adds desc and its transitive dependencies to the tag map.
// Tags already present keep their descriptor. Descriptors without a
// custom element name are validated but never matched, so they stay out
// of the map.
func (s *Session) Register(desc *component.Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	var order []*component.Descriptor
	visited := make(map[*component.Descriptor]bool)
	var visit func(d *component.Descriptor, root bool) error
	visit = func(d *component.Descriptor, root bool) error {
		if visited[d] {
			return nil
		}
		visited[d] = true
		if !root {
			if err := d.Validate(); err != nil {
				return err
			}
		}
		order = append(order, d)
		for _, dep := range d.Dependencies {
			if err := visit(dep, false); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(desc, true); err != nil {
		return err
	}

	st := s.store.acquire()
	defer st.mu.Unlock()
	for _, d := range order {
		if !dom.IsCustomName(d.TagName) {
			continue
		}
		if _, ok := st.tags[d.TagName]; !ok {
			st.tags[d.TagName] = d
		}
	}
	return nil
}

// Lookup returns the descriptor registered for a custom tag.
func (s *Session) Lookup(tag string) (*component.Descriptor, bool) {
	st := s.store.acquire()
	defer st.mu.Unlock()
	d, ok := st.tags[tag]
	return d, ok
}

// Tags lists the registered tag names in sorted order.
func (s *Session) Tags() []string {
	st := s.store.acquire()
	defer st.mu.Unlock()
	out := make([]string, 0, len(st.tags))
	for tag := range st.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// NextInstance returns the instance number for a new expansion of desc.
func (s *Session) NextInstance(desc *component.Descriptor) int {
	st := s.store.acquire()
	defer st.mu.Unlock()
	n := st.counters[desc]
	st.counters[desc] = n + 1
	return n
}

// InstanceCount returns how many expansions of desc were numbered.
func (s *Session) InstanceCount(desc *component.Descriptor) int {
	st := s.store.acquire()
	defer st.mu.Unlock()
	return st.counters[desc]
}

// NextAnonymousName returns a fresh name for a descriptor without a tag.
func (s *Session) NextAnonymousName() string {
	st := s.store.acquire()
	defer st.mu.Unlock()
	n := st.anon
	st.anon++
	return AnonymousPrefix + strconv.Itoa(n)
}

// MarkTypeEmitted records that the shared stylesheets of desc were
// emitted, reporting whether this is the first time.
func (s *Session) MarkTypeEmitted(desc *component.Descriptor) bool {
	st := s.store.acquire()
	defer st.mu.Unlock()
	if st.emitted[desc] {
		return false
	}
	st.emitted[desc] = true
	return true
}

// TypeEmitted reports whether the shared stylesheets of desc were emitted.
func (s *Session) TypeEmitted(desc *component.Descriptor) bool {
	st := s.store.acquire()
	defer st.mu.Unlock()
	return st.emitted[desc]
}

// Theme implements component.Environment.
func (s *Session) Theme() interface{} {
	return s.Config().Theme
}

// I18nData returns the session's i18n data.
func (s *Session) I18nData() interface{} {
	return s.Config().I18nData
}

// Message implements component.Environment. Without a resolver the key is
// returned unchanged.
func (s *Session) Message(key string, args ...interface{}) string {
	cfg := s.Config()
	if cfg.MessageResolver == nil {
		return key
	}
	return cfg.MessageResolver(cfg.I18nData, key, args...)
}

// Snapshot is a copy of the shared state, keyed by descriptor name.
type Snapshot struct {
	Tags     []string
	Counters map[string]int
	Emitted  []string
	Anon     int
}

// Snapshot copies the shared state for inspection.
func (s *Session) Snapshot() Snapshot {
	st := s.store.acquire()
	defer st.mu.Unlock()

	snap := Snapshot{Counters: make(map[string]int, len(st.counters)), Anon: st.anon}
	for tag := range st.tags {
		snap.Tags = append(snap.Tags, tag)
	}
	for d, n := range st.counters {
		snap.Counters[d.Name()] += n
	}
	for d := range st.emitted {
		snap.Emitted = append(snap.Emitted, d.Name())
	}
	sort.Strings(snap.Tags)
	sort.Strings(snap.Emitted)
	return snap
}
