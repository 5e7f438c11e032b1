package bind

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AnatoleLucet/bind/internal"
	"github.com/AnatoleLucet/bind/loop"
	"github.com/AnatoleLucet/bind/widget"
)

// Manager owns a set of bindings and runs batch operations over them.
// Like bindings, it must only be used from the UI goroutine.
type Manager struct {
	entries map[string]*entry
	order   []string
	ids     map[PropertyBinding]string

	mode     UpdateMode
	debounce time.Duration

	scheduler loop.Scheduler
	log       *slog.Logger
	batcher   *internal.Batcher

	requested bool
	closed    bool

	monitoring bool
	batches    uint64
	metrics    *metrics

	added          *internal.Source
	removed        *internal.Source
	batchStarted   *internal.Source
	batchCompleted *internal.Source
}

type entry struct {
	id      string
	binding PropertyBinding

	updates  uint64
	failures uint64
	elapsed  time.Duration
}

type managerSettings struct {
	scheduler  loop.Scheduler
	log        *slog.Logger
	registerer prometheus.Registerer
	config     *Config
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerSettings)

// WithManagerLogger sets the logger of the manager and of bindings created InManager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(s *managerSettings) { s.log = l }
}

// WithManagerScheduler sets the scheduler used by RequestUpdateAll and by bindings created InManager.
func WithManagerScheduler(sched loop.Scheduler) ManagerOption {
	return func(s *managerSettings) { s.scheduler = sched }
}

// WithRegisterer registers the manager's metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) ManagerOption {
	return func(s *managerSettings) { s.registerer = reg }
}

// WithConfig applies the global update mode, debounce interval and monitoring flag of cfg.
func WithConfig(cfg Config) ManagerOption {
	return func(s *managerSettings) { s.config = &cfg }
}

func NewManager(opts ...ManagerOption) *Manager {
	s := &managerSettings{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.scheduler == nil {
		s.scheduler = loop.Current()
	}
	if s.log == nil {
		s.log = logger()
	}

	m := &Manager{
		entries: make(map[string]*entry),
		ids:     make(map[PropertyBinding]string),

		mode:     Immediate,
		debounce: MinDebounce,

		scheduler: s.scheduler,
		log:       s.log,
		batcher:   internal.NewBatcher(),
		metrics:   newMetrics(s.registerer),

		added:          internal.NewSource(nil),
		removed:        internal.NewSource(nil),
		batchStarted:   internal.NewSource(nil),
		batchCompleted: internal.NewSource(nil),
	}

	if cfg := s.config; cfg != nil {
		m.mode = cfg.Mode()
		m.debounce = debounceInterval(cfg.Debounce)
		m.monitoring = cfg.PerformanceMonitoring
	}

	for _, src := range []*internal.Source{m.added, m.removed, m.batchStarted, m.batchCompleted} {
		src.OnPanic = func(r any) {
			m.log.Warn("manager event handler panicked", "panic", r)
		}
	}

	return m
}

// Add stores b and returns its id. Adding a binding twice returns the id it already has.
func (m *Manager) Add(b PropertyBinding) string {
	if b == nil || m.closed {
		return ""
	}
	if id, ok := m.ids[b]; ok {
		return id
	}

	e := &entry{id: uuid.NewString(), binding: b}
	m.entries[e.id] = e
	m.order = append(m.order, e.id)
	m.ids[b] = e.id

	if o, ok := b.(interface{ observe(func(updateEvent)) }); ok {
		o.observe(func(ev updateEvent) { m.record(e, ev) })
	}

	m.metrics.bindings.Set(float64(len(m.entries)))
	m.log.Debug("binding added", "id", e.id, "source", b.SourcePath(), "target", b.TargetPath())
	m.added.Notify(e.id)

	return e.id
}

// Remove disconnects and forgets the binding with the given id.
// It reports whether the id was known.
func (m *Manager) Remove(id string) bool {
	e, ok := m.entries[id]
	if !ok {
		return false
	}

	delete(m.entries, id)
	delete(m.ids, e.binding)
	m.order = slices.DeleteFunc(m.order, func(other string) bool { return other == id })

	if o, ok := e.binding.(interface{ observe(func(updateEvent)) }); ok {
		o.observe(nil)
	}
	e.binding.Disconnect()

	m.metrics.bindings.Set(float64(len(m.entries)))
	m.log.Debug("binding removed", "id", id)
	m.removed.Notify(id)

	return true
}

func (m *Manager) RemoveAll() {
	for _, id := range slices.Clone(m.order) {
		m.Remove(id)
	}
}

// UpdateAll calls Update on every binding between the batch started and batch
// completed events. A nested call made while the batch runs is ignored.
func (m *Manager) UpdateAll() {
	ran := m.batcher.Exclusive(
		func() {
			for _, e := range m.snapshot() {
				m.update(e)
			}
		},
		func() { m.batchStarted.Notify(nil) },
		func() {
			m.batches++
			m.metrics.batches.Inc()
			m.batchCompleted.Notify(nil)
		},
	)

	if !ran {
		m.log.Debug("nested UpdateAll ignored")
	}
}

func (m *Manager) update(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("binding update panicked", "id", e.id, "target", e.binding.TargetPath(), "panic", r)
		}
	}()

	e.binding.Update()
}

// RequestUpdateAll schedules one UpdateAll for the next loop turn.
// Requests made before it runs are coalesced.
func (m *Manager) RequestUpdateAll() {
	if m.requested || m.closed {
		return
	}
	m.requested = true

	m.scheduler.Post(func() {
		m.requested = false
		if !m.closed {
			m.UpdateAll()
		}
	})
}

func (m *Manager) IsBatching() bool {
	return m.batcher.IsBatching()
}

func (m *Manager) EnableAll() {
	for _, e := range m.snapshot() {
		e.binding.SetEnabled(true)
	}
}

func (m *Manager) DisableAll() {
	for _, e := range m.snapshot() {
		e.binding.SetEnabled(false)
	}
}

// BindingsForWidget returns the bindings targeting w, in insertion order.
func (m *Manager) BindingsForWidget(w widget.Widget) []PropertyBinding {
	if isNil(w) {
		return nil
	}

	var out []PropertyBinding
	for _, e := range m.snapshot() {
		if e.binding.Target().Is(w) {
			out = append(out, e.binding)
		}
	}
	return out
}

// SetGlobalUpdateMode sets the mode of bindings created InManager from now on.
// Existing bindings keep theirs.
func (m *Manager) SetGlobalUpdateMode(mode UpdateMode) {
	m.mode = mode
}

func (m *Manager) GlobalUpdateMode() UpdateMode {
	return m.mode
}

// SetGlobalDebounceInterval sets the debounce interval of bindings created InManager from now on.
func (m *Manager) SetGlobalDebounceInterval(d time.Duration) {
	m.debounce = debounceInterval(d)
}

func (m *Manager) GlobalDebounceInterval() time.Duration {
	return m.debounce
}

func (m *Manager) EnablePerformanceMonitoring(enabled bool) {
	m.monitoring = enabled
}

func (m *Manager) PerformanceMonitoring() bool {
	return m.monitoring
}

func (m *Manager) record(e *entry, ev updateEvent) {
	if !m.monitoring {
		return
	}

	e.elapsed += ev.duration
	if ev.err != nil {
		e.failures++
	} else {
		e.updates++
	}
	m.metrics.observe(ev)
}

// PerformanceReport describes every binding and the updates observed while monitoring was on.
func (m *Manager) PerformanceReport() string {
	if !m.monitoring {
		return "Performance monitoring is disabled"
	}

	var sb strings.Builder
	sb.WriteString("Binding Performance Report\n")
	sb.WriteString("==========================\n")
	fmt.Fprintf(&sb, "Total bindings: %d\n", len(m.entries))
	fmt.Fprintf(&sb, "Batches: %d\n", m.batches)

	for _, e := range m.snapshot() {
		b := e.binding

		var avg time.Duration
		if n := e.updates + e.failures; n > 0 {
			avg = e.elapsed / time.Duration(n)
		}

		fmt.Fprintf(&sb, "\n%s -> %s\n", b.SourcePath(), b.TargetPath())
		fmt.Fprintf(&sb, "  direction=%s mode=%s enabled=%t connected=%t\n", b.Direction(), b.UpdateMode(), b.IsEnabled(), b.IsConnected())
		fmt.Fprintf(&sb, "  updates=%d failures=%d avg=%s", e.updates, e.failures, avg)
		if last := b.LastUpdateTime(); !last.IsZero() {
			fmt.Fprintf(&sb, " last=%s", last.Format(time.RFC3339Nano))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Gatherer returns the registry holding the manager's metrics, or nil when
// they were registered on a Registerer that cannot be gathered.
func (m *Manager) Gatherer() prometheus.Gatherer {
	return m.metrics.gatherer
}

func (m *Manager) Count() int {
	return len(m.entries)
}

// Bindings returns the managed bindings in insertion order.
func (m *Manager) Bindings() []PropertyBinding {
	out := make([]PropertyBinding, 0, len(m.order))
	for _, e := range m.snapshot() {
		out = append(out, e.binding)
	}
	return out
}

func (m *Manager) Binding(id string) (PropertyBinding, bool) {
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return e.binding, true
}

func (m *Manager) OnAdded(fn func(id string)) (cancel func()) {
	return subscribe(m.added, func(v any) { fn(as[string](v)) })
}

func (m *Manager) OnRemoved(fn func(id string)) (cancel func()) {
	return subscribe(m.removed, func(v any) { fn(as[string](v)) })
}

func (m *Manager) OnBatchStarted(fn func()) (cancel func()) {
	return subscribe(m.batchStarted, func(any) { fn() })
}

func (m *Manager) OnBatchCompleted(fn func()) (cancel func()) {
	return subscribe(m.batchCompleted, func(any) { fn() })
}

// Close removes every binding and drops the event subscriptions.
func (m *Manager) Close() {
	if m.closed {
		return
	}

	m.RemoveAll()
	m.closed = true

	m.added.Close()
	m.removed.Close()
	m.batchStarted.Close()
	m.batchCompleted.Close()
}

func (m *Manager) snapshot() []*entry {
	out := make([]*entry, 0, len(m.order))
	for _, id := range m.order {
		if e, ok := m.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func subscribe(src *internal.Source, fn func(any)) func() {
	h := src.Subscribe(fn)
	return func() { src.Unsubscribe(h) }
}
