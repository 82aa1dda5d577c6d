package visitor

import (
	"log/slog"

	"github.com/getvisid/visid/internal/id"
	"github.com/getvisid/visid/pkg/consent"
	"github.com/getvisid/visid/pkg/cookie"
	"github.com/getvisid/visid/pkg/logging"
)

// Manager drives the identifier lifecycle for one visitor's cookie jar.
// Not safe for concurrent use; create one per exchange (Middleware does)
// or serialize access externally.
type Manager struct {
	jar        Jar
	gate       *consent.Gate
	cookieName string
	generate   func() string
	log        *slog.Logger

	current string
}

// Jar is the cookie capability the manager needs. It is satisfied by
// cookie.Jar; aliased here so callers importing only this package can see
// the contract.
type Jar = cookie.Jar

// Option configures a Manager.
type Option func(*Manager)

// WithCookieName overrides the identifier cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) { m.cookieName = name }
}

// WithGenerator overrides the identifier generator. Used by tests to make
// generation deterministic.
func WithGenerator(gen func() string) Option {
	return func(m *Manager) { m.generate = gen }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager builds a manager over jar and gate and loads any identifier
// already present in the jar.
func NewManager(jar Jar, gate *consent.Gate, opts ...Option) *Manager {
	m := &Manager{
		jar:        jar,
		gate:       gate,
		cookieName: cookie.VisitorName,
		generate:   id.New,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if v, ok := jar.Get(m.cookieName); ok && v != "" {
		m.current = v
	}
	return m
}

// Current returns the identifier currently held, or "" if none.
func (m *Manager) Current() string {
	return m.current
}

// Ensure assigns an identifier if none is held and the gate currently
// allows tracking. It returns the identifier in effect afterwards, which
// is "" when tracking is denied.
func (m *Manager) Ensure() string {
	if m.current == "" && m.gate.Allowed(m.jar) {
		m.assign()
	}
	return m.current
}

// HandleConsentChange applies a consent-change event carrying the new full
// category set. A nil set means the event had no payload and is ignored
// entirely. Otherwise the set is always persisted to the preference
// cookie, and the identifier is created or evicted only when the
// performance grant actually flipped relative to held state.
func (m *Manager) HandleConsentChange(categories []string) {
	if categories == nil {
		return
	}
	state := consent.State(categories)
	m.gate.Record(m.jar, state)

	switch {
	case state.PerformanceGranted() && m.current == "":
		m.assign()
	case !state.PerformanceGranted() && m.current != "":
		m.evict()
	}
}

func (m *Manager) assign() {
	m.current = m.generate()
	m.jar.Set(m.cookieName, m.current)
	m.log.Debug("visitor identifier assigned", "visitorId", m.current)
}

func (m *Manager) evict() {
	m.log.Debug("visitor identifier evicted", "visitorId", m.current)
	m.current = ""
	m.jar.Delete(m.cookieName)
}
