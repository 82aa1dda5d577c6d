package visitor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/getvisid/visid/pkg/consent"
	"github.com/getvisid/visid/pkg/cookie"
	"github.com/getvisid/visid/pkg/logging"
)

type ctxKey int

const (
	idKey ctxKey = iota
	managerKey
)

// FromContext returns the visitor identifier assigned to the request, or
// ok=false when tracking is denied and no identifier exists.
func FromContext(ctx context.Context) (string, bool) {
	v, _ := ctx.Value(idKey).(string)
	return v, v != ""
}

// ManagerFromContext returns the per-request Manager, for handlers that
// apply consent changes to the same exchange.
func ManagerFromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(managerKey).(*Manager)
	return m, ok
}

// Middleware wraps next with per-request visitor identification. Each
// exchange gets a ResponseJar scoped to the request host's root domain (or
// the fixed scope override), a Manager over it, and an Ensure pass; the
// resulting identifier and the manager itself are placed on the context.
type Middleware struct {
	next  http.Handler
	gate  *consent.Gate
	scope string // fixed override; empty derives from the request host
	opts  []Option
	log   *slog.Logger
}

// NewMiddleware builds the middleware. Manager options (cookie name,
// generator) are applied to every per-request manager.
func NewMiddleware(next http.Handler, gate *consent.Gate, scope string, log *slog.Logger, opts ...Option) *Middleware {
	if log == nil {
		log = logging.Nop()
	}
	return &Middleware{next: next, gate: gate, scope: scope, opts: opts, log: log}
}

// ServeHTTP implements http.Handler.
func (mw *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	scope := mw.scope
	if scope == "" {
		scope = cookie.ScopeFor(r.Host)
	}

	traceID := uuid.New().String()
	log := mw.log.With("traceId", traceID)

	// Fresh option slice per request; appending to mw.opts would share its
	// backing array across concurrent exchanges.
	opts := make([]Option, 0, len(mw.opts)+1)
	opts = append(opts, mw.opts...)
	opts = append(opts, WithLogger(log))

	jar := cookie.NewResponseJar(w, r, scope)
	m := NewManager(jar, mw.gate, opts...)
	visitorID := m.Ensure()
	log.Debug("visitor middleware", "host", r.Host, "scope", scope, "assigned", visitorID != "")

	ctx := context.WithValue(r.Context(), idKey, visitorID)
	ctx = context.WithValue(ctx, managerKey, m)
	mw.next.ServeHTTP(w, r.WithContext(ctx))
}
