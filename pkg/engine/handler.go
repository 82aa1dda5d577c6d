package engine

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/getvisid/visid/pkg/consent"
	"github.com/getvisid/visid/pkg/cookie"
	"github.com/getvisid/visid/pkg/httputil"
	"github.com/getvisid/visid/pkg/visitor"
)

// consentChangeRequest is the body a CMP banner posts on consent change.
// Categories stays nil when the field is absent, which is treated as a
// payload-less event and ignored.
type consentChangeRequest struct {
	Categories []string `json:"categories"`
}

type visitorResponse struct {
	VisitorID  string   `json:"visitorId,omitempty"`
	Tracked    bool     `json:"tracked"`
	Categories []string `json:"categories,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteMethodNotAllowed(w)
		return
	}
	httputil.WriteOK(w, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int(s.Uptime().Seconds()),
	})
}

// handleVisitor reports the requesting visitor's identifier and recorded
// consent, as assigned by the middleware for this exchange.
func (s *Server) handleVisitor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteMethodNotAllowed(w)
		return
	}
	m, ok := visitor.ManagerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "no_manager", "visitor middleware not active")
		return
	}
	httputil.WriteOK(w, s.snapshot(m, s.requestState(r)))
}

// handleConsent applies a consent-change event to the requesting
// visitor's cookies. The response carries the resulting state so banner
// callbacks can confirm the outcome.
func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteMethodNotAllowed(w)
		return
	}
	m, ok := visitor.ManagerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "no_manager", "visitor middleware not active")
		return
	}

	var req consentChangeRequest
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_body", "request body must be JSON")
		return
	}

	m.HandleConsentChange(req.Categories)
	httputil.WriteOK(w, s.snapshot(m, consent.State(req.Categories)))
}

// handleState reports the feed-driven local visitor state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteMethodNotAllowed(w)
		return
	}
	s.localMu.Lock()
	defer s.localMu.Unlock()
	resp := visitorResponse{
		VisitorID: s.local.Current(),
		Tracked:   s.local.Current() != "",
	}
	if v, ok := s.localJar.Get(s.prefCookieName()); ok {
		resp.Categories = consent.ParseState(v)
	}
	httputil.WriteOK(w, resp)
}

// requestState reads the consent categories recorded in the request's
// preference cookie, or nil when none were recorded.
func (s *Server) requestState(r *http.Request) consent.State {
	v, ok := cookie.GetFromHeader(r.Header.Get("Cookie"), s.prefCookieName())
	if !ok {
		return nil
	}
	return consent.ParseState(v)
}

func (s *Server) prefCookieName() string {
	if s.cfg.PreferencesCookie != "" {
		return s.cfg.PreferencesCookie
	}
	return cookie.PreferencesName
}

func (s *Server) snapshot(m *visitor.Manager, state consent.State) visitorResponse {
	return visitorResponse{
		VisitorID:  m.Current(),
		Tracked:    m.Current() != "",
		Categories: state,
	}
}
