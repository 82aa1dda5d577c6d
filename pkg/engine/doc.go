// Package engine provides the visid HTTP server.
//
// The server wraps every request in the visitor middleware, so any
// endpoint it serves participates in identifier assignment. On top of
// that it exposes:
//
//	GET  /healthz  — liveness and uptime
//	GET  /visitor  — the requesting visitor's identifier and consent state
//	POST /consent  — a consent-change event for the requesting visitor,
//	                 as posted by a CMP banner callback
//
// When a consent feed URL is configured, the engine also runs source
// discovery in the background and mirrors feed events into a
// process-local visitor state, exposed at GET /state. That mode exists
// for headless and test deployments where consent changes arrive over
// the feed rather than per-request.
package engine
