// Package source integrates visid with an external consent management
// platform's event feed.
//
// The CMP contract is the Source interface: a single Subscribe call that
// delivers every consent-change event, carrying the new full category set,
// to the registered handler.
//
// Discovery handles the fact that a CMP is typically not reachable the
// moment visid starts. It probes on a fixed cadence for a bounded window
// and registers the handler exactly once on first success; if the window
// closes first, it gives up silently and permanently. Timing lives here so
// the gate and manager stay free of it.
//
// WSSource is the concrete feed client, reading JSON consent events over a
// websocket connection.
package source
