// Package consent models CMP consent categories and the gate that decides
// whether visitor tracking is currently permitted.
//
// Consent is a set of category codes granted by the user through a consent
// management platform banner. Only one code matters to visid:
// CategoryPerformance ("C0002"), the category gating non-essential tracking
// cookies. The full set is still persisted verbatim to the preference
// cookie on every consent change, so the cookie always reflects the latest
// grants.
//
// The Gate's default is opt-in: with no prior consent record, tracking is
// denied unless OptInRequired is explicitly set to false.
package consent
