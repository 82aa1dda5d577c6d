// Package config defines visid's configuration and its file loader.
//
// Configuration can come from a YAML or JSON file (auto-detected by
// extension), from CLI flags layered on top, or from Default() alone —
// visid runs fine with no file at all.
//
// The one setting with subtle semantics is optInRequired: it is a
// *bool so that "never set" can be told apart from an explicit false.
// Unset or true means a visitor with no recorded consent is not tracked;
// false flips that default to allowed.
package config
