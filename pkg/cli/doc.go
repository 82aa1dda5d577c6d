// Package cli implements the visid command-line interface.
//
// Commands:
//
//	visid serve    — run the visitor identification server
//	visid gen      — generate visitor identifiers on stdout
//	visid decode   — show the timestamp inside an identifier
//	visid version  — print build information
package cli
