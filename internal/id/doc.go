// Package id generates visitor identifiers.
//
// This is the canonical source for visitor ID generation across the visid
// codebase. A visitor identifier is a 16-character string made of three
// fixed-width base-32 segments:
//
//   - High (9 chars): unix millisecond timestamp
//   - Mid (4 chars): server id (13 bits) packed with sub-server id (7 bits)
//   - Low (3 chars): version constant packed with a 10-bit salt
//
// The base-32 alphabet is 0-9 followed by a-v (the strconv.FormatInt base-32
// alphabet), so identifiers are lowercase alphanumeric and the timestamp
// segment sorts chronologically.
//
// Generation is pseudo-random, not cryptographic: identifiers are analytics
// handles, not secrets, and callers tolerate collisions as statistically
// negligible. Encode is the pure core, exposed so the packing can be tested
// with fixed inputs.
package id
