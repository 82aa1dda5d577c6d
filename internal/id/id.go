package id

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Segment widths. High + mid + low = 16 characters total.
const (
	highWidth = 9
	midWidth  = 4
	lowWidth  = 3

	// Length is the total length of a visitor identifier.
	Length = highWidth + midWidth + lowWidth
)

// Packing layout constants.
const (
	// subServerBits is the width of the sub-server id field inside the mid
	// segment; the server id occupies the bits above it.
	subServerBits = 7
	subServerMax  = 1 << subServerBits // 128

	// serverMax bounds the server id so the packed mid segment stays within
	// midWidth base-32 characters (13 + 7 = 20 bits = 4 characters).
	serverMax = 1 << 13

	// version is the scheme version packed into the low segment.
	version     = 1
	versionBits = 13

	// saltMax bounds the random salt in the low segment (10 bits).
	saltMax = 1 << 10
)

// New generates a visitor identifier from the current time and fresh random
// draws. It never fails; uniqueness is probabilistic, not guaranteed.
func New() string {
	return Encode(time.Now().UnixMilli(), drawServerID(), drawSubServerID(), rand.Int64N(saltMax))
}

// drawServerID draws a server id with a two-stage draw: the upper bound is
// itself randomized within the fixed band before the value is drawn below
// it. The resulting skew toward small values matches the reference ID
// scheme; do not collapse this into a single uniform draw.
func drawServerID() int64 {
	bound := 1 + rand.Int64N(serverMax-1)
	return rand.Int64N(bound)
}

// drawSubServerID draws a sub-server id with the same two-stage shape over
// the 7-bit range.
func drawSubServerID() int64 {
	bound := 1 + rand.Int64N(subServerMax-1)
	return rand.Int64N(bound)
}

// Encode packs a millisecond timestamp, server id, sub-server id, and salt
// into a 16-character identifier. Pure function; out-of-range inputs are
// masked into their fields rather than rejected.
func Encode(ms, serverID, subServerID, salt int64) string {
	serverID &= serverMax - 1
	subServerID &= subServerMax - 1
	salt &= saltMax - 1

	high := encodeSegment(ms, highWidth)
	mid := encodeSegment(serverID<<subServerBits|subServerID, midWidth)
	low := encodeSegment(version<<versionBits|salt, lowWidth)
	return high + mid + low
}

// encodeSegment renders v in base 32 left-padded with '0' to width.
func encodeSegment(v int64, width int) string {
	s := strconv.FormatInt(v, 32)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Time extracts the generation timestamp from an identifier's high segment.
func Time(id string) (time.Time, error) {
	if !IsValid(id) {
		return time.Time{}, fmt.Errorf("invalid visitor id: %q", id)
	}
	ms, err := strconv.ParseInt(id[:highWidth], 32, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid visitor id timestamp: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// IsValid reports whether s has the length and alphabet of a visitor
// identifier.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'v') {
			return false
		}
	}
	return true
}
