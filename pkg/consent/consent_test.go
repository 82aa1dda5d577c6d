package consent

import (
	"reflect"
	"testing"

	"github.com/getvisid/visid/pkg/cookie"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  State
	}{
		{"empty", "", State{}},
		{"single", "C0002", State{"C0002"}},
		{"multiple", "C0001,C0002,C0004", State{"C0001", "C0002", "C0004"}},
		{"preserves order", "C0004,C0002", State{"C0004", "C0002"}},
		{"spaces trimmed", "C0001, C0002", State{"C0001", "C0002"}},
		{"stray commas", "C0001,,C0002,", State{"C0001", "C0002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseState(tt.value); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseState(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestState_Encode(t *testing.T) {
	if got := (State{"C0002", "C0003"}).Encode(); got != "C0002,C0003" {
		t.Errorf("Encode() = %q, want C0002,C0003", got)
	}
	if got := (State{}).Encode(); got != "" {
		t.Errorf("Encode() of empty state = %q, want empty", got)
	}
}

func TestState_PerformanceGranted(t *testing.T) {
	if !(State{"C0001", "C0002"}).PerformanceGranted() {
		t.Error("PerformanceGranted() = false with C0002 present, want true")
	}
	if (State{"C0001", "C0003"}).PerformanceGranted() {
		t.Error("PerformanceGranted() = true without C0002, want false")
	}
}

func boolPtr(b bool) *bool { return &b }

func TestGate_Allowed_NoCookie(t *testing.T) {
	tests := []struct {
		name          string
		optInRequired *bool
		want          bool
	}{
		{"default opt-in required", nil, false},
		{"explicit opt-in required", boolPtr(true), false},
		{"opt-in not required", boolPtr(false), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Gate{OptInRequired: tt.optInRequired}
			if got := g.Allowed(cookie.NewMemoryJar()); got != tt.want {
				t.Errorf("Allowed() with no preference cookie = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_Allowed_CookiePresent(t *testing.T) {
	// A recorded preference wins over the opt-in default in both directions.
	for _, optIn := range []*bool{nil, boolPtr(true), boolPtr(false)} {
		g := &Gate{OptInRequired: optIn}

		jar := cookie.NewMemoryJar()
		jar.Set(cookie.PreferencesName, "C0002,C0003")
		if !g.Allowed(jar) {
			t.Errorf("Allowed() with C0002 recorded = false, want true (optIn=%v)", optIn)
		}

		jar.Set(cookie.PreferencesName, "C0001,C0003")
		if g.Allowed(jar) {
			t.Errorf("Allowed() without C0002 recorded = true, want false (optIn=%v)", optIn)
		}

		// Present-but-empty means everything revoked, not absence.
		jar.Set(cookie.PreferencesName, "")
		if g.Allowed(jar) {
			t.Errorf("Allowed() with empty preference value = true, want false (optIn=%v)", optIn)
		}
	}
}

func TestGate_Record(t *testing.T) {
	g := &Gate{}
	jar := cookie.NewMemoryJar()

	g.Record(jar, State{"C0001", "C0002"})
	if got, _ := jar.Get(cookie.PreferencesName); got != "C0001,C0002" {
		t.Errorf("preference cookie = %q, want C0001,C0002", got)
	}

	// Recording an empty set still writes; the cookie tracks the latest set.
	g.Record(jar, State{})
	if got, ok := jar.Get(cookie.PreferencesName); !ok || got != "" {
		t.Errorf("preference cookie after empty record = (%q, %v), want (\"\", true)", got, ok)
	}
}

func TestGate_CustomCookieName(t *testing.T) {
	g := &Gate{PreferenceCookie: "prefs"}
	jar := cookie.NewMemoryJar()
	jar.Set("prefs", "C0002")
	if !g.Allowed(jar) {
		t.Error("Allowed() = false, want true reading the overridden cookie name")
	}
}
