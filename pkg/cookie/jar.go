package cookie

import (
	"net/http"
	"sync"
	"time"
)

// ResponseJar is a Jar over one HTTP exchange: reads come from the
// request's Cookie header, writes become Set-Cookie headers on the
// response. Writes are visible to subsequent Gets on the same jar, the
// way a browser's cookie string reflects its own writes.
type ResponseJar struct {
	w      http.ResponseWriter
	header string
	scope  string

	written map[string]string
	deleted map[string]bool
}

// NewResponseJar builds a jar for one request/response pair, scoping all
// writes to .{scope}.
func NewResponseJar(w http.ResponseWriter, r *http.Request, scope string) *ResponseJar {
	return &ResponseJar{
		w:       w,
		header:  r.Header.Get("Cookie"),
		scope:   scope,
		written: make(map[string]string),
		deleted: make(map[string]bool),
	}
}

// Get implements Jar.
func (j *ResponseJar) Get(name string) (string, bool) {
	if j.deleted[name] {
		return "", false
	}
	if v, ok := j.written[name]; ok {
		return v, true
	}
	return GetFromHeader(j.header, name)
}

// Set implements Jar. The last Set or Delete for a name wins on the
// response.
func (j *ResponseJar) Set(name, value string) {
	delete(j.deleted, name)
	j.written[name] = value
	http.SetCookie(j.w, newCookie(name, value, j.scope, time.Time{}))
}

// Delete implements Jar, emitting the eviction form of the cookie.
func (j *ResponseJar) Delete(name string) {
	delete(j.written, name)
	j.deleted[name] = true
	http.SetCookie(j.w, expiredCookie(name, j.scope))
}

// MemoryJar is an in-process Jar, safe for concurrent use.
type MemoryJar struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryJar returns an empty in-memory jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{values: make(map[string]string)}
}

// Get implements Jar.
func (j *MemoryJar) Get(name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v, ok := j.values[name]
	return v, ok
}

// Set implements Jar.
func (j *MemoryJar) Set(name, value string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.values[name] = value
}

// Delete implements Jar.
func (j *MemoryJar) Delete(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.values, name)
}
