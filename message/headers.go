package message

import "strings"

// Field is a single received header line.
type Field struct{ Name, Value string }

// Headers is an ordered multi-map of header fields.
// Lookups are case-insensitive. Duplicate names are preserved in arrival
// order, which matters for fields like Set-Cookie where every occurrence
// carries its own value.
type Headers struct {
	fields []Field
}

func NewHeaders(initial map[string][]string) Headers {
	h := Headers{}
	for k, values := range initial {
		for _, v := range values {
			h.Add(k, v)
		}
	}
	return h
}

// Add appends a field, keeping arrival order.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: canonical(name), Value: value})
}

// Get assumes the field is a singleton field.
// Even if name has multiple values, it will only return the first one.
// For list-based fields, use [Headers.Values].
func (h *Headers) Get(name string) (value string, ok bool) {
	name = canonical(name)
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns all values recorded for name, in arrival order.
func (h *Headers) Values(name string) (values []string, ok bool) {
	name = canonical(name)
	for _, f := range h.fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values, len(values) > 0
}

// Set assumes the field is a singleton field.
// It overwrites existing values instead of appending to them.
// For list-based fields, use [Headers.Add].
func (h *Headers) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

func (h *Headers) Del(name string) {
	name = canonical(name)
	kept := h.fields[:0]
	for _, f := range h.fields {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

func (h *Headers) Len() uint { return uint(len(h.fields)) }

// Fields returns an ordered snapshot of all fields.
func (h *Headers) Fields() []Field {
	clone := make([]Field, len(h.fields))
	copy(clone, h.fields)
	return clone
}

// Subset returns a new Headers holding only the fields whose name matches
// one of names, preserving arrival order. Used to carry cookies across a
// redirect hop while everything else from the superseded response is
// dropped.
func (h *Headers) Subset(names ...string) Headers {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[canonical(n)] = struct{}{}
	}

	sub := Headers{}
	for _, f := range h.fields {
		if _, ok := want[f.Name]; ok {
			sub.fields = append(sub.fields, f)
		}
	}
	return sub
}

func (h *Headers) Clone() Headers {
	return Headers{fields: h.Fields()}
}

func canonical(s string) string {
	if !isValidToken(s) {
		return s
	}
	return toCanonicalFieldName(s)
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func isValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		// ALPHA
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			continue
		}
		// DIGIT
		if '0' <= c && c <= '9' {
			continue
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}

		return false
	}

	return true
}

// This only works for valid tokens.
func toCanonicalFieldName(s string) string {
	const capitalDiff = 'a' - 'A'
	b := []byte(s)
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			c -= capitalDiff
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += capitalDiff
		}
		b[i] = c
		upper = c == '-'
	}
	return string(b)
}

// CookieValue extracts the cookie named key from the Set-Cookie fields and
// returns it as "key=value", or "" if no such cookie was received.
func (h *Headers) CookieValue(key string) string {
	cookies, ok := h.Values("Set-Cookie")
	if !ok {
		return ""
	}

	for _, cookie := range cookies {
		// Only the first attribute names the cookie.
		pair, _, _ := strings.Cut(cookie, ";")
		name, _, found := strings.Cut(pair, "=")
		if found && strings.TrimSpace(name) == key {
			return strings.TrimSpace(pair)
		}
	}
	return ""
}
