// Package header implements the case-insensitive, multi-valued header store
// shared by requests and responses.
package header

import (
	"net/http"
	"sort"
	"strings"
)

// Field is a single named header with one or more values, used to build a Store
// with a deterministic key order.
type Field struct {
	Name   string
	Values []string
}

// Store maps lowercased header names to ordered value lists.
//
// A Store is immutable: the With* methods return a modified copy and never touch
// the receiver. The zero value is an empty store.
type Store struct {
	names  []string
	values map[string][]string
}

// New builds a Store from fields in order. Names are lowercased; when two fields
// fold to the same name the later one replaces the earlier values (overwrite, not
// merge) while the name keeps its first position.
func New(fields ...Field) Store {
	s := Store{values: make(map[string][]string, len(fields))}
	for _, f := range fields {
		key := strings.ToLower(f.Name)
		if _, ok := s.values[key]; !ok {
			s.names = append(s.names, key)
		}
		s.values[key] = copyValues(f.Values)
	}
	return s
}

// FromMap builds a Store from an unordered map. Keys are visited in sorted order
// so that case-fold collisions resolve the same way on every run.
func FromMap(m map[string][]string) Store {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Name: k, Values: m[k]})
	}
	return New(fields...)
}

// FromHTTP builds a Store from a net/http header map.
func FromHTTP(h http.Header) Store {
	return FromMap(h)
}

// Get returns a copy of the values stored for name, or nil.
func (s Store) Get(name string) []string {
	return copyValues(s.values[strings.ToLower(name)])
}

// Line returns the values for name joined with ", ".
func (s Store) Line(name string) string {
	return strings.Join(s.values[strings.ToLower(name)], ", ")
}

// Has reports whether name is present, ignoring case.
func (s Store) Has(name string) bool {
	_, ok := s.values[strings.ToLower(name)]
	return ok
}

// Contains reports whether value is stored verbatim under name.
func (s Store) Contains(name, value string) bool {
	for _, v := range s.values[strings.ToLower(name)] {
		if v == value {
			return true
		}
	}
	return false
}

// Len returns the number of distinct header names.
func (s Store) Len() int {
	return len(s.names)
}

// Names returns the stored (lowercased) names in insertion order.
func (s Store) Names() []string {
	return copyValues(s.names)
}

// All returns a deep copy of the store as a map.
func (s Store) All() map[string][]string {
	out := make(map[string][]string, len(s.names))
	for _, name := range s.names {
		out[name] = copyValues(s.values[name])
	}
	return out
}

// Flat renders one "name: value" string per stored value, in insertion order.
func (s Store) Flat() []string {
	var out []string
	for _, name := range s.names {
		for _, v := range s.values[name] {
			out = append(out, name+": "+v)
		}
	}
	return out
}

// With returns a copy of s where name holds exactly values. With no values it
// behaves like Without.
func (s Store) With(name string, values ...string) Store {
	if len(values) == 0 {
		return s.Without(name)
	}
	c := s.Clone()
	key := strings.ToLower(name)
	if _, ok := c.values[key]; !ok {
		c.names = append(c.names, key)
	}
	c.values[key] = copyValues(values)
	return c
}

// WithAdded returns a copy of s with values appended to the tail of name.
// Adding no values leaves name untouched.
func (s Store) WithAdded(name string, values ...string) Store {
	c := s.Clone()
	if len(values) == 0 {
		return c
	}
	key := strings.ToLower(name)
	existing, ok := c.values[key]
	if !ok {
		c.names = append(c.names, key)
	}
	c.values[key] = append(existing, values...)
	return c
}

// Without returns a copy of s with name removed.
func (s Store) Without(name string) Store {
	key := strings.ToLower(name)
	if _, ok := s.values[key]; !ok {
		return s.Clone()
	}

	c := Store{values: make(map[string][]string, len(s.values))}
	for _, n := range s.names {
		if n == key {
			continue
		}
		c.names = append(c.names, n)
		c.values[n] = copyValues(s.values[n])
	}
	return c
}

// Clone returns a deep copy of s.
func (s Store) Clone() Store {
	c := Store{
		names:  copyValues(s.names),
		values: make(map[string][]string, len(s.values)),
	}
	for k, v := range s.values {
		c.values[k] = copyValues(v)
	}
	return c
}

func copyValues(v []string) []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
