package util

import "sort"

// StringSet is a set of strings backed by a map, following the same
// value-receiver-returns-copy convention used throughout this package.
type StringSet map[string]bool

// StringSetOf builds a StringSet containing every element of items.
func StringSetOf(items []string) StringSet {
	s := StringSet{}
	for _, it := range items {
		s[it] = true
	}
	return s
}

// Add inserts v into the set.
func (s StringSet) Add(v string) {
	s[v] = true
}

// AddAll inserts every element of vs into the set.
func (s StringSet) AddAll(vs []string) {
	for _, v := range vs {
		s[v] = true
	}
}

// Remove deletes v from the set, if present.
func (s StringSet) Remove(v string) {
	delete(s, v)
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	return s[v]
}

// Len returns the number of elements in the set.
func (s StringSet) Len() int {
	return len(s)
}

// Empty reports whether the set has no elements.
func (s StringSet) Empty() bool {
	return len(s) == 0
}

// Elements returns the set's members in unspecified order.
func (s StringSet) Elements() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// StringOrdered returns the set's members sorted ascending.
func (s StringSet) StringOrdered() []string {
	out := s.Elements()
	sort.Strings(out)
	return out
}

// Union returns a new set containing every element of s and other.
func (s StringSet) Union(other StringSet) StringSet {
	out := StringSet{}
	for k := range s {
		out[k] = true
	}
	for k := range other {
		out[k] = true
	}
	return out
}

// Intersection returns a new set containing only elements in both s and
// other.
func (s StringSet) Intersection(other StringSet) StringSet {
	out := StringSet{}
	for k := range s {
		if other.Has(k) {
			out[k] = true
		}
	}
	return out
}

// Difference returns a new set containing elements of s not in other.
func (s StringSet) Difference(other StringSet) StringSet {
	out := StringSet{}
	for k := range s {
		if !other.Has(k) {
			out[k] = true
		}
	}
	return out
}

// DisjointWith reports whether s and other share no elements.
func (s StringSet) DisjointWith(other StringSet) bool {
	for k := range s {
		if other.Has(k) {
			return false
		}
	}
	return true
}

// Equal reports whether s and other contain exactly the same elements.
func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Copy returns a set with its own backing map, independent of s.
func (s StringSet) Copy() StringSet {
	out := make(StringSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String renders the set's sorted elements in "{a, b, c}" form.
func (s StringSet) String() string {
	ordered := s.StringOrdered()
	out := "{"
	for i, v := range ordered {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out + "}"
}

// SVSet is a string-keyed set of values, used where the payload carried
// alongside membership (e.g. a symbol's attributes) matters as much as
// membership itself.
type SVSet[V any] map[string]V

// Set inserts or overwrites the value stored for k.
func (s SVSet[V]) Set(k string, v V) {
	s[k] = v
}

// Get returns the value stored for k and whether k was present.
func (s SVSet[V]) Get(k string) (V, bool) {
	v, ok := s[k]
	return v, ok
}

// Has reports whether k is in the set.
func (s SVSet[V]) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Remove deletes k from the set, if present.
func (s SVSet[V]) Remove(k string) {
	delete(s, k)
}

// Len returns the number of keys in the set.
func (s SVSet[V]) Len() int {
	return len(s)
}

// Keys returns the set's keys, sorted ascending.
func (s SVSet[V]) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Copy returns an SVSet with its own backing map, independent of s.
func (s SVSet[V]) Copy() SVSet[V] {
	out := make(SVSet[V], len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// KeySet is a set over any comparable key type E.
type KeySet[E comparable] map[E]bool

// KeySetOf builds a KeySet containing every element of items.
func KeySetOf[E comparable](items []E) KeySet[E] {
	s := KeySet[E]{}
	for _, it := range items {
		s[it] = true
	}
	return s
}

// Add inserts v into the set.
func (s KeySet[E]) Add(v E) {
	s[v] = true
}

// Has reports whether v is in the set.
func (s KeySet[E]) Has(v E) bool {
	return s[v]
}

// Remove deletes v from the set, if present.
func (s KeySet[E]) Remove(v E) {
	delete(s, v)
}

// Len returns the number of elements in the set.
func (s KeySet[E]) Len() int {
	return len(s)
}

// Elements returns the set's members in unspecified order.
func (s KeySet[E]) Elements() []E {
	out := make([]E, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// Copy returns a KeySet with its own backing map, independent of s.
func (s KeySet[E]) Copy() KeySet[E] {
	out := make(KeySet[E], len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
