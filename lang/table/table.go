// Package table implements the open-addressed hash table used by the
// virtual machine's two *value.String-keyed tables: globals and interned
// strings. Instance fields and class method tables (also *value.String- or
// string-keyed per spec) live as native Go maps on value.Instance/value.Class
// instead: this package imports lang/value for *value.String and
// value.Value, so the reverse dependency value -> table would be a cycle.
//
// It is a hand-written linear-probing table rather than a generic map
// because string interning and the garbage collector both need to reach
// inside it: FindString compares candidate keys by hash/length/bytes before
// a *value.String even exists, and Mark/RemoveWhite need to walk every
// live entry. Neither is expressible against a black-box map, generic or
// otherwise, which is why this table is grounded directly on
// original_source/table.c rather than on the teacher's dolthub/swiss-backed
// Map (internal/builtins uses swiss for its native registry, where none of
// that applies).
package table

import "github.com/ember-lang/ember/lang/value"

const maxLoad = 0.75

type entry struct {
	key   *value.String // nil key + Nil value = empty slot; nil key + true value = tombstone
	value value.Value
}

// Table is an open-addressed hash table keyed by interned strings, with
// linear probing and tombstone deletion.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// Count returns the number of live entries in the table (not counting
// tombstones).
func (t *Table) Count() int {
	live := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			live++
		}
	}
	return live
}

// Get returns the value stored for key, and whether key was found.
func (t *Table) Get(key *value.String) (value.Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set stores value for key, growing the table if needed. It returns true if
// this inserted a brand new key.
func (t *Table) Set(key *value.String, val value.Value) bool {
	if t.count+1 > int(float64(len(t.entries))*maxLoad) {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := t.findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.value == nil {
		// a genuinely empty slot, not a reused tombstone
		t.count++
	}

	e.key = key
	e.value = val
	return isNewKey
}

// Delete removes key from the table, leaving a tombstone behind so that
// linear probes for other keys that hashed past it still succeed.
func (t *Table) Delete(key *value.String) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true) // tombstone marker
	return true
}

// AddAll copies every live entry of from into t. Class inheritance does not
// use it: class method tables are Go maps, copied directly by OP_INHERIT.
func (t *Table) AddAll(from *Table) {
	for i := range from.entries {
		if from.entries[i].key != nil {
			t.Set(from.entries[i].key, from.entries[i].value)
		}
	}
}

// FindString looks up an interned string by its raw content, without
// needing a *value.String to compare against: this is what lets the VM
// canonicalize a freshly scanned or concatenated string before allocating
// one.
func (t *Table) FindString(chars string, hash uint32) *value.String {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.value == nil {
				return nil // truly empty slot, not a tombstone: give up
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & mask
	}
}

// RemoveWhite deletes every entry whose key is unmarked, called on the
// string-intern table after tracing so that unreachable interned strings
// are erased before sweep frees them: this makes the intern table a weak
// map with respect to the GC.
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		if t.entries[i].key != nil && !t.entries[i].key.Marked() {
			t.Delete(t.entries[i].key)
		}
	}
}

// Mark marks every live key and value in the table as a GC root, via mark.
func (t *Table) Mark(mark func(value.Value)) {
	for i := range t.entries {
		if t.entries[i].key != nil {
			mark(t.entries[i].key)
			mark(t.entries[i].value)
		}
	}
}

// findEntry returns the slot that key occupies, or the slot it should be
// inserted into: the first tombstone seen is returned only if no matching
// live key is found later in the probe sequence.
func (t *Table) findEntry(entries []entry, key *value.String) *entry {
	mask := uint32(len(entries) - 1)
	index := key.Hash & mask
	var tombstone *entry
	for {
		e := &entries[index]
		switch {
		case e.key == nil:
			if e.value == nil {
				// truly empty: stop here, reusing a tombstone if we passed one
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) & mask
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	t.count = 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue
		}
		dest := t.findEntry(entries, old.key)
		dest.key = old.key
		dest.value = old.value
		t.count++
	}
	t.entries = entries
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
