// Package wifitab holds an ordered, read-only table of WiFi credentials.
//
// A [Table] is built once, usually at package initialization from code
// generated by the wifitab tool, and never changes afterwards. The order in
// which entries are declared is the order in which a connection manager
// should attempt them. Tables are safe for concurrent use.
//
// The package has no dependencies outside the standard library so it can be
// compiled with TinyGo into microcontroller firmware.
package wifitab

import "strconv"

// Table is an immutable ordered list of credentials. The zero value is an empty table.
type Table struct {
	entries []Entry
}

// IndexError is returned by [New] when an entry fails validation.
type IndexError struct {
	Index int
	Err   error
}

func (e *IndexError) Error() string {
	return "entry " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *IndexError) Unwrap() error { return e.Err }

// New returns a table holding a copy of entries in the order given.
// Every entry must have a valid SSID. Passing no entries yields an empty table.
func New(entries ...Entry) (Table, error) {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return Table{}, &IndexError{Index: i, Err: err}
		}
	}
	if len(entries) == 0 {
		return Table{}, nil
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Table{entries: cp}, nil
}

// MustNew is like [New] but panics if an entry is invalid.
// It is meant for package-level variable initialization.
func MustNew(entries ...Entry) Table {
	t, err := New(entries...)
	if err != nil {
		panic("wifitab: " + err.Error())
	}
	return t
}

// List returns all entries in declaration order. The returned slice is a
// copy and may be modified freely by the caller without affecting the table.
func (t Table) List() []Entry {
	if len(t.entries) == 0 {
		return []Entry{}
	}
	cp := make([]Entry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Len returns the number of entries.
func (t Table) Len() int { return len(t.entries) }

// IsEmpty reports whether the table has no entries.
func (t Table) IsEmpty() bool { return len(t.entries) == 0 }

// At returns the i'th entry. It panics if i is out of range.
func (t Table) At(i int) Entry { return t.entries[i] }

// Index returns the position of the first entry with the given SSID or -1.
func (t Table) Index(ssid string) int {
	for i := range t.entries {
		if t.entries[i].SSID == ssid {
			return i
		}
	}
	return -1
}

// Equal reports whether both tables hold the same entries in the same order.
func (t Table) Equal(other Table) bool {
	if len(t.entries) != len(other.entries) {
		return false
	}
	for i := range t.entries {
		if t.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}
