package main

import "strings"

// StringList is a small growable list of strings, the REPL's equivalent
// of the original tool's string_list_t — trivial on purpose, since the
// core scan engine never sees a command line.
type StringList struct {
	items []string
}

// Append adds a string to the end of the list.
func (l *StringList) Append(s string) {
	l.items = append(l.items, s)
}

// Len returns the number of items in the list.
func (l *StringList) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *StringList) At(i int) string { return l.items[i] }

// Items returns the underlying slice of strings.
func (l *StringList) Items() []string { return l.items }

// splitFields splits a command line on runs of whitespace, discarding
// empty fields, mirroring the original's `string_split(line, " ", false)`.
func splitFields(line string) *StringList {
	list := &StringList{}
	for _, f := range strings.Fields(line) {
		list.Append(f)
	}
	return list
}
