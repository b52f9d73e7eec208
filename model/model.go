// Package model holds the central CommerceTXT value: the parsed,
// merged, and validated document (Result) and its section shapes.
package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SectionKind distinguishes the three section shapes the protocol
// defines. Section.Kind computes it from whatever content was
// actually parsed; JSON rendering dispatches on it, while the
// validator does not and reads sections through Get and List.
type SectionKind int

const (
	// KindFlat is an ordered key/value mapping, e.g. IDENTITY.
	KindFlat SectionKind = iota
	// KindList holds only an ordered "items" sequence, e.g. SPECS.
	KindList
	// KindHybrid has one or more named list-valued keys, or flat keys
	// alongside generic items, e.g. VARIANTS (flat Type, list-valued
	// Options).
	KindHybrid
)

func (k SectionKind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindList:
		return "list"
	case KindHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Item is one entry of a list section: a "- Name: value" line, its
// optional "| Key: value" continuations, or a bare "- Name" line.
type Item struct {
	Name  string
	Path  string
	Attrs map[string]string
}

// Get returns the value for a reserved ("name", "path") or continuation
// attribute key.
func (it Item) Get(key string) (string, bool) {
	switch key {
	case "name":
		return it.Name, it.Name != ""
	case "path":
		return it.Path, it.Path != ""
	default:
		v, ok := it.Attrs[key]
		return v, ok
	}
}

// Section holds one directive's data. It is a tagged variant over the
// three shapes described in the protocol's data model (§3): Flat and
// Items/Lists are populated according to what the source document
// actually contained, and Kind() classifies the result on demand
// rather than being fixed at construction — a section's shape is only
// fully known once parsing reaches its last line.
type Section struct {
	// Flat holds ordered key/value pairs declared directly in the
	// section.
	Flat *orderedmap.OrderedMap[string, string]

	// Items holds the section's generic, top-level "items" list: every
	// "- Name: value" line that was not attributed to a named
	// sub-list.
	Items []Item

	// Lists holds named list-valued keys opened by a bare "Key:" line
	// while the parser runs with nesting enabled (e.g. VARIANTS'
	// "Options").
	Lists map[string][]Item
}

// NewSection returns an empty section ready for the parser to fill in.
func NewSection() *Section {
	return &Section{
		Flat:  orderedmap.New[string, string](),
		Lists: map[string][]Item{},
	}
}

// Kind classifies the section's current shape for rendering.
func (s *Section) Kind() SectionKind {
	if s == nil {
		return KindFlat
	}
	hasFlat := s.Flat != nil && s.Flat.Len() > 0
	hasLists := len(s.Lists) > 0
	hasItems := len(s.Items) > 0
	switch {
	case hasLists || (hasFlat && hasItems):
		return KindHybrid
	case hasItems && !hasFlat:
		return KindList
	default:
		return KindFlat
	}
}

// Get returns a flat value by key.
func (s *Section) Get(key string) (string, bool) {
	if s == nil || s.Flat == nil {
		return "", false
	}
	return s.Flat.Get(key)
}

// List returns the list bound to key. "items" addresses the section's
// generic Items list; any other key addresses a named sub-list in
// Lists.
func (s *Section) List(key string) ([]Item, bool) {
	if s == nil {
		return nil, false
	}
	if key == "items" {
		return s.Items, len(s.Items) > 0
	}
	if s.Lists == nil {
		return nil, false
	}
	items, ok := s.Lists[key]
	return items, ok
}

// IsEmpty reports whether the section carries no data at all, used by
// the empty-section validator rules (R19).
func (s *Section) IsEmpty() bool {
	if s == nil {
		return true
	}
	if s.Flat != nil && s.Flat.Len() > 0 {
		return false
	}
	if len(s.Items) > 0 {
		return false
	}
	for _, items := range s.Lists {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// FlatLen returns the number of flat keys (0 for a pure list section).
func (s *Section) FlatLen() int {
	if s == nil || s.Flat == nil {
		return 0
	}
	return s.Flat.Len()
}

// Result is the central CommerceTXT value (spec: ParseResult): a
// document's directives plus the accumulated errors, warnings, and
// trust flags from every pipeline stage that has touched it.
type Result struct {
	// Version is the optional @VERSION directive value.
	Version string

	// Directives maps uppercase section name to its parsed Section,
	// preserving the order sections were first declared in.
	Directives *orderedmap.OrderedMap[string, *Section]

	// Errors is the ordered, append-only sequence of error strings.
	Errors []string

	// Warnings is the ordered, append-only sequence of warning strings.
	Warnings []string

	// TrustFlags is the set of short reliability tokens attached by the
	// validator.
	TrustFlags TrustFlagSet

	// SourcePath is the document's origin, used by the resolver for
	// locale relativization. Empty when unknown.
	SourcePath string
}

// New returns an empty Result ready for the parser to populate.
func New() *Result {
	return &Result{
		Directives: orderedmap.New[string, *Section](),
		TrustFlags: NewTrustFlagSet(),
	}
}

// AddError appends an error string. Errors are never rewritten once
// appended.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning appends a warning string. Warnings are never rewritten
// once appended.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Section returns the named section, or nil if the document has none.
func (r *Result) Section(name string) *Section {
	if r == nil || r.Directives == nil {
		return nil
	}
	s, _ := r.Directives.Get(name)
	return s
}

// HasErrors reports whether any error has been recorded.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports whether any warning has been recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Status summarizes the document per the CLI's VALID/WARN/INVALID
// contract.
func (r *Result) Status() string {
	switch {
	case r.HasErrors():
		return "INVALID"
	case r.HasWarnings():
		return "WARN"
	default:
		return "VALID"
	}
}
