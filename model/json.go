package model

import (
	"encoding/json"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MarshalJSON renders an Item the way the CLI's --json output and the
// spec's §3 data model describe a list entry: a flat object carrying
// "name" and "path" (when set) plus any continuation attributes.
func (it Item) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, string]()
	if it.Name != "" {
		om.Set("name", it.Name)
	}
	if it.Path != "" {
		om.Set("path", it.Path)
	}
	keys := make([]string, 0, len(it.Attrs))
	for k := range it.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		om.Set(k, it.Attrs[k])
	}
	return json.Marshal(om)
}

// MarshalJSON renders a Section as the bare value the protocol's data
// model describes: a flat object for KindFlat, {"items": [...]} for
// KindList, or flat keys merged with "items" (when present) and the
// named list-valued keys for KindHybrid.
func (s *Section) MarshalJSON() ([]byte, error) {
	switch s.Kind() {
	case KindList:
		out := orderedmap.New[string, any]()
		out.Set("items", s.Items)
		return json.Marshal(out)
	case KindHybrid:
		out := orderedmap.New[string, any]()
		if s.Flat != nil {
			for pair := s.Flat.Oldest(); pair != nil; pair = pair.Next() {
				out.Set(pair.Key, pair.Value)
			}
		}
		if len(s.Items) > 0 {
			out.Set("items", s.Items)
		}
		keys := make([]string, 0, len(s.Lists))
		for k := range s.Lists {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, s.Lists[k])
		}
		return json.Marshal(out)
	default: // KindFlat
		if s.Flat == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(s.Flat)
	}
}

// resultJSON mirrors the CLI's documented --json shape (spec §6):
// version, directives, errors, warnings, trust_flags.
type resultJSON struct {
	Version    string                                    `json:"version"`
	Directives *orderedmap.OrderedMap[string, *Section] `json:"directives"`
	Errors     []string                                  `json:"errors"`
	Warnings   []string                                  `json:"warnings"`
	TrustFlags TrustFlagSet                               `json:"trust_flags"`
}

// MarshalJSON renders the Result as the CLI's documented --json shape.
func (r *Result) MarshalJSON() ([]byte, error) {
	directives := r.Directives
	if directives == nil {
		directives = orderedmap.New[string, *Section]()
	}
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	warns := r.Warnings
	if warns == nil {
		warns = []string{}
	}
	flags := r.TrustFlags
	if flags == nil {
		flags = NewTrustFlagSet()
	}
	return json.Marshal(resultJSON{
		Version:    r.Version,
		Directives: directives,
		Errors:     errs,
		Warnings:   warns,
		TrustFlags: flags,
	})
}
