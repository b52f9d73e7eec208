package model

import (
	"encoding/json"
	"sort"
)

// TrustFlag is a short reliability token the validator attaches to a
// document. Using a defined type instead of a bare string keeps the
// token vocabulary centralized and typo-proof.
type TrustFlag string

const (
	// TrustInventoryStale marks inventory data older than 72 hours.
	TrustInventoryStale TrustFlag = "inventory_stale"
	// TrustInventoryVeryStale marks inventory data older than 7 days.
	TrustInventoryVeryStale TrustFlag = "inventory_very_stale"
	// TrustReviewsUnverified marks review data from an untrusted domain.
	TrustReviewsUnverified TrustFlag = "reviews_unverified"
)

// TrustFlagSet is an order-free set of TrustFlags.
type TrustFlagSet map[TrustFlag]struct{}

// NewTrustFlagSet returns an empty set.
func NewTrustFlagSet() TrustFlagSet {
	return make(TrustFlagSet)
}

// Add inserts flag into the set. Adding an existing flag is a no-op.
func (s TrustFlagSet) Add(flag TrustFlag) {
	s[flag] = struct{}{}
}

// Has reports whether flag is present.
func (s TrustFlagSet) Has(flag TrustFlag) bool {
	_, ok := s[flag]
	return ok
}

// Union returns a new set containing every flag from s and other.
func (s TrustFlagSet) Union(other TrustFlagSet) TrustFlagSet {
	out := make(TrustFlagSet, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

// Slice returns the set's members in a stable, sorted order so that
// JSON output and test assertions are deterministic.
func (s TrustFlagSet) Slice() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set as a sorted JSON array of strings.
func (s TrustFlagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}
