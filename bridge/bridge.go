// Package bridge connects a merged, validated model.Result to
// downstream AI consumers: a compact prompt (§4.5) and a readiness
// score that flags how fit the document is for LLM consumption.
package bridge

import (
	"fmt"
	"strings"

	"github.com/commercetxt/commercetxt/metrics"
	"github.com/commercetxt/commercetxt/model"
)

// Prompt renders the newline-separated AI prompt block described in
// §4.5: STORE/CURRENCY/ITEM/PRICE/AVAILABILITY are always present
// (with documented fallbacks); BUY_LINK and the stale-inventory NOTE
// are conditional.
func Prompt(doc *model.Result) string {
	identity := doc.Section("IDENTITY")
	product := doc.Section("PRODUCT")
	offer := doc.Section("OFFER")

	storeName := getOr(identity, "Name", "Unknown Store")
	currency := getOr(identity, "Currency", "USD")
	itemName := getOr(product, "Name", "Unknown Item")
	price := getOr(offer, "Price", "N/A")
	availability := getOr(offer, "Availability", "Unknown")

	lines := []string{
		fmt.Sprintf("STORE: %s", storeName),
		fmt.Sprintf("CURRENCY: %s", currency),
		fmt.Sprintf("ITEM: %s", itemName),
		fmt.Sprintf("PRICE: %s", price),
		fmt.Sprintf("AVAILABILITY: %s", availability),
	}

	buyLink, _ := getFirst(offer, "URL")
	if buyLink == "" {
		buyLink, _ = getFirst(product, "URL")
	}
	if buyLink != "" {
		lines = append(lines, fmt.Sprintf("BUY_LINK: %s", buyLink))
	}

	if doc.TrustFlags.Has(model.TrustInventoryStale) {
		lines = append(lines, "NOTE: Inventory data may be outdated")
	}

	return strings.Join(lines, "\n")
}

// Report is the readiness-score output: an integer score in [0, 100],
// a coarse letter grade, and the reasons points were deducted.
type Report struct {
	Score  int      `json:"score"`
	Grade  string   `json:"grade"`
	Issues []string `json:"issues"`
}

// Readiness computes doc's §4.5 readiness score: starts at 100,
// deducts for a missing version directive, missing core offer data,
// each recorded error, and stale inventory, then clamps at 0 and
// grades the result.
func Readiness(doc *model.Result) Report {
	score := 100
	var issues []string

	if doc.Version == "" {
		score -= 10
		issues = append(issues, "Missing version directive")
	}

	offer := doc.Section("OFFER")
	price, hasPrice := getFirst(offer, "Price")
	availability, hasAvailability := getFirst(offer, "Availability")
	if !hasPrice || price == "" || !hasAvailability || availability == "" {
		score -= 30
		issues = append(issues, "Missing core offer data (Price/Availability)")
	}

	score -= len(doc.Errors) * 20

	if doc.TrustFlags.Has(model.TrustInventoryStale) {
		score -= 15
		issues = append(issues, "Stale inventory reduces reliability")
	}

	if score < 0 {
		score = 0
	}

	report := Report{
		Score:  score,
		Grade:  grade(score),
		Issues: issues,
	}
	metrics.ReadinessScore.Set(float64(score))
	return report
}

func grade(score int) string {
	switch {
	case score > 90:
		return "A"
	case score > 70:
		return "B"
	default:
		return "C"
	}
}

func getOr(s *model.Section, key, fallback string) string {
	v, ok := getFirst(s, key)
	if !ok || v == "" {
		return fallback
	}
	return v
}

func getFirst(s *model.Section, key string) (string, bool) {
	if s == nil {
		return "", false
	}
	return s.Get(key)
}
