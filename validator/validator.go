// Package validator implements the CommerceTXT rule set (R1-R20): it
// enriches a parsed model.Result with errors, warnings, and trust
// flags, and can terminate early in strict mode.
package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/commercetxt/commercetxt/model"
)

// CriticalError is returned by Validate when strict mode is enabled
// and the first error is recorded. The offending message is also
// already appended to the Result's Errors slice.
type CriticalError struct {
	Msg string
}

func (e *CriticalError) Error() string { return e.Msg }

// Validator applies the rule set to a parsed Result.
type Validator struct {
	// Strict terminates validation (returning a *CriticalError) as
	// soon as the first error is recorded, instead of collecting
	// every error and warning.
	Strict bool

	// Now supplies the current time for inventory-staleness checks
	// (R11). Defaults to time.Now when nil.
	Now func() time.Time

	// TrustedDomains are registrable domains R14 additionally treats
	// as verified review sources, beyond the built-in list and the
	// document's own domain.
	TrustedDomains []string
}

// New returns a Validator with default (non-strict) settings.
func New() *Validator {
	return &Validator{}
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Validate enriches result with errors, warnings, and trust flags. In
// strict mode it stops and returns a *CriticalError as soon as the
// first error is recorded; result.Errors still carries that error
// message. In non-strict mode it always returns nil after recording
// every applicable error and warning. A message already present on
// result before the call is not appended again, so validating the
// same Result twice adds nothing the second time.
func (v *Validator) Validate(result *model.Result) error {
	prev := []int{len(result.Errors), len(result.Warnings)}
	defer func() {
		for i, msgs := range []*[]string{&result.Errors, &result.Warnings} {
			kept := (*msgs)[:prev[i]]
			for _, m := range (*msgs)[prev[i]:] {
				if !contains(kept[:prev[i]], m) {
					kept = append(kept, m)
				}
			}
			*msgs = kept
		}
	}()

	checks := []func(*model.Result) error{
		v.checkIdentity,
		v.checkVariantsCrossSection,
		v.checkOffer,
		v.checkInventory,
		v.checkReviews,
		v.checkSubscription,
		v.checkImages,
		v.checkLocales,
		v.checkEmptySections,
		v.checkSemanticLogic,
	}
	for _, check := range checks {
		if err := check(result); err != nil {
			return err
		}
	}
	return nil
}

// fail appends msg to result's errors and, in strict mode, returns a
// *CriticalError signaling the pipeline to stop.
func (v *Validator) fail(result *model.Result, msg string) error {
	result.AddError(msg)
	if v.Strict {
		return &CriticalError{Msg: msg}
	}
	return nil
}

// R1: @IDENTITY is required and must contain Name.
func (v *Validator) checkIdentity(result *model.Result) error {
	identity := result.Section("IDENTITY")
	if identity == nil {
		return v.fail(result, "Missing @IDENTITY directive")
	}
	if name, ok := identity.Get("Name"); !ok || name == "" {
		return v.fail(result, "Missing @IDENTITY directive")
	}

	// R4/R5: Currency.
	if currency, ok := identity.Get("Currency"); ok && currency != "" {
		if !isAllUpper(currency) {
			if err := v.fail(result, "Invalid Currency code"); err != nil {
				return err
			}
		} else if len(currency) != 3 {
			result.AddWarning(fmt.Sprintf("Currency code '%s' is non-standard", currency))
		}
	}
	return nil
}

// R2/R3: @VARIANTS requires @OFFER, and any option, whether or not its
// value is a "+" price addition, requires a base Price in @OFFER.
// Options materialize as a named sub-list when
// the parser runs nested, or fall through to the section's generic
// items otherwise; either way counts toward R3.
func (v *Validator) checkVariantsCrossSection(result *model.Result) error {
	variants := result.Section("VARIANTS")
	if variants == nil {
		return nil
	}
	offer := result.Section("OFFER")
	if offer == nil {
		return v.fail(result, "@VARIANTS used without @OFFER")
	}

	options, hasOptions := variants.List("Options")
	if !hasOptions {
		options, hasOptions = variants.List("items")
	}
	if hasOptions && len(options) > 0 {
		if _, ok := offer.Get("Price"); !ok {
			return v.fail(result, "@VARIANTS requires base Price in @OFFER")
		}
	}
	return nil
}

var numericRE = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// R6-R9: OFFER.
func (v *Validator) checkOffer(result *model.Result) error {
	offer := result.Section("OFFER")
	if offer == nil {
		return nil
	}

	if price, ok := offer.Get("Price"); ok && price != "" {
		if !numericRE.MatchString(price) {
			if err := v.fail(result, "Price must be numeric"); err != nil {
				return err
			}
		} else if n, err := strconv.ParseFloat(price, 64); err == nil && n < 0 {
			if err := v.fail(result, "@OFFER Price cannot be negative"); err != nil {
				return err
			}
		}
	}

	if avail, ok := offer.Get("Availability"); ok && avail != "" && !contains(VALID_AVAILABILITY, avail) {
		if err := v.fail(result, "Invalid Availability value"); err != nil {
			return err
		}
	}

	if cond, ok := offer.Get("Condition"); ok && cond != "" && !contains(VALID_CONDITION, cond) {
		if err := v.fail(result, "Invalid Condition"); err != nil {
			return err
		}
	}

	if taxIncluded, ok := offer.Get("TaxIncluded"); ok && strings.EqualFold(taxIncluded, "true") {
		if _, ok := offer.Get("TaxRate"); !ok {
			result.AddWarning("TaxRate recommended when TaxIncluded is True")
		}
	}
	return nil
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// R10/R11: INVENTORY.
func (v *Validator) checkInventory(result *model.Result) error {
	inventory := result.Section("INVENTORY")
	if inventory == nil {
		return nil
	}

	if status, ok := inventory.Get("StockStatus"); ok && status != "" && !contains(VALID_STOCK_STATUS, status) {
		if err := v.fail(result, "Invalid StockStatus"); err != nil {
			return err
		}
	}

	if lastUpdated, ok := inventory.Get("LastUpdated"); ok && lastUpdated != "" {
		t, ok := parseTimestamp(lastUpdated)
		if !ok {
			result.AddWarning("LastUpdated format error")
		} else {
			age := v.now().Sub(t)
			switch {
			case age > INVENTORY_VERY_STALE_HOURS*time.Hour:
				result.AddWarning("Inventory data is very stale")
				result.TrustFlags.Add(model.TrustInventoryStale)
				result.TrustFlags.Add(model.TrustInventoryVeryStale)
			case age > INVENTORY_STALE_HOURS*time.Hour:
				result.AddWarning("Inventory data is stale")
				result.TrustFlags.Add(model.TrustInventoryStale)
			}
		}
	}
	return nil
}

// R12-R14: REVIEWS.
func (v *Validator) checkReviews(result *model.Result) error {
	reviews := result.Section("REVIEWS")
	if reviews == nil {
		return nil
	}

	ratingScale, hasScale := reviews.Get("RatingScale")
	if !hasScaleOnly(reviews) && !hasScale {
		if err := v.fail(result, "missing required 'RatingScale'"); err != nil {
			return err
		}
	}

	if hasScale {
		if rating, ok := reviews.Get("Rating"); ok && rating != "" {
			ratingVal, err1 := strconv.ParseFloat(rating, 64)
			scaleVal, err2 := strconv.ParseFloat(ratingScale, 64)
			if err1 == nil && err2 == nil && (ratingVal < 0 || ratingVal > scaleVal) {
				result.AddWarning(fmt.Sprintf("Rating %s outside allowed scale", rating))
			}
		}
	}

	if source, ok := reviews.Get("Source"); ok && source != "" {
		if !v.isTrustedReviewDomain(source, result) {
			result.TrustFlags.Add(model.TrustReviewsUnverified)
		}
	}
	return nil
}

// hasScaleOnly reports whether the section's flat keys are limited to
// Source and RatingScale, mirroring R12's "any review attribute other
// than Source" wording: any other key, even a bare Rating, makes it
// false and so requires RatingScale.
func hasScaleOnly(s *model.Section) bool {
	if s.Flat == nil {
		return true
	}
	for pair := s.Flat.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key != "Source" && pair.Key != "RatingScale" {
			return false
		}
	}
	return true
}

func (v *Validator) isTrustedReviewDomain(source string, result *model.Result) bool {
	domain := registrableDomain(source)
	if domain == "" {
		return true
	}
	if contains(trustedReviewDomains, domain) {
		return true
	}
	if contains(v.TrustedDomains, domain) {
		return true
	}
	if own := registrableDomain(result.SourcePath); own != "" && own == domain {
		return true
	}
	return false
}

// registrableDomain extracts the last two dot-separated labels from a
// URL or bare host string. It is a simplification of full public-suffix
// matching, sufficient for the small set of domains this rule compares.
func registrableDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil {
			host = u.Hostname()
		}
	} else if idx := strings.IndexAny(raw, "/ "); idx >= 0 {
		host = raw[:idx]
	}
	host = strings.ToLower(host)
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// R15: SUBSCRIPTION.
func (v *Validator) checkSubscription(result *model.Result) error {
	sub := result.Section("SUBSCRIPTION")
	if sub == nil {
		return nil
	}
	plans, ok := sub.List("Plans")
	if !ok {
		plans, ok = sub.List("items")
	}
	if !ok || len(plans) == 0 {
		return v.fail(result, "SUBSCRIPTION missing required Plans")
	}
	return nil
}

// R16: IMAGES.
func (v *Validator) checkImages(result *model.Result) error {
	images := result.Section("IMAGES")
	if images == nil {
		return nil
	}
	items, _ := images.List("items")
	for _, item := range items {
		if item.Name == "Main" {
			return nil
		}
	}
	result.AddWarning("IMAGES section has no Main image")
	return nil
}

var localeCodeRE = regexp.MustCompile(`^[a-z]{2,3}(-[A-Z]{2})?$`)

// R17/R18: LOCALES.
func (v *Validator) checkLocales(result *model.Result) error {
	locales := result.Section("LOCALES")
	if locales == nil {
		return nil
	}

	currentCount := 0

	checkCode := func(code, annotation string) {
		if !localeCodeRE.MatchString(code) {
			result.AddWarning("Invalid locale code")
		}
		if strings.Contains(annotation, "(Current)") {
			currentCount++
		}
	}

	if locales.Flat != nil {
		for pair := locales.Flat.Oldest(); pair != nil; pair = pair.Next() {
			checkCode(pair.Key, pair.Value)
		}
	}
	items, _ := locales.List("items")
	for _, item := range items {
		checkCode(item.Name, item.Path)
	}

	if currentCount > 1 {
		if err := v.fail(result, "Multiple locales marked as current"); err != nil {
			return err
		}
	}
	return nil
}

var emptyCheckedSections = []string{"SPECS", "SHIPPING", "PAYMENT", "POLICIES", "IN_THE_BOX"}

// R19: empty-section rules.
func (v *Validator) checkEmptySections(result *model.Result) error {
	for _, name := range emptyCheckedSections {
		section := result.Section(name)
		if section != nil && section.IsEmpty() {
			result.AddWarning(fmt.Sprintf("%s section is empty", name))
		}
	}
	return nil
}

// mentionsOverride reports whether text reads as an "Override ... Price"
// or "Override ... Availability" instruction (R20), case-insensitive
// and independent of what falls between the two words.
func mentionsOverride(text string) bool {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "override")
	if idx < 0 {
		return false
	}
	rest := lower[idx+len("override"):]
	return strings.Contains(rest, "price") || strings.Contains(rest, "availability")
}

// R20: SEMANTIC_LOGIC.
func (v *Validator) checkSemanticLogic(result *model.Result) error {
	logic := result.Section("SEMANTIC_LOGIC")
	if logic == nil {
		return nil
	}
	items, _ := logic.List("items")
	for _, item := range items {
		if mentionsOverride(item.Name) || mentionsOverride(item.Path) {
			result.AddWarning("Logic overrides facts")
			return nil
		}
	}
	return nil
}

// isAllUpper reports whether s is non-empty and consists solely of
// uppercase ASCII letters. A currency code failing this check (e.g.
// mixed case, digits, symbols) is R4's "non-letter content"; one that
// passes but isn't exactly 3 letters is R5's "non-standard" warning.
func isAllUpper(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
