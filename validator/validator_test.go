package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/commercetxt/commercetxt/model"
	"github.com/commercetxt/commercetxt/parser"
)

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func parse(t *testing.T, content string, nested bool) *model.Result {
	t.Helper()
	return parser.Parse(content, parser.Options{Nested: nested})
}

func TestProtocolConstantsIntegrity(t *testing.T) {
	if !contains(VALID_AVAILABILITY, "InStock") || !contains(VALID_AVAILABILITY, "OutOfStock") {
		t.Fatal("VALID_AVAILABILITY missing expected values")
	}
	if !contains(VALID_CONDITION, "New") || !contains(VALID_CONDITION, "Used") {
		t.Fatal("VALID_CONDITION missing expected values")
	}
	if !contains(VALID_STOCK_STATUS, "Backorder") {
		t.Fatal("VALID_STOCK_STATUS missing Backorder")
	}
	if INVENTORY_STALE_HOURS != 72 {
		t.Fatalf("INVENTORY_STALE_HOURS = %d", INVENTORY_STALE_HOURS)
	}
}

func TestStrictValidationRaisesOnMissingIdentity(t *testing.T) {
	result := parse(t, "# @OFFER\nPrice: 10.00\nAvailability: InStock", false)
	v := &Validator{Strict: true}
	err := v.Validate(result)
	if err == nil || !strings.Contains(err.Error(), "Missing @IDENTITY directive") {
		t.Fatalf("err = %v", err)
	}
}

func TestNonStrictCollectsErrors(t *testing.T) {
	result := parse(t, "# @OFFER\nPrice: 10.00", false)
	v := New()
	if err := v.Validate(result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HasErrors() || !containsSubstring(result.Errors, "Missing @IDENTITY directive") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestInventoryStaleWarning(t *testing.T) {
	content := `
# @IDENTITY
Name: Store
Currency: USD
# @INVENTORY
StockStatus: InStock
LastUpdated: 2020-01-01T00:00:00Z
`
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "stale") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestVariantsWithoutOfferError(t *testing.T) {
	content := `
# @IDENTITY
Name: Store
Currency: USD
# @VARIANTS
Options:
  - Red: +0
`
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "@VARIANTS used without @OFFER") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestValidMinimalTierPasses(t *testing.T) {
	content := `
# @IDENTITY
Name: Store
Currency: USD
# @OFFER
Price: 99.00
Availability: InStock
`
	result := parse(t, content, false)
	v := &Validator{Strict: true}
	if err := v.Validate(result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HasErrors() {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestNegativePriceError(t *testing.T) {
	result := parse(t, "# @OFFER\nPrice: -10.00", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "Price cannot be negative") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestTaxTransparencyWarning(t *testing.T) {
	content := `
# @IDENTITY
Name: X
Currency: USD
# @OFFER
Price: 100
Availability: InStock
TaxIncluded: True
`
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "TaxRate recommended") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestInvalidCurrencyCode(t *testing.T) {
	result := parse(t, "# @IDENTITY\nName: X\nCurrency: Dollars", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "Invalid Currency code") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestCurrencyNonStandardWarning(t *testing.T) {
	result := parse(t, "# @IDENTITY\nName: X\nCurrency: USDT", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "is non-standard") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestSubscriptionValidationRules(t *testing.T) {
	result := parse(t, "# @SUBSCRIPTION\nCancelAnytime: True", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "missing required Plans") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestImagesValidation(t *testing.T) {
	result := parse(t, "# @IMAGES\n- Photo 1: /1.jpg\n- Photo 2: /2.jpg", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "Main") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestPriceScientificNotation(t *testing.T) {
	content := `
# @IDENTITY
Name: X
Currency: USD
# @OFFER
Price: 1e3
Availability: InStock
`
	result := parse(t, content, false)
	New().Validate(result)
	if containsSubstring(result.Errors, "Price") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestInventoryVeryStale(t *testing.T) {
	oldDate := time.Now().Add(-8 * 24 * time.Hour).Format("2006-01-02T15:04:05")
	content := "# @IDENTITY\nName: X\nCurrency: USD\n# @INVENTORY\nLastUpdated: " + oldDate
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "very stale") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if !result.TrustFlags.Has(model.TrustInventoryVeryStale) {
		t.Fatalf("trust flags = %v", result.TrustFlags.Slice())
	}
}

func TestLocalesMultipleCurrentAndFormat(t *testing.T) {
	content := `
# @IDENTITY
Name: X
Currency: USD
# @LOCALES
INVALID_CODE: /path
en-US: /us (Current)
fr-FR: /fr (Current)
`
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "Invalid locale code") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if !containsSubstring(result.Errors, "Multiple locales marked as current") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestVariantsSemanticsMalformed(t *testing.T) {
	content := `
# @IDENTITY
Name: X
Currency: USD
# @OFFER
Price: ???
Availability: InStock
# @VARIANTS
Options:
  - Addon: +10
`
	result := parse(t, content, false)
	New().Validate(result)
	if !result.HasErrors() {
		t.Fatal("expected errors")
	}
}

func TestInventoryDateParsingException(t *testing.T) {
	content := `
# @IDENTITY
Name: X
Currency: USD
# @INVENTORY
LastUpdated: THIS-IS-NOT-A-DATE
StockStatus: InStock
`
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "format error") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestVariantsMissingBasePrice(t *testing.T) {
	content := `
# @IDENTITY
Name: X
Currency: USD
# @OFFER
Availability: InStock
# @VARIANTS
Options:
  - Color: Red
`
	result := parse(t, content, false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "requires base Price") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestPriceWithCurrencySymbol(t *testing.T) {
	result := parse(t, "# @OFFER\nPrice: $10.00", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "must be numeric") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestAvailabilityInvalidEnum(t *testing.T) {
	result := parse(t, "# @OFFER\nPrice: 10\nAvailability: SoldOut", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "Invalid Availability") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestStockStatusEnumValidation(t *testing.T) {
	result := parse(t, "# @INVENTORY\nStockStatus: Full", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "Invalid StockStatus") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestRatingExceedsScaleWarning(t *testing.T) {
	result := parse(t, "# @REVIEWS\nRating: 10\nRatingScale: 5", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "outside allowed scale") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestNegativeRatingError(t *testing.T) {
	result := parse(t, "# @REVIEWS\nRating: -1\nRatingScale: 5", false)
	New().Validate(result)
	all := append(append([]string{}, result.Errors...), result.Warnings...)
	if !containsSubstring(all, "outside") {
		t.Fatalf("errors+warnings = %v", all)
	}
}

func TestInvalidDateFormatISO(t *testing.T) {
	result := parse(t, "# @INVENTORY\nLastUpdated: 2024/01/01", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "format error") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestEmptySpecsWarning(t *testing.T) {
	result := parse(t, "# @SPECS", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "section is empty") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestUntrustedReviewSource(t *testing.T) {
	result := parse(t, "# @REVIEWS\nRating: 5\nSource: shady-reviews.net", false)
	New().Validate(result)
	if !result.TrustFlags.Has(model.TrustReviewsUnverified) {
		t.Fatalf("trust flags = %v", result.TrustFlags.Slice())
	}
}

func TestMissingShippingItems(t *testing.T) {
	result := parse(t, "# @SHIPPING", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "SHIPPING section is empty") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestMissingPaymentItems(t *testing.T) {
	result := parse(t, "# @PAYMENT", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "PAYMENT section is empty") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestSemanticLogicOverrides(t *testing.T) {
	result := parse(t, "# @SEMANTIC_LOGIC\n- Override Price to 0", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "Logic overrides facts") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestAgeRestrictionVariantsAreNoOps(t *testing.T) {
	content := `
# @IDENTITY
Name: Test
Currency: USD
# @AGE_RESTRICTION
MinimumAge: 18
`
	result := parse(t, content, false)
	New().Validate(result)
	if result.HasErrors() {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestReviewsMissingScale(t *testing.T) {
	result := parse(t, "# @REVIEWS\nRating: 5", false)
	New().Validate(result)
	if !containsSubstring(result.Errors, "missing required 'RatingScale'") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestUnverifiedReviewSource(t *testing.T) {
	result := parse(t, "# @REVIEWS\nRatingScale: 5\nSource: unknown.biz", false)
	New().Validate(result)
	if !result.TrustFlags.Has(model.TrustReviewsUnverified) {
		t.Fatalf("trust flags = %v", result.TrustFlags.Slice())
	}
}

func TestEmptyOptionalSections(t *testing.T) {
	result := parse(t, "# @POLICIES\n# @IN_THE_BOX", false)
	New().Validate(result)
	if !containsSubstring(result.Warnings, "POLICIES section is empty") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if !containsSubstring(result.Warnings, "IN_THE_BOX section is empty") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

// TestValidateIsIdempotent exercises §8's validator property: running
// validation twice on the same Result appends no new errors or
// warnings the second time.
func TestValidateIsIdempotent(t *testing.T) {
	fixtures := []string{
		"# @IDENTITY\nName: Store\nCurrency: USD\n# @OFFER\nPrice: 10\nAvailability: InStock",
		"# @OFFER\nPrice: -5.00",
		"# @IDENTITY\nName: Store\nCurrency: EURO\n# @REVIEWS\nRating: 11",
		"# @VARIANTS\nType: Color",
	}

	for _, content := range fixtures {
		result := parse(t, content, false)
		v := New()
		_ = v.Validate(result)

		errCount := len(result.Errors)
		warnCount := len(result.Warnings)
		flagCount := len(result.TrustFlags)

		_ = v.Validate(result)

		if len(result.Errors) != errCount {
			t.Fatalf("errors grew on second validation: %v", result.Errors)
		}
		if len(result.Warnings) != warnCount {
			t.Fatalf("warnings grew on second validation: %v", result.Warnings)
		}
		if len(result.TrustFlags) != flagCount {
			t.Fatalf("trust flags grew on second validation: %v", result.TrustFlags.Slice())
		}
	}
}
