package parser

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/commercetxt/commercetxt/internal/limits"
	"github.com/commercetxt/commercetxt/model"
)

func flatGet(t *testing.T, r *model.Result, section, key string) string {
	t.Helper()
	s := r.Section(section)
	if s == nil {
		t.Fatalf("section %s not found", section)
	}
	v, ok := s.Get(key)
	if !ok {
		t.Fatalf("key %s not found in section %s", key, section)
	}
	return v
}

func TestParseFlatSection(t *testing.T) {
	content := `
# @IDENTITY
Name: Global Store
Currency: USD
`
	result := Parse(content, Options{})
	if got := flatGet(t, result, "IDENTITY", "Name"); got != "Global Store" {
		t.Fatalf("Name = %q", got)
	}
	if got := flatGet(t, result, "IDENTITY", "Currency"); got != "USD" {
		t.Fatalf("Currency = %q", got)
	}
}

func TestParseListSection(t *testing.T) {
	content := `
# @SHIPPING
- Standard: Free over $50
- Express: $15
`
	result := Parse(content, Options{})
	shipping := result.Section("SHIPPING")
	items, ok := shipping.List("items")
	if !ok || len(items) != 2 {
		t.Fatalf("items = %#v", items)
	}
	if items[0].Name != "Standard" || items[0].Path != "Free over $50" {
		t.Fatalf("items[0] = %#v", items[0])
	}
}

func TestParseBareListItem(t *testing.T) {
	content := `
# @SPECS
- CPU: M3 Max
- Waterproof
`
	result := Parse(content, Options{})
	items, _ := result.Section("SPECS").List("items")
	if items[1].Name != "Waterproof" || items[1].Path != "" {
		t.Fatalf("items[1] = %#v", items[1])
	}
}

func TestParseListItemContinuations(t *testing.T) {
	content := `
# @VARIANTS
- 128GB: 999.00 | SKU: A1
- 256GB: 1099.00 | SKU: A2
`
	result := Parse(content, Options{})
	items, _ := result.Section("VARIANTS").List("items")
	if items[0].Attrs["SKU"] != "A1" || items[1].Attrs["SKU"] != "A2" {
		t.Fatalf("items = %#v", items)
	}
}

func TestParseNestedSubList(t *testing.T) {
	content := `
# @VARIANTS
Type: Storage
Options:
  - 128GB: 999.00 | SKU: A1
  - 256GB: 1099.00 | SKU: A2
`
	result := Parse(content, Options{Nested: true})
	variants := result.Section("VARIANTS")
	if got, _ := variants.Get("Type"); got != "Storage" {
		t.Fatalf("Type = %q", got)
	}
	options, ok := variants.List("Options")
	if !ok || len(options) != 2 {
		t.Fatalf("Options = %#v", options)
	}
	if options[0].Name != "128GB" || options[0].Path != "999.00" {
		t.Fatalf("Options[0] = %#v", options[0])
	}
	if variants.Kind() != model.KindHybrid {
		t.Fatalf("Kind = %v, want hybrid", variants.Kind())
	}
}

func TestParseWithoutNestedFallsThroughToItems(t *testing.T) {
	content := `
# @VARIANTS
Options:
  - Color: Black
  - Color: Silver
`
	result := Parse(content, Options{Nested: false})
	variants := result.Section("VARIANTS")
	if got, ok := variants.Get("Options"); !ok || got != "" {
		t.Fatalf("Options flat value = %q, ok=%v", got, ok)
	}
	items, _ := variants.List("items")
	if len(items) != 2 || items[0].Name != "Color" || items[0].Path != "Black" {
		t.Fatalf("items = %#v", items)
	}
}

func TestParseVersionDirective(t *testing.T) {
	content := `
# @VERSION
Version: 1.2.0

# @IDENTITY
Name: Store
`
	result := Parse(content, Options{})
	if result.Version != "1.2.0" {
		t.Fatalf("Version = %q", result.Version)
	}
	if result.Section("VERSION") != nil {
		t.Fatal("VERSION must not be retained in directives")
	}
}

func TestParseCommentsAndBlankLinesSkipped(t *testing.T) {
	content := `
# This is a comment, not a header
# @IDENTITY
Name: Store

# another comment
Currency: USD
`
	result := Parse(content, Options{})
	if result.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if got := flatGet(t, result, "IDENTITY", "Currency"); got != "USD" {
		t.Fatalf("Currency = %q", got)
	}
}

func TestParseMalformedInputRecovery(t *testing.T) {
	content := `
# @IDENTITY
Name: Store
~~~GARBAGE LINE 1~~~
Currency: USD

# @OFFER
Invalid syntax here!!!
Price: 10.00
Availability: InStock
`
	result := Parse(content, Options{})

	if got := flatGet(t, result, "IDENTITY", "Name"); got != "Store" {
		t.Fatalf("Name = %q", got)
	}
	if got := flatGet(t, result, "IDENTITY", "Currency"); got != "USD" {
		t.Fatalf("Currency = %q", got)
	}
	if got := flatGet(t, result, "OFFER", "Price"); got != "10.00" {
		t.Fatalf("Price = %q", got)
	}
	if len(result.Warnings) < 2 {
		t.Fatalf("want at least 2 warnings, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "Unknown syntax") {
		t.Fatalf("warnings[0] = %q", result.Warnings[0])
	}
}

func TestParseUnknownSyntaxLineNumber(t *testing.T) {
	content := "# @IDENTITY\nName: Store\nthis has no colon\n"
	result := Parse(content, Options{})
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "line 3") {
		t.Fatalf("warnings[0] = %q", result.Warnings[0])
	}
}

func TestParseMaxLineLengthTruncatesAndWarns(t *testing.T) {
	longValue := strings.Repeat("x", 100)
	content := "# @IDENTITY\nName: " + longValue + "\n"

	opts := Options{Limits: limits.Limits{
		MaxLineLength:        20,
		MaxSections:          1000,
		MaxEntriesPerSection: 10000,
		MaxTotalBytes:        10 * 1024 * 1024,
	}}
	result := Parse(content, opts)
	if !result.HasWarnings() || !strings.Contains(result.Warnings[0], "exceeds maximum length") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	name, _ := result.Section("IDENTITY").Get("Name")
	if len(name) >= len(longValue) {
		t.Fatalf("Name not truncated: %q", name)
	}
}

func TestParseMaxSectionsDropsExtraSections(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		b.WriteString("# @SECTION")
		b.WriteString(string(rune('A' + i)))
		b.WriteString("\nKey: value\n")
	}
	opts := Options{Limits: limits.Limits{
		MaxLineLength:        8192,
		MaxSections:          2,
		MaxEntriesPerSection: 10000,
		MaxTotalBytes:        10 * 1024 * 1024,
	}}
	result := Parse(b.String(), opts)
	if result.Directives.Len() != 2 {
		t.Fatalf("Directives.Len() = %d, want 2", result.Directives.Len())
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "section limit exceeded") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a section-limit warning, got %v", result.Warnings)
	}
}

func TestParseMaxEntriesPerSectionDropsExtras(t *testing.T) {
	var b strings.Builder
	b.WriteString("# @SPECS\n")
	for i := 0; i < 5; i++ {
		b.WriteString("- Spec")
		b.WriteString(string(rune('A' + i)))
		b.WriteString(": value\n")
	}
	opts := Options{Limits: limits.Limits{
		MaxLineLength:        8192,
		MaxSections:          1000,
		MaxEntriesPerSection: 3,
		MaxTotalBytes:        10 * 1024 * 1024,
	}}
	result := Parse(b.String(), opts)
	items, _ := result.Section("SPECS").List("items")
	if len(items) != 3 {
		t.Fatalf("items = %#v", items)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "entry limit exceeded") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an entry-limit warning, got %v", result.Warnings)
	}
}

func TestParseDefaultLimitsAppliedWhenZeroValue(t *testing.T) {
	result := Parse("# @IDENTITY\nName: Store\n", Options{})
	if result.HasWarnings() {
		t.Fatalf("unexpected warnings with default limits: %v", result.Warnings)
	}
}

func TestParseDuplicateSectionOverwritesWithWarning(t *testing.T) {
	content := `
# @IDENTITY
Name: First Store
Currency: USD

# @IDENTITY
Name: Second Store
Currency: EUR
`
	result := Parse(content, Options{})
	if got := flatGet(t, result, "IDENTITY", "Name"); got != "Second Store" {
		t.Fatalf("Name = %q, want Second Store (last occurrence wins)", got)
	}
	if got := flatGet(t, result, "IDENTITY", "Currency"); got != "EUR" {
		t.Fatalf("Currency = %q, want EUR", got)
	}
	if !strings.Contains(strings.Join(result.Warnings, "\n"), "Duplicate section @IDENTITY") {
		t.Fatalf("expected duplicate-section warning, got %v", result.Warnings)
	}
	if result.HasErrors() {
		t.Fatalf("duplicate section should warn, not error: %v", result.Errors)
	}
}

// TestParseWarningLineNumbersNeverExceedInputLineCount exercises the
// §8 property that a recorded warning never points past the end of
// the input it was derived from.
func TestParseWarningLineNumbersNeverExceedInputLineCount(t *testing.T) {
	content := "# @IDENTITY\nName: Store\n???garbage\n# @OFFER\nPrice: 10\n"
	totalLines := strings.Count(content, "\n") + 1

	result := Parse(content, Options{})
	lineRef := regexp.MustCompile(`line (\d+)`)
	for _, w := range result.Warnings {
		m := lineRef.FindStringSubmatch(w)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			t.Fatalf("unparseable line number in warning %q", w)
		}
		if n > totalLines {
			t.Fatalf("warning %q references line %d beyond input's %d lines", w, n, totalLines)
		}
	}
}
