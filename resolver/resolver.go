// Package resolver implements the two cross-document responsibilities
// the pipeline needs once a tree of CommerceTXT documents has been
// parsed: merging an ancestor into a descendant, and resolving a
// requested locale against a root document's LOCALES section.
package resolver

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/commercetxt/commercetxt/model"
	"github.com/commercetxt/commercetxt/security"
)

// Merge combines an ancestor document A and a descendant D into a new
// Result M. Sections present in only one input carry over unchanged;
// sections present in both merge key-by-key for flat maps (D
// overriding A) and concatenate for list/Lists entries, A's items
// first. version prefers D's value. errors and warnings concatenate,
// A's first; trust_flags union. Flat keys, version, and trust flags are
// idempotent under Merge (Merge(A, A) yields A's values); list entries,
// errors, and warnings are not deduplicated, so merging a document with
// itself repeats them.
func Merge(ancestor, descendant *model.Result) *model.Result {
	out := model.New()

	if ancestor != nil && ancestor.Version != "" {
		out.Version = ancestor.Version
	}
	if descendant != nil && descendant.Version != "" {
		out.Version = descendant.Version
	}

	if ancestor != nil {
		for pair := ancestor.Directives.Oldest(); pair != nil; pair = pair.Next() {
			out.Directives.Set(pair.Key, cloneSection(pair.Value))
		}
	}
	if descendant != nil {
		for pair := descendant.Directives.Oldest(); pair != nil; pair = pair.Next() {
			if existing, ok := out.Directives.Get(pair.Key); ok {
				out.Directives.Set(pair.Key, mergeSection(existing, pair.Value))
			} else {
				out.Directives.Set(pair.Key, cloneSection(pair.Value))
			}
		}
	}

	if ancestor != nil {
		out.Errors = append(out.Errors, ancestor.Errors...)
		out.Warnings = append(out.Warnings, ancestor.Warnings...)
		out.TrustFlags = out.TrustFlags.Union(ancestor.TrustFlags)
	}
	if descendant != nil {
		out.Errors = append(out.Errors, descendant.Errors...)
		out.Warnings = append(out.Warnings, descendant.Warnings...)
		out.TrustFlags = out.TrustFlags.Union(descendant.TrustFlags)
	}

	return out
}

func cloneSection(s *model.Section) *model.Section {
	out := model.NewSection()
	if s == nil {
		return out
	}
	if s.Flat != nil {
		for pair := s.Flat.Oldest(); pair != nil; pair = pair.Next() {
			out.Flat.Set(pair.Key, pair.Value)
		}
	}
	out.Items = append(out.Items, s.Items...)
	for k, items := range s.Lists {
		out.Lists[k] = append([]model.Item{}, items...)
	}
	return out
}

// mergeSection merges descendant d into a clone of ancestor a:
// descendant's flat keys win, list-bearing fields concatenate with a's
// entries first.
func mergeSection(a, d *model.Section) *model.Section {
	out := cloneSection(a)
	if d == nil {
		return out
	}
	if d.Flat != nil {
		for pair := d.Flat.Oldest(); pair != nil; pair = pair.Next() {
			out.Flat.Set(pair.Key, pair.Value)
		}
	}
	out.Items = append(out.Items, d.Items...)
	for k, items := range d.Lists {
		out.Lists[k] = append(out.Lists[k], items...)
	}
	return out
}

// ResolveLocale returns the path a requested locale should load, given
// a root document's LOCALES section, by priority: exact match, then
// language-prefix match, then the entry marked (Current), then "/".
func ResolveLocale(root *model.Result, requested string) string {
	locales := root.Section("LOCALES")
	if locales == nil {
		return "/"
	}

	entries := localeEntries(locales)

	for _, e := range entries {
		if e.code == requested {
			return e.path
		}
	}

	reqPrefix := languagePrefix(requested)
	for _, e := range entries {
		if languagePrefix(e.code) == reqPrefix {
			return e.path
		}
	}

	for _, e := range entries {
		if e.current {
			return e.path
		}
	}

	return "/"
}

type localeEntry struct {
	code    string
	path    string
	current bool
}

func localeEntries(s *model.Section) []localeEntry {
	var out []localeEntry
	if s.Flat != nil {
		for pair := s.Flat.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, splitLocaleValue(pair.Key, pair.Value))
		}
	}
	items, _ := s.List("items")
	for _, item := range items {
		out = append(out, splitLocaleValue(item.Name, item.Path))
	}
	return out
}

func splitLocaleValue(code, value string) localeEntry {
	current := strings.Contains(value, "(Current)")
	path := strings.TrimSpace(strings.Replace(value, "(Current)", "", 1))
	return localeEntry{code: code, path: path, current: current}
}

func languagePrefix(code string) string {
	if tag, err := language.Parse(code); err == nil {
		base, conf := tag.Base()
		if conf != language.No {
			return base.String()
		}
	}
	if idx := strings.IndexByte(code, '-'); idx >= 0 {
		return strings.ToLower(code[:idx])
	}
	return strings.ToLower(code)
}

// Loader fetches the raw content at url, as invoked by ResolvePath.
type Loader func(url string) (string, error)

// ResolvePath enforces the path-safety contract around a Loader: it
// rejects any URL security.IsSafeURL flags as unsafe, then delegates
// to loader and hands the resulting text to parse.
func ResolvePath(url string, loader Loader, parse func(text string) *model.Result) *model.Result {
	if !security.IsSafeURL(url) {
		result := model.New()
		result.AddError(fmt.Sprintf("Security: blocked unsafe URL %s", url))
		return result
	}

	text, err := loader(url)
	if err != nil {
		result := model.New()
		result.AddError(fmt.Sprintf("Load failed: %s", err))
		return result
	}

	return parse(text)
}
