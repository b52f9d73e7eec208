// Package parser turns CommerceTXT source text into a model.Result,
// implementing the line-oriented grammar of the protocol's §4.1.
package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/commercetxt/commercetxt/internal/limits"
	"github.com/commercetxt/commercetxt/model"
)

// Options configures a parse.
type Options struct {
	// Nested enables the sub-list grammar: a bare "Key:" flat line
	// opens a named list attached to Key instead of falling through
	// to the section's generic items.
	Nested bool

	// Strict is not read by the parser and is not stored on the
	// result; the parser never fails on malformed input either way.
	Strict bool

	// Limits bounds how much of the document is consumed. The zero
	// value is replaced with limits.Default().
	Limits limits.Limits
}

var sectionHeaderRE = regexp.MustCompile(`^#\s*@([A-Za-z0-9_]+)\s*$`)

// Parse converts text into a Result. It never returns an error: every
// malformed line degrades to a warning and parsing continues.
func Parse(text string, opts Options) *model.Result {
	if opts.Limits == (limits.Limits{}) {
		opts.Limits = limits.Default()
	}

	result := model.New()

	var (
		curName      string
		cur          *model.Section
		curListKey   string
		sectionOrder []string
		totalBytes   int64
		truncated    bool
		sectionLimitWarned bool
	)

	closeSection := func() {
		if cur == nil {
			return
		}
		if curName == "VERSION" {
			if v, ok := cur.Get("Version"); ok {
				result.Version = v
			}
		} else {
			if _, exists := result.Directives.Get(curName); exists {
				result.AddWarning(fmt.Sprintf("Duplicate section @%s, overwriting previous occurrence", curName))
			}
			result.Directives.Set(curName, cur)
		}
		cur = nil
		curName = ""
		curListKey = ""
	}

	entryCount := func(s *model.Section) int {
		n := s.FlatLen() + len(s.Items)
		for _, items := range s.Lists {
			n += len(items)
		}
		return n
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), int(opts.Limits.MaxTotalBytes)+1)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		if truncated {
			break
		}
		totalBytes += int64(len(raw)) + 1
		if totalBytes > opts.Limits.MaxTotalBytes {
			result.AddWarning("maximum total document size exceeded, parsing stopped")
			truncated = true
			break
		}

		line := raw
		if len(line) > opts.Limits.MaxLineLength {
			result.AddWarning(fmt.Sprintf("line %d exceeds maximum length", lineNo))
			line = line[:opts.Limits.MaxLineLength]
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := sectionHeaderRE.FindStringSubmatch(trimmed); m != nil {
			closeSection()
			name := strings.ToUpper(m[1])
			if len(sectionOrder) >= opts.Limits.MaxSections {
				if !sectionLimitWarned {
					result.AddWarning("section limit exceeded")
					sectionLimitWarned = true
				}
				// Parse the section's lines so later, in-limit
				// sections are unaffected, but discard its content.
				curName = ""
				cur = nil
				continue
			}
			sectionOrder = append(sectionOrder, name)
			curName = name
			cur = model.NewSection()
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			// A full-line comment that isn't a section header.
			continue
		}

		if cur == nil {
			// Content before any section header, or inside a
			// section dropped by the section limit: ignored, same
			// as unknown syntax, but without a warning since the
			// section itself was already flagged (or the document
			// is simply malformed preamble).
			continue
		}

		if entryCount(cur) >= opts.Limits.MaxEntriesPerSection {
			result.AddWarning(fmt.Sprintf("entry limit exceeded in section %s", curName))
			continue
		}

		if strings.HasPrefix(trimmed, "-") {
			item := parseItem(trimmed)
			if curListKey != "" {
				cur.Lists[curListKey] = append(cur.Lists[curListKey], item)
			} else {
				cur.Items = append(cur.Items, item)
			}
			continue
		}

		idx := strings.Index(trimmed, ":")
		if idx < 0 {
			result.AddWarning(fmt.Sprintf("Unknown syntax at line %d: %s", lineNo, trimmed))
			continue
		}

		key := strings.TrimSpace(trimmed[:idx])
		value := strings.TrimSpace(trimmed[idx+1:])
		if key == "" {
			result.AddWarning(fmt.Sprintf("Unknown syntax at line %d: %s", lineNo, trimmed))
			continue
		}

		if value == "" && opts.Nested {
			if _, exists := cur.Lists[key]; !exists {
				cur.Lists[key] = []model.Item{}
			}
			curListKey = key
			continue
		}

		curListKey = ""
		cur.Flat.Set(key, value)
	}
	if scanner.Err() != nil && !truncated {
		// A single line longer than the scanner's buffer, which is
		// sized past MaxTotalBytes.
		result.AddWarning("maximum total document size exceeded, parsing stopped")
	}
	closeSection()

	return result
}

// parseItem parses a "- Name: value | Key: value | ..." line (already
// trimmed, including its leading "-") into an Item. A bare "- Name"
// yields an Item with only Name set.
func parseItem(trimmed string) model.Item {
	body := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
	segments := strings.Split(body, "|")

	item := model.Item{}
	head := strings.TrimSpace(segments[0])
	if idx := strings.Index(head, ":"); idx >= 0 {
		item.Name = strings.TrimSpace(head[:idx])
		item.Path = strings.TrimSpace(head[idx+1:])
	} else {
		item.Name = head
	}

	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		idx := strings.Index(seg, ":")
		if idx < 0 {
			continue
		}
		k := strings.TrimSpace(seg[:idx])
		v := strings.TrimSpace(seg[idx+1:])
		if k == "" {
			continue
		}
		if item.Attrs == nil {
			item.Attrs = map[string]string{}
		}
		item.Attrs[k] = v
	}
	return item
}
