// Package shard implements the retrieval-unit generator (§4.4): it
// turns a merged, validated model.Result into an ordered sequence of
// short, self-contained shards suitable for embedding and
// retrieval-augmented search, deduplicating on rendered content rather
// than source position.
package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/commercetxt/commercetxt/model"
)

// Attribute types a shard's metadata carries. The set is open-ended
// (§4.4 lists it with a trailing "…"); these are the ones this
// generator emits.
const (
	AttrSubjectAnchor = "subject_anchor"
	AttrCurrency      = "currency"
	AttrSpecification = "specification"
	AttrOffer         = "offer"
	AttrInventory     = "inventory"
	AttrShipping      = "shipping"
	AttrPayment       = "payment"
	AttrReview        = "review"
	AttrImage         = "image"
	AttrVariant       = "variant"
	AttrPolicy        = "policy"
	AttrSemanticTag   = "semantic_tag"
)

// Metadata describes a shard's provenance for traceability.
type Metadata struct {
	Index        int               `json:"index"`
	AttrType     string            `json:"attr_type"`
	OriginalData map[string]string `json:"original_data,omitempty"`
}

// Shard is one retrieval unit: short text plus metadata.
type Shard struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Generator emits shards from CommerceTXT documents and deduplicates
// them by content hash. A Generator is not safe for concurrent use;
// give each concurrent caller its own instance (§5).
type Generator struct {
	tagger      *SemanticTagger
	seenHashes  map[string]struct{}
}

// New returns a Generator with an empty dedup set and a default
// SemanticTagger.
func New() *Generator {
	return &Generator{
		tagger:     NewSemanticTagger(),
		seenHashes: make(map[string]struct{}),
	}
}

// ResetDeduplication empties the generator's seen-hash set, as if no
// document had ever been processed.
func (g *Generator) ResetDeduplication() {
	g.seenHashes = make(map[string]struct{})
}

// Generate emits shards from a single document. Within-document dedup
// is always applied, independent of any prior Generate/GenerateBatch
// call's state: two identical {text, attr_type} shards from the same
// document collapse into one, but a document-local seen set is used so
// that per-document dedup doesn't silently depend on call order.
func (g *Generator) Generate(doc *model.Result) []Shard {
	return g.generate(doc, make(map[string]struct{}))
}

// GenerateBatch emits shards for each document in order. When
// deduplicateAcrossProducts is on, a single seen-hash set is shared
// across every document in the batch (and persists across calls until
// ResetDeduplication); when off, each document only dedups against
// itself.
func (g *Generator) GenerateBatch(docs []*model.Result, deduplicateAcrossProducts bool) []Shard {
	var out []Shard
	shared := g.seenHashes
	for _, doc := range docs {
		local := shared
		if !deduplicateAcrossProducts {
			local = make(map[string]struct{})
		}
		out = append(out, g.generate(doc, local)...)
	}
	return out
}

// generate runs the per-section emission rules against doc, appending
// every shard whose content hash is not already present in seen
// (which this call mutates as it goes).
func (g *Generator) generate(doc *model.Result, seen map[string]struct{}) []Shard {
	if doc == nil {
		return nil
	}

	var out []Shard
	index := 0
	emit := func(text, attrType string, original map[string]string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		h := contentHash(text, attrType)
		if _, dup := seen[h]; dup {
			return
		}
		seen[h] = struct{}{}
		out = append(out, Shard{
			Text: text,
			Metadata: Metadata{
				Index:        index,
				AttrType:     attrType,
				OriginalData: original,
			},
		})
		index++
	}

	for pair := doc.Directives.Oldest(); pair != nil; pair = pair.Next() {
		name, section := pair.Key, pair.Value
		switch name {
		case "IDENTITY":
			emitIdentity(emit, section)
		case "PRODUCT":
			emitProduct(emit, section, g.tagger)
		case "OFFER":
			emitOffer(emit, section)
		case "INVENTORY":
			emitFlatAndItems(emit, section, AttrInventory)
		case "SHIPPING":
			emitFlatAndItems(emit, section, AttrShipping)
		case "PAYMENT":
			emitFlatAndItems(emit, section, AttrPayment)
		case "SPECS":
			emitSpecs(emit, section)
		case "IN_THE_BOX":
			emitSpecs(emit, section)
		case "VARIANTS":
			emitVariants(emit, section)
		case "REVIEWS":
			emitFlatAndItems(emit, section, AttrReview)
		case "IMAGES":
			emitImages(emit, section)
		case "POLICIES":
			emitFlatAndItems(emit, section, AttrPolicy)
		case "SEMANTIC_LOGIC":
			emitSemanticLogic(emit, section)
		}
	}

	return out
}

type emitFunc func(text, attrType string, original map[string]string)

func emitIdentity(emit emitFunc, s *model.Section) {
	if name, ok := s.Get("Name"); ok && name != "" {
		emit(fmt.Sprintf("Store: %s", name), AttrSubjectAnchor, flatOriginal(s, "Name"))
	}
	if currency, ok := s.Get("Currency"); ok && currency != "" {
		emit(fmt.Sprintf("Currency: %s", currency), AttrCurrency, flatOriginal(s, "Currency"))
	}
}

func emitProduct(emit emitFunc, s *model.Section, tagger *SemanticTagger) {
	if name, ok := s.Get("Name"); ok && name != "" {
		emit(fmt.Sprintf("Product: %s", name), AttrSubjectAnchor, flatOriginal(s, "Name"))
	}
	if brand, ok := s.Get("Brand"); ok && brand != "" {
		emit(fmt.Sprintf("Brand: %s", brand), AttrSubjectAnchor, flatOriginal(s, "Brand"))
		emit(tagger.Tag(brand), AttrSemanticTag, map[string]string{"BRAND": brand})
	}
	for _, key := range []string{"SKU", "GTIN", "Description"} {
		if v, ok := s.Get(key); ok && v != "" {
			emit(fmt.Sprintf("%s: %s", key, v), AttrSpecification, flatOriginal(s, key))
		}
	}
}

func emitOffer(emit emitFunc, s *model.Section) {
	if s.Flat == nil {
		return
	}
	for pair := s.Flat.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == "" {
			continue
		}
		emit(fmt.Sprintf("%s: %s", pair.Key, pair.Value), AttrOffer, flatOriginal(s, pair.Key))
	}
}

// emitFlatAndItems covers sections documented as "one shard per list
// entry or flat attribute" (§4.4: INVENTORY, SHIPPING, PAYMENT,
// REVIEWS, POLICIES).
func emitFlatAndItems(emit emitFunc, s *model.Section, attrType string) {
	if s.Flat != nil {
		for pair := s.Flat.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value == "" {
				continue
			}
			emit(fmt.Sprintf("%s: %s", pair.Key, pair.Value), attrType, flatOriginal(s, pair.Key))
		}
	}
	items, _ := s.List("items")
	for _, item := range items {
		emit(itemText(item), attrType, itemOriginal(item))
	}
}

func emitSpecs(emit emitFunc, s *model.Section) {
	items, _ := s.List("items")
	for _, item := range items {
		emit(itemText(item), AttrSpecification, itemOriginal(item))
	}
}

func emitVariants(emit emitFunc, s *model.Section) {
	options, ok := s.List("Options")
	if !ok {
		options, ok = s.List("items")
	}
	if !ok {
		return
	}
	for _, item := range options {
		emit(itemText(item), AttrVariant, itemOriginal(item))
	}
}

func emitImages(emit emitFunc, s *model.Section) {
	items, _ := s.List("items")
	for _, item := range items {
		text := item.Name
		if item.Path != "" {
			text = fmt.Sprintf("%s: %s", item.Name, item.Path)
		}
		emit(text, AttrImage, itemOriginal(item))
	}
}

func emitSemanticLogic(emit emitFunc, s *model.Section) {
	items, _ := s.List("items")
	for _, item := range items {
		emit(itemText(item), AttrSemanticTag, itemOriginal(item))
	}
}

// itemText renders a list item as "<Name>: <path>", or just <path>
// when Name is absent (§4.4's SPECS rule, applied generally).
func itemText(item model.Item) string {
	switch {
	case item.Name != "" && item.Path != "":
		return fmt.Sprintf("%s: %s", item.Name, item.Path)
	case item.Path != "":
		return item.Path
	default:
		return item.Name
	}
}

func flatOriginal(s *model.Section, key string) map[string]string {
	if v, ok := s.Get(key); ok {
		return map[string]string{key: v}
	}
	return nil
}

func itemOriginal(item model.Item) map[string]string {
	out := map[string]string{}
	if item.Name != "" {
		out["name"] = item.Name
	}
	if item.Path != "" {
		out["path"] = item.Path
	}
	for k, v := range item.Attrs {
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// contentHash is the shard's dedup key: SHA-256 over the lower-cased,
// trimmed text plus attr_type, explicitly excluding index and
// original_data so that two shards stating the same fact from
// different documents collide.
func contentHash(text, attrType string) string {
	normalized := strings.ToLower(strings.TrimSpace(text)) + "|" + attrType
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
