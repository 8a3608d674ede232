package cart

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Item is one quoted line item. Products stand alone; spare parts reference
// their parent product through ParentProductTitle/ParentProductSlug.
type Item struct {
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Qty                int    `json:"qty"`
	IsSparePart        bool   `json:"isSparePart,omitempty"`
	ParentProductTitle string `json:"parentProductTitle,omitempty"`
	ParentProductSlug  string `json:"parentProductSlug,omitempty"`
	ProductSlug        string `json:"productSlug,omitempty"`
	ProductSizeRange   string `json:"productSizeRange,omitempty"`
}

// Cart is the ordered collection of quoted items for one session.
type Cart []Item

// IdentityKey identifies an entry independent of its position. All mutation
// entry points resolve entries through it, never through array indexes.
type IdentityKey struct {
	SparePart bool   `json:"sparePart"`
	Title     string `json:"title"`
	Parent    string `json:"parent"`
}

const keySeparator = "\x1f"

// Key computes the identity key for the item.
func (i Item) Key() IdentityKey {
	parent := ""
	if i.IsSparePart {
		parent = i.ParentProductTitle
		if parent == "" {
			parent = i.ParentProductSlug
		}
	}
	return IdentityKey{
		SparePart: i.IsSparePart,
		Title:     Normalize(i.Title),
		Parent:    Normalize(parent),
	}
}

// Normalize produces the canonical comparison form of a title: trimmed,
// lowercased, internal whitespace collapsed.
func Normalize(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// Encode serializes the key into a URL-safe opaque handle suitable for row
// control attributes.
func (k IdentityKey) Encode() string {
	kind := "p"
	if k.SparePart {
		kind = "s"
	}
	raw := strings.Join([]string{kind, k.Title, k.Parent}, keySeparator)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeKey parses a handle produced by Encode.
func DecodeKey(encoded string) (IdentityKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return IdentityKey{}, fmt.Errorf("decoding identity key: %w", err)
	}
	parts := strings.Split(string(raw), keySeparator)
	if len(parts) != 3 || (parts[0] != "p" && parts[0] != "s") {
		return IdentityKey{}, fmt.Errorf("malformed identity key")
	}
	return IdentityKey{
		SparePart: parts[0] == "s",
		Title:     parts[1],
		Parent:    parts[2],
	}, nil
}

// IndexOf returns the position of the entry with the given key, or -1.
func (c Cart) IndexOf(key IdentityKey) int {
	for i, item := range c {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// matchesParent reports whether the spare part references the product, by
// normalized parent title or by slug when both sides carry one.
func matchesParent(product, sparePart Item) bool {
	if !sparePart.IsSparePart || product.IsSparePart {
		return false
	}
	if parent := Normalize(sparePart.ParentProductTitle); parent != "" && parent == Normalize(product.Title) {
		return true
	}
	if slug := Normalize(sparePart.ParentProductSlug); slug != "" && slug == Normalize(product.ProductSlug) {
		return true
	}
	return false
}

// MergeDuplicates collapses entries sharing an identity key into the first
// occurrence, summing quantities. Applied on every load so duplicate writes
// from racing instances repair themselves.
func MergeDuplicates(c Cart) Cart {
	if len(c) == 0 {
		return Cart{}
	}
	merged := make(Cart, 0, len(c))
	seen := make(map[IdentityKey]int, len(c))
	for _, item := range c {
		key := item.Key()
		if at, ok := seen[key]; ok {
			merged[at].Qty += item.Qty
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
