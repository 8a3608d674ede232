package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	cases := map[string]string{
		"  Pump   A  ":    "pump a",
		"PUMP A":          "pump a",
		"Seal\tKit\n2000": "seal kit 2000",
		"":                "",
		"   ":             "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Normalize(input), "Normalize(%q)", input)
	}
}

func TestIdentityKeyDistinguishesKinds(t *testing.T) {
	product := Item{Title: "Pump A", Qty: 1}
	sparePart := Item{Title: "Pump A", Qty: 1, IsSparePart: true, ParentProductTitle: "Pump B"}

	assert.NotEqual(t, product.Key(), sparePart.Key(), "product and spare part with same title must not collide")
}

func TestIdentityKeyFallsBackToParentSlug(t *testing.T) {
	withTitle := Item{Title: "Seal Kit", IsSparePart: true, ParentProductTitle: "Pump A"}
	withSlug := Item{Title: "Seal Kit", IsSparePart: true, ParentProductSlug: "pump-a"}

	assert.Equal(t, "pump a", withTitle.Key().Parent)
	assert.Equal(t, "pump-a", withSlug.Key().Parent, "slug fallback")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	key := IdentityKey{SparePart: true, Title: "seal kit", Parent: "pump a"}
	decoded, err := DecodeKey(key.Encode())
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
}

func TestDecodeKeyRejectsGarbage(t *testing.T) {
	_, err := DecodeKey("not base64!!")
	assert.Error(t, err, "invalid base64")

	_, err = DecodeKey("aGVsbG8")
	assert.Error(t, err, "malformed payload")
}

func TestMergeDuplicatesSumsQuantities(t *testing.T) {
	c := Cart{
		{Title: "Pump A", Qty: 1},
		{Title: "Seal Kit", Qty: 2, IsSparePart: true, ParentProductTitle: "Pump A"},
		{Title: "seal  kit", Qty: 3, IsSparePart: true, ParentProductTitle: "PUMP A"},
	}

	merged := MergeDuplicates(c)
	require.Len(t, merged, 2)
	assert.Equal(t, 5, merged[1].Qty)
	// first-occurrence casing wins
	assert.Equal(t, "Seal Kit", merged[1].Title)
}

func TestMergeDuplicatesIsIdempotent(t *testing.T) {
	c := Cart{
		{Title: "Pump A", Qty: 1},
		{Title: "Pump A", Qty: 2},
		{Title: "Seal Kit", Qty: 1, IsSparePart: true, ParentProductTitle: "Pump A"},
	}

	once := MergeDuplicates(c)
	twice := MergeDuplicates(once)
	assert.Equal(t, once, twice, "merge must be idempotent")
}
