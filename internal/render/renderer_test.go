package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/weldpoly/quotecart-backend/internal/cart"
)

func testCart() cart.Cart {
	return cart.Cart{
		{Title: "Pump A", Description: "High pressure pump", Qty: 2, ProductSizeRange: "20-63mm"},
		{Title: "Seal Kit", Qty: 1, IsSparePart: true, ParentProductTitle: "Pump A"},
	}
}

func TestRenderProducesOneRowPerEntry(t *testing.T) {
	r := NewRenderer(DefaultTemplateSet(), nil)

	view, err := r.Render(testCart())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(view.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(view.Rows))
	}
	if view.Empty {
		t.Fatal("non-empty cart must not flag empty state")
	}
	if view.CountTitle != "QUOTE (2 ITEMS)" {
		t.Fatalf("unexpected count title %q", view.CountTitle)
	}

	product := string(view.Rows[0])
	if !strings.Contains(product, "Pump A") || !strings.Contains(product, "20-63mm") {
		t.Fatalf("product row missing fields: %s", product)
	}
	sparePart := string(view.Rows[1])
	if !strings.Contains(sparePart, "quote_part-item") {
		t.Fatalf("spare part row should use the spare part template: %s", sparePart)
	}
}

func TestRenderRowsCarryIdentityKeys(t *testing.T) {
	r := NewRenderer(DefaultTemplateSet(), nil)
	c := testCart()

	view, err := r.Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	wantKey := c[0].Key().Encode()
	if !strings.Contains(string(view.Rows[0]), wantKey) {
		t.Fatalf("row controls must embed the encoded identity key %q", wantKey)
	}
	// keys decode back to the same identity
	decoded, err := cart.DecodeKey(wantKey)
	if err != nil || decoded != c[0].Key() {
		t.Fatalf("key round trip failed: %v", err)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	r := NewRenderer(DefaultTemplateSet(), nil)
	c := testCart()

	first, err := r.Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := r.Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two renders of an unchanged cart must be identical")
	}
}

func TestRenderEmptyCart(t *testing.T) {
	r := NewRenderer(DefaultTemplateSet(), nil)

	view, err := r.Render(cart.Cart{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !view.Empty || len(view.Rows) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
	if view.CountTitle != "QUOTE (0 ITEMS)" {
		t.Fatalf("unexpected title %q", view.CountTitle)
	}
}

func TestRenderSingularTitle(t *testing.T) {
	if got := CountTitle(1); got != "QUOTE (1 ITEM)" {
		t.Fatalf("unexpected singular title %q", got)
	}
}

func TestPartialTemplateSkipsMissingFields(t *testing.T) {
	// a fragment referencing only the title is valid; other fields are skipped
	set, err := NewTemplateSet(`<div data-quote-title>{{.Title}}</div>`, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := NewRenderer(set, nil)

	view, err := r.Render(testCart())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(view.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(view.Rows))
	}
	// no spare part template supplied: product fragment serves both kinds
	if !strings.Contains(string(view.Rows[1]), "Seal Kit") {
		t.Fatalf("fallback to product template failed: %s", view.Rows[1])
	}
}

func TestRenderEscapesMarkup(t *testing.T) {
	r := NewRenderer(DefaultTemplateSet(), nil)
	c := cart.Cart{{Title: `<script>alert(1)</script>`, Qty: 1}}

	view, err := r.Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(view.Rows[0]), "<script>") {
		t.Fatal("row content must be escaped")
	}
}
