package render

import (
	"fmt"
	"html/template"
)

// TemplateSet supplies the row fragments the renderer clones per entry. The
// spare-part template is optional; when absent the product template is used
// for both kinds, mirroring how the page markup may ship only one fragment.
type TemplateSet struct {
	productRow   *template.Template
	sparePartRow *template.Template
}

// Row is the data a row template can reference. Templates may use any subset;
// fields a fragment does not mention are simply not rendered.
type Row struct {
	Title       string
	Description string
	Qty         int
	Key         string
	SizeRange   string
	IsSparePart bool
}

const defaultProductRow = `<div class="quote_item" data-quote-item>
  <div class="quote_item-info">
    <div data-quote-title>{{.Title}}</div>
    <div data-quote-description>{{.Description}}</div>
    {{if .SizeRange}}<div data-quote-size-range>{{.SizeRange}}</div>{{end}}
  </div>
  <div class="quote_item-controls">
    <a href="#" class="quote_minus" data-quote-action="decrement" data-quote-key="{{.Key}}"></a>
    <div data-quote-number>{{.Qty}}</div>
    <a href="#" class="quote_plus" data-quote-action="increment" data-quote-key="{{.Key}}"></a>
    <a href="#" data-quote-remove data-quote-key="{{.Key}}"></a>
  </div>
</div>`

const defaultSparePartRow = `<div class="quote_item quote_part-item" data-quote-part-item>
  <div class="quote_item-info">
    <div data-quote-title>{{.Title}}</div>
    <div data-quote-description>{{.Description}}</div>
  </div>
  <div class="quote_item-controls">
    <a href="#" class="quote_minus" data-quote-action="decrement" data-quote-key="{{.Key}}"></a>
    <div data-quote-number>{{.Qty}}</div>
    <a href="#" class="quote_plus" data-quote-action="increment" data-quote-key="{{.Key}}"></a>
    <a href="#" data-quote-remove data-quote-key="{{.Key}}"></a>
  </div>
</div>`

// NewTemplateSet parses the provided fragments. An empty spare-part fragment
// makes the product fragment serve both kinds.
func NewTemplateSet(productRow, sparePartRow string) (TemplateSet, error) {
	if productRow == "" {
		return TemplateSet{}, fmt.Errorf("product row template is required")
	}
	product, err := template.New("product_row").Parse(productRow)
	if err != nil {
		return TemplateSet{}, fmt.Errorf("parsing product row template: %w", err)
	}
	set := TemplateSet{productRow: product}
	if sparePartRow != "" {
		sparePart, err := template.New("spare_part_row").Parse(sparePartRow)
		if err != nil {
			return TemplateSet{}, fmt.Errorf("parsing spare part row template: %w", err)
		}
		set.sparePartRow = sparePart
	}
	return set, nil
}

// DefaultTemplateSet returns the built-in fragments used when the deployment
// does not supply its own.
func DefaultTemplateSet() TemplateSet {
	set, err := NewTemplateSet(defaultProductRow, defaultSparePartRow)
	if err != nil {
		panic(err)
	}
	return set
}

func (s TemplateSet) rowTemplate(isSparePart bool) *template.Template {
	if isSparePart && s.sparePartRow != nil {
		return s.sparePartRow
	}
	return s.productRow
}
