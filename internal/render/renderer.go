package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/weldpoly/quotecart-backend/internal/cart"
	"github.com/weldpoly/quotecart-backend/pkg/metrics"
)

// View is one fully computed modal projection: ordered rows, the pluralized
// header title and the empty-state switch. It replaces any previous render
// wholesale, so two passes over the same cart produce identical output.
type View struct {
	Rows       []template.HTML `json:"rows"`
	CountTitle string          `json:"count_title"`
	Count      int             `json:"count"`
	Empty      bool            `json:"empty"`
}

// Renderer projects cart state onto a TemplateSet.
type Renderer struct {
	set     TemplateSet
	metrics *metrics.CartMetrics
	now     func() time.Time
}

// NewRenderer builds a renderer around the given template set.
func NewRenderer(set TemplateSet, m *metrics.CartMetrics) *Renderer {
	return &Renderer{set: set, metrics: m, now: time.Now}
}

// Render computes the modal view for the cart. Ordering comes from the
// grouping engine; rows carry the entry's encoded identity key so controls
// resolve entries by identity at mutation time, never by position.
func (r *Renderer) Render(c cart.Cart) (View, error) {
	start := r.now()

	ordered := cart.Order(c)
	rows := make([]template.HTML, 0, len(ordered))
	for _, entry := range ordered {
		row := Row{
			Title:       entry.Item.Title,
			Description: entry.Item.Description,
			Qty:         entry.Item.Qty,
			Key:         entry.Item.Key().Encode(),
			SizeRange:   entry.Item.ProductSizeRange,
			IsSparePart: entry.Item.IsSparePart,
		}
		var buf strings.Builder
		if err := r.set.rowTemplate(row.IsSparePart).Execute(&buf, row); err != nil {
			return View{}, fmt.Errorf("rendering row %q: %w", entry.Item.Title, err)
		}
		rows = append(rows, template.HTML(buf.String()))
	}

	view := View{
		Rows:       rows,
		CountTitle: CountTitle(len(c)),
		Count:      len(c),
		Empty:      len(c) == 0,
	}

	r.metrics.ObserveRender(r.now().Sub(start))
	return view, nil
}

// CountTitle formats the modal header: "QUOTE (1 ITEM)" / "QUOTE (3 ITEMS)".
func CountTitle(count int) string {
	noun := "ITEMS"
	if count == 1 {
		noun = "ITEM"
	}
	return fmt.Sprintf("QUOTE (%d %s)", count, noun)
}
