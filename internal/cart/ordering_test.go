package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func titles(ordered []OrderedItem) []string {
	out := make([]string, len(ordered))
	for i, entry := range ordered {
		out[i] = entry.Item.Title
	}
	return out
}

func TestOrderGroupsSparePartsUnderParent(t *testing.T) {
	c := Cart{
		{Title: "Pump A", Qty: 1},
		{Title: "Extruder B", Qty: 1},
		{Title: "Seal Kit", Qty: 1, IsSparePart: true, ParentProductTitle: "Extruder B"},
		{Title: "Nozzle", Qty: 2, IsSparePart: true, ParentProductTitle: "Pump A"},
	}

	assert.Equal(t, []string{"Pump A", "Nozzle", "Extruder B", "Seal Kit"}, titles(Order(c)))
}

func TestOrderPlacesOrphansLast(t *testing.T) {
	c := Cart{
		{Title: "Heater Band", Qty: 1, IsSparePart: true, ParentProductTitle: "Gone Product"},
		{Title: "Pump A", Qty: 1},
		{Title: "Nozzle", Qty: 1, IsSparePart: true, ParentProductTitle: "Pump A"},
	}

	assert.Equal(t, []string{"Pump A", "Nozzle", "Heater Band"}, titles(Order(c)))
}

func TestOrderIsDeterministic(t *testing.T) {
	c := Cart{
		{Title: "Pump A", Qty: 1},
		{Title: "Nozzle", Qty: 1, IsSparePart: true, ParentProductTitle: "Pump A"},
		{Title: "Orphan", Qty: 1, IsSparePart: true, ParentProductTitle: "Missing"},
	}

	assert.Equal(t, Order(c), Order(c), "Order must be deterministic for an unchanged cart")
}

func TestOrderMatchesParentBySlug(t *testing.T) {
	c := Cart{
		{Title: "Pump A", Qty: 1, ProductSlug: "pump-a"},
		{Title: "Seal Kit", Qty: 1, IsSparePart: true, ParentProductSlug: "pump-a"},
	}

	assert.Equal(t, []string{"Pump A", "Seal Kit"}, titles(Order(c)))
}

func TestOrderNeverDropsEntries(t *testing.T) {
	c := Cart{
		{Title: "A", Qty: 1},
		{Title: "B", Qty: 1},
		{Title: "p1", Qty: 1, IsSparePart: true, ParentProductTitle: "A"},
		{Title: "p2", Qty: 1, IsSparePart: true, ParentProductTitle: "B"},
		{Title: "p3", Qty: 1, IsSparePart: true, ParentProductTitle: "C"},
	}
	assert.Len(t, Order(c), len(c))
}
