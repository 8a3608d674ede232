package cart

// OrderedItem pairs an item with its original cart index. The index is a
// display artifact only; mutations always go through identity keys.
type OrderedItem struct {
	Item  Item
	Index int
}

// Order computes the deterministic display sequence: each product in cart
// order followed by its spare parts in cart order, then orphaned spare parts
// (no matching product) after all groups. No entry is ever dropped.
func Order(c Cart) []OrderedItem {
	ordered := make([]OrderedItem, 0, len(c))
	consumed := make([]bool, len(c))

	for i, item := range c {
		if item.IsSparePart {
			continue
		}
		ordered = append(ordered, OrderedItem{Item: item, Index: i})
		for j, candidate := range c {
			if consumed[j] || !candidate.IsSparePart {
				continue
			}
			if matchesParent(item, candidate) {
				ordered = append(ordered, OrderedItem{Item: candidate, Index: j})
				consumed[j] = true
			}
		}
	}

	for j, candidate := range c {
		if candidate.IsSparePart && !consumed[j] {
			ordered = append(ordered, OrderedItem{Item: candidate, Index: j})
		}
	}

	return ordered
}
