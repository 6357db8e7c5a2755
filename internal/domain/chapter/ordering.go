package chapter

import (
	"cmp"
	"fmt"
	"slices"
)

// DefaultTitle is the title a chapter gets when the caller does not name it.
func DefaultTitle(orderNumber int) string {
	return fmt.Sprintf("Chapter %d", orderNumber)
}

// RetitleFor returns the title a chapter should carry after moving from
// oldOrder to newOrder. Titles that still read as the default for oldOrder
// follow the chapter to its new slot; anything else was set by a caller and
// is kept.
func RetitleFor(title string, oldOrder, newOrder int) string {
	if title == DefaultTitle(oldOrder) {
		return DefaultTitle(newOrder)
	}
	return title
}

// SortByOrder sorts chapters by order number in place.
func SortByOrder(chapters []Chapter) {
	slices.SortFunc(chapters, func(a, b Chapter) int {
		return cmp.Compare(a.OrderNumber, b.OrderNumber)
	})
}

// NextOrderNumber returns the order number for a chapter appended after chapters.
func NextOrderNumber(chapters []Chapter) int {
	highest := 0
	for _, ch := range chapters {
		if ch.OrderNumber > highest {
			highest = ch.OrderNumber
		}
	}
	return highest + 1
}

// Validate checks that the order numbers of chapters are exactly 1..N.
func Validate(chapters []Chapter) error {
	seen := make([]bool, len(chapters)+1)
	for _, ch := range chapters {
		if ch.OrderNumber < 1 || ch.OrderNumber > len(chapters) || seen[ch.OrderNumber] {
			return fmt.Errorf("%w: chapter %s has order number %d of %d",
				ErrInconsistentOrder, ch.ID, ch.OrderNumber, len(chapters))
		}
		seen[ch.OrderNumber] = true
	}
	return nil
}

// PlanRelocate computes the writes that move chapter id to target within
// chapters, which must be the complete, dense chapter list of one project.
//
// Moving earlier shifts the chapters in [target, old-1] one slot later; moving
// later shifts the chapters in [old+1, target] one slot earlier. The moved
// chapter is always the last update. A move onto its own slot yields no
// updates.
func PlanRelocate(chapters []Chapter, id string, target int) (Chapter, []Chapter, error) {
	idx := slices.IndexFunc(chapters, func(ch Chapter) bool { return ch.ID == id })
	if idx < 0 {
		return Chapter{}, nil, ErrChapterNotFound
	}
	if target < 1 || target > len(chapters) {
		return Chapter{}, nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidTarget, target, len(chapters))
	}

	moved := chapters[idx]
	old := moved.OrderNumber
	if target == old {
		return moved, nil, nil
	}

	sorted := slices.Clone(chapters)
	SortByOrder(sorted)

	var updates []Chapter
	for _, ch := range sorted {
		if ch.ID == id {
			continue
		}
		shift := 0
		switch {
		case target < old && ch.OrderNumber >= target && ch.OrderNumber < old:
			shift = 1
		case target > old && ch.OrderNumber > old && ch.OrderNumber <= target:
			shift = -1
		}
		if shift == 0 {
			continue
		}
		updates = append(updates, renumber(ch, ch.OrderNumber+shift))
	}

	moved = renumber(moved, target)
	updates = append(updates, moved)
	return moved, updates, nil
}

// PlanRemove computes the writes that close the gap left by removing chapter
// id: every later chapter moves one slot earlier.
func PlanRemove(chapters []Chapter, id string) (Chapter, []Chapter, error) {
	idx := slices.IndexFunc(chapters, func(ch Chapter) bool { return ch.ID == id })
	if idx < 0 {
		return Chapter{}, nil, ErrChapterNotFound
	}
	removed := chapters[idx]

	sorted := slices.Clone(chapters)
	SortByOrder(sorted)

	var updates []Chapter
	for _, ch := range sorted {
		if ch.OrderNumber > removed.OrderNumber {
			updates = append(updates, renumber(ch, ch.OrderNumber-1))
		}
	}
	return removed, updates, nil
}

// PlanNormalize renumbers chapters to 1..N keeping their relative order.
// Ties on order number are broken by creation time, then ID.
func PlanNormalize(chapters []Chapter) []Chapter {
	sorted := slices.Clone(chapters)
	slices.SortFunc(sorted, func(a, b Chapter) int {
		if c := cmp.Compare(a.OrderNumber, b.OrderNumber); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var updates []Chapter
	for i, ch := range sorted {
		if ch.OrderNumber != i+1 {
			updates = append(updates, renumber(ch, i+1))
		}
	}
	return updates
}

func renumber(ch Chapter, orderNumber int) Chapter {
	ch.Title = RetitleFor(ch.Title, ch.OrderNumber, orderNumber)
	ch.OrderNumber = orderNumber
	return ch
}
