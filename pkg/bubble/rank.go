package bubble

import (
	"cmp"
	"math"
	"slices"
	"sort"
)

// Item is a labeled weight, typically a word and how often it was used.
type Item struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// RankedItem is an Item that survived the MaxItems cut, with its radius.
// Rank is the 0-based position after sorting by weight descending.
type RankedItem struct {
	Item
	Rank   int     `json:"rank"`
	Radius float64 `json:"r"`
}

// FromMap converts a label→weight mapping into items ordered by label, so
// ties in weight resolve the same way on every run.
func FromMap(m map[string]float64) []Item {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	items := make([]Item, len(labels))
	for i, label := range labels {
		items[i] = Item{Label: label, Weight: m[label]}
	}
	return items
}

// Rank keeps the opts.MaxItems heaviest items and assigns each a radius.
// Ties keep input order. Duplicate labels are collapsed to their first
// occurrence and negative or non-finite weights count as zero.
func Rank(items []Item, opts Options) []RankedItem {
	opts = opts.Normalize()

	kept := dedupe(items)
	if len(kept) == 0 {
		return nil
	}

	slices.SortStableFunc(kept, func(a, b Item) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	if len(kept) > opts.MaxItems {
		kept = kept[:opts.MaxItems]
	}

	hi, lo := kept[0].Weight, kept[len(kept)-1].Weight
	ranked := make([]RankedItem, len(kept))
	for i, it := range kept {
		ranked[i] = RankedItem{
			Item:   it,
			Rank:   i,
			Radius: Radius(it.Weight, lo, hi, opts.MinRadius, opts.MaxRadius),
		}
	}
	return ranked
}

// Radius maps weight linearly from [lo, hi] onto [minR, maxR]. Weights
// outside the range are clamped. A degenerate range (hi <= lo) yields the
// midpoint of the radius range.
func Radius(weight, lo, hi, minR, maxR float64) float64 {
	if hi <= lo {
		return (minR + maxR) / 2
	}
	t := (weight - lo) / (hi - lo)
	t = max(0, min(1, t))
	return minR + t*(maxR-minR)
}

func dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.Label]; dup {
			continue
		}
		seen[it.Label] = struct{}{}
		if it.Weight < 0 || math.IsNaN(it.Weight) || math.IsInf(it.Weight, 0) {
			it.Weight = 0
		}
		out = append(out, it)
	}
	return out
}
