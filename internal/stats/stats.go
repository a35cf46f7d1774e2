// Package stats computes category-grouped spending breakdowns from expense
// rows. It is pure computation; fetching and caching live in the service
// layer.
package stats

import (
	"sort"

	"tripwallet/internal/core"
)

// GroupedStat is one category bucket of the breakdown. TotalAmount is in the
// expenses' original currencies (illustrative), TotalHomeAmount in the home
// currency (authoritative). Percentages are rounded independently per group
// and are not forced to sum to 100.
type GroupedStat struct {
	Type            string  `json:"type"`
	Text            string  `json:"text"`
	Color           string  `json:"color"`
	Icon            string  `json:"icon"`
	Count           int     `json:"count"`
	TotalAmount     int64   `json:"total_amount"`
	TotalHomeAmount int64   `json:"total_home_amount"`
	Percentage      float64 `json:"percentage"`
	Country         string  `json:"country"`
	Flag            string  `json:"flag"`
	Currency        string  `json:"currency"`
}

// Group buckets rows by expense type. An empty input yields an empty slice.
// Types absent from the category set keep their own label and take the
// fallback bucket's color. Buckets are ordered by descending home-currency
// total; ties keep first-seen order.
func Group(rows []core.ExpandedExpense, set *core.CategorySet) []GroupedStat {
	var totalHome int64
	for _, r := range rows {
		totalHome += r.AmountInHome.Cents
	}
	// Divisor sentinel: zero rows (or all-zero amounts) divide by 1 so
	// percentages come out 0 instead of NaN.
	divisor := totalHome
	if divisor == 0 {
		divisor = 1
	}

	index := make(map[string]int)
	groups := make([]GroupedStat, 0)
	for _, r := range rows {
		i, seen := index[r.Type]
		if !seen {
			g := GroupedStat{
				Type: r.Type,
				// Representative display fields come from the first
				// matching row.
				Country:  r.Country,
				Flag:     r.Flag,
				Currency: r.SelectedCurrency,
			}
			if cat, ok := set.Lookup(r.Type); ok {
				g.Text = cat.Text
				g.Color = cat.Color
				g.Icon = cat.Icon
			} else {
				fb := set.Fallback()
				g.Text = r.Type
				g.Color = fb.Color
				g.Icon = fb.Icon
			}
			index[r.Type] = len(groups)
			groups = append(groups, g)
			i = index[r.Type]
		}
		groups[i].Count++
		groups[i].TotalAmount += r.Amount.Cents
		groups[i].TotalHomeAmount += r.AmountInHome.Cents
	}

	for i := range groups {
		groups[i].Percentage = core.Round2(float64(groups[i].TotalHomeAmount) / float64(divisor) * 100)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TotalHomeAmount > groups[b].TotalHomeAmount
	})
	return groups
}
