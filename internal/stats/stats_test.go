package stats

import (
	"testing"

	"tripwallet/internal/core"
)

func row(typ string, cents, homeCents int64) core.ExpandedExpense {
	return core.ExpandedExpense{
		Expense: core.Expense{
			Amount:           core.Money{Cents: cents},
			AmountInHome:     core.Money{Cents: homeCents},
			SelectedCurrency: "JPY",
			Type:             typ,
		},
		Country: "Japan",
		Flag:    "🇯🇵",
	}
}

func TestGroupEmpty(t *testing.T) {
	got := Group(nil, core.NewCategorySet(nil))
	if len(got) != 0 {
		t.Fatalf("empty input should yield empty breakdown, got %+v", got)
	}
}

func TestGroupPercentagesNotForcedTo100(t *testing.T) {
	rows := []core.ExpandedExpense{
		row("food", 120, 100),
		row("transport", 60, 50),
	}
	got := Group(rows, core.NewCategorySet(nil))
	if len(got) != 2 {
		t.Fatalf("want 2 groups, got %d", len(got))
	}
	if got[0].Type != "food" || got[0].Percentage != 66.67 {
		t.Fatalf("food group = %+v, want 66.67%%", got[0])
	}
	if got[1].Type != "transport" || got[1].Percentage != 33.33 {
		t.Fatalf("transport group = %+v, want 33.33%%", got[1])
	}
}

func TestGroupRoundingIsIndependentPerGroup(t *testing.T) {
	// Three equal thirds round to 33.33 each; the sum is 99.99 and no
	// residual-correction pass bumps any group.
	rows := []core.ExpandedExpense{
		row("food", 100, 100),
		row("transport", 100, 100),
		row("health", 100, 100),
	}
	got := Group(rows, core.NewCategorySet(nil))
	var sum float64
	for _, g := range got {
		if g.Percentage != 33.33 {
			t.Fatalf("group %q percentage = %v, want 33.33", g.Type, g.Percentage)
		}
		sum += g.Percentage
	}
	if sum >= 100 {
		t.Fatalf("percentages should not be forced to 100, sum = %v", sum)
	}
}

func TestGroupAggregatesAndSorts(t *testing.T) {
	rows := []core.ExpandedExpense{
		row("food", 100, 80),
		row("transport", 500, 400),
		row("food", 300, 240),
	}
	got := Group(rows, core.NewCategorySet(nil))
	if len(got) != 2 {
		t.Fatalf("want 2 groups, got %d", len(got))
	}
	if got[0].Type != "transport" {
		t.Fatalf("largest home total first, got %q", got[0].Type)
	}
	food := got[1]
	if food.Count != 2 || food.TotalAmount != 400 || food.TotalHomeAmount != 320 {
		t.Fatalf("food aggregation wrong: %+v", food)
	}
	if food.Text != "Food & Drinks" || food.Country != "Japan" || food.Currency != "JPY" {
		t.Fatalf("display fields wrong: %+v", food)
	}
}

func TestGroupTieKeepsFirstSeenOrder(t *testing.T) {
	rows := []core.ExpandedExpense{
		row("health", 100, 50),
		row("shopping", 100, 50),
	}
	got := Group(rows, core.NewCategorySet(nil))
	if got[0].Type != "health" || got[1].Type != "shopping" {
		t.Fatalf("stable order lost: %q, %q", got[0].Type, got[1].Type)
	}
}

func TestGroupUnknownTypeFallsBack(t *testing.T) {
	set := core.NewCategorySet(nil)
	rows := []core.ExpandedExpense{row("deleted-custom", 100, 100)}
	got := Group(rows, set)
	if len(got) != 1 {
		t.Fatalf("want 1 group, got %d", len(got))
	}
	fb := set.Fallback()
	if got[0].Color != fb.Color {
		t.Fatalf("unknown type should take the fallback color, got %q", got[0].Color)
	}
	if got[0].Text != "deleted-custom" || got[0].Type != "deleted-custom" {
		t.Fatalf("unknown type must keep its own label, got %+v", got[0])
	}
	if got[0].Percentage != 100 {
		t.Fatalf("single group should be 100%%, got %v", got[0].Percentage)
	}
}

func TestGroupZeroAmountsDoNotPanic(t *testing.T) {
	rows := []core.ExpandedExpense{row("food", 0, 0)}
	got := Group(rows, core.NewCategorySet(nil))
	if len(got) != 1 || got[0].Percentage != 0 {
		t.Fatalf("zero-amount rows should yield 0%%, got %+v", got)
	}
}
