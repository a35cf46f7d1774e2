package core

import "testing"

func TestCategorySetLookup(t *testing.T) {
	set := NewCategorySet([]CustomCategory{
		{Key: "skiing", Text: "Skiing", Color: "#123456", Icon: "downhill_skiing"},
		{Key: "food", Text: "Shadowed", Color: "#000000", Icon: "x"}, // collides with built-in
	})

	c, ok := set.Lookup("food")
	if !ok {
		t.Fatalf("built-in food should resolve")
	}
	if c.Text == "Shadowed" || c.Custom {
		t.Fatalf("custom category must not override built-in, got %+v", c)
	}

	c, ok = set.Lookup("skiing")
	if !ok || !c.Custom || c.Text != "Skiing" {
		t.Fatalf("custom skiing should resolve, got %+v ok=%v", c, ok)
	}

	if _, ok := set.Lookup("deleted-key"); ok {
		t.Fatalf("unknown key should report not found")
	}
	if fb := set.Fallback(); fb.Key != OtherCategoryKey {
		t.Fatalf("fallback should be the other bucket, got %+v", fb)
	}
}

func TestCategorySetAllOrder(t *testing.T) {
	set := NewCategorySet([]CustomCategory{
		{Key: "b-custom", Text: "B"},
		{Key: "a-custom", Text: "A"},
	})
	all := set.All()
	n := len(BuiltinCategories())
	if len(all) != n+2 {
		t.Fatalf("got %d categories, want %d", len(all), n+2)
	}
	if all[n].Key != "b-custom" || all[n+1].Key != "a-custom" {
		t.Fatalf("custom categories should keep supplied order, got %q then %q", all[n].Key, all[n+1].Key)
	}
}
