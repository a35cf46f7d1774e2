package core

// Category is a display descriptor for an expense type: the built-in set
// plus any user-defined custom categories merged at read time.
type Category struct {
	Key    string `json:"key"`
	Text   string `json:"text"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
	Custom bool   `json:"custom,omitempty"`
}

// OtherCategoryKey is the fallback bucket. Expense types that no longer
// resolve (e.g. after a custom category was deleted) borrow its color while
// keeping their own label.
const OtherCategoryKey = "other"

// builtinCategories is a fixed, closed set. Custom categories are additive
// and never override a built-in with the same key.
var builtinCategories = []Category{
	{Key: "food", Text: "Food & Drinks", Color: "#FF8A65", Icon: "restaurant"},
	{Key: "transport", Text: "Transport", Color: "#4FC3F7", Icon: "directions_bus"},
	{Key: "accommodation", Text: "Accommodation", Color: "#9575CD", Icon: "hotel"},
	{Key: "shopping", Text: "Shopping", Color: "#F06292", Icon: "shopping_bag"},
	{Key: "entertainment", Text: "Entertainment", Color: "#FFD54F", Icon: "attractions"},
	{Key: "health", Text: "Health", Color: "#81C784", Icon: "medical_services"},
	{Key: OtherCategoryKey, Text: "Other", Color: "#90A4AE", Icon: "category"},
}

// CategorySet is a lookup over built-in and custom categories, keyed by
// category key.
type CategorySet struct {
	byKey      map[string]Category
	customKeys []string
}

// NewCategorySet merges the built-in set with custom categories. A custom
// key colliding with a built-in is dropped.
func NewCategorySet(custom []CustomCategory) *CategorySet {
	byKey := make(map[string]Category, len(builtinCategories)+len(custom))
	for _, c := range builtinCategories {
		byKey[c.Key] = c
	}
	var customKeys []string
	for _, c := range custom {
		if _, exists := byKey[c.Key]; exists {
			continue
		}
		byKey[c.Key] = Category{Key: c.Key, Text: c.Text, Color: c.Color, Icon: c.Icon, Custom: true}
		customKeys = append(customKeys, c.Key)
	}
	return &CategorySet{byKey: byKey, customKeys: customKeys}
}

// Lookup returns the category for key, reporting whether it exists. Callers
// decide fallback policy; there is no implicit default.
func (s *CategorySet) Lookup(key string) (Category, bool) {
	c, ok := s.byKey[key]
	return c, ok
}

// Fallback returns the "other" bucket, used for unresolvable expense types.
func (s *CategorySet) Fallback() Category {
	return s.byKey[OtherCategoryKey]
}

// Builtin reports whether key belongs to the fixed built-in set.
func Builtin(key string) bool {
	for _, c := range builtinCategories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// BuiltinCategories returns a copy of the fixed set in display order.
func BuiltinCategories() []Category {
	out := make([]Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

// All returns every category in the set: built-ins in display order, then
// custom categories in the order they were supplied.
func (s *CategorySet) All() []Category {
	out := make([]Category, 0, len(s.byKey))
	out = append(out, BuiltinCategories()...)
	for _, key := range s.customKeys {
		out = append(out, s.byKey[key])
	}
	return out
}
