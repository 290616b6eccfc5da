package scrape

import "testing"

func TestParseServings(t *testing.T) {
	tests := []struct {
		yields string
		want   *int
	}{
		{"4 servings", intPtr(4)},
		{"4 to 6 servings", intPtr(4)},
		{"Serves 8", intPtr(8)},
		{"12 cookies", intPtr(12)},
		{"", nil},
		{"a few portions", nil},
	}
	for _, tt := range tests {
		got := ParseServings(tt.yields)
		if !intPtrEqual(got, tt.want) {
			t.Errorf("ParseServings(%q) = %v, want %v", tt.yields, fmtIntPtr(got), fmtIntPtr(tt.want))
		}
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		value string
		want  *float64
	}{
		{"256 calories", floatPtr(256)},
		{"19 grams", floatPtr(19)},
		{"2.5 g", floatPtr(2.5)},
		{"0 mg", floatPtr(0)},
		{"", nil},
		{"trace amounts", nil},
		{"...", nil},
	}
	for _, tt := range tests {
		got := ParseNumeric(tt.value)
		if !floatPtrEqual(got, tt.want) {
			t.Errorf("ParseNumeric(%q) = %v, want %v", tt.value, fmtFloatPtr(got), fmtFloatPtr(tt.want))
		}
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func fmtFloatPtr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
