package allocation

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Layout
	}{
		{
			name:  "countBySize",
			input: "2x10, 1x6",
			want:  Layout{{Count: 2, Size: 10}, {Count: 1, Size: 6}},
		},
		{
			name:  "vietnameseTableWord",
			input: "3 bàn 6",
			want:  Layout{{Count: 3, Size: 6}},
		},
		{
			name:  "trayWordAndCapitals",
			input: "2 Mâm 8",
			want:  Layout{{Count: 2, Size: 8}},
		},
		{
			name:  "mixedSeparators",
			input: " 1*10 + 2.6 ;3×4 ",
			want:  Layout{{Count: 1, Size: 10}, {Count: 2, Size: 6}, {Count: 3, Size: 4}},
		},
		{
			name:  "bareSize",
			input: "8",
			want:  Layout{{Count: 1, Size: 8}},
		},
		{
			name:  "bareSizeWithGuestWord",
			input: "2x10, 7 người",
			want:  Layout{{Count: 2, Size: 10}, {Count: 1, Size: 7}},
		},
		{
			name:  "bareSizeTooLarge",
			input: "60",
			want:  Layout{},
		},
		{
			name:  "unmatchedSegmentsDropped",
			input: "2x10, garbage, 1x6",
			want:  Layout{{Count: 2, Size: 10}, {Count: 1, Size: 6}},
		},
		{
			name:  "sameSizeNotMerged",
			input: "1x10, 1x10",
			want:  Layout{{Count: 1, Size: 10}, {Count: 1, Size: 10}},
		},
		{
			name:  "hugeCountAndSizeDropped",
			input: "4000000000x4000000000, 2x10",
			want:  Layout{{Count: 2, Size: 10}},
		},
		{
			name:  "countAboveCeilingDropped",
			input: "101x4",
			want:  Layout{},
		},
		{
			name:  "sizeAboveCeilingDropped",
			input: "2 bàn 101",
			want:  Layout{},
		},
		{
			name:  "ceilingKept",
			input: "100x100",
			want:  Layout{{Count: 100, Size: 100}},
		},
		{
			name:  "zeroCountDropped",
			input: "0x10",
			want:  Layout{},
		},
		{
			name:  "empty",
			input: "",
			want:  Layout{},
		},
		{
			name:  "garbage",
			input: "garbage",
			want:  Layout{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLayoutTotals(t *testing.T) {
	layout := Parse("2x10, 1x6")

	if got := layout.TotalTables(); got != 3 {
		t.Errorf("TotalTables() = %d, want 3", got)
	}
	if got := layout.TotalGuests(); got != 26 {
		t.Errorf("TotalGuests() = %d, want 26", got)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	input := "2 bàn 10 + 6"
	first := Parse(input)
	second := Parse(input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() not deterministic: %v != %v", first, second)
	}
}

func TestLayoutString(t *testing.T) {
	layout := Parse("2 bàn 10; 1*6")
	if got := layout.String(); got != "2x10, 1x6" {
		t.Errorf("String() = %q, want %q", got, "2x10, 1x6")
	}
	if got := Parse(layout.String()); !reflect.DeepEqual(got, layout) {
		t.Errorf("Parse(String()) = %v, want %v", got, layout)
	}
}

func TestParseHugeLayoutKeepsQuantitiesNonNegative(t *testing.T) {
	layout := Parse("4000000000x4000000000")
	if got := layout.TotalGuests(); got != 0 {
		t.Fatalf("TotalGuests() = %d, want 0", got)
	}

	got := Distribute([]Item{{Name: "Súp gà", Quantity: 1, Unit: "Bát"}}, layout)
	if got[0].Quantity < 0 {
		t.Errorf("Quantity = %d, want >= 0", got[0].Quantity)
	}
}
