package value

import "testing"

func TestEqualCrossKindNumeric(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int==uint", Int(16), Uint(16), true},
		{"int==double", Int(2), Double(2.0), true},
		{"uint==double", Uint(3), Double(3.0), true},
		{"int!=uint negative", Int(-1), Uint(1), false},
		{"double not exact", Int(2), Double(2.5), false},
		{"null only equals null", Null, Bool(false), false},
		{"null equals null", Null, Null, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEqualLists(t *testing.T) {
	a := List([]Value{Int(1), Int(2), Int(3)})
	b := List([]Value{Int(1), Int(2), Int(3)})
	c := List([]Value{Int(1), Int(2)})
	if !Equal(a, b) {
		t.Errorf("expected equal lists to compare equal")
	}
	if Equal(a, c) {
		t.Errorf("expected different-length lists to compare unequal")
	}
}

func TestEqualMapsIgnoreOrder(t *testing.T) {
	a := Map([]Entry{{String("x"), Int(1)}, {String("y"), Int(2)}})
	b := Map([]Entry{{String("y"), Int(2)}, {String("x"), Int(1)}})
	if !Equal(a, b) {
		t.Errorf("expected maps with same entries in different order to compare equal")
	}
}

func TestMapLastWriteWins(t *testing.T) {
	m := Map([]Entry{{String("x"), Int(1)}, {String("x"), Int(2)}})
	v, ok := m.Lookup(String("x"))
	if !ok {
		t.Fatalf("expected key x present")
	}
	if !Equal(v, Int(2)) {
		t.Errorf("expected last write to win, got %v", v)
	}
	if len(m.AsMapEntries()) != 1 {
		t.Errorf("expected duplicate key to collapse to one entry, got %d", len(m.AsMapEntries()))
	}
}

func TestCompareOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"1 < 2", Int(1), Int(2), -1},
		{"2.0 == 2", Double(2.0), Int(2), 0},
		{"false < true", Bool(false), Bool(true), -1},
		{"a < b", String("a"), String("b"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareIncomparable(t *testing.T) {
	if _, err := Compare(String("a"), Int(1)); err == nil {
		t.Errorf("expected error comparing string to int")
	}
	if _, err := Compare(Null, Null); err == nil {
		t.Errorf("expected error comparing null values")
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want int
	}{
		{"string", String("hello"), 5},
		{"bytes", Bytes([]byte{1, 2, 3}), 3},
		{"list", List([]Value{Int(1), Int(2)}), 2},
		{"map", Map([]Entry{{String("a"), Int(1)}}), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Size(tt.v)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Size(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
	if _, err := Size(Int(5)); err == nil {
		t.Errorf("expected error sizing an int")
	}
}

func TestUtf16LengthSurrogatePair(t *testing.T) {
	// U+1F600 (grinning face) needs a surrogate pair in UTF-16.
	s := "\U0001F600"
	if got := Utf16Length(s); got != 2 {
		t.Errorf("Utf16Length(%q) = %d, want 2", s, got)
	}
}

func TestToDisplayString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null, "null"},
		{Bool(true), "true"},
		{Int(42), "42"},
		{Uint(7), "7"},
		{String("hi"), "hi"},
		{List([]Value{Int(1), String("a")}), `[1, "a"]`},
		{Map([]Entry{{String("k"), Int(1)}}), `{"k": 1}`},
	}
	for _, tt := range tests {
		if got := ToDisplayString(tt.v); got != tt.want {
			t.Errorf("ToDisplayString(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
