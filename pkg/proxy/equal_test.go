package proxy

import (
	"math"
	"testing"
)

func TestIs(t *testing.T) {
	negZero := math.Copysign(0, -1)
	slice := []int{1, 2}
	m := map[string]int{"a": 1}
	obj := NewObject(nil)

	type pair struct {
		A int
		B any
	}
	type reading struct {
		F    float64
		note string
	}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil zero", nil, 0, false},
		{"ints", 1, 1, true},
		{"int vs int64", 1, int64(1), false},
		{"int vs float", 1, 1.0, false},
		{"strings", "a", "a", true},
		{"NaN", math.NaN(), math.NaN(), true},
		{"float32 NaN", float32(math.NaN()), float32(math.NaN()), true},
		{"zero signs", 0.0, negZero, false},
		{"same zero", negZero, negZero, true},
		{"floats", 1.5, 1.5, true},
		{"same slice", slice, slice, true},
		{"equal slices", []int{1, 2}, []int{1, 2}, false},
		{"same map", m, m, true},
		{"equal maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"same container", obj, obj, true},
		{"distinct containers", NewObject(nil), NewObject(nil), false},
		{"structs", pair{A: 1, B: "x"}, pair{A: 1, B: "x"}, true},
		{"struct with slice field", pair{A: 1, B: []int{1}}, pair{A: 1, B: []int{1}}, false},
		{"struct with same slice field", pair{A: 1, B: slice}, pair{A: 1, B: slice}, true},
		{"struct with NaN", reading{F: math.NaN(), note: "x"}, reading{F: math.NaN(), note: "x"}, true},
		{"struct with zero signs", reading{F: 0}, reading{F: negZero}, false},
		{"struct unexported field differs", reading{note: "a"}, reading{note: "b"}, false},
		{"NaN inside interface field", pair{B: math.NaN()}, pair{B: math.NaN()}, true},
		{"interface field types differ", pair{B: 1}, pair{B: int64(1)}, false},
		{"array with NaN", [2]float64{1, math.NaN()}, [2]float64{1, math.NaN()}, true},
		{"arrays differ", [2]int{1, 2}, [2]int{1, 3}, false},
		{"complex NaN", complex(math.NaN(), 1), complex(math.NaN(), 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.a, tt.b); got != tt.want {
				t.Errorf("Is(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSetSameStructWithNaNIsNoOp(t *testing.T) {
	type reading struct{ F float64 }
	o := NewObject(map[string]any{"r": reading{F: math.NaN()}})

	notified := 0
	o.Subscribe(func(Op) { notified++ }, false)

	o.Set("r", reading{F: math.NaN()})
	if notified != 0 {
		t.Errorf("notified %d times, want 0", notified)
	}
}
