package main

import "testing"

func TestVec3UsesDefaultsWhenEmpty(t *testing.T) {
	got := vec3(nil, [3]float64{0.1, 0.2, 0.3})
	want := [3]float64{0.1, 0.2, 0.3}
	if got != want {
		t.Errorf("vec3(nil, ...) = %v, want %v", got, want)
	}
}

func TestVec3FillsMissingComponentsFromDefault(t *testing.T) {
	got := vec3([]float64{1, 2}, [3]float64{0, 0, 9})
	want := [3]float64{1, 2, 9}
	if got != want {
		t.Errorf("vec3 = %v, want %v", got, want)
	}
}

func TestVec3IgnoresExtraComponents(t *testing.T) {
	got := vec3([]float64{1, 2, 3, 4, 5}, [3]float64{})
	want := [3]float64{1, 2, 3}
	if got != want {
		t.Errorf("vec3 = %v, want %v", got, want)
	}
}
