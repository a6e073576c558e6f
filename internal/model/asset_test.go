package model

import (
	"reflect"
	"testing"
)

func TestVariants_Bitrates(t *testing.T) {
	v := Variants{320: "c", 128: "a", 192: "b"}
	got := v.Bitrates()
	want := []int{128, 192, 320}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bitrates() = %v; want %v", got, want)
	}
}

func TestVariants_ValueScan(t *testing.T) {
	in := Variants{128: "https://cdn/a", 320: "https://cdn/c"}
	raw, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out Variants
	if err := out.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %v; want %v", out, in)
	}
}

func TestVariants_ScanEdgeCases(t *testing.T) {
	var v Variants
	if err := v.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if v == nil || len(v) != 0 {
		t.Errorf("Scan(nil) = %v; want empty map", v)
	}

	if err := v.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
	if err := v.Scan([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}

	var nilVariants Variants
	raw, err := nilVariants.Value()
	if err != nil {
		t.Fatalf("Value on nil: %v", err)
	}
	if string(raw.([]byte)) != "{}" {
		t.Errorf("Value on nil = %s; want {}", raw)
	}
}
