package status

import (
	"math"
	"testing"
)

func TestDiscreteColorscaleFiveBands(t *testing.T) {
	stops := DiscreteColorscale(PastelColors)
	if len(stops) != 9 {
		t.Fatalf("got %d stops, want 9", len(stops))
	}
	if stops[0].Pos != 0.0 || stops[0].Hex != PastelColors[0] {
		t.Fatalf("first stop = %+v", stops[0])
	}
	if last := stops[len(stops)-1]; last.Pos != 1.0 || last.Hex != PastelColors[4] {
		t.Fatalf("last stop = %+v", last)
	}

	// Band i spans [i/(n-1) .. (i+1)/(n-1)) with equal widths; verify each
	// color's band edges land on the expected quarter boundaries.
	n := len(PastelColors)
	for i := 1; i < n; i++ {
		boundary := float64(i) / float64(n-1)
		closeBefore := stops[2*i-1]
		open := stops[2*i]
		if math.Abs(closeBefore.Pos-boundary) > 1e-5 || closeBefore.Hex != PastelColors[i-1] {
			t.Fatalf("band close %d = %+v, want ~%v of %s", i, closeBefore, boundary, PastelColors[i-1])
		}
		if open.Hex != PastelColors[i] {
			t.Fatalf("band open %d = %+v", i, open)
		}
		if open.Pos < closeBefore.Pos {
			t.Fatalf("stops out of order at band %d: %+v before %+v", i, closeBefore, open)
		}
	}

	// Positions must be non-decreasing over the whole scale.
	for i := 1; i < len(stops); i++ {
		if stops[i].Pos < stops[i-1].Pos {
			t.Fatalf("positions decrease at %d: %v -> %v", i, stops[i-1].Pos, stops[i].Pos)
		}
	}
}

func TestDiscreteColorscaleSingleColor(t *testing.T) {
	stops := DiscreteColorscale([]string{"#ABCDEF"})
	if len(stops) != 2 {
		t.Fatalf("got %d stops, want 2", len(stops))
	}
	if stops[0] != (ColorStop{Pos: 0.0, Hex: "#ABCDEF"}) || stops[1] != (ColorStop{Pos: 1.0, Hex: "#ABCDEF"}) {
		t.Fatalf("stops = %+v", stops)
	}
}

func TestDiscreteColorscaleEmpty(t *testing.T) {
	if stops := DiscreteColorscale(nil); stops != nil {
		t.Fatalf("stops = %+v, want nil", stops)
	}
}

func TestVocabularyColorscaleMatchesPalette(t *testing.T) {
	stops := VocabularyColorscale()
	if stops[0].Hex != PastelColors[0] || stops[len(stops)-1].Hex != PastelColors[len(PastelColors)-1] {
		t.Fatalf("stops = %+v", stops)
	}
}

func TestColorFor(t *testing.T) {
	for i, s := range Vocabulary {
		hex, ok := ColorFor(s)
		if !ok || hex != PastelColors[i] {
			t.Fatalf("ColorFor(%q) = %q,%v", s, hex, ok)
		}
	}
	if _, ok := ColorFor("nope"); ok {
		t.Fatal("unknown status should have no color")
	}
}

func TestCodeRoundTrip(t *testing.T) {
	for i, s := range Vocabulary {
		if Code(s) != i {
			t.Fatalf("Code(%q) = %d, want %d", s, Code(s), i)
		}
	}
	if Code("other") != CodeUnknown {
		t.Fatalf("Code(other) = %d", Code("other"))
	}
}
