package dimension

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestExtractTripleAndWeight(t *testing.T) {
	res := Extract("10x8x4 inches, 5 lbs")

	if !res.Found {
		t.Fatal("expected Found=true")
	}
	if res.Parsed.Length == nil || *res.Parsed.Length != 10 {
		t.Errorf("length = %v, want 10", res.Parsed.Length)
	}
	if res.Parsed.Width == nil || *res.Parsed.Width != 8 {
		t.Errorf("width = %v, want 8", res.Parsed.Width)
	}
	if res.Parsed.Height == nil || *res.Parsed.Height != 4 {
		t.Errorf("height = %v, want 4", res.Parsed.Height)
	}
	if res.Parsed.Weight == nil || *res.Parsed.Weight != 5 {
		t.Errorf("weight = %v, want 5", res.Parsed.Weight)
	}
	if res.Parsed.Source != SourceExplicit {
		t.Errorf("source = %v, want explicit", res.Parsed.Source)
	}
	if !strings.Contains(res.Summary, "10×8×4 in") {
		t.Errorf("summary should include triple, got %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "5.00 lbs") {
		t.Errorf("summary should include weight, got %q", res.Summary)
	}
}

func TestExtractNothing(t *testing.T) {
	res := Extract("no numbers here")

	if res.Found {
		t.Error("expected Found=false")
	}
	if res.Parsed.HasAny() {
		t.Errorf("expected no measurements, got %+v", res.Parsed)
	}
	if res.Summary != "No explicit dimensions found in input" {
		t.Errorf("unexpected summary: %q", res.Summary)
	}
}

func TestExtractFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		wantL float64
		wantW float64
		wantH float64
	}{
		{"bare x separator", "box is 12x9x2", 12, 9, 2},
		{"quoted inches", `12" x 9" x 2"`, 12, 9, 2},
		{"spaced with unit", "12 x 9 x 2 inches", 12, 9, 2},
		{"unicode times", "12×9×2", 12, 9, 2},
		{"per-axis units", "12in x 9in x 2in", 12, 9, 2},
		{"decimals", "10.5 x 8.25 x 4.75 in", 10.5, 8.25, 4.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input)
			if !res.Found {
				t.Fatalf("Extract(%q) found nothing", tt.input)
			}
			if *res.Parsed.Length != tt.wantL || *res.Parsed.Width != tt.wantW || *res.Parsed.Height != tt.wantH {
				t.Errorf("got %v/%v/%v, want %v/%v/%v",
					*res.Parsed.Length, *res.Parsed.Width, *res.Parsed.Height,
					tt.wantL, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestWeightUnitConversion(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      float64
		tolerance float64
	}{
		{"pounds", "5 lbs", 5.0, 0},
		{"pound singular", "1 pound", 1.0, 0},
		{"kilograms", "2 kg", 4.41, 0.01},
		{"ounces", "16 oz", 1.0, 0},
		{"grams", "500 grams", 1.1, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input)
			if res.Parsed.Weight == nil {
				t.Fatalf("no weight extracted from %q", tt.input)
			}
			if !almostEqual(*res.Parsed.Weight, tt.want, tt.tolerance) {
				t.Errorf("weight = %v, want %v (±%v)", *res.Parsed.Weight, tt.want, tt.tolerance)
			}
		})
	}
}

func TestWeightOnlyIsFound(t *testing.T) {
	res := Extract("heavy item, about 12 kg")
	if !res.Found {
		t.Fatal("weight alone should count as found")
	}
	if res.Parsed.Length != nil {
		t.Error("no triple present, length must stay unknown")
	}
}

func TestNoSingleAxisInference(t *testing.T) {
	// A lone length must not populate any dimension field.
	res := Extract("about 15 inches long")
	if res.Parsed.Length != nil || res.Parsed.Width != nil || res.Parsed.Height != nil {
		t.Errorf("single-axis text must not fill dimensions, got %+v", res.Parsed)
	}
}

func TestParseReferenceDimensions(t *testing.T) {
	l, w, h := ParseReferenceDimensions("10 x 8 x 4 inches")
	if l == nil || *l != 10 || w == nil || *w != 8 || h == nil || *h != 4 {
		t.Errorf("got %v/%v/%v, want 10/8/4", l, w, h)
	}

	for _, s := range []string{"", "N/A"} {
		l, w, h := ParseReferenceDimensions(s)
		if l != nil || w != nil || h != nil {
			t.Errorf("ParseReferenceDimensions(%q) should be unknown", s)
		}
	}
}

func TestParseReferenceWeight(t *testing.T) {
	wt := ParseReferenceWeight("1.5 pounds")
	if wt == nil || *wt != 1.5 {
		t.Errorf("got %v, want 1.5", wt)
	}
	if ParseReferenceWeight("N/A") != nil {
		t.Error("N/A weight should be unknown")
	}
	if ParseReferenceWeight("") != nil {
		t.Error("empty weight should be unknown")
	}
}
