// Package dimension parses explicit measurements out of free text. It
// recognizes LxWxH triples (interpreted as inches) and standalone weights
// with unit conversion to pounds. Extraction is all-or-nothing per family:
// either a full triple matches or all three dimensions stay unknown; single
// axes are never inferred. Weight is extracted independently.
package dimension

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Source tags where a set of measurements came from.
type Source string

// Measurement provenance values.
const (
	SourceExplicit  Source = "explicit"
	SourceReference Source = "reference"
	SourceInferred  Source = "inferred"
)

// Parsed holds extracted measurements. A nil field means unknown, never zero.
type Parsed struct {
	Length *float64 `json:"length"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`
	Source Source   `json:"source"`
}

// HasAny reports whether any measurement was extracted.
func (p Parsed) HasAny() bool {
	return p.Length != nil || p.Width != nil || p.Height != nil || p.Weight != nil
}

// Result is the outcome of an extraction attempt. Extraction never fails;
// Found false with an explanatory Summary is the only miss signal.
type Result struct {
	Parsed  Parsed `json:"dimensions"`
	Found   bool   `json:"found"`
	Summary string `json:"summary"`
}

// Triple-dimension patterns, tried in order; first match wins. The only
// supported triple format is inches-oriented, so values are taken directly.
var triplePatterns = []*regexp.Regexp{
	// 10x8x4, 10"x8"x4", 10 x 8 x 4 inches
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*["']?\s*[xX×]\s*(\d+(?:\.\d+)?)\s*["']?\s*[xX×]\s*(\d+(?:\.\d+)?)\s*(?:in(?:ch(?:es)?)?|["'])?`),
	// 10in x 8in x 4in
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*in(?:ch(?:es)?)?\s*[xX×]\s*(\d+(?:\.\d+)?)\s*in(?:ch(?:es)?)?\s*[xX×]\s*(\d+(?:\.\d+)?)\s*in(?:ch(?:es)?)?`),
}

// Weight patterns with conversion factors to pounds, tried in order.
var weightPatterns = []struct {
	re     *regexp.Regexp
	factor float64
}{
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:lb(?:s)?|pound(?:s)?)`), 1.0},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kg|kilogram(?:s)?|kilo(?:s)?)`), 2.205},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:oz|ounce(?:s)?)`), 0.0625},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:g|gram(?:s)?)`), 0.0022},
}

// extractTriple finds an LxWxH triple in text, in inches.
func extractTriple(text string) (length, width, height *float64) {
	lower := strings.ToLower(text)

	for _, re := range triplePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		l, err1 := strconv.ParseFloat(m[1], 64)
		w, err2 := strconv.ParseFloat(m[2], 64)
		h, err3 := strconv.ParseFloat(m[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		return &l, &w, &h
	}
	return nil, nil, nil
}

// extractWeight finds a weight in text, normalized to pounds.
func extractWeight(text string) *float64 {
	lower := strings.ToLower(text)

	for _, p := range weightPatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lbs := v * p.factor
		return &lbs
	}
	return nil
}

// Extract parses explicit measurements from a product description.
func Extract(text string) Result {
	length, width, height := extractTriple(text)
	weight := extractWeight(text)

	parsed := Parsed{
		Length: length,
		Width:  width,
		Height: height,
		Weight: weight,
		Source: SourceExplicit,
	}

	if !parsed.HasAny() {
		return Result{
			Parsed:  parsed,
			Found:   false,
			Summary: "No explicit dimensions found in input",
		}
	}

	var parts []string
	if length != nil && width != nil && height != nil {
		parts = append(parts, fmt.Sprintf("%g×%g×%g in", *length, *width, *height))
	}
	if weight != nil {
		parts = append(parts, fmt.Sprintf("%.2f lbs", *weight))
	}

	summary := "Partial dimensions found"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}

	return Result{
		Parsed:  parsed,
		Found:   true,
		Summary: summary,
	}
}

// ParseReferenceDimensions applies the triple grammar to a catalogue-format
// dimension string such as "10 x 8 x 4 inches". The literal "N/A" and the
// empty string mean unknown.
func ParseReferenceDimensions(s string) (length, width, height *float64) {
	if s == "" || s == "N/A" {
		return nil, nil, nil
	}
	return extractTriple(s)
}

// ParseReferenceWeight applies the weight grammar to a catalogue-format
// weight string such as "1.5 pounds". "N/A" and "" mean unknown.
func ParseReferenceWeight(s string) *float64 {
	if s == "" || s == "N/A" {
		return nil
	}
	return extractWeight(s)
}
