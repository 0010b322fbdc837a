// Package model contains domain models passed between layers.
package model

import "strings"

// Box is a detector bounding box in pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection is one object reported by the detector. Only Label takes part in
// scoring; Confidence and Box are for filtering and annotation.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
	Box        *Box    `json:"box,omitempty"`
}

// Labels returns the detection labels in emission order.
func Labels(dets []Detection) []string {
	out := make([]string, 0, len(dets))
	for _, d := range dets {
		out = append(out, d.Label)
	}
	return out
}

// FilterByConfidence drops detections below minConfidence. A detection without
// a confidence (zero) is kept when minConfidence is zero.
func FilterByConfidence(dets []Detection, minConfidence float64) []Detection {
	if minConfidence <= 0 {
		return dets
	}
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= minConfidence {
			out = append(out, d)
		}
	}
	return out
}

// NormalizeLabel lowercases, trims and collapses inner whitespace so
// "Potted  Plant " matches the catalog key "potted plant".
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeLabels applies NormalizeLabel and drops empty labels. Order and
// duplicates are preserved.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if n := NormalizeLabel(l); n != "" {
			out = append(out, n)
		}
	}
	return out
}
