package detector

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/ecopoints/internal/domain/model"
)

type reply struct {
	Objects []model.Detection `json:"objects"`
}

// ParseDetections extracts detections from a model reply. It accepts an
// {"objects":[...]} document or a bare array, optionally wrapped in code
// fences or prose. Labels are normalized; entries without a label are dropped.
func ParseDetections(raw string) ([]model.Detection, error) {
	body := stripFences(raw)

	var dets []model.Detection
	switch {
	case decodeObject(body, &dets):
	case decodeArray(body, &dets):
	default:
		return nil, fmt.Errorf("%w: no detection list in %q", ErrParse, truncate(raw, 80))
	}

	out := make([]model.Detection, 0, len(dets))
	for _, d := range dets {
		d.Label = model.NormalizeLabel(d.Label)
		if d.Label == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeObject(s string, dets *[]model.Detection) bool {
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return false
	}
	var r reply
	if err := json.Unmarshal([]byte(s[start:end+1]), &r); err != nil || r.Objects == nil {
		return false
	}
	*dets = r.Objects
	return true
}

func decodeArray(s string, dets *[]model.Detection) bool {
	start, end := strings.Index(s, "["), strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(s[start:end+1]), dets) == nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		if j := strings.LastIndex(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
