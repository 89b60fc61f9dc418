package classifier

import "math"

// Result is the outcome of classifying a single image. Exactly one of the
// prediction fields or Error is populated, signalled by Success.
type Result struct {
	Success        bool               `json:"success"`
	Filename       string             `json:"filename,omitempty"`
	Class          string             `json:"class,omitempty"`
	Confidence     float64            `json:"confidence,omitempty"`
	Priority       Priority           `json:"priority,omitempty"`
	Description    string             `json:"description,omitempty"`
	AllPredictions map[string]float64 `json:"all_predictions,omitempty"`
	Error          string             `json:"error,omitempty"`

	cause error
}

// Cause returns the underlying error of a failed result so callers can map
// failures onto transport status codes. Nil for successful results.
func (r Result) Cause() error {
	return r.cause
}

func failure(err error) Result {
	return Result{Error: err.Error(), cause: err}
}

// Interpret converts a probability vector into a labeled, prioritized
// prediction. The most probable class wins; ties at the maximum resolve to
// the lowest index, i.e. the first occurrence in catalog order. Confidence
// is the winning probability as a percentage with two decimals.
//
// Vectors of the wrong length are a model contract violation rejected by
// Resource.Infer before they reach this point.
func Interpret(probs []float32) Result {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	all := make(map[string]float64, len(catalog))
	for i, info := range catalog {
		if i < len(probs) {
			all[info.Name] = roundPercent(probs[i])
		}
	}

	info := catalog[best]

	return Result{
		Success:        true,
		Class:          info.Name,
		Confidence:     roundPercent(probs[best]),
		Priority:       info.Priority,
		Description:    info.Description,
		AllPredictions: all,
	}
}

// roundPercent converts a probability to a percentage rounded to two
// decimal places.
func roundPercent(p float32) float64 {
	return math.Round(float64(p)*10000) / 100
}
