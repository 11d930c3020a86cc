package models

// Complexity estimates how involved the generated workflow will be.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Requirements is the normalized intent extracted from a user prompt.
// Immutable once produced; every downstream pipeline stage reads it.
type Requirements struct {
	PrimaryGoal string     `json:"primaryGoal" validate:"required"`
	KeySteps    []string   `json:"keySteps"`
	Inputs      []string   `json:"inputs"`
	Outputs     []string   `json:"outputs"`
	Constraints []string   `json:"constraints"`
	Complexity  Complexity `json:"complexity"  validate:"omitempty,oneof=simple medium complex"`

	// Extracted hints. Deliberately conservative: absent or ambiguous
	// signals leave these empty rather than guessing, since they drive
	// trigger selection downstream.
	URLs        []string `json:"urls,omitempty"`
	APIs        []string `json:"apis,omitempty"`
	Credentials []string `json:"credentials,omitempty"`
	Schedules   []string `json:"schedules,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
}

// HasPlatform reports whether any extracted platform hint contains the
// given substring (case handling is the caller's concern; hints are
// stored lowercased).
func (r *Requirements) HasPlatform(name string) bool {
	for _, platform := range r.Platforms {
		if platform == name {
			return true
		}
	}

	return false
}
