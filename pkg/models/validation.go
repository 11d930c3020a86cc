package models

// ValidationErrorType enumerates the structural and configuration problems
// the validator can report.
type ValidationErrorType string

const (
	ValidationMissingTrigger       ValidationErrorType = "missing_trigger"
	ValidationMultipleTriggers     ValidationErrorType = "multiple_triggers"
	ValidationOrphanedNode         ValidationErrorType = "orphaned_node"
	ValidationCircularDependency   ValidationErrorType = "circular_dependency"
	ValidationMissingRequiredField ValidationErrorType = "missing_required_field"
	ValidationInvalidURL           ValidationErrorType = "invalid_url"
	ValidationInvalidExpression    ValidationErrorType = "invalid_expression"
	ValidationMissingCredentials   ValidationErrorType = "missing_credentials"
	ValidationDanglingEdge         ValidationErrorType = "dangling_edge"
	ValidationDuplicateID          ValidationErrorType = "duplicate_id"
)

// Severity ranks validation errors. A workflow is valid iff no remaining
// error is critical or high.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// ValidationError is one problem found in a workflow graph. Fixable errors
// are candidates for the auto-repair engine; unfixable ones persist into
// the final result for the caller to judge.
type ValidationError struct {
	Type         ValidationErrorType `json:"type"`
	Severity     Severity            `json:"severity"`
	Message      string              `json:"message"`
	NodeID       string              `json:"nodeId,omitempty"`
	EdgeID       string              `json:"edgeId,omitempty"`
	Field        string              `json:"field,omitempty"`
	Fixable      bool                `json:"fixable"`
	SuggestedFix string              `json:"suggestedFix,omitempty"`
}

// ValidationWarning is a non-blocking business-logic observation.
type ValidationWarning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	NodeID  string `json:"nodeId,omitempty"`
}

// ValidationResult is the full outcome of validating one workflow graph.
// AppliedFixes is filled in by the repair engine when it re-validates.
type ValidationResult struct {
	Valid        bool                `json:"valid"`
	Errors       []ValidationError   `json:"errors"`
	Warnings     []ValidationWarning `json:"warnings"`
	AppliedFixes []Fix               `json:"appliedFixes,omitempty"`
}

// FixableErrors returns the subset of errors the repair engine may act on.
func (r *ValidationResult) FixableErrors() []ValidationError {
	fixable := make([]ValidationError, 0, len(r.Errors))

	for _, validationError := range r.Errors {
		if validationError.Fixable {
			fixable = append(fixable, validationError)
		}
	}

	return fixable
}

// FixType enumerates the repairs the auto-repair engine knows how to apply.
type FixType string

const (
	FixAddTrigger       FixType = "add_trigger"
	FixConnectOrphan    FixType = "connect_orphan"
	FixFillField        FixType = "fill_field"
	FixRemoveDuplicates FixType = "remove_duplicate_triggers"
	FixRemoveEdge       FixType = "remove_dangling_edge"
)

// Fix is one concrete repair synthesized from a fixable validation error.
type Fix struct {
	Type        FixType        `json:"type"`
	Description string         `json:"description"`
	NodeID      string         `json:"nodeId,omitempty"`
	EdgeID      string         `json:"edgeId,omitempty"`
	Field       string         `json:"field,omitempty"`
	Changes     map[string]any `json:"changes,omitempty"`
}
