package models

// PlannedStep is an abstract step placeholder produced by the structure
// planner before any concrete node exists.
type PlannedStep struct {
	ID          string `json:"id"          validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type"        validate:"required"`
}

// OutputDefinition describes one planned workflow output.
type OutputDefinition struct {
	Name        string `json:"name"        validate:"required"`
	Type        string `json:"type"        validate:"required,oneof=string number boolean object array file"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Format      string `json:"format,omitempty" validate:"omitempty,oneof=json csv xml html markdown"`
}

// GenerationStructure is the abstract plan between requirements and
// concrete nodes: one trigger type, ordered step placeholders, ordered
// output definitions. Produced once and read-only afterwards.
type GenerationStructure struct {
	Trigger string             `json:"trigger"`
	Steps   []PlannedStep      `json:"steps"   validate:"dive"`
	Outputs []OutputDefinition `json:"outputs" validate:"dive"`
}
