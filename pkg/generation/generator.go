package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/otelhelper"
	"github.com/dukex/flowgen/pkg/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Stage identifies a phase of the generation pipeline, reported through
// the progress callback and attached to trace spans.
type Stage string

const (
	StageExtracting  Stage = "extracting_requirements"
	StagePlanning    Stage = "planning_structure"
	StageAssembling  Stage = "assembling_graph"
	StageValidating  Stage = "validating"
	StageRepairing   Stage = "repairing"
	StageDocumenting Stage = "documenting"
)

// stageProgress maps each stage to its completion percentage once done.
var stageProgress = map[Stage]int{
	StageExtracting:  20,
	StagePlanning:    40,
	StageAssembling:  60,
	StageValidating:  75,
	StageRepairing:   90,
	StageDocumenting: 100,
}

// GenerateOptions tunes a single generation run. All fields are optional.
type GenerateOptions struct {
	// Answers are structured replies to earlier clarification questions.
	Answers map[string]string
	// Config carries caller-supplied node configuration overrides, applied
	// to every node whose definition knows the field.
	Config map[string]any
	// CurrentWorkflow, when set, is fed to extraction as prior context so a
	// follow-up prompt refines rather than restarts.
	CurrentWorkflow *models.Workflow
	// OnProgress is invoked after each completed stage.
	OnProgress func(stage Stage, percent int)
}

// Generator runs the full prompt-to-workflow pipeline: requirements
// extraction, structure planning, graph assembly, validation, bounded
// auto-repair, and documentation.
type Generator struct {
	extractor    *Extractor
	planner      *Planner
	selector     *Selector
	configurator *Configurator
	connections  *ConnectionBuilder
	validator    *Validator
	repairer     *Repairer
	documenter   *Documenter
	logger       *slog.Logger
}

// NewGenerator assembles a pipeline over the given completion provider
// and node catalogue.
func NewGenerator(completions provider.Provider, cat *catalogue.Catalogue, logger *slog.Logger) *Generator {
	validator := NewValidator(cat)
	configurator := NewConfigurator(cat)

	return &Generator{
		extractor:    NewExtractor(completions, logger),
		planner:      NewPlanner(completions, cat, logger),
		selector:     NewSelector(cat),
		configurator: configurator,
		connections:  NewConnectionBuilder(cat),
		validator:    validator,
		repairer:     NewRepairer(validator, configurator),
		documenter:   NewDocumenter(cat),
		logger:       logger.With("module", "generator"),
	}
}

// Generate produces a complete generation result for the prompt. The only
// failure modes are an empty prompt and a structurally invalid plan;
// provider outages degrade to deterministic heuristics instead.
func (g *Generator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*models.GenerationResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}

	tracer := otel.Tracer("flowgen.generation")

	ctx, span := otelhelper.StartSpan(ctx, tracer, "generation.generate",
		attribute.Int(otelhelper.PromptLengthKey, len(prompt)))
	defer span.End()

	requirements := g.extractor.Extract(ctx, prompt, describeWorkflow(opts.CurrentWorkflow), opts.Answers)
	g.report(opts, StageExtracting)

	structure, err := g.planner.Plan(ctx, requirements)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("planning failed: %w", err)
	}

	span.SetAttributes(attribute.String(otelhelper.TriggerTypeKey, structure.Trigger))
	g.report(opts, StagePlanning)

	workflow := g.assemble(structure, requirements, opts.Config)
	span.SetAttributes(
		attribute.Int(otelhelper.NodeCountKey, len(workflow.Nodes)),
		attribute.Int(otelhelper.EdgeCountKey, len(workflow.Edges)),
	)
	g.report(opts, StageAssembling)

	result := g.validator.Validate(workflow)
	span.SetAttributes(attribute.Int(otelhelper.ErrorCountKey, len(result.Errors)))
	g.report(opts, StageValidating)

	outcome := g.repairer.Repair(workflow)
	workflow = outcome.Workflow
	result = outcome.Result

	span.SetAttributes(
		attribute.Int(otelhelper.FixCountKey, len(outcome.Fixes)),
		attribute.Int(otelhelper.IterationCountKey, outcome.Iterations),
	)
	g.report(opts, StageRepairing)

	g.logger.InfoContext(ctx, "Generation complete",
		"nodes", len(workflow.Nodes),
		"edges", len(workflow.Edges),
		"valid", result.Valid,
		"fixes", len(outcome.Fixes),
		"repair_iterations", outcome.Iterations,
	)

	documentation := g.documenter.Document(workflow, requirements)
	suggestions := g.documenter.Suggest(workflow, result)
	g.report(opts, StageDocumenting)

	return &models.GenerationResult{
		Workflow:            workflow,
		Documentation:       documentation,
		Suggestions:         suggestions,
		EstimatedComplexity: requirements.Complexity,
		Requirements:        requirements,
		RequiredCredentials: RequiredCredentials(workflow),
		Validation:          &result,
	}, nil
}

// assemble instantiates, configures, and connects the planned structure
// into a workflow artifact.
func (g *Generator) assemble(structure *models.GenerationStructure, requirements *models.Requirements, config map[string]any) *models.Workflow {
	nodes := g.selector.Select(structure)

	for i, node := range nodes {
		nodes[i] = g.configurator.Configure(node, requirements, config)
	}

	return &models.Workflow{
		Nodes: nodes,
		Edges: g.connections.Connect(nodes),
		Metadata: &models.WorkflowMetadata{
			Name:        workflowName(requirements.PrimaryGoal),
			Description: requirements.PrimaryGoal,
			GeneratedAt: time.Now().UTC(),
			Generator:   "flowgen",
			Complexity:  string(requirements.Complexity),
		},
	}
}

func (g *Generator) report(opts GenerateOptions, stage Stage) {
	if opts.OnProgress != nil {
		opts.OnProgress(stage, stageProgress[stage])
	}
}

// describeWorkflow renders an existing artifact as prior context for a
// refinement prompt. Empty when there is none.
func describeWorkflow(workflow *models.Workflow) string {
	if workflow == nil || len(workflow.Nodes) == 0 {
		return ""
	}

	var builder strings.Builder

	builder.WriteString("The user already has a workflow with these nodes:\n")

	for _, node := range workflow.Nodes {
		builder.WriteString(fmt.Sprintf("- %s (%s)\n", node.Data.Label, node.Type))
	}

	return builder.String()
}

// workflowName derives a short title from the goal sentence.
func workflowName(goal string) string {
	words := strings.Fields(strings.TrimSpace(goal))
	if len(words) == 0 {
		return "Generated Workflow"
	}

	if len(words) > 6 {
		words = words[:6]
	}

	name := strings.Join(words, " ")

	return strings.ToUpper(name[:1]) + name[1:]
}
