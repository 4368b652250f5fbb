package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fermata-run/fermata/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// Parser is a pure transform from workflow JSON to the task-tree model.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	validate *validator.Validate
	schema   *gojsonschema.Schema
}

func NewParser() *Parser {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(workflowSchema))
	if err != nil {
		// The schema document is a compile-time constant; failing to
		// compile it is a programming error.
		panic(err)
	}

	return &Parser{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		schema:   schema,
	}
}

// Parse validates and decodes a workflow document. Errors are returned,
// never thrown: a rejected document produces no execution id and no
// side effects.
func (p *Parser) Parse(document []byte) (*models.Workflow, error) {
	result, err := p.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, &ParseError{Op: "Parse", Detail: err.Error(), Err: ErrMalformedJSON}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, &ParseError{Op: "Parse", Detail: strings.Join(details, "; "), Err: ErrMalformedJSON}
	}

	var workflow models.Workflow
	if err := json.Unmarshal(document, &workflow); err != nil {
		return nil, &ParseError{Op: "Parse", Detail: err.Error(), Err: ErrMalformedJSON}
	}

	if err := p.validate.Struct(&workflow); err != nil {
		return nil, &ParseError{Op: "Parse", Detail: err.Error(), Err: ErrMalformedJSON}
	}

	if err := p.validateTree(&workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// Serialize renders a workflow back into canonical JSON. Parsing the
// serialized form yields the same tree (round-trip idempotence), which is
// what lets snapshots persist the definition as a document.
func (p *Parser) Serialize(workflow *models.Workflow) ([]byte, error) {
	document, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow %s: %w", workflow.ID, err)
	}

	return document, nil
}

// validateTree walks every root collecting ids and checking function tags.
// Ids must be globally unique across the whole tree and every tag must be
// one of the closed variants.
func (p *Parser) validateTree(workflow *models.Workflow) error {
	seen := make(map[string]struct{})

	var walkErr error

	for _, root := range workflow.Tasks {
		root.Walk(func(task *models.Task) bool {
			if _, duplicate := seen[task.ID]; duplicate {
				walkErr = &ParseError{Op: "Parse", TaskID: task.ID, Detail: "id already used", Err: ErrDuplicateTaskID}

				return false
			}

			seen[task.ID] = struct{}{}

			if !task.Function.IsKnown() {
				walkErr = &ParseError{Op: "Parse", TaskID: task.ID, Detail: fmt.Sprintf("function %q", task.Function.Name), Err: ErrUnknownFunction}

				return false
			}

			if task.Function.Name == models.FunctionCustom && task.Function.HandlerName() == "" {
				walkErr = &ParseError{Op: "Parse", TaskID: task.ID, Detail: "custom function missing input 'name'", Err: ErrUnknownFunction}

				return false
			}

			return true
		})

		if walkErr != nil {
			return walkErr
		}
	}

	return nil
}
