package layout

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/layout.schema.json
var schemaDocument []byte

const schemaURL = "layout.schema.json"

var (
	ErrSchemaInvalid = errors.New("layout: document does not match schema")

	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// Issue is one schema violation at a JSON pointer location.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// SchemaError lists every leaf violation reported by the schema check.
type SchemaError struct {
	Issues []Issue
	Cause  error
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaInvalid
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaDocument)); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// Decode checks data against the layout schema and builds the node tree.
// It does not run Validate; bounds and ratio rules are reported there with
// node paths.
func Decode(data []byte) (*Document, error) {
	compiled, err := schema()
	if err != nil {
		return nil, fmt.Errorf("layout: compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, &SchemaError{Issues: []Issue{{Message: "invalid json: " + err.Error()}}, Cause: err}
	}
	if err := compiled.Validate(instance); err != nil {
		return nil, &SchemaError{Issues: collectIssues(err), Cause: err}
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("layout: decode: %w", err)
	}
	body, err := buildStream(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("layout: decode: %w", err)
	}
	return &Document{Body: body}, nil
}

func collectIssues(err error) []Issue {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: err.Error()}}
	}
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return issues
}
