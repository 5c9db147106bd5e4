package contextmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/kaptinlin/jsonschema"

	"github.com/davidahmann/ctxmap/core/jcs"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

const maxContextMapBytes = int64(4 * 1024 * 1024)

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(schemacontextmap.SchemaJSON)
	if err != nil {
		panic(fmt.Sprintf("compile bundled context map schema: %v", err))
	}
	return schema
}

// Parse decodes JSON into a ContextMap and validates it. Unknown fields,
// schema violations, and invariant violations are all reported through one
// ValidationError listing every defect.
func Parse(payload []byte) (schemacontextmap.ContextMap, error) {
	var violations []Violation

	result := compiledSchema.ValidateJSON(payload)
	if result != nil && !result.IsValid() {
		violations = append(violations, schemaViolations(result)...)
	}

	var m schemacontextmap.ContextMap
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		violations = append(violations, Violation{Field: "$", Reason: fmt.Sprintf("decode context map: %v", err)})
		return schemacontextmap.ContextMap{}, classifyValidation(violations)
	}

	violations = append(violations, collectViolations(m)...)
	if err := classifyValidation(violations); err != nil {
		return schemacontextmap.ContextMap{}, err
	}
	return m, nil
}

func schemaViolations(result *jsonschema.EvaluationResult) []Violation {
	fields := make([]string, 0, len(result.Errors))
	for field := range result.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	violations := make([]Violation, 0, len(fields))
	for _, field := range fields {
		violations = append(violations, Violation{
			Field:  field,
			Reason: fmt.Sprintf("%v", result.Errors[field]),
		})
	}
	return violations
}

// Load reads and parses a context map file.
func Load(path string) (schemacontextmap.ContextMap, error) {
	info, err := os.Stat(path)
	if err != nil {
		return schemacontextmap.ContextMap{}, fmt.Errorf("stat context map: %w", err)
	}
	if info.Size() > maxContextMapBytes {
		return schemacontextmap.ContextMap{}, fmt.Errorf("context map exceeds size limit (%d bytes)", maxContextMapBytes)
	}
	// #nosec G304 -- path is explicit local user input.
	payload, err := os.ReadFile(path)
	if err != nil {
		return schemacontextmap.ContextMap{}, fmt.Errorf("read context map: %w", err)
	}
	return Parse(payload)
}

// Encode serializes a context map as 2-space-indented JSON with a trailing
// newline. Parse(Encode(x)) == x for every valid x.
func Encode(m schemacontextmap.ContextMap) ([]byte, error) {
	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode context map: %w", err)
	}
	return append(encoded, '\n'), nil
}

// CanonicalDigest returns the sha256 hex digest of the RFC 8785 canonical
// form of the encoded map, stable across key order and whitespace.
func CanonicalDigest(m schemacontextmap.ContextMap) (string, error) {
	encoded, err := Encode(m)
	if err != nil {
		return "", err
	}
	return jcs.DigestJCS(encoded)
}
