package contextmap

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	coreerrors "github.com/davidahmann/ctxmap/core/errors"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	original := GenerateSample()
	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\noriginal: %+v\ndecoded:  %+v", original, decoded)
	}
}

func TestEncodeIsStable(t *testing.T) {
	first, err := Encode(GenerateSample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := Encode(GenerateSample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("expected byte-identical encodings for the deterministic sample")
	}
}

func TestCanonicalDigestStable(t *testing.T) {
	first, err := CanonicalDigest(GenerateSample())
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	second, err := CanonicalDigest(GenerateSample())
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if first != second {
		t.Fatalf("digest not stable: %s != %s", first, second)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	encoded, err := Encode(GenerateSample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tampered := strings.Replace(string(encoded), `"schema_version"`, `"surprise": 1, "schema_version"`, 1)
	if _, parseErr := Parse([]byte(tampered)); parseErr == nil {
		t.Fatal("expected unknown field rejection")
	}
}

func TestParseMalformedJSONIsValidationError(t *testing.T) {
	_, err := Parse([]byte(`{"schema_version": "1.`))
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if coreerrors.CategoryOf(err) != coreerrors.CategoryValidation {
		t.Fatalf("unexpected category: %s", coreerrors.CategoryOf(err))
	}
}

func TestParseReportsSchemaAndInvariantDefectsTogether(t *testing.T) {
	m := GenerateSample()
	m.GenerationID = "nope"
	m.Input.PromptBreakdown.PreprocessorSummary.IncludeChars = 1
	encoded, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, parseErr := Parse(encoded)
	if parseErr == nil {
		t.Fatal("expected validation failure")
	}
	var validationErr *ValidationError
	if !errors.As(parseErr, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", parseErr)
	}
	if !hasViolation(validationErr, "generation_id") {
		t.Errorf("missing generation_id violation: %v", validationErr.Violations)
	}
	if !hasViolation(validationErr, "input.prompt_breakdown.preprocessor_summary") {
		t.Errorf("missing summary violation: %v", validationErr.Violations)
	}
}

func TestLoadReadsPersistedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py.context.0.json")
	encoded, err := Encode(GenerateSample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, GenerateSample()) {
		t.Fatal("loaded map differs from sample")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
