package render

import (
	"strings"
	"testing"

	"github.com/davidahmann/ctxmap/core/contextmap"
	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

func gridRows(t *testing.T, rendered string) []string {
	t.Helper()
	var rows []string
	for _, line := range strings.Split(rendered, "\n") {
		if strings.HasPrefix(line, "│") && strings.HasSuffix(line, "│") {
			rows = append(rows, strings.TrimSuffix(strings.TrimPrefix(line, "│"), "│"))
		}
	}
	return rows
}

func TestSummaryGridHasExactly100Cells(t *testing.T) {
	rendered := Summary(contextmap.GenerateSample())
	rows := gridRows(t, rendered)
	if len(rows) != 10 {
		t.Fatalf("expected 10 grid rows, got %d", len(rows))
	}
	total := 0
	for index, row := range rows {
		width := len([]rune(row))
		if width != 10 {
			t.Fatalf("row %d holds %d cells, want 10", index, width)
		}
		total += width
	}
	if total != 100 {
		t.Fatalf("grid holds %d cells, want 100", total)
	}
}

func TestAllocateCellsAlwaysSumsTo100(t *testing.T) {
	cases := []struct {
		name  string
		chars []int
	}{
		{name: "thirds", chars: []int{100, 100, 100}},
		{name: "sevenths", chars: []int{1, 1, 1, 1, 1, 1, 1}},
		{name: "skewed", chars: []int{9973, 17, 7, 3}},
		{name: "with zeros", chars: []int{0, 50, 0, 50, 0}},
		{name: "single", chars: []int{42}},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			categories := make([]gridCategory, len(testCase.chars))
			total := 0
			for index, chars := range testCase.chars {
				categories[index] = gridCategory{Symbol: "x", Label: "cat", Chars: chars}
				total += chars
			}
			cells := allocateCells(categories, total)
			sum := 0
			for _, cellCount := range cells {
				sum += cellCount
			}
			if sum != 100 {
				t.Fatalf("cells sum to %d, want 100 (%v)", sum, cells)
			}
		})
	}
}

func TestAllocateCellsLargestRemainderTieBreaksByLegendOrder(t *testing.T) {
	categories := []gridCategory{
		{Symbol: "a", Label: "first", Chars: 100},
		{Symbol: "b", Label: "second", Chars: 100},
		{Symbol: "c", Label: "third", Chars: 100},
	}
	cells := allocateCells(categories, 300)
	if cells[0] != 34 || cells[1] != 33 || cells[2] != 33 {
		t.Fatalf("equal remainders must favor legend order, got %v", cells)
	}
}

func TestAllocateCellsIsReproducible(t *testing.T) {
	categories := []gridCategory{
		{Symbol: "a", Label: "a", Chars: 500},
		{Symbol: "b", Label: "b", Chars: 7050},
		{Symbol: "c", Label: "c", Chars: 750},
		{Symbol: "d", Label: "d", Chars: 850},
	}
	first := allocateCells(categories, 9150)
	second := allocateCells(categories, 9150)
	for index := range first {
		if first[index] != second[index] {
			t.Fatalf("allocation not reproducible: %v vs %v", first, second)
		}
	}
}

func TestSummaryZeroTotalInput(t *testing.T) {
	m := schemacontextmap.ContextMap{
		SchemaVersion: schemacontextmap.SchemaVersion,
		GenerationID:  "00000000-0000-4000-8000-000000000000",
		Provenance: schemacontextmap.Provenance{
			TimestampUTC: "2025-06-01T12:00:00Z",
			Model:        "gpt-4-turbo",
			Provider:     "openai",
			PromptFile:   "prompts/empty.pdd",
		},
	}
	rendered := Summary(m)
	if !strings.Contains(rendered, "No input data to visualize.") {
		t.Fatalf("expected zero-input notice, got:\n%s", rendered)
	}
	if strings.Contains(rendered, "┌") {
		t.Fatal("zero-input summary must not draw a grid")
	}
}

func TestSummaryIncludesRemainderCategory(t *testing.T) {
	m := contextmap.GenerateSample()
	m.Input.TotalChars += 500
	rendered := Summary(m)
	if !strings.Contains(rendered, "Other/Structure") {
		t.Fatalf("expected remainder category in legend:\n%s", rendered)
	}
}

func TestSummaryLegendOmitsZeroCategories(t *testing.T) {
	m := contextmap.GenerateSample()
	m.Input.PromptBreakdown.FewShotExamples = nil
	m.Input.PromptBreakdown.FewShotTotalChars = 0
	rendered := Summary(m)
	if strings.Contains(rendered, "Few-Shot Examples") {
		t.Fatalf("zero-size category must not appear in the legend:\n%s", rendered)
	}
}
