package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	schemacontextmap "github.com/davidahmann/ctxmap/core/schema/v1/contextmap"
)

const gridCells = 100

// gridCategory order is the legend order; allocation ties break toward the
// earlier entry.
type gridCategory struct {
	Symbol string
	Label  string
	Chars  int
}

// Summary renders the provenance header, the 10x10 composition grid, and the
// legend. Cell allocation uses largest-remainder rounding so the grid always
// holds exactly 100 cells.
func Summary(m schemacontextmap.ContextMap) string {
	var b strings.Builder
	b.WriteString(renderHeader(m))

	total := m.Input.TotalChars
	if total == 0 {
		b.WriteString("No input data to visualize.\n")
		return b.String()
	}

	categories := summaryCategories(m.Input)
	cells := allocateCells(categories, total)

	var symbols []rune
	for index, category := range categories {
		symbols = append(symbols, []rune(strings.Repeat(category.Symbol, cells[index]))...)
	}

	b.WriteString("Input Composition (1 cell ≈ 1%)\n")
	b.WriteString("┌──────────┐\n")
	for row := 0; row < gridCells; row += 10 {
		b.WriteString("│")
		b.WriteString(string(symbols[row : row+10]))
		b.WriteString("│\n")
	}
	b.WriteString("└──────────┘\n")

	b.WriteString("\nLegend:\n")
	for _, category := range categories {
		if category.Chars == 0 {
			continue
		}
		fmt.Fprintf(&b, " %s %s %6s (%s)\n",
			category.Symbol,
			runewidth.FillRight(category.Label, 20),
			formatChars(category.Chars),
			formatPercent(category.Chars, total),
		)
	}
	return b.String()
}

func summaryCategories(input schemacontextmap.Input) []gridCategory {
	var breakdown schemacontextmap.PromptBreakdown
	if input.PromptBreakdown != nil {
		breakdown = *input.PromptBreakdown
	}
	summary := breakdown.PreprocessorSummary

	categories := []gridCategory{
		{Symbol: "▣", Label: "PDD System Prompt", Chars: breakdown.PDDSystemPromptChars},
		{Symbol: "◆", Label: "Devunit Prompt", Chars: breakdown.DevunitPromptChars},
		{Symbol: "█", Label: "Disk Includes", Chars: summary.IncludeChars},
		{Symbol: "▓", Label: "Web Includes", Chars: summary.WebChars},
		{Symbol: "⌘", Label: "Shell Output", Chars: summary.ShellChars},
		{Symbol: "•", Label: "Variables", Chars: summary.VariableChars},
		{Symbol: "◇", Label: "Few-Shot Examples", Chars: breakdown.FewShotTotalChars},
		{Symbol: "▤", Label: "Prepend/Append", Chars: breakdown.PrependedChars + breakdown.AppendedChars},
	}

	accounted := 0
	for _, category := range categories {
		accounted += category.Chars
	}
	if remainder := input.TotalChars - accounted; remainder > 0 {
		categories = append(categories, gridCategory{Symbol: "?", Label: "Other/Structure", Chars: remainder})
	}
	return categories
}

// allocateCells assigns exactly gridCells cells proportionally to each
// category's share of total: floor(share) first, then one extra cell each in
// descending order of fractional remainder, legend order breaking ties.
func allocateCells(categories []gridCategory, total int) []int {
	cells := make([]int, len(categories))
	remainders := make([]float64, len(categories))
	assigned := 0
	for index, category := range categories {
		share := float64(category.Chars) / float64(total) * gridCells
		cells[index] = int(math.Floor(share))
		remainders[index] = share - math.Floor(share)
		assigned += cells[index]
	}

	order := make([]int, len(categories))
	for index := range order {
		order[index] = index
	}
	sort.SliceStable(order, func(i, j int) bool {
		return remainders[order[i]] > remainders[order[j]]
	})

	for extra := 0; extra < gridCells-assigned; extra++ {
		cells[order[extra%len(order)]]++
	}
	return cells
}
