// Package report renders assessment runs for humans and machines.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/segmentio/encoding/json"

	"github.com/spigell/o1-assessor/internal/assessment"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected json or markdown)", s)
	}
}

// Write renders run in the requested format.
func Write(w io.Writer, format Format, run *assessment.Run) error {
	switch format {
	case FormatJSON:
		return JSON(w, run)
	case FormatMarkdown:
		return Markdown(w, run)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// JSON writes run as indented JSON.
func JSON(w io.Writer, run *assessment.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown writes a summary table followed by per-criterion evidence.
func Markdown(w io.Writer, run *assessment.Run) error {
	names := orderedNames(run)

	var b strings.Builder
	fmt.Fprintf(&b, "# O-1A assessment\n\n**Eligibility rating:** %s\n\n", run.EligibilityRating)

	table := newTable(&b, []string{"Criterion", "Rating", "Evidence", "Error"})
	for _, name := range names {
		outcome := run.CriteriaResults[name]
		row := []string{name, "-", "0", ""}
		if outcome.Result != nil {
			row[1] = strconv.Itoa(outcome.Result.Rating)
			row[2] = strconv.Itoa(len(outcome.Result.EvidenceList))
		}
		if outcome.Failure != nil {
			row[3] = singleLine(outcome.Failure.Error)
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	for _, name := range names {
		result := run.CriteriaResults[name].Result
		if result == nil || (len(result.EvidenceList) == 0 && result.ChainOfThought == "") {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n", name)
		if result.ChainOfThought != "" {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(result.ChainOfThought))
		}
		if len(result.EvidenceList) > 0 {
			b.WriteString("\n")
			for _, item := range result.EvidenceList {
				fmt.Fprintf(&b, "- %s\n", singleLine(item))
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// orderedNames lists the super-criterion first, then criteria alphabetically.
func orderedNames(run *assessment.Run) []string {
	names := make([]string, 0, len(run.CriteriaResults))
	for name := range run.CriteriaResults {
		if name != assessment.SuperCriteriaKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if _, ok := run.CriteriaResults[assessment.SuperCriteriaKey]; ok {
		names = append([]string{assessment.SuperCriteriaKey}, names...)
	}
	return names
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
