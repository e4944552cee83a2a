package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"aoe2-units/models"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintInsightReport formats and prints the insight report to w
func PrintInsightReport(w io.Writer, report *models.InsightReport) {
	title := color.New(color.FgCyan, color.Bold)
	border := strings.Repeat("═", 55)

	title.Fprintf(w, "\n╔%s╗\n", border)
	title.Fprintf(w, "║%s║\n", center("AGE OF EMPIRES II UNIT SUMMARY", 55))
	title.Fprintf(w, "╚%s╝\n\n", border)

	overview := newTable(w, "Overview")
	overview.AppendRows([]table.Row{
		{"Total units", report.TotalUnits},
		{"Elite variants", report.EliteUnits},
		{"Units with matchups", report.WithLabels},
		{"Units with empty matchups", report.EmptyLabels},
		{"Units never enriched", report.UnsetLabels},
		{"Units without wiki page", report.WithoutWiki},
	})
	overview.Render()

	if report.MostExpensive != nil {
		u := report.MostExpensive
		expensive := newTable(w, "Most expensive unit")
		expensive.AppendRows([]table.Row{
			{"Name", u.Name},
			{"Building", u.Building},
			{"Total cost", *u.TotalCost},
		})
		expensive.Render()
	}

	printCounts(w, "Units per building", report.UnitsByBuilding)
	printCounts(w, "Units per age", report.UnitsByAge)

	if len(report.TopHP) > 0 {
		top := newTable(w, fmt.Sprintf("Top %d by hit points", len(report.TopHP)))
		top.AppendHeader(table.Row{"#", "Unit", "HP", "Strong against"})
		for i, u := range report.TopHP {
			top.AppendRow(table.Row{i + 1, truncate(u.Name, 35), *u.HP, truncate(strings.Join(u.StrongAgainst.Values(), ", "), 40)})
		}
		top.Render()
	}
	fmt.Fprintln(w)
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	type entry struct {
		name  string
		count int
	}
	var entries []entry
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	// Sort by count descending, then name
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	t := newTable(w, title)
	for _, e := range entries {
		t.AppendRow(table.Row{e.name, e.count, strings.Repeat("▓", e.count)})
	}
	t.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.SetTitle(title)
	return t
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
