package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cimillas/ticketpool/internal/config"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/simulation"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cellStyle  = lipgloss.NewStyle().PaddingRight(2)
)

func row(label string, value any) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), fmt.Sprint(value))
}

func renderSummary(res simulation.Result) string {
	status := okStyle.Render(string(res.Status))
	if res.Status != domain.RunStatusCompleted {
		status = warnStyle.Render(string(res.Status))
	}

	lines := []string{
		titleStyle.Render("Simulation " + res.RunID),
		row("Status", status),
	}
	if res.EventID != "" {
		lines = append(lines, row("Event", res.EventID))
	}
	lines = append(lines,
		row("Capacity", res.Capacity),
		row("Issued", res.TotalIssued),
		row("Sold", res.Sold),
		row("Available", res.AvailableCount),
		row("Duration", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond)),
	)

	if len(res.Workers) > 0 {
		lines = append(lines, "", titleStyle.Render("Workers"))
		table := [][]string{{"NAME", "ROLE", "TICKETS", "STOPPED"}}
		for _, w := range res.Workers {
			table = append(table, []string{w.Name, string(w.Role), fmt.Sprint(w.Tickets), string(w.StopReason)})
		}
		lines = append(lines, renderTable(table))
	}
	return strings.Join(lines, "\n")
}

func renderRoster(cfg *config.Config) string {
	vendors := [][]string{{"ID", "NAME", "PRICE"}}
	for _, v := range cfg.Roster.Vendors {
		vendors = append(vendors, []string{v.ID, v.Name, fmt.Sprintf("%.2f", v.Price(cfg.TicketPrice))})
	}
	customers := [][]string{{"ID", "NAME"}}
	for _, c := range cfg.Roster.Customers {
		customers = append(customers, []string{c.ID, c.Name})
	}

	return strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Vendors (%d)", len(cfg.Roster.Vendors))),
		renderTable(vendors),
		"",
		titleStyle.Render(fmt.Sprintf("Customers (%d)", len(cfg.Roster.Customers))),
		renderTable(customers),
	}, "\n")
}

// renderTable lays rows out in left-aligned columns; the first row is the
// header.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	out := make([]string, 0, len(rows))
	for n, r := range rows {
		cells := make([]string, 0, len(r))
		for i, cell := range r {
			style := cellStyle.Width(widths[i] + 2)
			if n == 0 {
				style = style.Bold(true)
			}
			cells = append(cells, style.Render(cell))
		}
		out = append(out, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
	}
	return strings.Join(out, "\n")
}
