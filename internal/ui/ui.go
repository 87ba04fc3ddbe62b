// Package ui renders board and connection state for the CLI. Render
// functions return strings so commands can write them to any stream and
// tests can assert on content.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boardkit/boardkit/internal/access"
	"github.com/boardkit/boardkit/internal/board"
)

// StatusBadge formats a connection status with its icon and color.
func StatusBadge(s access.Status) string {
	switch s {
	case access.StatusConnected:
		return styleConnected.Render(iconConnected + " connected")
	case access.StatusBroken:
		return styleBroken.Render(iconBroken + " broken")
	default:
		return styleDisconnected.Render(iconDisconnected + " disconnected")
	}
}

// ConnectionRow is one line of the share status table.
type ConnectionRow struct {
	ConsumerTitle string
	ProviderTitle string
	ContractName  string
	Status        access.Status
	GrantedAt     time.Time
}

// RenderConnections formats the share status table. Rows keep their given
// order; callers pass them in grant order.
func RenderConnections(title string, rows []ConnectionRow) string {
	var b strings.Builder
	b.WriteString(styleHeading.Render("connections: "+title) + "\n")
	if len(rows) == 0 {
		b.WriteString(styleMuted.Render("  (no connections)") + "\n")
		return b.String()
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-24s ← %-24s %-20s %s\n",
			truncate(r.ConsumerTitle, 24), truncate(r.ProviderTitle, 24),
			truncate(r.ContractName, 20), StatusBadge(r.Status))
		if !r.GrantedAt.IsZero() {
			fmt.Fprintf(&b, "    %s\n", styleMuted.Render("granted "+r.GrantedAt.Format(time.RFC3339)))
		}
	}
	return b.String()
}

// RenderProviders formats the widgets currently able to provide a contract.
func RenderProviders(contractName string, widgets []board.Widget) string {
	var b strings.Builder
	b.WriteString(styleHeading.Render("providers for "+contractName) + "\n")
	if len(widgets) == 0 {
		b.WriteString(styleMuted.Render("  (none on canvas)") + "\n")
		return b.String()
	}
	for _, w := range widgets {
		title := w.Title
		if title == "" {
			title = w.ID
		}
		fmt.Fprintf(&b, "  %s %s\n", title, styleMuted.Render("("+w.ModuleID+")"))
	}
	return b.String()
}

// RenderDocumentSummary formats a one-screen overview of a document.
func RenderDocumentSummary(d *board.Document) string {
	var b strings.Builder
	b.WriteString(styleHeading.Render(d.Title) + "\n")
	fmt.Fprintf(&b, "  schema:      v%d\n", d.SchemaVersion)
	fmt.Fprintf(&b, "  widgets:     %d\n", len(d.Widgets))
	fmt.Fprintf(&b, "  permissions: %d\n", len(d.DataSharing.Permissions))
	fmt.Fprintf(&b, "  links:       %d\n", len(d.DataSharing.Links))
	return b.String()
}

// ValidationFinding is one problem found while validating a document.
type ValidationFinding struct {
	Kind   string // e.g. "orphan-link", "unknown-contract"
	Detail string
}

// RenderValidation formats validation results. Findings are sorted by kind
// then detail for stable output.
func RenderValidation(file string, findings []ValidationFinding) string {
	var b strings.Builder
	if len(findings) == 0 {
		b.WriteString(styleConnected.Render(iconConnected+" "+file) + " — no problems found\n")
		return b.String()
	}
	sorted := make([]ValidationFinding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Detail < sorted[j].Detail
	})
	fmt.Fprintf(&b, "%s — %d problem(s):\n", styleBroken.Render(iconBroken+" "+file), len(sorted))
	for _, f := range sorted {
		fmt.Fprintf(&b, "  %s %s: %s\n", styleWarn.Render("•"), f.Kind, f.Detail)
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
