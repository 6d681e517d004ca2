package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/notesync/pkg/adapters/notion"
	"github.com/aretw0/notesync/pkg/dedup"
	"github.com/aretw0/notesync/pkg/orchestrator"
	"github.com/aretw0/notesync/pkg/reconcile"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

const (
	markOK   = "✓"
	markSkip = "⊘"
	markFail = "✗"
)

// eventPrinter prints one line per processed note.
func eventPrinter(w io.Writer) orchestrator.ReporterFunc {
	return func(ev orchestrator.Event) {
		title := ev.Note.Title
		if title == "" {
			title = ev.Origin
		}
		switch ev.Outcome {
		case orchestrator.Created:
			fmt.Fprintf(w, "%s %s\n", okStyle.Render(markOK), title)
		case orchestrator.Skipped:
			fmt.Fprintf(w, "%s %s %s\n", skipStyle.Render(markSkip), title, dimStyle.Render("(already exists)"))
		default:
			fmt.Fprintf(w, "%s %s: %v\n", failStyle.Render(markFail), title, ev.Err)
		}
	}
}

// reconcilePrinter prints one line per patched record.
func reconcilePrinter(w io.Writer) func(reconcile.Event) {
	return func(ev reconcile.Event) {
		switch {
		case ev.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", failStyle.Render(markFail), ev.Title, ev.Err)
		case ev.Updated:
			fmt.Fprintf(w, "%s %s\n", okStyle.Render(markOK), ev.Title)
		default:
			fmt.Fprintf(w, "%s %s %s\n", skipStyle.Render(markSkip), ev.Title, dimStyle.Render("("+ev.Reason+")"))
		}
	}
}

func printNotices(w io.Writer, notices []string) {
	for _, n := range notices {
		fmt.Fprintf(w, "%s %s\n", skipStyle.Render("!"), n)
	}
}

// collectionLocation is the URL of a Notion collection, or the directory of
// a local one.
func collectionLocation(id string) string {
	if localDir != "" {
		return localDir
	}
	return notion.CollectionURL(id)
}

func printSyncSummary(w io.Writer, stats orchestrator.Stats, collectionID string) {
	lines := []string{
		headerStyle.Render("Sync complete"),
		fmt.Sprintf("Total:   %d", stats.Total),
		okStyle.Render(fmt.Sprintf("Synced:  %d", stats.Synced)),
		skipStyle.Render(fmt.Sprintf("Skipped: %d", stats.Skipped)),
		failStyle.Render(fmt.Sprintf("Failed:  %d", stats.Failed)),
		"",
		"View: " + collectionLocation(collectionID),
	}
	fmt.Fprintln(w, summaryStyle.Render(strings.Join(lines, "\n")))
}

func printReconcileSummary(w io.Writer, title string, res reconcile.Result) {
	lines := []string{
		headerStyle.Render(title),
		okStyle.Render(fmt.Sprintf("Updated: %d", res.Updated)),
		skipStyle.Render(fmt.Sprintf("Skipped: %d", res.Skipped)),
		failStyle.Render(fmt.Sprintf("Failed:  %d", res.Failed)),
	}
	fmt.Fprintln(w, summaryStyle.Render(strings.Join(lines, "\n")))
}

func printGroups(w io.Writer, groups []dedup.Group) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s %s %s\n", headerStyle.Render("•"), g.Key.Title, dimStyle.Render(fmt.Sprintf("(%d copies)", len(g.Extras)+1)))
		fmt.Fprintf(w, "    keep    %s\n", g.Keep)
		for _, id := range g.Extras {
			fmt.Fprintf(w, "    archive %s\n", id)
		}
	}
}
