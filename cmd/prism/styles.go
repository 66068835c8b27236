package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Delta actions
	newStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	updateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	removeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// actionStyle returns the style of a delta action.
func actionStyle(a prism.ChangeAction) lipgloss.Style {
	switch a {
	case prism.ActionNew:
		return newStyle
	case prism.ActionUpdate:
		return updateStyle
	default:
		return removeStyle
	}
}

// swatch renders a colour sample followed by the colour's name.
func swatch(color string) string {
	if color == "" {
		return mutedStyle.Render("unassigned")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■") + " " + prism.ColorName(color)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}

func printCollections(w io.Writer, list []storage.CollectionSummary) {
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No collections yet. Create one with `prism new <name>`."))
		return
	}
	t := newTable("", "Name", "Decks", "Updated", "ID")
	for _, c := range list {
		marker := ""
		if c.Current {
			marker = successStyle.Render("*")
		}
		t.Row(marker, c.Name, strconv.Itoa(c.DeckCount), c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.ID)
	}
	fmt.Fprintln(w, t.Render())
}

func printDecks(w io.Writer, c *prism.Collection) {
	fmt.Fprintln(w, titleStyle.Render(c.Name))
	if len(c.Decks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No decks yet. Add one with `prism deck add`."))
		return
	}
	t := newTable("Slot", "Deck", "Commander", "Bracket", "Cards", "Colour")
	for _, d := range c.Decks {
		t.Row(strconv.Itoa(d.StripePosition), d.Name, d.Commander, strconv.Itoa(d.Bracket), strconv.Itoa(d.CardCount()), swatch(d.AssignedColor))
	}
	fmt.Fprintln(w, t.Render())
}

func printStats(w io.Writer, stats prism.Statistics) {
	lines := fmt.Sprintf("%s %d\n%s %d\n%s %d\n%s %d",
		headerStyle.Render("Decks:        "), stats.TotalDecks,
		headerStyle.Render("Unique cards: "), stats.TotalUniqueCards,
		headerStyle.Render("Card slots:   "), stats.TotalCardSlots,
		headerStyle.Render("Shared cards: "), stats.SharedCards,
	)
	fmt.Fprintln(w, statsBoxStyle.Render(lines))

	if len(stats.MostSharedCards) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Most shared"))
	for _, s := range stats.MostSharedCards {
		fmt.Fprintf(w, "  %-30s %s\n", s.Name, mutedStyle.Render(fmt.Sprintf("%d decks", s.Count)))
	}
}

// printDelta lists up to limit changes; limit <= 0 lists all of them.
func printDelta(w io.Writer, delta *prism.Delta, limit int) {
	s := delta.Summary
	if s.Total() == 0 {
		fmt.Fprintln(w, successStyle.Render("No changes since the last run."))
		return
	}
	fmt.Fprintf(w, "%s  %s  %s\n",
		newStyle.Render(fmt.Sprintf("%d new", s.NewCards)),
		updateStyle.Render(fmt.Sprintf("%d updated", s.UpdatedCards)),
		removeStyle.Render(fmt.Sprintf("%d removed", s.RemovedCards)),
	)

	changes := delta.Changes
	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
	}
	t := newTable("Action", "Card", "What to do")
	for _, ch := range changes {
		t.Row(actionStyle(ch.Action).Render(string(ch.Action)), ch.CardName, ch.PhysicalAction)
	}
	fmt.Fprintln(w, t.Render())
	if rest := len(delta.Changes) - len(changes); rest > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("... and %d more (use --all or --changes)", rest)))
	}
}
