package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/attend-io/attend/internal/models"
)

// titleWidth caps the rendered title so due dates and badges stay
// aligned on one line.
const titleWidth = 60

func (i *Interpreter) renderList(list []*models.Activity) {
	if len(list) == 0 {
		fmt.Fprintln(i.out, styleHint.Render("(nothing)"))
		return
	}
	for n, a := range list {
		fmt.Fprintf(i.out, "%s  %s\n", styleIndex.Render(fmt.Sprintf("%3d", n)), i.renderActivity(a))
	}
}

func (i *Interpreter) renderActivity(a *models.Activity) string {
	parts := []string{styleTitle.Render(ansi.Truncate(a.Title(), titleWidth, "…"))}

	if due, ok := a.Due(); ok {
		style := styleDue
		if due.Before(i.manager.Resolver().Today()) {
			style = styleOverdue
		}
		parts = append(parts, style.Render(due.String()))
	}
	if snooze, ok := a.NotBefore(); ok {
		parts = append(parts, styleHint.Render("zzz "+snooze.String()))
	}
	if a.Project() {
		parts = append(parts, badgeProject.Render(fmt.Sprintf("[project: %d tasks]", len(a.Tasks()))))
	}
	if a.Interval() != models.IntervalNone {
		parts = append(parts, badgeRecurring.Render("every "+string(a.Interval())))
	}
	if tags := a.Tags(); len(tags) > 0 {
		parts = append(parts, styleHint.Render("#"+strings.Join(tags, " #")))
	}
	return strings.Join(parts, "  ")
}
