package tasktree

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
	"golang.org/x/text/message"
)

// DateFormat is how preview dates are printed
const DateFormat = "02.01.2006 15:04"

// View is the interactive state of one rendered tree: which levels are
// expanded and which task row, if any, shows its inline preview
type View struct {
	tree     Tree
	expanded map[int]bool
	selected int
}

// NewView groups tasks and expands every level that holds at least one task
func NewView(tasks []api.Task) *View {
	v := &View{tree: Group(tasks), expanded: map[int]bool{}}
	for _, l := range v.tree.Levels {
		if len(l.Tasks) > 0 {
			v.expanded[l.Number] = true
		}
	}
	return v
}

// Tree returns the grouping behind the view
func (v *View) Tree() Tree {
	return v.tree
}

// Expanded reports whether level n is open
func (v *View) Expanded(n int) bool {
	return v.expanded[n]
}

// Toggle opens or closes one level
func (v *View) Toggle(n int) {
	if _, ok := v.tree.Level(n); !ok {
		return
	}
	v.expanded[n] = !v.expanded[n]
}

// AllExpanded reports whether every level in view, empty ones included, is open
func (v *View) AllExpanded() bool {
	if v.tree.Empty() {
		return false
	}
	for _, l := range v.tree.Levels {
		if !v.expanded[l.Number] {
			return false
		}
	}
	return true
}

// ExpandAll opens every level in view
func (v *View) ExpandAll() {
	for _, l := range v.tree.Levels {
		v.expanded[l.Number] = true
	}
}

// CollapseAll closes every level in view
func (v *View) CollapseAll() {
	for _, l := range v.tree.Levels {
		v.expanded[l.Number] = false
	}
}

// ToggleAll collapses everything when all levels are open and expands
// everything otherwise
func (v *View) ToggleAll() {
	if v.AllExpanded() {
		v.CollapseAll()
		return
	}
	v.ExpandAll()
}

// Select shows the preview of task id, or hides it if it is already shown.
// Unknown ids clear the selection.
func (v *View) Select(id int) {
	if v.selected == id {
		v.selected = 0
		return
	}
	if _, ok := v.tree.Find(id); !ok {
		v.selected = 0
		return
	}
	v.selected = id
}

// Selected returns the task whose preview is shown
func (v *View) Selected() (api.Task, bool) {
	if v.selected == 0 {
		return api.Task{}, false
	}
	return v.tree.Find(v.selected)
}

// Preview is the inline detail of a selected task, built from list data only
type Preview struct {
	Description string
	Duration    api.Hours
	Start       *time.Time
	End         *time.Time
	Assignees   int
}

// NewPreview extracts the inline detail of t
func NewPreview(t api.Task) Preview {
	return Preview{
		Description: t.Description,
		Duration:    t.Duration,
		Start:       t.StartDatetime,
		End:         t.EndDatetime,
		Assignees:   len(t.AssignedUsers),
	}
}

// Period formats the date range, leaving out missing ends
func (p Preview) Period() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "?"
		}
		return t.Format(DateFormat)
	}
	if p.Start == nil && p.End == nil {
		return "-"
	}
	return format(p.Start) + " - " + format(p.End)
}

// Render writes the outline as text. Closed levels show only their header;
// the selected task is followed by its preview.
func (v *View) Render(w io.Writer, p *message.Printer) error {
	if v.tree.Empty() {
		_, err := fmt.Fprintln(w, p.Sprintf(i18n.MsgNoTasks))
		return err
	}

	var b strings.Builder
	for _, l := range v.tree.Levels {
		marker := "▸"
		if v.expanded[l.Number] {
			marker = "▾"
		}
		fmt.Fprintf(&b, "%s %s (%d)\n", marker, LevelLabel(p, l.Number), len(l.Tasks))
		if !v.expanded[l.Number] {
			continue
		}

		for _, t := range l.Tasks {
			fmt.Fprintf(&b, "  #%d %s [%s]", t.ID, t.Name, t.Status)
			if t.IsVeto {
				fmt.Fprintf(&b, " (%s)", p.Sprintf(i18n.MsgVeto))
			}
			b.WriteString("\n")
			if t.ID == v.selected {
				writePreview(&b, p, t)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writePreview(b *strings.Builder, p *message.Printer, t api.Task) {
	pv := NewPreview(t)
	description := pv.Description
	if description == "" {
		description = "-"
	}
	fmt.Fprintf(b, "      %s: %s\n", p.Sprintf(i18n.MsgDescription), description)
	fmt.Fprintf(b, "      %s: %s\n", p.Sprintf(i18n.MsgDuration), pv.Duration)
	fmt.Fprintf(b, "      %s: %s\n", p.Sprintf(i18n.MsgPeriod), pv.Period())
	fmt.Fprintf(b, "      %s: %d\n", p.Sprintf(i18n.MsgAssignees), pv.Assignees)
	fmt.Fprintf(b, "      %s\n", p.Sprintf(i18n.MsgDetailsHint, t.ID))
}
