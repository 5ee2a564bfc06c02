package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/resource"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

type inputFocus int

const (
	focusList inputFocus = iota
	focusFilter
	focusAdd
)

// dashboardView is the dashboard page: totals, the filtered node list,
// the add form and delete confirmation.
type dashboardView struct {
	uc       *usecase.Dashboard
	cursor   int
	focus    inputFocus
	filter   textinput.Model
	add      textinput.Model
	addErr   string
	confirm  int
	lastSync []domain.SyncResult
}

func (a *App) openDashboard() tea.Cmd {
	if a.dash == nil {
		a.dash = &dashboardView{
			uc:     usecase.NewDashboard(a.tracker, a.reporter, a.logger),
			filter: newInput("filter by name or owner"),
			add:    newInput("https://github.com/owner/repo"),
		}
	}
	a.state = stateDashboard
	return a.loadDashboard()
}

func (a *App) loadDashboard() tea.Cmd {
	uc := a.dash.uc
	ctx := a.ctx
	return func() tea.Msg {
		_, err := uc.Load(ctx)
		return loadedMsg{err: err}
	}
}

func (d *dashboardView) selected() (domain.Repo, bool) {
	repos := d.uc.Filtered()
	if d.cursor < 0 || d.cursor >= len(repos) {
		return domain.Repo{}, false
	}
	return repos[d.cursor], true
}

func (d *dashboardView) clampCursor() {
	n := len(d.uc.Filtered())
	if d.cursor >= n {
		d.cursor = n - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := a.dash
	switch d.focus {
	case focusFilter:
		return a, d.updateFilter(msg)
	case focusAdd:
		return a.updateAddForm(msg)
	}

	if d.confirm != 0 {
		id := d.confirm
		d.confirm = 0
		if msg.String() == "y" {
			return a, a.deleteRepo(id)
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		a.state = stateHome
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < len(d.uc.Filtered())-1 {
			d.cursor++
		}
	case "/":
		d.focus = focusFilter
		return a, d.filter.Focus()
	case "a":
		d.focus = focusAdd
		d.addErr = ""
		return a, d.add.Focus()
	case "d":
		if repo, ok := d.selected(); ok && !d.uc.Deleting(repo.ID) {
			d.confirm = repo.ID
		}
	case "s":
		if !d.uc.Syncing() {
			return a, a.syncRepos()
		}
	case "r":
		return a, a.loadDashboard()
	case "enter":
		if repo, ok := d.selected(); ok {
			return a, a.openDetail(repo.ID)
		}
	case "g":
		if repo, ok := d.selected(); ok {
			return a, a.openSummary(repo.ID)
		}
	}
	return a, nil
}

// updateFilter recomputes the visible list on every keystroke.
func (d *dashboardView) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		d.focus = focusList
		d.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	d.filter, cmd = d.filter.Update(msg)
	d.uc.SetFilter(d.filter.Value())
	d.cursor = 0
	return cmd
}

func (a *App) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := a.dash
	switch msg.String() {
	case "esc":
		d.focus = focusList
		d.add.Blur()
		d.add.SetValue("")
		d.addErr = ""
		return a, nil
	case "enter":
		if d.uc.Adding() {
			return a, nil
		}
		d.addErr = ""
		return a, a.addRepo(d.add.Value())
	}
	var cmd tea.Cmd
	d.add, cmd = d.add.Update(msg)
	return a, cmd
}

func (a *App) addRepo(repoURL string) tea.Cmd {
	uc := a.dash.uc
	ctx := a.ctx
	return func() tea.Msg {
		repo, err := uc.AddRepo(ctx, repoURL)
		return addedMsg{repo: repo, err: err}
	}
}

func (a *App) handleAdded(msg addedMsg) (tea.Model, tea.Cmd) {
	d := a.dash
	if d == nil {
		return a, nil
	}
	if msg.repo == nil {
		if msg.err != nil && !ignorable(msg.err) {
			d.addErr = describe(msg.err)
		}
		return a, nil
	}
	// Accepted. A failed refresh is already on the banner.
	d.add.SetValue("")
	d.add.Blur()
	d.focus = focusList
	d.clampCursor()
	return a, nil
}

func (a *App) deleteRepo(id int) tea.Cmd {
	uc := a.dash.uc
	ctx := a.ctx
	return func() tea.Msg {
		return deletedMsg{id: id, err: uc.DeleteRepo(ctx, id)}
	}
}

func (a *App) syncRepos() tea.Cmd {
	uc := a.dash.uc
	ctx := a.ctx
	return func() tea.Msg {
		results, err := uc.Sync(ctx)
		return syncedMsg{results: results, err: err}
	}
}

func (a *App) viewDashboard() string {
	d := a.dash
	snap := d.uc.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("DASHBOARD"))
	b.WriteString("\n")

	switch {
	case snap.State == resource.StateIdle,
		snap.State == resource.StateLoading && len(snap.Value.Repos) == 0:
		fmt.Fprintf(&b, "%s Loading nodes…\n", a.spinner.View())
		return b.String()
	case snap.State == resource.StateError && len(snap.Value.Repos) == 0:
		b.WriteString(errorStyle.Render("Could not load the dashboard."))
		b.WriteString("\n" + help("r retry", "esc back"))
		return b.String()
	}

	s := snap.Value
	fmt.Fprintf(&b, "Nodes %s · Stars %s · Views %s · Clones %s",
		a.num(s.TotalRepos), a.num(s.TotalStars), a.num(s.TotalViews), a.num(s.TotalClones))
	if snap.Loading() {
		b.WriteString(" " + a.spinner.View())
	}
	b.WriteString("\n")
	if s.LastUpdated != "" {
		b.WriteString(mutedStyle.Render("Last updated "+s.LastUpdated) + "\n")
	}
	b.WriteString("\n")

	switch d.focus {
	case focusFilter:
		b.WriteString(d.filter.View() + "\n\n")
	case focusAdd:
		b.WriteString(d.add.View())
		if d.uc.Adding() {
			b.WriteString(" " + a.spinner.View() + " adding…")
		}
		b.WriteString("\n")
		if d.addErr != "" {
			b.WriteString(errorStyle.Render(d.addErr) + "\n")
		}
		b.WriteString("\n")
	default:
		if f := d.uc.Filter(); f != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("filter: %q", f)) + "\n\n")
		}
	}

	repos := d.uc.Filtered()
	switch {
	case snap.State == resource.StateEmpty:
		b.WriteString("No nodes tracked yet. Press a to add one.\n")
	case len(repos) == 0:
		b.WriteString(mutedStyle.Render("No nodes match the filter.") + "\n")
	}
	for i, r := range repos {
		marker := "  "
		line := fmt.Sprintf("%-36s ★ %-8s views %-8s clones %s", r.FullName(), a.num(r.Stars), a.num(r.Views), a.num(r.Clones))
		if delta, ok := r.StarDelta(); ok && delta != 0 {
			line += okStyle.Render(a.printer.Sprintf("  %+d", delta))
		}
		if d.uc.Deleting(r.ID) {
			line += mutedStyle.Render("  deleting…")
		}
		if i == d.cursor {
			marker = cursorStyle.Render("▸ ")
		}
		b.WriteString(marker + line + "\n")
	}

	if d.confirm != 0 {
		if repo, ok := d.selected(); ok {
			b.WriteString("\n" + cursorStyle.Render(fmt.Sprintf("Delete %s? (y/n)", repo.FullName())) + "\n")
		}
	}
	if d.uc.Syncing() {
		b.WriteString("\n" + a.spinner.View() + " syncing…\n")
	} else if len(d.lastSync) > 0 {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Last sync: %s nodes", a.num(len(d.lastSync)))) + "\n")
	}

	b.WriteString("\n" + help("↑/↓ select", "enter detail", "g summary", "/ filter", "a add", "d delete", "s sync", "r refresh", "esc back"))
	return b.String()
}
