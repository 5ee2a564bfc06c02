package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naka-gawa/git-tracker/internal/resource"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

const detailCommits = 8

// --- repo detail ---

func (a *App) openDetail(id int) tea.Cmd {
	a.detail = usecase.NewRepoDetail(a.tracker, id, a.reporter, a.logger)
	a.state = stateDetail
	return a.loadDetail()
}

func (a *App) loadDetail() tea.Cmd {
	uc := a.detail
	ctx := a.ctx
	return func() tea.Msg {
		_, err := uc.Load(ctx)
		return loadedMsg{err: err}
	}
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.state = stateDashboard
		if a.dash == nil {
			a.state = stateHome
		}
	case "r":
		return a, a.loadDetail()
	case "g":
		if a.detail.Snapshot().Value.Repo != nil {
			return a, a.openSummary(a.detail.ID())
		}
	}
	return a, nil
}

func (a *App) viewDetail() string {
	snap := a.detail.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("NODE #%d", a.detail.ID())))
	b.WriteString("\n")

	switch snap.State {
	case resource.StateIdle, resource.StateLoading:
		if snap.Value.Repo == nil {
			fmt.Fprintf(&b, "%s Loading telemetry…\n", a.spinner.View())
			return b.String()
		}
	case resource.StateEmpty:
		b.WriteString("Node not found.\n\n" + help("esc back"))
		return b.String()
	case resource.StateError:
		if snap.Value.Repo == nil {
			b.WriteString(errorStyle.Render("Could not load this node.") + "\n\n" + help("r retry", "esc back"))
			return b.String()
		}
	}

	d := snap.Value
	r := d.Repo
	b.WriteString(r.FullName() + "\n" + mutedStyle.Render(r.URL) + "\n\n")
	fmt.Fprintf(&b, "Stars %s · Views %s · Clones %s\n", a.num(r.Stars), a.num(r.Views), a.num(r.Clones))
	if t := d.Telemetry; t.Samples > 0 {
		fmt.Fprintf(&b, "%s samples · star growth %s (%s%%) · mean views %s · median clones %s\n",
			a.num(t.Samples),
			a.printer.Sprintf("%+d", t.StarsGrowth),
			a.printer.Sprintf("%.1f", t.StarsGrowthPct),
			a.printer.Sprintf("%.1f", t.MeanViews),
			a.printer.Sprintf("%.1f", t.MedianClones))
	} else {
		b.WriteString(mutedStyle.Render("No telemetry recorded yet.") + "\n")
	}

	b.WriteString("\nCommits\n")
	if len(d.Commits) == 0 {
		b.WriteString(mutedStyle.Render("  none") + "\n")
	}
	for i, c := range d.Commits {
		if i == detailCommits {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  … %d more", len(d.Commits)-detailCommits)) + "\n")
			break
		}
		fmt.Fprintf(&b, "  %s %s %s\n", cursorStyle.Render(c.ShortSHA()), mutedStyle.Render(c.Commit.Author.Name), c.Headline())
	}
	if snap.Loading() {
		b.WriteString("\n" + a.spinner.View() + " refreshing…\n")
	}
	b.WriteString("\n" + help("g summary", "r refresh", "esc back"))
	return b.String()
}

// --- AI summary ---

func (a *App) openSummary(id int) tea.Cmd {
	a.summaryRet = a.state
	a.summary = usecase.NewSummary(a.tracker, id, a.platform, a.reporter, a.logger)
	a.state = stateSummary
	uc := a.summary
	ctx := a.ctx
	return func() tea.Msg {
		return loadedMsg{err: uc.Load(ctx)}
	}
}

func (a *App) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	uc := a.summary
	ctx := a.ctx
	switch msg.String() {
	case "esc":
		a.state = a.summaryRet
	case "tab", "p":
		// The selection flips now, not when the command runs.
		generate := uc.TogglePlatform()
		if generate == nil {
			return a, nil
		}
		return a, func() tea.Msg {
			_, err := generate(ctx)
			return loadedMsg{err: err}
		}
	case "r":
		if uc.View().Lookup.Value == nil || uc.Generating() {
			return a, nil
		}
		return a, func() tea.Msg {
			_, err := uc.Regenerate(ctx)
			return loadedMsg{err: err}
		}
	}
	return a, nil
}

func (a *App) viewSummary() string {
	v := a.summary.View()
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI SUMMARY"))
	b.WriteString("\n")

	switch v.Lookup.State {
	case resource.StateIdle, resource.StateLoading:
		fmt.Fprintf(&b, "%s Looking up node…\n", a.spinner.View())
		return b.String()
	case resource.StateEmpty:
		b.WriteString("Node not found.\n\n" + help("esc back"))
		return b.String()
	case resource.StateError:
		b.WriteString(errorStyle.Render("Could not load this node.") + "\n\n" + help("esc back"))
		return b.String()
	}

	b.WriteString(v.Lookup.Value.FullName() + "\n")
	for _, p := range []string{"LinkedIn", "X"} {
		if p == platformLabel(v.Platform) {
			b.WriteString(cursorStyle.Render("["+p+"]") + " ")
		} else {
			b.WriteString(mutedStyle.Render(" "+p+" ") + " ")
		}
	}
	b.WriteString("\n\n")

	an := v.Analysis
	switch {
	case an.Loading():
		fmt.Fprintf(&b, "%s Generating %s post…\n", a.spinner.View(), platformLabel(v.Platform))
	case an.State == resource.StateError:
		b.WriteString(errorStyle.Render("Generation failed. Press r to try again.") + "\n")
	case an.State == resource.StateReady:
		b.WriteString(boxStyle.Render("Summary\n"+an.Value.Summary) + "\n")
		b.WriteString(boxStyle.Render(platformLabel(v.Platform)+" post\n"+an.Value.Post) + "\n")
	}
	b.WriteString("\n" + help("tab switch platform", "r regenerate", "esc back"))
	return b.String()
}

// --- onboarding ---

type onboardingView struct {
	uc    *usecase.Onboarding
	input textinput.Model
	err   string
}

func (a *App) openOnboarding() tea.Cmd {
	a.onboard = &onboardingView{
		uc:    usecase.NewOnboarding(a.tracker, a.upstream, a.reporter, a.logger),
		input: newInput("https://github.com/owner/repo"),
	}
	a.state = stateOnboarding
	return nil
}

func (a *App) updateOnboarding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := a.onboard
	switch msg.String() {
	case "esc":
		o.input.Blur()
		a.state = stateHome
		return a, nil
	case "enter":
		if o.uc.Connecting() {
			return a, nil
		}
		o.err = ""
		if o.uc.Step() == usecase.StepConnect {
			o.uc.SetURL(o.input.Value())
		}
		uc := o.uc
		ctx := a.ctx
		return a, func() tea.Msg {
			step, err := uc.Next(ctx)
			return onboardMsg{step: step, err: err}
		}
	}
	if o.uc.Step() == usecase.StepConnect {
		var cmd tea.Cmd
		o.input, cmd = o.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleOnboard(msg onboardMsg) (tea.Model, tea.Cmd) {
	o := a.onboard
	if o == nil {
		return a, nil
	}
	if msg.err != nil && !ignorable(msg.err) {
		o.err = describe(msg.err)
	}
	switch msg.step {
	case usecase.StepConnect:
		return a, o.input.Focus()
	case usecase.StepLinked:
		o.input.Blur()
	case usecase.StepDone:
		a.onboard = nil
		return a, a.openDashboard()
	}
	return a, nil
}

func (a *App) viewOnboarding() string {
	o := a.onboard
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("ONBOARDING · STEP %d OF 3", min(int(o.uc.Step()), 3))))
	b.WriteString("\n")

	switch o.uc.Step() {
	case usecase.StepWelcome:
		b.WriteString("git-tracker watches your GitHub repositories and drafts posts about them.\n\n")
		b.WriteString(help("enter continue", "esc back"))
	case usecase.StepConnect:
		b.WriteString("Which repository should we track first?\n\n")
		b.WriteString(o.input.View() + "\n")
		if o.uc.Connecting() {
			b.WriteString(a.spinner.View() + " connecting…\n")
		}
		if o.err != "" {
			b.WriteString(errorStyle.Render(o.err) + "\n")
		}
		b.WriteString("\n" + help("enter connect", "esc back"))
	default:
		repo, verified := o.uc.Connected()
		if repo != nil {
			b.WriteString(okStyle.Render("Connected "+repo.FullName()) + "\n")
		}
		if verified != nil {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("GitHub reports %s stars.", a.num(verified.Stars))) + "\n")
		}
		b.WriteString("\n" + help("enter open dashboard"))
	}
	return b.String()
}
