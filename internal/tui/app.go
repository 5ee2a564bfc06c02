// Package tui is the interactive dashboard. It uses bubbletea, which
// follows The Elm Architecture: messages come in through Update, state
// lives on App, and View renders it.
//
// Every page reads the snapshot of its use case and renders one of four
// states: loading, empty, error or ready. Actions run as tea.Cmds so the
// UI never blocks on the backend, and every failure arrives at the banner
// through one channel reporter.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/resource"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

// appState represents which page we're on.
type appState int

const (
	stateHome appState = iota
	stateOnboarding
	stateDashboard
	stateDetail
	stateSummary
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).MarginBottom(1)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#C0392B")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// Options wires the App to its collaborators.
type Options struct {
	Tracker gateway.Tracker
	// Upstream is optional; when nil onboarding skips the GitHub check.
	Upstream gateway.Upstream
	Platform domain.Platform
	Logger   *log.Logger
	Context  context.Context
}

// Messages produced by commands.
type (
	reportMsg  resource.Report
	loadedMsg  struct{ err error }
	addedMsg   struct {
		repo *domain.Repo
		err  error
	}
	deletedMsg struct {
		id  int
		err error
	}
	syncedMsg struct {
		results []domain.SyncResult
		err     error
	}
	onboardMsg struct {
		step usecase.Step
		err  error
	}
)

// App is the root model.
type App struct {
	state appState
	ctx   context.Context

	tracker  gateway.Tracker
	upstream gateway.Upstream
	platform domain.Platform
	logger   *log.Logger
	reports  *resource.ChannelReporter
	reporter resource.Reporter
	printer  *message.Printer

	home    list.Model
	spinner spinner.Model
	banner  string

	dash       *dashboardView
	detail     *usecase.RepoDetail
	summary    *usecase.Summary
	summaryRet appState
	onboard    *onboardingView

	width  int
	height int
}

// menuItem implements list.Item for the home menu.
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

const (
	menuDashboard = "Dashboard"
	menuConnect   = "Connect a repository"
	menuQuit      = "Quit"
)

// NewApp creates the root model on the home page.
func NewApp(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Platform == "" {
		opts.Platform = domain.PlatformLinkedIn
	}

	home := list.New([]list.Item{
		menuItem{title: menuDashboard, desc: "Totals and every tracked node"},
		menuItem{title: menuConnect, desc: "Onboard a GitHub repository"},
		menuItem{title: menuQuit, desc: "Leave git-tracker"},
	}, list.NewDefaultDelegate(), 0, 0)
	home.Title = "◆ GIT TRACKER"
	home.SetShowStatusBar(false)
	home.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	reports := resource.NewChannelReporter(16)
	return &App{
		state:    stateHome,
		ctx:      opts.Context,
		tracker:  opts.Tracker,
		upstream: opts.Upstream,
		platform: opts.Platform,
		logger:   opts.Logger,
		reports:  reports,
		reporter: resource.Multi(reports, resource.LogReporter{Logger: opts.Logger}),
		printer:  message.NewPrinter(language.AmericanEnglish),
		home:     home,
		spinner:  sp,
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForReport())
}

// waitForReport delivers the next failure to Update.
func (a *App) waitForReport() tea.Cmd {
	ch := a.reports.C()
	return func() tea.Msg {
		return reportMsg(<-ch)
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.home.SetSize(max(0, msg.Width-4), max(0, msg.Height-6))
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case reportMsg:
		a.banner = fmt.Sprintf("%s failed: %s", msg.Action, describe(msg.Err))
		a.logger.Printf("TUI: %s", a.banner)
		return a, a.waitForReport()

	case loadedMsg:
		if a.dash != nil {
			a.dash.clampCursor()
		}
		return a, nil

	case addedMsg:
		return a.handleAdded(msg)

	case deletedMsg:
		if a.dash != nil {
			a.dash.clampCursor()
		}
		return a, nil

	case syncedMsg:
		if a.dash != nil && msg.err == nil {
			a.dash.lastSync = msg.results
		}
		return a, nil

	case onboardMsg:
		return a.handleOnboard(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if msg.String() == "ctrl+x" {
			a.banner = ""
			return a, nil
		}
		switch a.state {
		case stateHome:
			return a.updateHome(msg)
		case stateDashboard:
			return a.updateDashboard(msg)
		case stateDetail:
			return a.updateDetail(msg)
		case stateSummary:
			return a.updateSummary(msg)
		case stateOnboarding:
			return a.updateOnboarding(msg)
		}
	}

	if a.state == stateHome {
		var cmd tea.Cmd
		a.home, cmd = a.home.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "enter":
		item, ok := a.home.SelectedItem().(menuItem)
		if !ok {
			return a, nil
		}
		a.logger.Printf("TUI: menu %q selected", item.title)
		switch item.title {
		case menuDashboard:
			return a, a.openDashboard()
		case menuConnect:
			return a, a.openOnboarding()
		case menuQuit:
			return a, tea.Quit
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.home, cmd = a.home.Update(msg)
	return a, cmd
}

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.state {
	case stateHome:
		content = a.home.View()
	case stateDashboard:
		content = a.viewDashboard()
	case stateDetail:
		content = a.viewDetail()
	case stateSummary:
		content = a.viewSummary()
	case stateOnboarding:
		content = a.viewOnboarding()
	}
	if a.banner == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render(a.banner)+" "+mutedStyle.Render("ctrl+x to dismiss"),
		"",
		content,
	)
}

// describe turns an error into what the user reads. Backend rejections
// carry their own message.
func describe(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// ignorable errors carry no news for the user: a superseded response, a
// control that was already busy, or a blank form.
func ignorable(err error) bool {
	return errors.Is(err, resource.ErrStale) ||
		errors.Is(err, resource.ErrBusy) ||
		errors.Is(err, usecase.ErrEmptyRepoURL)
}

func (a *App) num(n int) string {
	return a.printer.Sprintf("%d", n)
}

func help(keys ...string) string {
	return mutedStyle.Render(strings.Join(keys, " · "))
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 50
	return ti
}

func platformLabel(p domain.Platform) string {
	if p == domain.PlatformX {
		return "X"
	}
	return "LinkedIn"
}
