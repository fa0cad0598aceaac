package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatotp/internal/chat"
	"github.com/diogo/chatotp/internal/models"
	"github.com/diogo/chatotp/internal/render"
	"github.com/diogo/chatotp/internal/suggestions"
	"github.com/diogo/chatotp/internal/transcript"
)

const toastDuration = 3 * time.Second

// Message types for the TUI
type (
	animationTickMsg time.Time

	// exchangeDoneMsg is sent when the controller finished an exchange
	exchangeDoneMsg struct{}

	toastExpiredMsg struct {
		seq int
	}
)

// Options configures the chat model
type Options struct {
	// ModelLabel is shown next to the title
	ModelLabel string
	// Markdown is the base render configuration; width is set from the window
	Markdown render.Options
	// Suggestions is the starter panel; nil disables it
	Suggestions *suggestions.Panel
}

// Model represents the TUI state
type Model struct {
	ctrl       *chat.Controller
	panel      *suggestions.Panel
	modelLabel string
	mdOpts     render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready          bool
	showHelp       bool
	animationFrame int
	toast          string
	toastIsError   bool
	toastSeq       int

	// Dimensions
	width  int
	height int

	copyFn func(string) error
	now    func() time.Time
}

// NewChatModel creates a new chat TUI model driven by ctrl
func NewChatModel(ctrl *chat.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	label := opts.ModelLabel
	if label == "" {
		label = models.DefaultModelTag
	}
	md := opts.Markdown
	if md.Style == "" {
		md = render.DefaultOptions()
	}

	return Model{
		ctrl:       ctrl,
		panel:      opts.Suggestions,
		modelLabel: label,
		mdOpts:     md,
		textarea:   ta,
		spinner:    s,
		copyFn:     clipboard.WriteAll,
		now:        time.Now,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// waitForExchange turns the controller's done channel into a tea.Msg
func waitForExchange(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return exchangeDoneMsg{}
	}
}

func expireToast(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2
		chipsHeight := 0
		if m.panel != nil && m.panel.Visible() {
			chipsHeight = 4
		}

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - chipsHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			if m.panel != nil && m.panel.Visible() {
				m.panel.Cycle()
			}
			return m, nil

		case "enter":
			return m.handleEnter()

		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		m.textarea, cmd = m.textarea.Update(msg)
		m.ctrl.SetPending(m.textarea.Value())
		cmds = append(cmds, cmd)

	case exchangeDoneMsg:
		m.updateViewport()
		m.viewport.GotoBottom()

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}

	case spinner.TickMsg:
		if m.ctrl.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.ctrl.Busy() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	if _, ok := msg.(tea.KeyMsg); !ok {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleEnter submits the input, a highlighted suggestion or a slash command
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	if input == "exit" || input == "quit" {
		return m, tea.Quit
	}
	if strings.HasPrefix(input, "/") {
		m.textarea.Reset()
		m.ctrl.SetPending("")
		return m.runCommand(input)
	}

	if m.ctrl.Busy() {
		return m.showToast(models.BusyWarning, true)
	}

	var done <-chan struct{}
	switch {
	case input != "":
		if m.panel != nil {
			m.panel.Hide()
		}
		m.textarea.Reset()
		m.ctrl.SetPending(input)
		done = m.ctrl.Submit()
	case m.panel != nil && m.panel.Selected() >= 0:
		s, ok := m.panel.Choose(m.panel.Selected())
		if ok {
			done = m.ctrl.Submit(s.Action)
		}
	}

	if done == nil {
		return m, nil
	}

	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		waitForExchange(done),
		m.spinner.Tick,
		animationTick(),
	)
}

// runCommand executes a slash command typed into the input
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]

	switch name {
	case "/exit", "/quit":
		return m, tea.Quit

	case "/help":
		m.showHelp = !m.showHelp
		return m, nil

	case "/copy":
		last, ok := m.ctrl.Store().Last(models.RoleAssistant)
		if !ok {
			return m.showToast("Nothing to copy yet", true)
		}
		if err := m.copyFn(last.Content); err != nil {
			return m.showToast(fmt.Sprintf("Copy failed: %v", err), true)
		}
		return m.showToast("Copied last answer to clipboard", false)

	case "/export":
		messages := m.ctrl.Messages()
		if len(messages) == 0 {
			return m.showToast("Nothing to export yet", true)
		}
		path := transcript.DefaultFileName(m.now())
		if len(args) > 0 {
			path = args[0]
		}
		if err := transcript.WriteFile(path, models.AppName, messages); err != nil {
			return m.showToast(fmt.Sprintf("Export failed: %v", err), true)
		}
		return m.showToast("Exported to "+path, false)
	}

	return m.showToast(fmt.Sprintf("Unknown command %s (try /help)", name), true)
}

func (m Model) showToast(text string, isError bool) (tea.Model, tea.Cmd) {
	m.toastSeq++
	m.toast = text
	m.toastIsError = isError
	return m, expireToast(m.toastSeq)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ "+models.AppName),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelLabel),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	switch {
	case m.showHelp:
		messagesContent = renderHelp()
	case m.ctrl.Store().Len() == 0:
		messagesContent = m.renderWelcome()
	default:
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	if m.panel != nil && m.panel.Visible() {
		sections = append(sections, m.renderSuggestions())
	}

	// Input
	var inputContent string
	if m.ctrl.Busy() {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			m.renderLoadingAnimation(),
			m.textarea.View(),
		)
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.toast != "" {
		style := toastStyle
		if m.toastIsError {
			style = toastErrorStyle
		}
		sections = append(sections, style.Render("  "+m.toast))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the overview shown before the first message
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to "+models.AppName),
		"",
		welcomeStyle.Width(width).Render(
			"Answers to your practice questions, grounded in "+models.KnowledgeSource+"."),
		welcomeStyle.Width(width).Render(models.KnowledgeURL),
		"",
		hintStyle.Width(width).Align(lipgloss.Center).Render("Type a question below or press Tab to pick a suggestion"),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderSuggestions draws the starter chips side by side
func (m Model) renderSuggestions() string {
	items := m.panel.Items()
	chips := make([]string, 0, len(items))
	for i, s := range items {
		style := chipStyle
		if i == m.panel.Selected() {
			style = chipSelectedStyle
		}
		chips = append(chips, style.Render(lipgloss.JoinVertical(lipgloss.Left,
			chipTitleStyle.Render(s.Title),
			chipLabelStyle.Render(s.Label),
		)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func renderHelp() string {
	lines := []string{
		"Commands",
		"",
		"/copy            copy the last answer to the clipboard",
		"/export [path]   save the conversation (.md or .json)",
		"/help            toggle this help",
		"/exit, /quit     leave the chat",
		"",
		"Tab cycles the suggestions, Enter on an empty input sends the highlighted one.",
		"Alt+Enter inserts a newline.",
	}
	return helpStyle.Render(strings.Join(lines, "\n"))
}

// renderLoadingAnimation renders a colorful animated thinking indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + models.AppName + " is thinking ")

	return fmt.Sprintf("%s %s %s", spin, bar.String(), text)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Tab", "Suggestions"},
		{"/help", "Commands"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport rebuilds the conversation from the controller's messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	opts := m.mdOpts.WithWidth(bubbleWidth - 4)

	for i, msg := range m.ctrl.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			content.WriteString(userLabelStyle.Render("⬤ You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ "+models.AppName) + "\n")
			var body string
			if msg.IsFailure() {
				body = failureStyle.Render(msg.Content)
			} else {
				body = render.Answer(msg, opts)
			}
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}

	if m.ctrl.Busy() {
		content.WriteString("\n")
		content.WriteString(assistantLabelStyle.Render("✦ "+models.AppName) + "\n")
		content.WriteString(thinkingStyle.Render("  Thinking..."))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI and closes the controller on exit
func RunChat(ctrl *chat.Controller, opts Options) error {
	defer ctrl.Close()

	p := tea.NewProgram(
		NewChatModel(ctrl, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
