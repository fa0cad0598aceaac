package tui

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatotp/internal/api"
	"github.com/diogo/chatotp/internal/chat"
	"github.com/diogo/chatotp/internal/models"
	"github.com/diogo/chatotp/internal/render"
	"github.com/diogo/chatotp/internal/suggestions"
)

func newTestModel(t *testing.T, client *api.MockChatClient) (Model, *chat.Controller) {
	t.Helper()

	ctrl := chat.NewController(client)
	t.Cleanup(ctrl.Close)

	m := NewChatModel(ctrl, Options{
		Markdown:    render.DefaultOptions().WithStyle("notty"),
		Suggestions: suggestions.NewPanel(rand.New(rand.NewPCG(1, 2))),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), ctrl
}

// blockingClient answers only after release is closed
func blockingClient(release <-chan struct{}) *api.MockChatClient {
	return &api.MockChatClient{
		AskFunc: func(ctx context.Context, question string) (*models.ChatResponse, error) {
			select {
			case <-release:
				return &models.ChatResponse{Answer: "answer to " + question}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: key})
	return updated.(Model), cmd
}

func waitIdle(t *testing.T, ctrl *chat.Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for ctrl.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("controller still busy")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewChatModel_Defaults(t *testing.T) {
	ctrl := chat.NewController(&api.MockChatClient{})
	defer ctrl.Close()

	m := NewChatModel(ctrl, Options{})
	if m.modelLabel != models.DefaultModelTag {
		t.Errorf("modelLabel = %q, want %q", m.modelLabel, models.DefaultModelTag)
	}
	if m.mdOpts.Style == "" {
		t.Error("markdown options should default")
	}
	if m.View() == "" {
		t.Error("View() before sizing should show a placeholder")
	}
}

func TestTypingUpdatesPending(t *testing.T) {
	m, ctrl := newTestModel(t, &api.MockChatClient{})

	m = typeText(m, "hello")
	if got := ctrl.Pending(); got != "hello" {
		t.Errorf("Pending() = %q, want hello", got)
	}
	if m.textarea.Value() != "hello" {
		t.Errorf("textarea = %q", m.textarea.Value())
	}
}

func TestEnterSubmitsPendingInput(t *testing.T) {
	release := make(chan struct{})
	m, ctrl := newTestModel(t, blockingClient(release))

	m = typeText(m, "How do I renew?")
	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected commands after submit")
	}

	if !ctrl.Busy() {
		t.Error("controller should be busy")
	}
	msgs := ctrl.Messages()
	if len(msgs) != 1 || msgs[0].Content != "How do I renew?" {
		t.Fatalf("messages = %+v", msgs)
	}
	if m.textarea.Value() != "" || ctrl.Pending() != "" {
		t.Error("input should be cleared after submit")
	}
	if m.panel.Visible() {
		t.Error("suggestions should hide after the first submission")
	}
	if !strings.Contains(m.viewport.View(), "Thinking") {
		t.Error("expected thinking placeholder while busy")
	}

	close(release)
	waitIdle(t, ctrl)

	updated, _ := m.Update(exchangeDoneMsg{})
	m = updated.(Model)
	if !strings.Contains(m.viewport.View(), "answer to How do I renew?") {
		t.Errorf("answer not rendered:\n%s", m.viewport.View())
	}
}

func TestEnterWhileBusyShowsToast(t *testing.T) {
	release := make(chan struct{})
	m, ctrl := newTestModel(t, blockingClient(release))
	defer close(release)

	m = typeText(m, "first")
	m, _ = press(m, tea.KeyEnter)

	m = typeText(m, "second")
	m, cmd := press(m, tea.KeyEnter)

	if m.toast != models.BusyWarning || !m.toastIsError {
		t.Errorf("toast = %q, want busy warning", m.toast)
	}
	if cmd == nil {
		t.Error("toast should schedule its expiry")
	}
	if n := len(ctrl.Messages()); n != 1 {
		t.Errorf("len(messages) = %d, want 1", n)
	}
	if ctrl.Pending() != "second" {
		t.Errorf("pending input should survive: %q", ctrl.Pending())
	}
}

func TestEnterOnEmptyInputDoesNothing(t *testing.T) {
	client := &api.MockChatClient{}
	m, ctrl := newTestModel(t, client)

	_, cmd := press(m, tea.KeyEnter)
	if cmd != nil {
		t.Error("expected no command")
	}
	if ctrl.Store().Len() != 0 || client.AskCalls() != 0 {
		t.Error("blank enter must not submit")
	}
}

func TestTabSelectsSuggestion(t *testing.T) {
	client := &api.MockChatClient{AskVal: &models.ChatResponse{Answer: "ok"}}
	m, ctrl := newTestModel(t, client)

	items := m.panel.Items()
	if len(items) != suggestions.DefaultCount {
		t.Fatalf("panel has %d items", len(items))
	}

	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyTab)
	if m.panel.Selected() != 1 {
		t.Fatalf("Selected() = %d, want 1", m.panel.Selected())
	}

	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected submit commands")
	}
	waitIdle(t, ctrl)

	msgs := ctrl.Messages()
	if len(msgs) != 2 || msgs[0].Content != items[1].Action {
		t.Fatalf("messages = %+v", msgs)
	}
	if m.panel.Visible() {
		t.Error("panel should be hidden after choosing")
	}

	// Tab does nothing once hidden
	m, _ = press(m, tea.KeyTab)
	if m.panel.Selected() != -1 {
		t.Error("hidden panel must not select")
	}
}

func TestSlashCopy(t *testing.T) {
	client := &api.MockChatClient{AskVal: &models.ChatResponse{Answer: "copy me"}}
	m, ctrl := newTestModel(t, client)

	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	m = typeText(m, "/copy")
	m, _ = press(m, tea.KeyEnter)
	if !m.toastIsError || copied != "" {
		t.Error("copy with no answer should warn")
	}

	<-ctrl.Submit("question")
	m = typeText(m, "/copy")
	m, _ = press(m, tea.KeyEnter)
	if copied != "copy me" {
		t.Errorf("copied = %q", copied)
	}
	if m.toastIsError {
		t.Errorf("unexpected error toast: %q", m.toast)
	}

	m.copyFn = func(string) error { return errors.New("no clipboard") }
	m = typeText(m, "/copy")
	m, _ = press(m, tea.KeyEnter)
	if !strings.Contains(m.toast, "no clipboard") {
		t.Errorf("toast = %q", m.toast)
	}
}

func TestSlashExport(t *testing.T) {
	client := &api.MockChatClient{AskVal: &models.ChatResponse{Answer: "exported answer"}}
	m, ctrl := newTestModel(t, client)

	m = typeText(m, "/export")
	m, _ = press(m, tea.KeyEnter)
	if !m.toastIsError {
		t.Error("export of an empty session should warn")
	}

	<-ctrl.Submit("question")

	path := filepath.Join(t.TempDir(), "chat.md")
	m = typeText(m, "/export "+path)
	m, _ = press(m, tea.KeyEnter)
	if m.toastIsError {
		t.Fatalf("export failed: %s", m.toast)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "exported answer") {
		t.Errorf("transcript missing answer:\n%s", data)
	}
}

func TestSlashHelpAndUnknown(t *testing.T) {
	m, ctrl := newTestModel(t, &api.MockChatClient{})

	m = typeText(m, "/help")
	m, _ = press(m, tea.KeyEnter)
	if !m.showHelp {
		t.Error("/help should toggle help on")
	}
	if !strings.Contains(m.View(), "/export [path]") {
		t.Error("help should list commands")
	}

	m = typeText(m, "/bogus")
	m, _ = press(m, tea.KeyEnter)
	if !strings.Contains(m.toast, "/bogus") {
		t.Errorf("toast = %q", m.toast)
	}
	if ctrl.Store().Len() != 0 {
		t.Error("slash commands must not be submitted")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, tc := range []struct {
		name string
		run  func(Model) tea.Cmd
	}{
		{"esc", func(m Model) tea.Cmd { _, cmd := press(m, tea.KeyEsc); return cmd }},
		{"ctrl+c", func(m Model) tea.Cmd { _, cmd := press(m, tea.KeyCtrlC); return cmd }},
		{"/exit", func(m Model) tea.Cmd { _, cmd := press(typeText(m, "/exit"), tea.KeyEnter); return cmd }},
		{"quit", func(m Model) tea.Cmd { _, cmd := press(typeText(m, "quit"), tea.KeyEnter); return cmd }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestModel(t, &api.MockChatClient{})
			cmd := tc.run(m)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestToastExpiry(t *testing.T) {
	m, _ := newTestModel(t, &api.MockChatClient{})

	updated, _ := m.showToast("first", false)
	m = updated.(Model)
	stale := m.toastSeq
	updated, _ = m.showToast("second", false)
	m = updated.(Model)

	updated, _ = m.Update(toastExpiredMsg{seq: stale})
	m = updated.(Model)
	if m.toast != "second" {
		t.Error("stale expiry must not clear a newer toast")
	}

	updated, _ = m.Update(toastExpiredMsg{seq: m.toastSeq})
	m = updated.(Model)
	if m.toast != "" {
		t.Error("toast should clear")
	}
}

func TestView(t *testing.T) {
	client := &api.MockChatClient{AskErr: errors.New("boom")}
	m, ctrl := newTestModel(t, client)

	view := m.View()
	for _, want := range []string{models.AppName, models.DefaultModelTag, "Welcome to", models.KnowledgeSource} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if m.View() != view {
		t.Error("View() should be stable without state changes")
	}

	<-ctrl.Submit("will fail")
	updated, _ := m.Update(exchangeDoneMsg{})
	m = updated.(Model)

	view = m.View()
	if strings.Contains(view, "Welcome to") {
		t.Error("overview should give way to messages")
	}
	if !strings.Contains(view, "Sorry, something went wrong") {
		t.Error("failure message should be shown")
	}
}

func TestWaitForExchange(t *testing.T) {
	done := make(chan struct{})
	close(done)

	if _, ok := waitForExchange(done)().(exchangeDoneMsg); !ok {
		t.Error("expected exchangeDoneMsg")
	}
}

func TestRenderLoadingAnimation(t *testing.T) {
	m, _ := newTestModel(t, &api.MockChatClient{})
	for i := 0; i < 20; i++ {
		m.animationFrame = i
		if !strings.Contains(m.renderLoadingAnimation(), "is thinking") {
			t.Fatalf("frame %d missing text", i)
		}
	}
}
