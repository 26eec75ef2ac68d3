package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const textareaHeight = 3

// runTUI drives the full-screen terminal chat.
func runTUI(sierra assistant) int {
	p := tea.NewProgram(newChatModel(sierra), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("❌ Terminal error:", err)
		return 1
	}
	fmt.Println(exitMessage)
	return 0
}

// answerMsg carries the agent's reply back into the update loop.
type answerMsg string

type chatModel struct {
	sierra   assistant
	viewport viewport.Model
	textarea textarea.Model
	messages []string
	waiting  bool

	youStyle    lipgloss.Style
	agentStyle  lipgloss.Style
	noteStyle   lipgloss.Style
	statusStyle lipgloss.Style
}

func newChatModel(sierra assistant) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about orders, gear, or discounts..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 500

	ta.SetWidth(80)
	ta.SetHeight(textareaHeight)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)

	noteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	m := chatModel{
		sierra:      sierra,
		textarea:    ta,
		viewport:    vp,
		youStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		agentStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		noteStyle:   noteStyle,
		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
	m.messages = []string{
		welcomeMessage,
		noteStyle.Render("Enter sends. /reset clears the conversation, /stats shows usage, Esc quits."),
		"",
	}
	m.refreshViewport()
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.textarea.SetWidth(msg.Width)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-textareaHeight-1, 1)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if cmd := m.submit(); cmd != nil {
				return m, tea.Batch(tiCmd, vpCmd, cmd)
			}
		}

	case answerMsg:
		m.waiting = false
		m.appendLine(m.agentStyle.Render("Sierra Agent: ") + string(msg))
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m chatModel) View() string {
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.statusLine(), m.textarea.View())
}

// submit handles Enter: commands run locally, anything else goes to
// the agent. Sends are blocked while a reply is in flight.
func (m *chatModel) submit() tea.Cmd {
	if m.waiting {
		return nil
	}

	text := strings.TrimSpace(m.textarea.Value())
	m.textarea.Reset()
	if text == "" {
		return nil
	}

	switch strings.ToLower(text) {
	case "exit", "quit":
		return tea.Quit
	case "/reset":
		m.sierra.ResetConversation()
		m.appendLine(m.noteStyle.Render("Conversation cleared."))
		return nil
	case "/stats":
		m.appendLine(m.noteStyle.Render(formatStats(m.sierra.Stats())))
		return nil
	}

	m.appendLine(m.youStyle.Render("You: ") + text)
	m.waiting = true
	sierra := m.sierra
	return func() tea.Msg {
		return answerMsg(sierra.ProcessMessage(context.Background(), text))
	}
}

func (m *chatModel) appendLine(line string) {
	m.messages = append(m.messages, line)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// refreshViewport re-renders the scrollback, soft-wrapped to the
// current width.
func (m *chatModel) refreshViewport() {
	content := strings.Join(m.messages, "\n")
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(content))
}

func (m chatModel) statusLine() string {
	if m.waiting {
		return m.statusStyle.Render("Sierra is thinking...")
	}
	return m.noteStyle.Render("Enter to send • /reset • /stats • Esc to quit")
}
