package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medbud/internal/domain"
	"medbud/internal/history"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Answer(ctx context.Context, query string) (*domain.QueryResult, error)
	RandomFact() domain.QueryResult
}

type mode int

const (
	modeMenu mode = iota
	modeAsk
	modeRandom
	modeJoke
)

// Model is the Bubble Tea model for the chatbot TUI.
type Model struct {
	service     ChatPort
	log         *history.Log
	historyPath string
	input       textinput.Model
	viewport    viewport.Model
	mode        mode
	status      string
	ready       bool
}

// New creates a new TUI model instance.
func New(service ChatPort, log *history.Log, historyPath string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter the tablet name or your query"
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:     service,
		log:         log,
		historyPath: historyPath,
		input:       ti,
		viewport:    vp,
		status:      "Pick an option.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 3 // header + warning + menu
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case tea.KeyMsg:
		// Global quits; flush the conversation log on the way out.
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			_ = m.log.SaveTo(m.historyPath)
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEsc {
			m.mode = modeMenu
			m.input.Blur()
			m.status = "Pick an option."
			return m, nil
		}
		if m.mode == modeMenu || m.mode == modeRandom || m.mode == modeJoke {
			switch msg.String() {
			case "1":
				m.mode = modeAsk
				m.input.SetValue("")
				m.input.Focus()
				m.status = "Type your query and press Enter."
				return m, textinput.Blink
			case "2":
				m.mode = modeRandom
				m.viewport.SetContent(renderResult(m.service.RandomFact()))
				m.status = "Random tablet fact. Press 2 for another, Esc for menu."
				return m, nil
			case "3":
				m.mode = modeJoke
				m.viewport.SetContent(jokes[rand.IntN(len(jokes))])
				m.status = "Press 3 for another joke, Esc for menu."
				return m, nil
			}
			return m, nil
		}
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.service.Answer(context.Background(), q)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.viewport.SetContent("")
					return m, nil
				}
				m.viewport.SetContent(renderResult(*res))
				m.status = fmt.Sprintf("Confidence Score: %.2f | Response Time: %.2f seconds", res.Confidence, res.ResponseTime)
				m.log.Append(q, res)
				if err := m.log.SaveTo(m.historyPath); err != nil {
					m.status += " | history: " + err.Error()
				}
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Medicine Data Chatbot")
	warning := warningStyle.Render("This chatbot provides general information only. Always consult a healthcare professional for medical advice.")
	menu := menuStyle.Render("[1] Ask about a specific tablet  [2] Random tablet facts  [3] Medicine joke")
	results := resultBoxStyle.Render(m.viewport.View())
	status := statusStyle.Render(m.status)
	if m.mode == modeAsk {
		input := queryBoxStyle.Render(m.input.View())
		return header + "\n" + warning + "\n" + menu + "\n" + results + "\n" + input + "\n" + status
	}
	return header + "\n" + warning + "\n" + menu + "\n" + results + "\n" + status
}

func renderResult(res domain.QueryResult) string {
	var b strings.Builder
	for i, p := range res.Pairs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(p.Label+":") + " " + p.Value)
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	menuStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var jokes = []string{
	"Why did the pharmacy cross the road? To get to the other side effects!",
	"What do you call a doctor who fixes websites? A URL-ologist!",
	"Why don't scientists trust atoms? Because they make up everything!",
	"What kind of medicine do you give to a seasick crocodile? Anti-gator!",
	"Why did the pill bottle need glasses? It couldn't see the expiration date!",
}
