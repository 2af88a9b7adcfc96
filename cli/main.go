package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0a84ff"))

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#30d158"))

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

const orderWidth = 44

// Model defines the application state
type Model struct {
	transcript viewport.Model
	order      table.Model
	input      textinput.Model
	spinner    spinner.Model
	client     *ApiClient
	sessionID  string
	lines      []string
	total      string
	loading    bool
	ready      bool
	error      string
}

// Initialize the model
func initialModel(client *ApiClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "I'd like two crunchy tacos and a large horchata..."
	ti.Focus()
	ti.CharLimit = 280
	ti.Width = 60

	order := table.New(
		table.WithColumns([]table.Column{
			{Title: "Qty", Width: 4},
			{Title: "Item", Width: 28},
			{Title: "Price", Width: 8},
		}),
		table.WithHeight(10),
	)

	return Model{
		transcript: viewport.New(60, 15),
		order:      order,
		input:      ti,
		spinner:    s,
		client:     client,
		total:      "0.00",
		loading:    true,
	}
}

// Init starts the session
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, startSession(m.client))
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Sequence(endSession(m.client, m.sessionID), tea.Quit)
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.loading || !m.ready {
				return m, nil
			}
			m.input.SetValue("")
			m.appendLine(userStyle.Render("you: ") + text)
			m.loading = true
			m.error = ""
			return m, tea.Batch(m.spinner.Tick, sendMessage(m.client, m.sessionID, text))
		}

	case tea.WindowSizeMsg:
		width := msg.Width - orderWidth - 8
		if width < 20 {
			width = 20
		}
		m.transcript.Width = width
		m.transcript.Height = msg.Height - 8
		m.input.Width = width - 4
		m.transcript.SetContent(strings.Join(m.lines, "\n"))

	case sessionMsg:
		m.sessionID = msg.id
		m.ready = true
		m.loading = false
		m.appendLine(botStyle.Render("cantina: ") + "Welcome! What can I get for you?")
		return m, nil

	case replyMsg:
		m.loading = false
		m.appendLine(botStyle.Render("cantina: ") + msg.reply.Reply)
		m.order.SetRows(orderRows(msg.reply.Order))
		m.total = msg.reply.Order.Total
		return m, nil

	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

// View renders the UI
func (m Model) View() string {
	chat := titleStyle.Render("Cantina") + "\n\n" + m.transcript.View() + "\n\n"
	if m.loading {
		chat += m.spinner.View() + " thinking...\n"
	} else {
		chat += m.input.View() + "\n"
	}
	if m.error != "" {
		chat += errorStyle.Render(m.error) + "\n"
	}
	chat += "\nPress 'enter' to send, 'esc' to quit"

	order := titleStyle.Render("Your order") + "\n\n" + m.order.View() + "\n\n" +
		totalStyle.Render("Total $"+m.total)

	return docStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().MarginRight(4).Render(chat),
		lipgloss.NewStyle().Width(orderWidth).Render(order),
	))
}

// Custom message types for the tea.Model
type sessionMsg struct {
	id string
}

type replyMsg struct {
	reply *Reply
}

type errorMsg struct {
	err string
}

// startSession creates the conversation on the server
func startSession(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		id, err := client.CreateSession()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error starting session: %v", err)}
		}
		return sessionMsg{id: id}
	}
}

// sendMessage posts one utterance
func sendMessage(client *ApiClient, sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.SendMessage(sessionID, text)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error sending message: %v", err)}
		}
		return replyMsg{reply: reply}
	}
}

// endSession deletes the conversation; failures are ignored on exit
func endSession(client *ApiClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		if sessionID != "" {
			client.EndSession(sessionID)
		}
		return nil
	}
}

// orderRows converts order lines to table rows
func orderRows(order Order) []table.Row {
	rows := make([]table.Row, len(order.Lines))
	for i, line := range order.Lines {
		rows[i] = table.Row{fmt.Sprintf("%d", line.Quantity), line.Key, "$" + line.Item.Price}
	}
	return rows
}

func main() {
	client := NewApiClient()
	if err := client.CheckHealth(); err != nil {
		fmt.Printf("API server at %s is not available: %v\n", client.BaseURL, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
