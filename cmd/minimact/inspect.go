package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/minimact/client-go/pkg/orchestrator"
	"github.com/spf13/cobra"
)

const inspectRefreshInterval = time.Second

var (
	inspectTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	inspectLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	inspectErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	inspectBoxStyle   = lipgloss.NewStyle().Margin(1, 2)
)

func inspectCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Poll a running client's debug endpoint and render a live TUI",
		Long: `inspect polls the /snapshot endpoint of a client started with
"minimact run --debug-addr" and renders its component set, hint queue
depth, and outbound buffer occupancy as a live-updating terminal UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(newInspectModel(addr))
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:9091", "base address of the debug server to poll")
	return cmd
}

type snapshotMsg struct {
	snap orchestrator.Snapshot
	err  error
}

type inspectTickMsg struct{}

func inspectTick() tea.Cmd {
	return tea.Tick(inspectRefreshInterval, func(time.Time) tea.Msg { return inspectTickMsg{} })
}

type inspectModel struct {
	addr     string
	client   *http.Client
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	snap     orchestrator.Snapshot
	lastErr  error
	polls    uint64
}

func newInspectModel(addr string) *inspectModel {
	return &inspectModel{
		addr:    addr,
		client:  &http.Client{Timeout: 2 * time.Second},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *inspectModel) fetchSnapshot() tea.Msg {
	resp, err := m.client.Get(m.addr + "/snapshot")
	if err != nil {
		return snapshotMsg{err: err}
	}
	defer resp.Body.Close()

	var snap orchestrator.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snapshotMsg{err: err}
	}
	return snapshotMsg{snap: snap}
}

func (m *inspectModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, inspectTick(), m.fetchSnapshot)
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.Style = inspectBoxStyle
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
	case inspectTickMsg:
		cmds = append(cmds, inspectTick(), m.fetchSnapshot)
	case snapshotMsg:
		m.polls++
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.snap = msg.snap
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.ready {
		m.viewport.SetContent(m.render())
	}
	return m, tea.Batch(cmds...)
}

func (m *inspectModel) render() string {
	if m.lastErr != nil {
		return fmt.Sprintf("%s\n\n%s polling %s\n%s",
			inspectTitleStyle.Render("minimact inspect"),
			m.spinner.View(),
			m.addr,
			inspectErrorStyle.Render(m.lastErr.Error()))
	}

	out := inspectTitleStyle.Render("minimact inspect") + "\n\n"
	out += fmt.Sprintf("%s %s\n", inspectLabelStyle.Render("polls:"), humanize.Comma(int64(m.polls)))
	out += fmt.Sprintf("%s %d\n", inspectLabelStyle.Render("components alive:"), len(m.snap.ComponentIDs))
	out += fmt.Sprintf("%s %d\n", inspectLabelStyle.Render("hints queued:"), m.snap.HintsQueued)
	out += fmt.Sprintf("%s %d messages (%s)\n",
		inspectLabelStyle.Render("outbound buffer:"),
		m.snap.PendingCount,
		humanize.Bytes(uint64(m.snap.PendingBytes)))

	if len(m.snap.ComponentIDs) > 0 {
		out += "\n" + inspectLabelStyle.Render("components:") + "\n"
		for _, id := range m.snap.ComponentIDs {
			out += "  - " + id + "\n"
		}
	}
	return out
}

func (m *inspectModel) View() string {
	if !m.ready {
		return fmt.Sprintf("%s initializing...", m.spinner.View())
	}
	return m.viewport.View()
}
