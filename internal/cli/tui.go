package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/boardplot/boardplot/pkg/board"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// LayerPickerModel is the bubbletea model for interactive layer
// selection. Space toggles a layer, enter confirms the set, q aborts
// leaving Confirmed false.
type LayerPickerModel struct {
	Layers    []board.Layer
	Checked   map[board.Layer]bool
	Cursor    int
	Confirmed bool
	Height    int
	Offset    int
}

// NewLayerPickerModel creates a picker over layers with preselected
// entries already checked.
func NewLayerPickerModel(layers, preselected []board.Layer) LayerPickerModel {
	checked := make(map[board.Layer]bool, len(preselected))
	for _, l := range preselected {
		checked[l] = true
	}
	return LayerPickerModel{
		Layers:  layers,
		Checked: checked,
		Height:  15,
	}
}

// Selection returns the checked layers in picker order.
func (m LayerPickerModel) Selection() []board.Layer {
	var out []board.Layer
	for _, l := range m.Layers {
		if m.Checked[l] {
			out = append(out, l)
		}
	}
	return out
}

func (m LayerPickerModel) Init() tea.Cmd {
	return nil
}

func (m LayerPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Layers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			l := m.Layers[m.Cursor]
			m.Checked[l] = !m.Checked[l]
		case "a":
			for _, l := range m.Layers {
				m.Checked[l] = true
			}
		case "n":
			m.Checked = make(map[board.Layer]bool)
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayerPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  n none  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Layers) {
		end = len(m.Layers)
	}

	for i := m.Offset; i < end; i++ {
		l := m.Layers[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		check := "[ ]"
		if m.Checked[l] {
			check = "[x]"
		}

		kind := "technical"
		if l.IsCopper() {
			kind = "copper"
		}

		line := fmt.Sprintf("%s%s %-12s %s", cursor, check, l.String(), listDimStyle.Render(kind))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Checked[l]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d selected", m.Cursor+1, len(m.Layers), len(m.Selection()))))

	return b.String()
}
