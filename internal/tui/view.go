package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	commentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// listHeight is the number of table rows shown at once.
const listHeight = 15

func (m *Model) View() string {
	var b strings.Builder
	switch m.screen {
	case screenConnect:
		m.viewConnect(&b)
	case screenPicker:
		m.viewPicker(&b)
	case screenConfirm:
		m.viewConfirm(&b)
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("error: "+m.err.Error()) + "\n")
		if source.IsConnectionError(m.err) {
			b.WriteString(helpStyle.Render("check the connection fields and press enter to retry") + "\n")
		}
	} else if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m *Model) viewConnect(b *strings.Builder) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("Connect to %s", m.opts.Config.Source.Type)) + "\n")
	var form strings.Builder
	for i, f := range m.order {
		form.WriteString(m.fields[f].View())
		if i < len(m.order)-1 {
			form.WriteString("\n")
		}
	}
	b.WriteString(boxStyle.Render(form.String()) + "\n")
	b.WriteString(helpStyle.Render("tab/↑↓ move • enter connect • esc quit") + "\n")
}

func (m *Model) viewPicker(b *strings.Builder) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("Tables in %s", m.src.Schema)) + "\n")
	b.WriteString(m.search.View() + "\n\n")

	if len(m.tables) == 0 {
		b.WriteString(commentStyle.Render("(no tables)") + "\n")
	}
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(m.tables))
	for i := start; i < end; i++ {
		t := m.tables[i]
		pointer := "  "
		if i == m.cursor && m.pfocus == focusList {
			pointer = cursorStyle.Render("> ")
		}
		check := "[ ]"
		name := t.Name
		if m.isSelected(t.Name) {
			check = selectedStyle.Render("[x]")
			name = selectedStyle.Render(name)
		}
		line := fmt.Sprintf("%s%s %s", pointer, check, name)
		if t.Comment != "" {
			line += "  " + commentStyle.Render(t.Comment)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\nSelected: ")
	if len(m.selected) == 0 {
		b.WriteString(commentStyle.Render("none"))
	} else {
		b.WriteString(strings.Join(m.selected, ", "))
	}
	b.WriteString("\n" + m.path.View() + "\n")
	b.WriteString(helpStyle.Render("tab switch focus • space toggle • enter search/export • esc disconnect") + "\n")
}

func (m *Model) viewConfirm(b *strings.Builder) {
	b.WriteString(titleStyle.Render("File exists") + "\n")
	b.WriteString(boxStyle.Render(fmt.Sprintf("%s already exists.\nOverwrite it? (y/n)", m.pending)) + "\n")
}
