// Package tui is the interactive terminal front end: a connection form, a
// table picker and an overwrite prompt over the export pipeline.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderjulianmartinez/datadict/internal/config"
	"github.com/alexanderjulianmartinez/datadict/internal/export"
	"github.com/alexanderjulianmartinez/datadict/internal/source"
	"github.com/alexanderjulianmartinez/datadict/pkg/types"
)

type screen int

const (
	screenConnect screen = iota
	screenPicker
	screenConfirm
)

// Connect form fields, in tab order.
const (
	fieldHost = iota
	fieldPort
	fieldSchema
	fieldUser
	fieldPassword
	fieldDatabase
	fieldCount
)

var fieldLabels = [fieldCount]string{"Host", "Port", "Schema", "User", "Password", "Database"}

// Picker focus targets, in tab order.
const (
	focusSearch = iota
	focusList
	focusPath
	focusCount
)

// Options configure the interactive session.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	Open   func(ctx context.Context, p source.Params) (source.Reader, error)
	Now    func() time.Time
}

// Model is the bubbletea model for the whole session.
type Model struct {
	ctx  context.Context
	opts Options
	src  config.SourceConfig

	screen screen
	busy   bool
	status string
	err    error

	fields [fieldCount]textinput.Model
	// order lists the fields shown for the source type; focus indexes it.
	order []int
	focus int

	reader   source.Reader
	search   textinput.Model
	path     textinput.Model
	tables   []source.TableInfo
	cursor   int
	selected []string
	pfocus   int

	pending string
}

type (
	connectedMsg struct {
		reader source.Reader
		tables []source.TableInfo
	}
	tablesMsg struct {
		tables []source.TableInfo
	}
	exportedMsg struct {
		res *types.ExportResult
	}
	errMsg struct {
		err error
	}
)

func newInput(prompt, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.SetValue(value)
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// New builds the initial model with the connect form filled from config.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Open == nil {
		opts.Open = source.Open
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	src := opts.Config.Source

	m := &Model{ctx: ctx, opts: opts, src: src}
	port := ""
	if src.Port != 0 {
		port = strconv.Itoa(src.Port)
	}
	values := [fieldCount]string{src.Host, port, src.Schema, src.User, src.Password, src.Database}
	for i := range m.fields {
		m.fields[i] = newInput(fmt.Sprintf("%-9s ", fieldLabels[i]+":"), values[i])
	}
	m.fields[fieldPort].CharLimit = 5
	m.fields[fieldPassword].EchoMode = textinput.EchoPassword

	m.order = []int{fieldHost, fieldPort, fieldSchema, fieldUser, fieldPassword}
	if src.Type == "postgres" {
		m.order = []int{fieldHost, fieldPort, fieldDatabase, fieldSchema, fieldUser, fieldPassword}
	}
	m.fields[m.order[0]].Focus()

	m.search = newInput("Search: ", "")
	m.search.Placeholder = "substring, Enter to apply"
	m.path = newInput("Output: ", "")
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.screen {
		case screenConnect:
			return m.updateConnect(msg)
		case screenPicker:
			return m.updatePicker(msg)
		case screenConfirm:
			return m.updateConfirm(msg)
		}

	case connectedMsg:
		m.busy = false
		m.reader = msg.reader
		m.tables = msg.tables
		m.cursor = 0
		m.selected = nil
		m.screen = screenPicker
		m.pfocus = focusList
		m.search.SetValue("")
		m.path.SetValue(export.DefaultOutputPath(m.opts.Config.Export.Dir, m.opts.Config.Export.Language, m.opts.Now()))
		m.status = fmt.Sprintf("connected to %s, %d tables", m.src.Schema, len(msg.tables))
		m.err = nil
		m.focusPicker()

	case tablesMsg:
		m.busy = false
		m.tables = msg.tables
		m.cursor = 0
		m.status = fmt.Sprintf("%d tables", len(msg.tables))
		m.err = nil

	case exportedMsg:
		m.busy = false
		m.screen = screenPicker
		m.status = fmt.Sprintf("exported %d tables to %s", msg.res.Tables, msg.res.Path)
		m.err = nil

	case errMsg:
		m.busy = false
		if m.screen == screenConfirm {
			m.screen = screenPicker
		}
		m.status = ""
		m.err = msg.err
	}
	return m, nil
}

func (m *Model) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus((m.focus + 1) % len(m.order))
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + len(m.order) - 1) % len(m.order))
		return m, nil
	case "enter":
		src, err := m.formSource()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.src = src
		m.busy = true
		m.err = nil
		m.status = "connecting..."
		return m, m.connectCmd(src)
	}

	f := m.order[m.focus]
	var cmd tea.Cmd
	m.fields[f], cmd = m.fields[f].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(pos int) {
	m.fields[m.order[m.focus]].Blur()
	m.focus = pos
	m.fields[m.order[m.focus]].Focus()
}

// formSource validates the form and merges it over the configured source.
func (m *Model) formSource() (config.SourceConfig, error) {
	for _, f := range m.order {
		if strings.TrimSpace(m.fields[f].Value()) == "" {
			return config.SourceConfig{}, fmt.Errorf("field [%s] must not be empty", fieldLabels[f])
		}
	}
	port, err := strconv.Atoi(strings.TrimSpace(m.fields[fieldPort].Value()))
	if err != nil || port <= 0 || port > 65535 {
		return config.SourceConfig{}, fmt.Errorf("field [%s] must be a port number", fieldLabels[fieldPort])
	}

	src := m.opts.Config.Source
	src.DSN = ""
	src.Host = strings.TrimSpace(m.fields[fieldHost].Value())
	src.Port = port
	src.Schema = strings.TrimSpace(m.fields[fieldSchema].Value())
	src.User = strings.TrimSpace(m.fields[fieldUser].Value())
	src.Password = m.fields[fieldPassword].Value()
	if src.Type == "postgres" {
		src.Database = strings.TrimSpace(m.fields[fieldDatabase].Value())
	}
	if f := src.MissingField(); f != "" {
		return config.SourceConfig{}, fmt.Errorf("source.%s is required", f)
	}
	return src, nil
}

func (m *Model) connectCmd(src config.SourceConfig) tea.Cmd {
	ctx, open, logger := m.ctx, m.opts.Open, m.opts.Logger
	return func() tea.Msg {
		p, err := src.Params(logger)
		if err != nil {
			return errMsg{err}
		}
		r, err := open(ctx, p)
		if err != nil {
			logger.Error("connect failed", "source", src, "error", err)
			return errMsg{err}
		}
		tables, err := r.ListTables(ctx, src.Schema, source.TableFilter{})
		if err != nil {
			_ = r.Close()
			logger.Error("list tables failed", "error", err)
			return errMsg{err}
		}
		return connectedMsg{reader: r, tables: tables}
	}
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.disconnect()
		m.screen = screenConnect
		m.status = ""
		m.err = nil
		return m, nil
	case "tab":
		m.pfocus = (m.pfocus + 1) % focusCount
		m.focusPicker()
		return m, nil
	case "shift+tab":
		m.pfocus = (m.pfocus + focusCount - 1) % focusCount
		m.focusPicker()
		return m, nil
	}

	switch m.pfocus {
	case focusSearch:
		if msg.String() == "enter" {
			m.busy = true
			return m, m.searchCmd(m.search.Value())
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd

	case focusList:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tables)-1 {
				m.cursor++
			}
		case " ":
			if m.cursor < len(m.tables) {
				m.toggle(m.tables[m.cursor].Name)
			}
		case "enter":
			return m.startExport()
		}
		return m, nil

	case focusPath:
		if msg.String() == "enter" {
			return m.startExport()
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) focusPicker() {
	m.search.Blur()
	m.path.Blur()
	switch m.pfocus {
	case focusSearch:
		m.search.Focus()
	case focusPath:
		m.path.Focus()
	}
}

// toggle adds name to the selection, or removes it. Selection order is kept.
func (m *Model) toggle(name string) {
	for i, s := range m.selected {
		if s == name {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			return
		}
	}
	m.selected = append(m.selected, name)
}

func (m *Model) isSelected(name string) bool {
	for _, s := range m.selected {
		if s == name {
			return true
		}
	}
	return false
}

func (m *Model) searchCmd(contains string) tea.Cmd {
	ctx, r, schema, logger := m.ctx, m.reader, m.src.Schema, m.opts.Logger
	return func() tea.Msg {
		tables, err := r.ListTables(ctx, schema, source.TableFilter{Contains: contains})
		if err != nil {
			logger.Error("list tables failed", "filter", contains, "error", err)
			return errMsg{err}
		}
		return tablesMsg{tables: tables}
	}
}

func (m *Model) startExport() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.path.Value())
	if len(m.selected) == 0 {
		m.err = &export.ExportError{Op: "select", Err: export.ErrNoTables}
		return m, nil
	}
	if path == "" {
		m.err = errors.New("field [Output] must not be empty")
		return m, nil
	}
	resolved, err := export.ExpandHome(path)
	if err != nil {
		m.err = err
		return m, nil
	}
	if _, err := os.Stat(resolved); err == nil {
		m.pending = path
		m.screen = screenConfirm
		return m, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		m.err = err
		return m, nil
	}
	m.busy = true
	m.status = "exporting..."
	return m, m.exportCmd(path, false)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.busy = true
		m.status = "exporting..."
		return m, m.exportCmd(m.pending, true)
	case "n", "esc":
		m.screen = screenPicker
		m.status = "export cancelled"
		m.err = nil
	}
	return m, nil
}

func (m *Model) exportCmd(path string, overwrite bool) tea.Cmd {
	cfg := m.opts.Config.Export
	exp := &export.Exporter{Reader: m.reader, Schema: m.src.Schema, Logger: m.opts.Logger, Now: m.opts.Now}
	req := export.ExportRequest{
		Tables:       append([]string(nil), m.selected...),
		OutputPath:   path,
		Overwrite:    overwrite,
		TemplatePath: cfg.Template,
		TableStyle:   cfg.TableStyle,
		Language:     cfg.Language,
	}
	ctx := m.ctx
	return func() tea.Msg {
		res, err := exp.Run(ctx, req, nil)
		if err != nil {
			return errMsg{err}
		}
		return exportedMsg{res: res}
	}
}

func (m *Model) disconnect() {
	if m.reader != nil {
		_ = m.reader.Close()
		m.reader = nil
	}
	m.tables = nil
	m.selected = nil
}

// Close releases the database connection, if any.
func (m *Model) Close() { m.disconnect() }
