package cmd

import (
	"encoding/json"
	"fmt"
	pathpkg "path/filepath"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"nvrom/internal/bundle"
	"nvrom/internal/nvrom/styles"
	"nvrom/internal/ui/colorize"
)

type viewMode int

const (
	viewSummary viewMode = iota
	viewUnits
	viewDetail
)

// unitItem is one selectable entry of the units list. Index -1 stands for
// the NBSI directory.
type unitItem struct {
	index int
	title string
	desc  string
}

func (i unitItem) Title() string       { return i.title }
func (i unitItem) Description() string { return i.desc }
func (i unitItem) FilterValue() string { return i.title }

type model struct {
	viewport  viewport.Model
	unitsList list.Model
	spinner   spinner.Model
	mode      viewMode
	filepath  string
	bundle    *bundle.Bundle
	data      []byte
	parseErr  error
	loading   bool
	width     int
	height    int
}

type bundleParsedMsg struct {
	bundle *bundle.Bundle
	data   []byte
	err    error
}

func parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		b, data, err := loadBundle(path)
		return bundleParsedMsg{bundle: b, data: data, err: err}
	}
}

func NewModel(filepath string) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(22)

	unitsList := list.New([]list.Item{}, list.NewDefaultDelegate(), 80, 22)
	unitsList.Title = "Firmware units"
	unitsList.SetShowStatusBar(false)
	unitsList.SetFilteringEnabled(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Accent

	return model{
		viewport:  vp,
		unitsList: unitsList,
		spinner:   s,
		mode:      viewSummary,
		filepath:  filepath,
		loading:   true,
		width:     80,
		height:    24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(parseCmd(m.filepath), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case bundleParsedMsg:
		m.loading = false
		m.bundle = msg.bundle
		m.data = msg.data
		m.parseErr = msg.err
		if m.parseErr == nil {
			m.populateUnits()
		}
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.unitsList.SetWidth(msg.Width)
			m.unitsList.SetHeight(msg.Height - 2)
			m.updateContent()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.mode = viewSummary
			m.updateContent()
			return m, nil
		case "u":
			if m.bundle != nil {
				m.mode = viewUnits
			}
			return m, nil
		case "enter":
			if m.mode == viewUnits {
				if item, ok := m.unitsList.SelectedItem().(unitItem); ok {
					m.mode = viewDetail
					m.showDetail(item)
				}
				return m, nil
			}
		case "esc":
			switch m.mode {
			case viewDetail:
				m.mode = viewUnits
			case viewUnits:
				m.mode = viewSummary
				m.updateContent()
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewUnits:
		m.unitsList, cmd = m.unitsList.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	title := styles.Title.Render("nvrom") + " " +
		styles.Value.Render(pathpkg.Base(m.filepath))

	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + " parsing ROM..."
	case m.mode == viewUnits:
		body = m.unitsList.View()
	default:
		body = m.viewport.View()
	}

	status := styles.StatusBar.Render("s summary • u units • enter detail • esc back • q quit")
	return title + "\n" + body + "\n" + status
}

// populateUnits fills the units list from the parsed bundle.
func (m *model) populateUnits() {
	items := make([]list.Item, 0, len(m.bundle.Firmwares)+1)
	infos := m.bundle.VBiosInfo()
	for i, unit := range m.bundle.Firmwares {
		desc := "no legacy image"
		if img := unit.LegacyImage; img != nil {
			desc = fmt.Sprintf("legacy @%#x, %d vendor images",
				img.Image.OffsetInFirmware(), len(unit.VendorImages))
		}
		items = append(items, unitItem{
			index: i,
			title: fmt.Sprintf("Unit %d — BIOS %s", i, infos[i].Version),
			desc:  desc,
		})
	}
	if nbsi := m.bundle.NBSIImage; nbsi != nil {
		items = append(items, unitItem{
			index: -1,
			title: "NBSI directory",
			desc:  fmt.Sprintf("%d objects", len(nbsi.Directory.Objects)),
		})
	}
	m.unitsList.SetItems(items)
}

// showDetail renders the selected record as colorized JSON in the viewport.
func (m *model) showDetail(item unitItem) {
	var record any
	if item.index < 0 {
		record = m.bundle.NBSIImage
	} else {
		record = m.bundle.Firmwares[item.index]
	}
	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		m.viewport.SetContent(styles.ErrorText.Render(err.Error()))
		return
	}
	m.viewport.SetContent(colorize.JSON(string(out)))
	m.viewport.GotoTop()
}

func (m *model) updateContent() {
	if m.parseErr != nil {
		m.viewport.SetContent(styles.ErrorText.Render(m.parseErr.Error()))
		return
	}
	if m.bundle == nil {
		return
	}
	if m.mode == viewSummary {
		m.viewport.SetContent(renderSummary(m.bundle, m.data, 0))
		m.viewport.GotoTop()
	}
}
