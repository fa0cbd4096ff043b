package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pgrunwald/svgpie/pkg/chart/palette"
	"github.com/pgrunwald/svgpie/pkg/chart/pie"
	"github.com/pgrunwald/svgpie/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the preview command for interactive slice inspection.
func (c *CLI) previewCommand() *cobra.Command {
	opts := renderOpts{pngScale: 2.0}

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Interactively toggle categories and inspect shares",
		Long: `Preview loads a dataset and opens an interactive list of its
categories. Toggling a category off removes it from the chart and
renormalizes the remaining shares. Press w to write the chart with the
current selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file written on w (default derived from input)")
	cmd.Flags().StringVar(&opts.category, "category", "", "category column name (default \"category\")")
	cmd.Flags().StringVar(&opts.value, "value", "", "value column name (default \"value\")")
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML config file")

	return cmd
}

func (c *CLI) runPreview(cmd *cobra.Command, input string, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	opts.formats = []string{pipeline.FormatSVG}
	p, err := opts.pipelineOptions(input)
	if err != nil {
		return err
	}
	p.Logger = logger

	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	obs, err := runner.Load(cmd.Context(), p)
	if err != nil {
		return err
	}
	if len(obs) == 0 {
		return fmt.Errorf("dataset %s has no observations", input)
	}

	model, err := NewPreviewModel(obs)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}

	result, ok := final.(PreviewModel)
	if !ok || !result.Write {
		return nil
	}

	selected := result.Selected()
	if len(selected) == 0 {
		printInfo("Nothing selected, no chart written")
		return nil
	}

	p.Observations = selected
	p.Input = ""
	res, err := runner.Execute(cmd.Context(), p)
	if err != nil {
		return err
	}
	return writeSingle(res, pipeline.FormatSVG, input, opts)
}

// =============================================================================
// PreviewModel - Interactive category selection
// =============================================================================

// PreviewModel is the bubbletea model for toggling chart categories.
type PreviewModel struct {
	Obs     []pie.Observation
	Enabled []bool
	Cursor  int
	Write   bool
	Height  int
	Offset  int

	colors []string
}

// NewPreviewModel creates a preview model with all categories enabled.
func NewPreviewModel(obs []pie.Observation) (PreviewModel, error) {
	scale, err := palette.NewDerived(nil)
	if err != nil {
		return PreviewModel{}, err
	}
	colors := make([]string, len(obs))
	for i, o := range obs {
		if colors[i], err = scale.ColorOf(o.Category); err != nil {
			return PreviewModel{}, err
		}
	}
	enabled := make([]bool, len(obs))
	for i := range enabled {
		enabled[i] = true
	}
	return PreviewModel{
		Obs:     obs,
		Enabled: enabled,
		Height:  15,
		colors:  colors,
	}, nil
}

// Selected returns the currently enabled observations in input order.
func (m PreviewModel) Selected() []pie.Observation {
	var out []pie.Observation
	for i, o := range m.Obs {
		if m.Enabled[i] {
			out = append(out, o)
		}
	}
	return out
}

// shares computes normalized percentages over the enabled observations.
// It returns nil when the selection is empty or has a zero total.
func (m PreviewModel) shares() map[string]float64 {
	selected := m.Selected()
	shares, err := pie.Normalize(selected)
	if err != nil {
		return nil
	}
	out := make(map[string]float64, len(shares))
	for _, s := range shares {
		out[s.Category] = s.Percent
	}
	return out
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Obs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "enter":
			m.Enabled[m.Cursor] = !m.Enabled[m.Cursor]
		case "a":
			for i := range m.Enabled {
				m.Enabled[i] = true
			}
		case "w":
			m.Write = true
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

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Preview Slices"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  w write  q quit"))
	b.WriteString("\n\n")

	shares := m.shares()

	end := m.Offset + m.Height
	if end > len(m.Obs) {
		end = len(m.Obs)
	}

	for i := m.Offset; i < end; i++ {
		o := m.Obs[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mark := "[x]"
		if !m.Enabled[i] {
			mark = "[ ]"
		}

		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color("#" + m.colors[i])).
			Render("  ")

		pct := "—"
		if m.Enabled[i] && shares != nil {
			pct = fmt.Sprintf("%.2f%%", shares[o.Category])
		}

		line := fmt.Sprintf("%s%s %s %-20s %10.2f  %8s", cursor, mark, swatch, o.Category, o.Value, pct)
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case !m.Enabled[i]:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if shares == nil {
		b.WriteString(StyleWarning.Render("  selection has no positive total"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d enabled]", len(m.Selected()), len(m.Obs))))
	}

	return b.String()
}
