package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/cloud"
)

// inspectCommand creates the inspect command, an interactive table of the
// bubbles in a cloud.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		noCache bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [report.json|cloud.json]",
		Short: "Browse the bubbles of a cloud in the terminal",
		Long: `Browse the bubbles of a cloud in the terminal.

The input is a .cloud.json file, or a report that is packed first using the
layout flags. Each row shows a bubble's rank, label, weight, radius and
center, plus its status: ok, overlap (closer to a neighbour than the padding
allows) or fallback (no free spot was found and it sits at the center).

Keys: ↑/↓ or j/k move, g/G jump to the first/last row, q quits.
Use --plain to print the table once without the interactive view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.loadInspectCloud(cmd, args[0], &lf, noCache)
			if err != nil {
				return err
			}
			m := newCloudModel(cl)
			if plain {
				return m.writePlain(cmd.OutOrStdout())
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a static table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	lf.register(cmd)

	return cmd
}

// loadInspectCloud reads a saved cloud, or lays out a report.
func (c *CLI) loadInspectCloud(cmd *cobra.Command, input string, lf *layoutFlags, noCache bool) (cloud.Cloud, error) {
	if strings.HasSuffix(input, cloudExt) {
		cl, err := cloud.ReadFile(input)
		if err != nil {
			return cloud.Cloud{}, fmt.Errorf("load cloud %s: %w", input, err)
		}
		return cl, nil
	}

	ctx := cmd.Context()
	opts := c.options(cmd, lf, nil)
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return cloud.Cloud{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	items, err := c.readItems(cmd, runner.Cache, input, opts.Source)
	if err != nil {
		return cloud.Cloud{}, fmt.Errorf("load %s: %w", input, err)
	}

	return runner.Layout(ctx, items, opts)
}

// =============================================================================
// cloudModel - Interactive bubble table
// =============================================================================

// Bubble statuses shown in the table.
const (
	statusOK       = "ok"
	statusOverlap  = "overlap"
	statusFallback = "fallback"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	rowStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// cloudModel is the bubbletea model behind inspect.
type cloudModel struct {
	cloud  cloud.Cloud
	status []string
	cursor int
	offset int
	height int
}

func newCloudModel(c cloud.Cloud) cloudModel {
	return cloudModel{
		cloud:  c,
		status: bubbleStatuses(c),
		height: 15,
	}
}

// bubbleStatuses classifies every bubble against all the others.
func bubbleStatuses(c cloud.Cloud) []string {
	circles := c.Circles()
	out := make([]string, len(circles))
	for i, a := range circles {
		if a.Fallback {
			out[i] = statusFallback
			continue
		}
		out[i] = statusOK
		for j, b := range circles {
			if i != j && !b.Fallback && bubble.Overlaps(a, b, c.Options.Padding) {
				out[i] = statusOverlap
				break
			}
		}
	}
	return out
}

func (m cloudModel) Init() tea.Cmd {
	return nil
}

func (m cloudModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := len(m.cloud.Bubbles) - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < last {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = max(last, 0)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m, nil
}

func (m cloudModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Bubble cloud"))
	b.WriteString("  ")
	b.WriteString(m.summary())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.cloud.Bubbles) == 0 {
		b.WriteString(mutedStyle.Render("  (no bubbles)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.offset+m.height, len(m.cloud.Bubbles))
	b.WriteString(m.table(m.offset, end, true).Render())
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.cloud.Bubbles))))

	return b.String()
}

// writePlain prints every row once, without a cursor.
func (m cloudModel) writePlain(w io.Writer) error {
	if _, err := fmt.Fprintln(w, m.summary()); err != nil {
		return err
	}
	if len(m.cloud.Bubbles) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, m.table(0, len(m.cloud.Bubbles), false).Render())
	return err
}

func (m cloudModel) summary() string {
	c := m.cloud
	overlaps := 0
	for _, s := range m.status {
		if s == statusOverlap {
			overlaps++
		}
	}
	parts := []string{
		fmt.Sprintf("%d bubbles", len(c.Bubbles)),
		fmt.Sprintf("%gx%g", c.Width, c.Height),
	}
	if c.Source != "" {
		parts = append(parts, c.Source)
	}
	if overlaps > 0 {
		parts = append(parts, fmt.Sprintf("%d overlapping", overlaps))
	}
	if c.Fallbacks > 0 {
		parts = append(parts, fmt.Sprintf("%d unplaced", c.Fallbacks))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// table builds rows [from, to) of the bubble table.
func (m cloudModel) table(from, to int, interactive bool) *table.Table {
	rows := make([][]string, 0, to-from)
	for i := from; i < to; i++ {
		bb := m.cloud.Bubbles[i]
		cursor := "  "
		if interactive && i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(bb.Rank + 1),
			bb.Label,
			strconv.FormatFloat(bb.Weight, 'f', -1, 64),
			fmt.Sprintf("%.1f", bb.R),
			fmt.Sprintf("%.1f", bb.X),
			fmt.Sprintf("%.1f", bb.Y),
			m.status[i],
		})
	}

	const statusCol = 7
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Label", "Weight", "R", "X", "Y", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := from + row
			if idx >= len(m.status) {
				return lipgloss.NewStyle()
			}
			if col == statusCol {
				switch m.status[idx] {
				case statusOverlap:
					return StyleError
				case statusFallback:
					return StyleWarning
				default:
					return StyleSuccess
				}
			}
			if interactive && idx == m.cursor {
				return selectedStyle
			}
			return rowStyle
		})
}
