package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/picplan/pkg/layout"
	"github.com/matzehuels/picplan/pkg/plan"
)

// exploreModes are the constraint modes the explorer cycles through.
var exploreModes = []layout.ConstraintMode{
	layout.Fit, layout.Within, layout.FitCrop, layout.WithinCrop,
	layout.FitPad, layout.WithinPad, layout.Distort, layout.AspectCrop,
}

// exploreModel is the bubbletea model for the interactive layout explorer.
type exploreModel struct {
	srcW, srcH int
	exif       int
	targetW    int
	targetH    int
	modeIdx    int

	ideal plan.IdealLayout
	req   plan.DecoderRequest
	err   error
}

func newExploreModel(srcW, srcH, exif int) exploreModel {
	m := exploreModel{
		srcW: srcW, srcH: srcH, exif: exif,
		targetW: min(srcW, 800), targetH: min(srcH, 600),
	}
	m.recompute()
	return m
}

// recompute replans with the current target and mode.
func (m *exploreModel) recompute() {
	c := layout.NewConstraint(exploreModes[m.modeIdx], m.targetW, m.targetH)
	m.ideal, m.req, m.err = plan.New(m.srcW, m.srcH).
		AutoOrient(m.exif).
		Constrain(c).
		Plan()
}

func (m exploreModel) Init() tea.Cmd { return nil }

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	step := 10
	switch keyMsg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left":
		m.targetW = max(m.targetW-step, 1)
	case "right":
		m.targetW += step
	case "up":
		m.targetH = max(m.targetH-step, 1)
	case "down":
		m.targetH += step
	case "H":
		m.targetW = max(m.targetW-1, 1)
	case "L":
		m.targetW++
	case "K":
		m.targetH = max(m.targetH-1, 1)
	case "J":
		m.targetH++
	case "m", "tab":
		m.modeIdx = (m.modeIdx + 1) % len(exploreModes)
	case "M", "shift+tab":
		m.modeIdx = (m.modeIdx + len(exploreModes) - 1) % len(exploreModes)
	default:
		return m, nil
	}
	m.recompute()
	return m, nil
}

var (
	exploreBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorDim)
	exploreContentStyle = lipgloss.NewStyle().Background(lipgloss.Color("24"))
)

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("picplan explore"))
	b.WriteString(styleDim.Render(fmt.Sprintf("   source %d×%d", m.srcW, m.srcH)))
	if m.exif > 1 {
		b.WriteString(styleDim.Render(fmt.Sprintf(" exif %d", m.exif)))
	}
	b.WriteString("\n\n")

	mode := exploreModes[m.modeIdx]
	b.WriteString(kv("mode", mode.String()) + "\n")
	b.WriteString(kv("target", fmt.Sprintf("%d×%d", m.targetW, m.targetH)) + "\n")

	if m.err != nil {
		b.WriteString("\n" + styleWarning.Render("error: "+m.err.Error()) + "\n")
	} else {
		l := m.ideal.Layout
		b.WriteString(kv("resize to", fmt.Sprintf("%d×%d", l.ResizeTo.W, l.ResizeTo.H)) + "\n")
		b.WriteString(kv("canvas", fmt.Sprintf("%d×%d", l.Canvas.W, l.Canvas.H)) + "\n")
		if c := m.ideal.SourceCrop; c != nil {
			b.WriteString(kv("crop", fmt.Sprintf("%d×%d @ (%d, %d)", c.W, c.H, c.X, c.Y)) + "\n")
		}
		if l.Placement.X != 0 || l.Placement.Y != 0 {
			b.WriteString(kv("placement", fmt.Sprintf("(%d, %d)", l.Placement.X, l.Placement.Y)) + "\n")
		}
		b.WriteString("\n" + m.renderPreview() + "\n")
	}

	b.WriteString("\n" + styleDim.Render("arrows resize ±10 · HJKL ±1 · m cycle mode · q quit"))
	return b.String()
}

// renderPreview draws the canvas as a character box with the placed image
// shaded inside it.
func (m exploreModel) renderPreview() string {
	l := m.ideal.Layout
	const maxCols, maxRows = 48, 16

	scale := min(
		float64(maxCols)/float64(l.Canvas.W),
		float64(maxRows)/float64(l.Canvas.H),
	)
	cols := max(int(float64(l.Canvas.W)*scale), 1)
	rows := max(int(float64(l.Canvas.H)*scale), 1)

	ix0 := int(float64(l.Placement.X) * scale)
	iy0 := int(float64(l.Placement.Y) * scale)
	ix1 := int(float64(l.Placement.X+l.ResizeTo.W) * scale)
	iy1 := int(float64(l.Placement.Y+l.ResizeTo.H) * scale)

	var rowsOut []string
	for y := 0; y < rows; y++ {
		var row strings.Builder
		for x := 0; x < cols; x++ {
			if x >= ix0 && x < ix1 && y >= iy0 && y < iy1 {
				row.WriteString(exploreContentStyle.Render(" "))
			} else {
				row.WriteString(styleDim.Render("·"))
			}
		}
		rowsOut = append(rowsOut, row.String())
	}
	return exploreBoxStyle.Render(strings.Join(rowsOut, "\n"))
}

func newExploreCmd() *cobra.Command {
	var (
		size string
		exif int
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactively explore layouts for a source size",
		Long: `Open an interactive explorer: adjust the target dimensions with the
arrow keys, cycle constraint modes with m, and watch the computed layout
update live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := parseSize(size)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newExploreModel(w, h, exif), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&size, "size", "s", "", "source dimensions as WxH (required)")
	cmd.Flags().IntVar(&exif, "exif", 0, "EXIF orientation tag (1-8)")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}
