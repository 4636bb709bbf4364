// Package tui is an interactive explorer of the cost along a scan line.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
	"github.com/san-kum/dyncontact/internal/scan"
	"github.com/san-kum/dyncontact/internal/viz"
)

var ErrNoSamples = errors.New("tui: nothing to explore")

// Explorer moves a cursor over precomputed scan samples and shows the full
// model evaluation at the cursor.
type Explorer struct {
	model   *model.Model[scalar.Float]
	ctx     *model.Context[scalar.Float]
	summary viz.Summary
	line    scan.Line
	samples []scan.Sample

	index   int
	point   scan.Point
	err     error
	playing bool
	help    bool

	styles viz.Styles
	width  int
	height int
}

func NewExplorer(name string, m *model.Model[scalar.Float], line scan.Line, samples []scan.Sample, theme viz.Theme) (Explorer, error) {
	if len(samples) == 0 {
		return Explorer{}, ErrNoSamples
	}
	e := Explorer{
		model:   m,
		ctx:     m.MakeContext(),
		summary: viz.Summarize(name, m),
		line:    line,
		samples: samples,
		styles:  viz.NewStyles(theme),
		width:   80,
		height:  24,
	}
	e.moveTo(scan.Minimum(samples))
	return e, nil
}

// Index returns the sample under the cursor.
func (e Explorer) Index() int        { return e.index }
func (e Explorer) Point() scan.Point { return e.point }
func (e Explorer) Err() error        { return e.err }

func (e Explorer) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (e Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
	case tickMsg:
		if !e.playing {
			return e, nil
		}
		e.moveTo((e.index + 1) % len(e.samples))
		return e, tick()
	}
	return e, nil
}

func (e Explorer) handleKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return e, tea.Quit
	case "left", "h":
		e.moveTo(e.index - 1)
	case "right", "l":
		e.moveTo(e.index + 1)
	case "pgdown", "L":
		e.moveTo(e.index + max(len(e.samples)/10, 1))
	case "pgup", "H":
		e.moveTo(e.index - max(len(e.samples)/10, 1))
	case "home", "0":
		e.moveTo(0)
	case "end", "$":
		e.moveTo(len(e.samples) - 1)
	case "m":
		e.moveTo(scan.Minimum(e.samples))
	case " ", "p":
		e.playing = !e.playing
		if e.playing {
			return e, tick()
		}
	case "t":
		e.styles = viz.NewStyles(viz.NextTheme(e.styles.Theme))
	case "?":
		e.help = !e.help
	}
	return e, nil
}

// moveTo clamps i to the samples and evaluates the model there.
func (e *Explorer) moveTo(i int) {
	e.index = min(max(i, 0), len(e.samples)-1)
	e.point, e.err = scan.Inspect(e.model, e.ctx, e.line.At(e.samples[e.index].Alpha))
}

func (e Explorer) View() string {
	st := e.styles
	var b strings.Builder

	s := e.samples[e.index]
	title := fmt.Sprintf("%s  α = %.4g  (%d/%d)", e.summary.Name, s.Alpha, e.index+1, len(e.samples))
	b.WriteString(st.Title.Render(title) + "\n")
	b.WriteString(st.Separator(max(e.width-2, 20)) + "\n")

	cw := max(e.width-4, 20)
	ch := max(e.height/3, 4)
	canvas := viz.NewCanvas(cw, ch)
	canvas.Plot(scan.Costs(e.samples))
	if len(e.samples) > 1 {
		canvas.VLine(e.index * (canvas.PixelWidth() - 1) / (len(e.samples) - 1))
	}
	b.WriteString(st.Value.Render(canvas.String()))
	b.WriteString(st.Sparkline(slopes(e.samples), cw) + "  " + st.Muted.Render("slope") + "\n\n")

	if e.err != nil {
		b.WriteString(st.Error.Render(e.err.Error()) + "\n")
	} else {
		b.WriteString(st.RenderPoint(e.summary, e.point) + "\n")
	}

	b.WriteString("\n")
	if e.help {
		b.WriteString(st.KeyHint.Render("←/→ step  H/L jump  0/$ ends  m minimum  space play  t theme  ? help  q quit") + "\n")
	} else {
		state := "paused"
		if e.playing {
			state = "playing"
		}
		b.WriteString(st.KeyHint.Render(fmt.Sprintf("%s · theme %s · ? for keys", state, st.Theme.Name)) + "\n")
	}
	return b.String()
}

func slopes(samples []scan.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Slope
	}
	return out
}

// Run starts the explorer in the alternate screen and blocks until it quits.
func Run(e Explorer) error {
	_, err := tea.NewProgram(e, tea.WithAltScreen()).Run()
	return err
}
