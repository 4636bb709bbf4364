package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles of one theme.
type Styles struct {
	Theme    Theme
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Error    lipgloss.Style
	KeyHint  lipgloss.Style
	Panel    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	st := Styles{
		Theme:    t,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Label:    lipgloss.NewStyle().Foreground(t.Muted),
		Value:    lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(t.Active),
		Inactive: lipgloss.NewStyle().Foreground(t.Inactive),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		KeyHint:  lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
	}
	st.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	return st
}

// Box renders content in a bordered panel headed by title.
func (s Styles) Box(title, content string, width int) string {
	panel := s.Panel
	if width > 0 {
		panel = panel.Width(width)
	}
	return panel.Render(s.Title.Render(title) + "\n" + content)
}

// Field renders "label value" with the label padded to width.
func (s Styles) Field(label, value string, width int) string {
	if pad := width - lipgloss.Width(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}
	return s.Label.Render(label) + " " + s.Value.Render(value)
}

// Sparkline renders values as a one-line bar chart of at most width
// cells, colored by height.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(s.Inactive.Render(c))
		case norm > 0.3:
			b.WriteString(s.Value.Render(c))
		default:
			b.WriteString(s.Active.Render(c))
		}
	}
	return b.String()
}

func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Muted.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return s.Muted.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
