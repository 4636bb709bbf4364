package viz

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
	"github.com/san-kum/dyncontact/internal/scan"
)

// Summary is what the CLI reports about a built model. Constraints are
// listed in bundle order.
type Summary struct {
	Name          string
	TimeStep      float64
	Cliques       int
	Participating int
	Velocities    int
	Equations     int
	Clusters      []ClusterInfo
	Constraints   []ConstraintInfo
}

type ClusterInfo struct {
	Cliques     []int
	Constraints []int
}

type ConstraintInfo struct {
	Index         int // position in the problem
	FirstClique   int
	SecondClique  int
	EquationStart int
	Equations     int
	Delassus      float64
}

func Summarize(name string, m *model.Model[scalar.Float]) Summary {
	g := m.Graph()
	b := m.ConstraintsBundle()
	s := Summary{
		Name:          name,
		TimeStep:      float64(m.TimeStep()),
		Cliques:       g.NumCliques(),
		Participating: m.NumCliques(),
		Velocities:    m.NumVelocities(),
		Equations:     m.NumConstraintEquations(),
	}
	for _, c := range g.Clusters() {
		s.Clusters = append(s.Clusters, ClusterInfo{Cliques: c.Cliques, Constraints: c.Constraints})
	}
	perm := g.ConstraintsPermutation()
	delassus := m.DelassusDiagonal()
	for k := 0; k < b.NumConstraints(); k++ {
		c := b.Constraint(k)
		orig := perm.DomainIndex(k)
		s.Constraints = append(s.Constraints, ConstraintInfo{
			Index:         orig,
			FirstClique:   c.FirstClique(),
			SecondClique:  c.SecondClique(),
			EquationStart: b.EquationStart(k),
			Equations:     c.NumConstraintEquations(),
			Delassus:      float64(delassus[k]),
		})
	}
	return s
}

func (st Styles) RenderSummary(s Summary) string {
	var b strings.Builder
	b.WriteString(st.Field("time step", fmt.Sprintf("%g", s.TimeStep), 14) + "\n")
	b.WriteString(st.Field("cliques", fmt.Sprintf("%d (%d participating)", s.Cliques, s.Participating), 14) + "\n")
	b.WriteString(st.Field("velocities", fmt.Sprintf("%d", s.Velocities), 14) + "\n")
	b.WriteString(st.Field("constraints", fmt.Sprintf("%d (%d equations)", len(s.Constraints), s.Equations), 14) + "\n")
	b.WriteString(st.Field("clusters", fmt.Sprintf("%d", len(s.Clusters)), 14) + "\n")
	for i, c := range s.Clusters {
		b.WriteString(st.Muted.Render(fmt.Sprintf("  #%d cliques %v constraints %v", i, c.Cliques, c.Constraints)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(st.Label.Render(fmt.Sprintf("%-6s %-10s %-10s %s", "ID", "CLIQUES", "EQUATIONS", "DELASSUS")) + "\n")
	for _, c := range s.Constraints {
		cliques := fmt.Sprint(c.FirstClique)
		if c.SecondClique >= 0 {
			cliques += fmt.Sprintf(",%d", c.SecondClique)
		}
		eqs := fmt.Sprintf("%d..%d", c.EquationStart, c.EquationStart+c.Equations-1)
		b.WriteString(fmt.Sprintf("%-6d %-10s %-10s %s\n", c.Index, cliques, eqs, st.Value.Render(fmt.Sprintf("%.4g", c.Delassus))))
	}

	title := "contact model"
	if s.Name != "" {
		title += " · " + s.Name
	}
	return st.Box(title, strings.TrimRight(b.String(), "\n"), 0)
}

// RenderPoint shows the costs at p and, per constraint, its impulse and
// whether any of its equations is active (γ ≠ 0).
func (st Styles) RenderPoint(s Summary, p scan.Point) string {
	var b strings.Builder
	b.WriteString(st.Field("cost", fmt.Sprintf("%.6g", p.Cost), 10) + "\n")
	b.WriteString(st.Field("momentum", fmt.Sprintf("%.6g", p.MomentumCost), 10) + "\n")
	b.WriteString(st.Field("|∇ℓ|", fmt.Sprintf("%.4g", floats.Norm(p.Gradient, 2)), 10) + "\n\n")
	for _, c := range s.Constraints {
		gamma := p.Gamma[c.EquationStart : c.EquationStart+c.Equations]
		vc := p.Vc[c.EquationStart : c.EquationStart+c.Equations]
		status := st.Inactive.Render("inactive")
		if floats.Norm(gamma, 2) > 0 {
			status = st.Active.Render("active  ")
		}
		b.WriteString(fmt.Sprintf("%-4d %s γ=%s vc=%s\n", c.Index, status, formatVec(gamma), formatVec(vc)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatVec(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.3g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
