// Package graph builds the contact problem graph: cliques are nodes,
// constraints are edges, and clusters are its connected components.
package graph

import (
	"errors"
	"fmt"

	"github.com/san-kum/dyncontact/internal/permutation"
)

var ErrCliqueOutOfRange = errors.New("graph: clique index out of range")

// Incidence lists the cliques a constraint couples. Second is negative for
// single-clique constraints.
type Incidence struct {
	First  int
	Second int
}

// NumCliques returns 1 or 2.
func (e Incidence) NumCliques() int {
	if e.Second < 0 {
		return 1
	}
	return 2
}

// Cluster is one connected component. Cliques and Constraints hold
// original indices in first-appearance order.
type Cluster struct {
	Cliques     []int
	Constraints []int
}

// Graph is a read-only view of which cliques participate and how they
// cluster.
type Graph struct {
	numCliques    int
	incidences    []Incidence
	clusters      []Cluster
	cliqueCluster []int

	participating *permutation.Partial
	constraints   *permutation.Partial
}

// Build computes participation and clusters for numCliques cliques coupled
// by the given constraints. Clusters are ordered by the first constraint
// that touches them; inside a cluster cliques and constraints keep their
// first-appearance order.
func Build(numCliques int, incidences []Incidence) (*Graph, error) {
	ds := newDisjointSet(numCliques)
	for i, e := range incidences {
		if e.First < 0 || e.First >= numCliques {
			return nil, fmt.Errorf("constraint %d first clique %d of %d: %w", i, e.First, numCliques, ErrCliqueOutOfRange)
		}
		if e.Second >= numCliques {
			return nil, fmt.Errorf("constraint %d second clique %d of %d: %w", i, e.Second, numCliques, ErrCliqueOutOfRange)
		}
		if e.Second >= 0 {
			ds.union(e.First, e.Second)
		}
	}

	g := &Graph{
		numCliques:    numCliques,
		incidences:    append([]Incidence(nil), incidences...),
		cliqueCluster: make([]int, numCliques),
	}
	for i := range g.cliqueCluster {
		g.cliqueCluster[i] = -1
	}

	rootCluster := make(map[int]int)
	visit := func(c, clique int) {
		if g.cliqueCluster[clique] < 0 {
			g.cliqueCluster[clique] = c
			g.clusters[c].Cliques = append(g.clusters[c].Cliques, clique)
		}
	}
	for i, e := range incidences {
		root := ds.find(e.First)
		c, ok := rootCluster[root]
		if !ok {
			c = len(g.clusters)
			rootCluster[root] = c
			g.clusters = append(g.clusters, Cluster{})
		}
		g.clusters[c].Constraints = append(g.clusters[c].Constraints, i)
		visit(c, e.First)
		if e.Second >= 0 {
			visit(c, e.Second)
		}
	}

	cliquePerm := make([]int, numCliques)
	for i := range cliquePerm {
		cliquePerm[i] = -1
	}
	constraintPerm := make([]int, len(incidences))
	nextClique, nextConstraint := 0, 0
	for _, cl := range g.clusters {
		for _, c := range cl.Cliques {
			cliquePerm[c] = nextClique
			nextClique++
		}
		for _, k := range cl.Constraints {
			constraintPerm[k] = nextConstraint
			nextConstraint++
		}
	}

	var err error
	if g.participating, err = permutation.NewPartial(cliquePerm); err != nil {
		return nil, err
	}
	if g.constraints, err = permutation.NewPartial(constraintPerm); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) NumCliques() int       { return g.numCliques }
func (g *Graph) NumConstraints() int   { return len(g.incidences) }
func (g *Graph) NumClusters() int      { return len(g.clusters) }
func (g *Graph) Clusters() []Cluster   { return g.clusters }
func (g *Graph) Cluster(i int) Cluster { return g.clusters[i] }

// Incidence returns the cliques coupled by constraint i.
func (g *Graph) Incidence(i int) Incidence { return g.incidences[i] }

// NumParticipatingCliques returns the number of cliques referenced by at
// least one constraint.
func (g *Graph) NumParticipatingCliques() int {
	return g.participating.PermutedDomainSize()
}

// ClusterOf returns the cluster holding clique, or -1 if it does not
// participate.
func (g *Graph) ClusterOf(clique int) int { return g.cliqueCluster[clique] }

// ParticipatingCliques maps original clique indices to their position in
// cluster order. Non-participating cliques have no image.
func (g *Graph) ParticipatingCliques() *permutation.Partial { return g.participating }

// ConstraintsPermutation maps original constraint indices to their
// position in cluster order.
func (g *Graph) ConstraintsPermutation() *permutation.Partial { return g.constraints }
