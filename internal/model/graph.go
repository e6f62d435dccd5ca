package model

import "sort"

// Hyperedge models a multi-party interaction: a set of >= 2 distinct
// member node ids, a role assigned to each member, and one evidence
// tensor. Member lists are stored sorted and deduplicated.
type Hyperedge struct {
	ID      string
	Nodes   []string
	Roles   map[string]string
	Tensor  EvidenceTensor
}

// GraphSnapshot is an undirected adjacency relation over a set of nodes
// plus a collection of hyperedges. Self-loops are silently dropped, and
// hyperedges with fewer than two distinct members are dropped. All
// iteration is in sorted node-id order so downstream results are
// reproducible.
type GraphSnapshot struct {
	nodes      map[string]struct{}
	adjacency  map[string]map[string]struct{}
	hyperedges map[string]Hyperedge
}

// NewGraphSnapshot returns an empty snapshot.
func NewGraphSnapshot() *GraphSnapshot {
	return &GraphSnapshot{
		nodes:      make(map[string]struct{}),
		adjacency:  make(map[string]map[string]struct{}),
		hyperedges: make(map[string]Hyperedge),
	}
}

// AddNode registers a node id, creating it if absent.
func (g *GraphSnapshot) AddNode(id string) {
	g.nodes[id] = struct{}{}
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[string]struct{})
	}
}

// AddEdge adds an undirected edge between a and b. Self-loops (a == b)
// are silently dropped. Both endpoints are registered as nodes.
func (g *GraphSnapshot) AddEdge(a, b string) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
}

// AddHyperedge stores a hyperedge after sorting and deduplicating its
// member list. Hyperedges whose deduplicated member count is below 2 are
// dropped (not stored).
func (g *GraphSnapshot) AddHyperedge(id string, nodes []string, roles map[string]string, tensor EvidenceTensor) {
	seen := make(map[string]struct{}, len(nodes))
	unique := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	sort.Strings(unique)
	if len(unique) < 2 {
		return
	}
	for _, n := range unique {
		g.AddNode(n)
	}
	g.hyperedges[id] = Hyperedge{ID: id, Nodes: unique, Roles: roles, Tensor: tensor}
}

// Nodes returns all node ids in sorted order.
func (g *GraphSnapshot) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Hyperedges returns all hyperedges sorted by id.
func (g *GraphSnapshot) Hyperedges() []Hyperedge {
	out := make([]Hyperedge, 0, len(g.hyperedges))
	for _, h := range g.hyperedges {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Neighbors returns the sorted neighbor ids of node, or an empty slice if
// the node is absent.
func (g *GraphSnapshot) Neighbors(node string) []string {
	adj, ok := g.adjacency[node]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of distinct neighbors of node, 0 if absent.
func (g *GraphSnapshot) Degree(node string) int {
	return len(g.adjacency[node])
}

// ClusteringCoefficient returns the local clustering coefficient of node:
// for a neighbor set of size k < 2, 0; otherwise the count of edges among
// neighbors divided by k*(k-1)/2.
func (g *GraphSnapshot) ClusteringCoefficient(node string) float64 {
	neighbors := g.Neighbors(node)
	k := len(neighbors)
	if k < 2 {
		return 0
	}
	var edges int
	for i := 0; i < len(neighbors); i++ {
		for j := i + 1; j < len(neighbors); j++ {
			if _, ok := g.adjacency[neighbors[i]][neighbors[j]]; ok {
				edges++
			}
		}
	}
	possible := float64(k*(k-1)) / 2
	return float64(edges) / possible
}

// HyperedgeCountFor returns the number of hyperedges that include node.
func (g *GraphSnapshot) HyperedgeCountFor(node string) int {
	var count int
	for _, h := range g.hyperedges {
		for _, n := range h.Nodes {
			if n == node {
				count++
				break
			}
		}
	}
	return count
}

// MeanHyperedgeSizeFor returns the mean member-count of hyperedges that
// include node, 0 if node belongs to none.
func (g *GraphSnapshot) MeanHyperedgeSizeFor(node string) float64 {
	var total, count int
	for _, h := range g.hyperedges {
		for _, n := range h.Nodes {
			if n == node {
				total += len(h.Nodes)
				count++
				break
			}
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}
