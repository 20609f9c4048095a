// Package graph derives the reference graph and the lookup index from a
// snapshot. Both are projections: they are rebuilt from the canonical
// collections after every successful mutation and are never edited by hand.
// Building twice from the same snapshot yields byte-identical output.
package graph

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/roach88/reqstore/internal/ledger"
	"github.com/roach88/reqstore/internal/record"
	"github.com/roach88/reqstore/internal/store"
)

// Node types.
const (
	NodeRelease      = "release"
	NodeDomain       = "domain"
	NodeRequirement  = "requirement"
	NodeFeature      = "feature"
	NodeEpic         = "epic"
	NodeEpicVersion  = "epic_version"
	NodeStory        = "story"
	NodeStoryVersion = "story_version"
)

// Edge types.
const (
	EdgeBelongsTo        = "belongs_to"          // story -> epic
	EdgeScopedBy         = "scoped_by"           // epic -> feature
	EdgeVersionOf        = "version_of"          // version -> artifact
	EdgeSupersedes       = "supersedes"          // newer -> older
	EdgeSatisfies        = "satisfies"           // feature/version -> requirement
	EdgeReferencesDomain = "references_domain"   // requirement/feature/version -> domain entry
	EdgeAssignedTo       = "assigned_to_release" // version -> release
)

// Node is one vertex of the reference graph.
type Node struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

// Edge is one directed reference.
type Edge struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Target string `json:"target"`
}

// Metadata summarizes the graph. It carries no timestamp so rebuilds from
// an unchanged snapshot produce identical bytes.
type Metadata struct {
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	NodeTypes []string `json:"node_types"`
	EdgeTypes []string `json:"edge_types"`
}

// Graph is the derived reference graph.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// VersionNodeID names the node for version n of a versioned artifact.
func VersionNodeID(artifactID string, n int) string {
	return fmt.Sprintf("%s:v%d", artifactID, n)
}

// Build derives the reference graph from a snapshot. Nodes are ordered by
// (type, id) and edges by (source, type, target).
func Build(snap *record.Snapshot) *Graph {
	g := &Graph{Nodes: []Node{}, Edges: []Edge{}}

	for _, rel := range snap.Releases {
		g.addNode(Node{ID: rel.ID, Type: NodeRelease, Label: rel.Title, Status: string(rel.Status)})
	}
	for _, d := range snap.Domain {
		g.addNode(Node{ID: d.ID, Type: NodeDomain, Label: d.Title, Status: string(d.Status)})
	}

	for _, req := range snap.Requirements {
		g.addNode(Node{ID: req.ID, Type: NodeRequirement, Label: req.Title, Status: string(req.Status)})
		for _, ref := range req.DomainRefs {
			g.addEdge(Edge{Source: req.ID, Type: EdgeReferencesDomain, Target: ref})
		}
		if req.SupersededBy != nil {
			g.addEdge(Edge{Source: *req.SupersededBy, Type: EdgeSupersedes, Target: req.ID})
		}
	}

	for _, feat := range snap.Features {
		g.addNode(Node{ID: feat.ID, Type: NodeFeature, Label: feat.Title, Status: string(feat.Status)})
		for _, ref := range feat.RequirementRefs {
			g.addEdge(Edge{Source: feat.ID, Type: EdgeSatisfies, Target: ref})
		}
		for _, ref := range feat.DomainRefs {
			g.addEdge(Edge{Source: feat.ID, Type: EdgeReferencesDomain, Target: ref})
		}
	}

	for _, epic := range snap.Epics {
		g.addNode(Node{ID: epic.ID, Type: NodeEpic, Label: epic.Title, Status: string(epic.Status)})
		// An empty parent ref gets no edge; every edge must target a node.
		if epic.FeatureRef != "" {
			g.addEdge(Edge{Source: epic.ID, Type: EdgeScopedBy, Target: epic.FeatureRef})
		}
		for i := range epic.Versions {
			v := &epic.Versions[i]
			vid := VersionNodeID(epic.ID, v.Version)
			g.addNode(Node{ID: vid, Type: NodeEpicVersion, Label: v.Summary, Status: string(v.Status)})
			g.addEdge(Edge{Source: vid, Type: EdgeVersionOf, Target: epic.ID})
			g.addEdge(Edge{Source: vid, Type: EdgeAssignedTo, Target: v.ReleaseRef})
			if v.Supersedes != nil {
				g.addEdge(Edge{Source: vid, Type: EdgeSupersedes, Target: VersionNodeID(epic.ID, *v.Supersedes)})
			}
			for _, ref := range v.RequirementRefs {
				g.addEdge(Edge{Source: vid, Type: EdgeSatisfies, Target: ref})
			}
			for _, ref := range v.DomainRefs {
				g.addEdge(Edge{Source: vid, Type: EdgeReferencesDomain, Target: ref})
			}
		}
	}

	for _, story := range snap.Stories {
		g.addNode(Node{ID: story.ID, Type: NodeStory, Label: story.Title, Status: string(story.Status)})
		if story.EpicRef != "" {
			g.addEdge(Edge{Source: story.ID, Type: EdgeBelongsTo, Target: story.EpicRef})
		}
		for i := range story.Versions {
			v := &story.Versions[i]
			vid := VersionNodeID(story.ID, v.Version)
			g.addNode(Node{ID: vid, Type: NodeStoryVersion, Label: v.Description, Status: string(v.Status)})
			g.addEdge(Edge{Source: vid, Type: EdgeVersionOf, Target: story.ID})
			g.addEdge(Edge{Source: vid, Type: EdgeAssignedTo, Target: v.ReleaseRef})
			if v.Supersedes != nil {
				g.addEdge(Edge{Source: vid, Type: EdgeSupersedes, Target: VersionNodeID(story.ID, *v.Supersedes)})
			}
			for _, ref := range v.RequirementRefs {
				g.addEdge(Edge{Source: vid, Type: EdgeSatisfies, Target: ref})
			}
			for _, ref := range v.DomainRefs {
				g.addEdge(Edge{Source: vid, Type: EdgeReferencesDomain, Target: ref})
			}
		}
	}

	sort.SliceStable(g.Nodes, func(i, j int) bool {
		if g.Nodes[i].Type != g.Nodes[j].Type {
			return g.Nodes[i].Type < g.Nodes[j].Type
		}
		return g.Nodes[i].ID < g.Nodes[j].ID
	})
	sort.SliceStable(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Target < b.Target
	})

	g.Metadata = Metadata{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
		NodeTypes: distinct(g.Nodes, func(n Node) string { return n.Type }),
		EdgeTypes: distinct(g.Edges, func(e Edge) string { return e.Type }),
	}
	return g
}

func (g *Graph) addNode(n Node) { g.Nodes = append(g.Nodes, n) }
func (g *Graph) addEdge(e Edge) { g.Edges = append(g.Edges, e) }

func distinct[T any](items []T, key func(T) string) []string {
	seen := map[string]bool{}
	for _, item := range items {
		seen[key(item)] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// currentVersionNumber returns the current version number of a versioned
// artifact, or 0 when it has none.
func currentVersionNumber[V ledger.Version](versions []V) int {
	cur, ok := ledger.Current(versions)
	if !ok {
		return 0
	}
	return cur.Number()
}

// GraphFilename is the graph projection's file name under the reports
// directory.
const GraphFilename = "graph.json"

// WriteGraph persists the graph atomically under dir.
func WriteGraph(dir string, g *Graph) error {
	data, err := record.EncodeStable(g)
	if err != nil {
		return record.WrapError(record.CodeIO, err, "encode graph")
	}
	return store.WriteFileAtomic(filepath.Join(dir, GraphFilename), data)
}
