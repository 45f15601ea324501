// Package build turns flat group rows into the governance graph.
//
// The graph always contains a synthetic root council. Every non-root
// parent name seen in the input becomes a committee node linked to the
// root; every remaining row becomes a leaf group linked to its declared
// parent. Data-quality problems never fail a build: the affected row or
// link is skipped and recorded in the returned [Report].
//
//	g, report := build.Build(rs, build.Options{})
//	if !report.Clean() {
//	    logger.Warn("data quality", "skipped", len(report.Skipped))
//	}
package build

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/rows"
)

// Root identity defaults.
const (
	RootID   = "TSC"
	RootName = "Technical Steering Committee (TSC)"
)

// Options configures a build.
type Options struct {
	RootID   string      // Root node ID (default RootID)
	RootName string      // Root display name (default RootName)
	Logger   *log.Logger // Receives data-quality fallbacks at debug level
}

func (o *Options) setDefaults() {
	if o.RootID == "" {
		o.RootID = RootID
	}
	if o.RootName == "" {
		o.RootName = RootName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsRootName reports whether a group name refers to the default root
// council.
func IsRootName(s string) bool {
	return matchesRoot(s, RootID, RootName)
}

func matchesRoot(s, id, name string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	return s == strings.ToLower(id) ||
		s == strings.ToLower(name) ||
		strings.Contains(s, "(tsc)") ||
		strings.Contains(s, "technical steering committee")
}

// LeafID returns the node ID used for a leaf group row: the external
// identifier and name joined by a colon, or whichever of the two is set.
func LeafID(r rows.Row) string {
	id, name := strings.TrimSpace(r.ID), strings.TrimSpace(r.Name)
	switch {
	case id == "":
		return name
	case name == "":
		return id
	default:
		return id + ":" + name
	}
}

// builder carries the state of one build.
type builder struct {
	opts       Options
	g          *dag.DAG
	committees map[string]bool
	report     Report
}

// isRoot reports whether a group name refers to this build's root.
func (b *builder) isRoot(s string) bool {
	return matchesRoot(s, b.opts.RootID, b.opts.RootName)
}

// Build constructs the governance graph from rs. Rows are normalized
// before use; the input slice is not modified. The result always
// contains the root node.
func Build(rs []rows.Row, opts Options) (*dag.DAG, Report) {
	opts.setDefaults()
	b := &builder{
		opts:       opts,
		g:          dag.New(dag.Metadata{"root": opts.RootID}),
		committees: make(map[string]bool),
	}

	normalized := make([]rows.Row, len(rs))
	for i, r := range rs {
		normalized[i] = r.Normalize()
	}

	b.addRoot(normalized)
	b.registerCommittees(normalized)
	b.addGroups(normalized)
	b.collectOrphans()

	opts.Logger.Debug("built graph",
		"rows", len(rs),
		"nodes", b.g.NodeCount(),
		"edges", b.g.EdgeCount(),
		"skipped", len(b.report.Skipped))
	return b.g, b.report
}

// addRoot creates the root council, taking its leadership from the parent
// fields of the first row that reports to it.
func (b *builder) addRoot(rs []rows.Row) {
	root := dag.Node{ID: b.opts.RootID, Name: b.opts.RootName, Kind: dag.KindCouncil}
	for _, r := range rs {
		if r.Malformed() || !b.isRoot(r.ParentName) {
			continue
		}
		if chair, vice := parentLeaders(r); !chair.IsZero() || !vice.IsZero() {
			root.Chair, root.ViceChair = chair, vice
			break
		}
	}
	_ = b.g.AddNode(root)
}

// registerCommittees creates one committee per distinct non-root parent
// name and links it to the root. The first row naming a parent decides
// its leadership; later rows only fill fields that are still empty.
func (b *builder) registerCommittees(rs []rows.Row) {
	for _, r := range rs {
		if r.Malformed() || r.ParentName == "" || b.isRoot(r.ParentName) {
			continue
		}
		chair, vice := parentLeaders(r)
		b.ensureCommittee(dag.Node{
			ID:        r.ParentName,
			Name:      r.ParentName,
			Kind:      committeeKind(r.ParentName),
			Chair:     chair,
			ViceChair: vice,
		}, b.opts.RootID)
	}
}

// ensureCommittee upserts a committee node and links it under parent.
func (b *builder) ensureCommittee(n dag.Node, parent string) {
	if _, err := b.g.UpsertNode(n); err != nil {
		return
	}
	b.committees[n.ID] = true
	b.link(parent, n.ID)
}

// addGroups handles the second pass: committee rows enrich their
// committee node, everything else becomes a leaf group.
func (b *builder) addGroups(rs []rows.Row) {
	for i, r := range rs {
		if r.Malformed() {
			b.skip(i, r, "missing identifier and name")
			continue
		}
		name := r.Name
		if name == "" {
			name = r.ID
		}

		switch {
		case b.isRoot(name):
			b.mergeRoot(r)
		case b.committees[name] || isCommitteeName(name):
			b.addCommitteeRow(r, name)
		default:
			b.addLeaf(i, r, name)
		}
	}
}

func (b *builder) mergeRoot(r rows.Row) {
	root, _ := b.g.Node(b.opts.RootID)
	if root.ExternalID == "" {
		root.ExternalID = r.ID
	}
	if root.Status == "" {
		root.Status = r.Status
	}
	chair, vice := ownLeaders(r)
	if root.Chair.IsZero() {
		root.Chair = chair
	}
	if root.ViceChair.IsZero() {
		root.ViceChair = vice
	}
}

func (b *builder) addCommitteeRow(r rows.Row, name string) {
	chair, vice := ownLeaders(r)
	n := dag.Node{
		ID:         name,
		Name:       name,
		Kind:       committeeKind(name),
		ExternalID: r.ID,
		Status:     r.Status,
		Chair:      chair,
		ViceChair:  vice,
		Meta:       r.Meta(),
	}

	parent := b.opts.RootID
	if r.ParentName != "" && !b.isRoot(r.ParentName) && r.ParentName != name {
		parent = r.ParentName
	}
	if b.committees[name] {
		// Already linked to the root by the first pass; a declared
		// committee parent adds a second parent.
		_, _ = b.g.UpsertNode(n)
		if parent != b.opts.RootID {
			b.link(parent, name)
		}
		return
	}
	b.ensureCommittee(n, parent)
}

func (b *builder) addLeaf(i int, r rows.Row, name string) {
	kind, matched := dag.Classify(name)
	if !matched {
		b.report.DefaultKinds = append(b.report.DefaultKinds, LeafID(r))
		b.opts.Logger.Debug("defaulted group kind", "group", name, "kind", kind)
	}
	chair, vice := ownLeaders(r)
	n, err := b.g.UpsertNode(dag.Node{
		ID:         LeafID(r),
		Name:       name,
		Kind:       kind,
		ExternalID: r.ID,
		Status:     r.Status,
		Chair:      chair,
		ViceChair:  vice,
		Meta:       r.Meta(),
	})
	if err != nil {
		b.skip(i, r, err.Error())
		return
	}

	switch {
	case r.ParentName == "":
		// Collected as an orphan once all rows are placed.
	case b.isRoot(r.ParentName):
		b.link(b.opts.RootID, n.ID)
	default:
		if _, ok := b.g.Node(r.ParentName); !ok {
			b.report.UnknownParents = append(b.report.UnknownParents, Dangling{NodeID: n.ID, Parent: r.ParentName})
			b.opts.Logger.Debug("unknown parent", "group", n.ID, "parent", r.ParentName)
			return
		}
		b.link(r.ParentName, n.ID)
	}
}

func (b *builder) link(from, to string) {
	if _, err := b.g.AddEdge(dag.Edge{From: from, To: to}); err != nil {
		b.report.UnknownParents = append(b.report.UnknownParents, Dangling{NodeID: to, Parent: from})
		b.opts.Logger.Debug("dropped link", "from", from, "to", to, "err", err)
	}
}

func (b *builder) skip(i int, r rows.Row, reason string) {
	b.report.Skipped = append(b.report.Skipped, SkippedRow{Index: i, ID: r.ID, Name: r.Name, Reason: reason})
	b.opts.Logger.Debug("skipped row", "index", i, "reason", reason)
}

func (b *builder) collectOrphans() {
	for _, n := range b.g.Nodes() {
		if n.ID != b.opts.RootID && b.g.InDegree(n.ID) == 0 {
			b.report.Orphans = append(b.report.Orphans, n.ID)
		}
	}
}

// isCommitteeName reports whether a row name is classified as a committee
// by an explicit rule. Unmatched names are leaf groups.
func isCommitteeName(name string) bool {
	kind, matched := dag.Classify(name)
	return matched && kind == dag.KindCommittee
}

// committeeKind is the kind of a node registered as a parent: committee
// unless its name clearly says otherwise.
func committeeKind(name string) dag.Kind {
	kind, matched := dag.Classify(name)
	if !matched || kind == dag.KindCouncil {
		return dag.KindCommittee
	}
	return kind
}

func ownLeaders(r rows.Row) (chair, vice dag.Leader) {
	return dag.Leader{Name: r.Chair, Affiliation: r.ChairAffiliation, Email: r.ChairEmail},
		dag.Leader{Name: r.ViceChair, Affiliation: r.ViceChairAffiliation, Email: r.ViceChairEmail}
}

func parentLeaders(r rows.Row) (chair, vice dag.Leader) {
	return dag.Leader{Name: r.ParentChair, Affiliation: r.ParentChairAffiliation, Email: r.ParentChairEmail},
		dag.Leader{Name: r.ParentViceChair, Affiliation: r.ParentViceChairAffiliation, Email: r.ParentViceChairEmail}
}

// =============================================================================
// Report
// =============================================================================

// SkippedRow records an input row that could not be placed.
type SkippedRow struct {
	Index  int    // Position in the input
	ID     string // Row identifier, possibly empty
	Name   string // Row name, possibly empty
	Reason string
}

// Dangling records a link that was dropped because its parent is unknown.
type Dangling struct {
	NodeID string
	Parent string
}

// Report lists every data-quality fallback taken during a build.
type Report struct {
	Skipped        []SkippedRow
	UnknownParents []Dangling
	DefaultKinds   []string // Node IDs whose kind fell back to the default
	Orphans        []string // Non-root node IDs with no parent
}

// Clean reports whether the build took no fallbacks other than default kinds.
func (r Report) Clean() bool {
	return len(r.Skipped) == 0 && len(r.UnknownParents) == 0 && len(r.Orphans) == 0
}

// String summarizes the report on one line.
func (r Report) String() string {
	return fmt.Sprintf("%d skipped, %d unknown parents, %d orphans, %d default kinds",
		len(r.Skipped), len(r.UnknownParents), len(r.Orphans), len(r.DefaultKinds))
}
