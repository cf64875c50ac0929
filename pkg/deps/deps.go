package deps

import (
	"slices"
	"strconv"
)

// Relation of a transitive graph node to the dependency that owns the graph.
type Relation string

const (
	RelationSelf     Relation = "SELF"
	RelationDirect   Relation = "DIRECT"
	RelationIndirect Relation = "INDIRECT"
)

// Dependency is one package version. Parsers create the top-level ones; the
// transitive resolver creates graph nodes. Only the enricher (appending
// vulnerabilities) and the graph filter (pruning) mutate them afterwards.
type Dependency struct {
	Name            string                `json:"name"`
	Version         string                `json:"version"`
	Ecosystem       Ecosystem             `json:"ecosystem"`
	Vulnerabilities []Vulnerability       `json:"vulnerabilities"`
	Transitive      *TransitiveDependency `json:"transitiveDependencies,omitempty"`
	DependencyType  string                `json:"dependencyType,omitempty"`
	Relation        Relation              `json:"relation,omitempty"`
}

// Key returns the identity "name@version@ecosystem".
func (d *Dependency) Key() string {
	return Key(d.Name, d.Version, d.Ecosystem)
}

// Key builds the identity key shared by the store and the enricher.
func Key(name, version string, eco Ecosystem) string {
	return name + "@" + version + "@" + string(eco)
}

// Vulnerable reports whether d has at least one vulnerability.
func (d *Dependency) Vulnerable() bool { return len(d.Vulnerabilities) > 0 }

// Clone returns a copy whose slices and transitive graph are not shared
// with d. Vulnerability records themselves are shared.
func (d *Dependency) Clone() Dependency {
	c := *d
	c.Vulnerabilities = slices.Clone(d.Vulnerabilities)
	if d.Transitive != nil {
		t := d.Transitive.Clone()
		c.Transitive = &t
	}
	return c
}

// TransitiveDependency is an index-addressed graph: edge endpoints are
// positions in Nodes, and node 0 is the owning dependency itself.
type TransitiveDependency struct {
	Nodes []Dependency `json:"nodes"`
	Edges []Edge       `json:"edges"`
}

// Clone deep-copies the graph.
func (t *TransitiveDependency) Clone() TransitiveDependency {
	nodes := make([]Dependency, len(t.Nodes))
	for i := range t.Nodes {
		nodes[i] = t.Nodes[i].Clone()
	}
	return TransitiveDependency{Nodes: nodes, Edges: slices.Clone(t.Edges)}
}

// VulnerableNodes counts nodes other than SELF that carry a vulnerability.
func (t *TransitiveDependency) VulnerableNodes() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].Relation != RelationSelf && t.Nodes[i].Vulnerable() {
			n++
		}
	}
	return n
}

// Edge is a requirement from Nodes[Source] to Nodes[Target].
type Edge struct {
	Source      int    `json:"source"`
	Target      int    `json:"target"`
	Requirement string `json:"requirement"`
}

// ScoreUnknown marks a CVSS field with no usable vector.
const ScoreUnknown = "unknown"

// Vulnerability is an OSV advisory attached to a dependency. After ID
// discovery only ID is set; the detail fetch fills in the rest.
type Vulnerability struct {
	ID            string         `json:"id"`
	Summary       string         `json:"summary,omitempty"`
	Details       string         `json:"details,omitempty"`
	SeverityScore *SeverityScore `json:"severityScore,omitempty"`
	References    []Reference    `json:"references"`
	Affected      []Affected     `json:"affected"`
	FixAvailable  string         `json:"fixAvailable,omitempty"`
	Aliases       []string       `json:"aliases"`
}

// SeverityScore holds CVSS base scores formatted with one decimal, or
// ScoreUnknown.
type SeverityScore struct {
	CVSSv3 string `json:"cvss_v3"`
	CVSSv4 string `json:"cvss_v4"`
}

// Max returns the higher of the two scores, or -1 when neither is known.
func (s *SeverityScore) Max() float64 {
	best := -1.0
	if s == nil {
		return best
	}
	for _, v := range []string{s.CVSSv3, s.CVSSv4} {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > best {
			best = f
		}
	}
	return best
}

// Reference is a link attached to an advisory.
type Reference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Affected describes one affected package and its version ranges.
type Affected struct {
	Package AffectedPackage `json:"package"`
	Ranges  []Range         `json:"ranges,omitempty"`
}

// AffectedPackage names a package in OSV terms.
type AffectedPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

// Range is an ordered list of version events.
type Range struct {
	Type   string  `json:"type"`
	Events []Event `json:"events"`
}

// Event marks a version where a range opens or closes.
type Event struct {
	Introduced   string `json:"introduced,omitempty"`
	Fixed        string `json:"fixed,omitempty"`
	LastAffected string `json:"last_affected,omitempty"`
	Limit        string `json:"limit,omitempty"`
}

// HighestScore returns the highest CVSS score across vulns, or -1.
func HighestScore(vulns []Vulnerability) float64 {
	best := -1.0
	for i := range vulns {
		best = max(best, vulns[i].SeverityScore.Max())
	}
	return best
}
