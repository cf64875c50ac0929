package depsdev

import (
	"context"
	"errors"
	"fmt"
	"strings"

	depsdevpb "deps.dev/api/v3"

	"github.com/matzehuels/riskgraph/pkg/cache"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/httputil"
	"github.com/matzehuels/riskgraph/pkg/integrations"
)

// DefaultURL is the public deps.dev v3 REST API.
const DefaultURL = "https://api.deps.dev/v3"

// Relation of a node to the root of a resolved graph.
const (
	RelationSelf     = "SELF"
	RelationDirect   = "DIRECT"
	RelationIndirect = "INDIRECT"
)

// Graph is the resolved dependency graph of one package version.
// Edge endpoints index into Nodes; node 0 is the package itself.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Error string `json:"error,omitempty"`
}

// Node is one package version in a Graph.
type Node struct {
	VersionKey VersionKey `json:"versionKey"`
	Bundled    bool       `json:"bundled,omitempty"`
	Relation   string     `json:"relation"`
	Errors     []string   `json:"errors,omitempty"`
}

// VersionKey identifies a package version. System is the upper-case
// deps.dev system name, e.g. "NPM".
type VersionKey struct {
	System  string `json:"system"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Edge is a requirement from one node to another.
type Edge struct {
	FromNode    int    `json:"fromNode"`
	ToNode      int    `json:"toNode"`
	Requirement string `json:"requirement"`
}

// Client fetches resolved dependency graphs from deps.dev.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a deps.dev client. An empty baseURL selects [DefaultURL].
func NewClient(c cache.Cache, baseURL string, retry httputil.Policy) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "depsdev", cache.TTLGraph, integrations.DefaultHeaders()).WithRetry(retry),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// LookupSystem maps an ecosystem or deps.dev system name (any case) to the
// deps.dev system. Ecosystems deps.dev does not index report false.
func LookupSystem(name string) (depsdevpb.System, bool) {
	v, ok := depsdevpb.System_value[strings.ToUpper(strings.TrimSpace(name))]
	if !ok || v == 0 {
		return 0, false
	}
	return depsdevpb.System(v), true
}

// Dependencies returns the resolved graph for name@version in system.
// The call is retried under the client's policy and cached for a week.
func (c *Client) Dependencies(ctx context.Context, system, name, version string, refresh bool) (*Graph, error) {
	sys, ok := LookupSystem(system)
	if !ok {
		return nil, rgerrors.New(rgerrors.ErrCodeUnsupported, "deps.dev does not index %s packages", system)
	}
	url := fmt.Sprintf("%s/systems/%s/packages/%s/versions/%s:dependencies",
		c.baseURL,
		strings.ToLower(sys.String()),
		integrations.PathEscape(name),
		integrations.PathEscape(version))

	var g Graph
	err := c.Cached(ctx, cache.Key("graph", sys.String(), name, version), refresh, &g, func() error {
		g = Graph{}
		return c.Get(ctx, url, &g)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %s@%s", err, sys, name, version)
		}
		return nil, err
	}
	if g.Error != "" && len(g.Nodes) == 0 {
		return nil, rgerrors.New(rgerrors.ErrCodeNotFound, "deps.dev could not resolve %s@%s: %s", name, version, g.Error)
	}
	return &g, nil
}
