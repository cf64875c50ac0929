package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/riskgraph/pkg/cache"
	"github.com/matzehuels/riskgraph/pkg/integrations"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// Client resolves package versions against an npm registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client. An empty baseURL selects [DefaultURL].
func NewClient(c cache.Cache, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "npm", cache.TTLRegistry, integrations.DefaultHeaders()),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// LatestVersion returns the version tagged "latest" for pkg.
func (c *Client) LatestVersion(ctx context.Context, pkg string, refresh bool) (string, error) {
	pkg = strings.TrimSpace(pkg)

	var data registryResponse
	err := c.Cached(ctx, pkg, refresh, &data, func() error {
		return c.Get(ctx, c.packageURL(pkg), &data)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return "", err
	}
	if data.DistTags.Latest == "" {
		return "", fmt.Errorf("npm package %s: no latest dist-tag", pkg)
	}
	return data.DistTags.Latest, nil
}

// packageURL keeps the scope separator of "@scope/name" encoded as the
// registry expects.
func (c *Client) packageURL(pkg string) string {
	return c.baseURL + "/" + strings.ReplaceAll(pkg, "/", "%2F")
}

type registryResponse struct {
	Name     string   `json:"name"`
	DistTags distTags `json:"dist-tags"`
}

type distTags struct {
	Latest string `json:"latest"`
}
