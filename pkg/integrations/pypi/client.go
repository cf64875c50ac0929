package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/riskgraph/pkg/cache"
	"github.com/matzehuels/riskgraph/pkg/integrations"
)

// DefaultURL is the public Python Package Index.
const DefaultURL = "https://pypi.org"

// Client resolves package versions against the PyPI JSON API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client. An empty baseURL selects [DefaultURL].
func NewClient(c cache.Cache, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "pypi", cache.TTLRegistry, integrations.DefaultHeaders()),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// LatestVersion returns the current release of pkg as reported by
// info.version. Names are normalized following PEP 503.
func (c *Client) LatestVersion(ctx context.Context, pkg string, refresh bool) (string, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var data apiResponse
	err := c.Cached(ctx, pkg, refresh, &data, func() error {
		return c.Get(ctx, c.baseURL+"/pypi/"+integrations.PathEscape(pkg)+"/json", &data)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return "", fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return "", err
	}
	if data.Info.Version == "" {
		return "", fmt.Errorf("pypi package %s: no version in metadata", pkg)
	}
	return data.Info.Version, nil
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
