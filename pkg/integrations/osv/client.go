package osv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ossf/osv-schema/bindings/go/osvschema"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/matzehuels/riskgraph/pkg/cache"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/httputil"
	"github.com/matzehuels/riskgraph/pkg/integrations"
)

// DefaultURL is the public OSV v1 API.
const DefaultURL = "https://api.osv.dev/v1"

// Query asks for the vulnerabilities affecting one package version.
// PageToken continues a previous result that carried NextPageToken.
type Query struct {
	Package   Package `json:"package"`
	Version   string  `json:"version,omitempty"`
	PageToken string  `json:"page_token,omitempty"`
}

// Package names a package within an OSV ecosystem ("npm", "PyPI", ...).
type Package struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

// BatchResult holds the IDs matching one Query.
type BatchResult struct {
	Vulns         []VulnRef `json:"vulns,omitempty"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// VulnRef is the ID-only form returned by querybatch.
type VulnRef struct {
	ID       string `json:"id"`
	Modified string `json:"modified,omitempty"`
}

type batchRequest struct {
	Queries []Query `json:"queries"`
}

type batchResponse struct {
	Results []BatchResult `json:"results"`
}

// Client talks to the OSV API. Batch queries use the list retry policy and
// are never cached; vulnerability records use the detail policy and are.
type Client struct {
	list    *integrations.Client
	detail  *integrations.Client
	baseURL string
}

// NewClient creates an OSV client. An empty baseURL selects [DefaultURL].
func NewClient(c cache.Cache, baseURL string, list, detail httputil.Policy) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		list:    integrations.NewClient(cache.NewNullCache(), "osv-batch", 0, integrations.DefaultHeaders()).WithRetry(list),
		detail:  integrations.NewClient(c, "osv", cache.TTLAdvisory, integrations.DefaultHeaders()).WithRetry(detail),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// QueryBatch posts queries to /querybatch and returns one result per query,
// in query order.
func (c *Client) QueryBatch(ctx context.Context, queries []Query) ([]BatchResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	var resp batchResponse
	err := c.list.Retry(ctx, func() error {
		resp = batchResponse{}
		return c.list.Post(ctx, c.baseURL+"/querybatch", batchRequest{Queries: queries}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) != len(queries) {
		return nil, fmt.Errorf("%w: querybatch returned %d results for %d queries",
			integrations.ErrMalformed, len(resp.Results), len(queries))
	}
	return resp.Results, nil
}

var unmarshal = protojson.UnmarshalOptions{DiscardUnknown: true}

// GetVuln fetches the full record for id from /vulns/{id}.
func (c *Client) GetVuln(ctx context.Context, id string, refresh bool) (*osvschema.Vulnerability, error) {
	if id == "" {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "empty vulnerability id")
	}

	data, err := c.detail.CachedRaw(ctx, id, refresh, func() ([]byte, error) {
		data, err := c.detail.GetRaw(ctx, c.baseURL+"/vulns/"+integrations.PathEscape(id))
		if err != nil {
			return nil, err
		}
		if _, err := decodeVuln(data); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: vulnerability %s", err, id)
		}
		return nil, err
	}
	return decodeVuln(data)
}

func decodeVuln(data []byte) (*osvschema.Vulnerability, error) {
	v := &osvschema.Vulnerability{}
	if err := unmarshal.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: decode vulnerability: %v", integrations.ErrMalformed, err)
	}
	return v, nil
}
