package vulns

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ossf/osv-schema/bindings/go/osvschema"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

func TestFromOSV(t *testing.T) {
	v := &osvschema.Vulnerability{
		Id:      "GHSA-xxxx",
		Summary: "Prototype pollution",
		Details: "Long description",
		Aliases: []string{"CVE-2022-24999"},
		Severity: []*osvschema.Severity{
			{Type: osvschema.Severity_CVSS_V3, Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"},
		},
		References: []*osvschema.Reference{
			{Type: osvschema.Reference_ADVISORY, Url: "https://example.com/advisory"},
		},
		Affected: []*osvschema.Affected{{
			Package: &osvschema.Package{Name: "qs", Ecosystem: "npm"},
			Ranges: []*osvschema.Range{{
				Type: osvschema.Range_SEMVER,
				Events: []*osvschema.Event{
					{Introduced: "6.10.0"},
					{Fixed: "6.10.4"},
				},
			}},
		}},
	}

	want := deps.Vulnerability{
		ID:            "GHSA-xxxx",
		Summary:       "Prototype pollution",
		Details:       "Long description",
		SeverityScore: &deps.SeverityScore{CVSSv3: "9.8", CVSSv4: deps.ScoreUnknown},
		References:    []deps.Reference{{Type: "ADVISORY", URL: "https://example.com/advisory"}},
		Affected: []deps.Affected{{
			Package: deps.AffectedPackage{Name: "qs", Ecosystem: "npm"},
			Ranges: []deps.Range{{
				Type:   "SEMVER",
				Events: []deps.Event{{Introduced: "6.10.0"}, {Fixed: "6.10.4"}},
			}},
		}},
		FixAvailable: "6.10.4",
		Aliases:      []string{"CVE-2022-24999"},
	}
	if diff := cmp.Diff(want, FromOSV(v)); diff != "" {
		t.Errorf("FromOSV mismatch (-want +got):\n%s", diff)
	}
}

func TestFixAvailable(t *testing.T) {
	rangeWith := func(events ...*osvschema.Event) *osvschema.Range {
		return &osvschema.Range{Type: osvschema.Range_ECOSYSTEM, Events: events}
	}

	tests := []struct {
		name string
		v    *osvschema.Vulnerability
		want string
	}{
		{"no affected", &osvschema.Vulnerability{}, ""},
		{"no ranges", &osvschema.Vulnerability{Affected: []*osvschema.Affected{{}}}, ""},
		{
			"first fixed in first range",
			&osvschema.Vulnerability{Affected: []*osvschema.Affected{{
				Ranges: []*osvschema.Range{
					rangeWith(&osvschema.Event{Introduced: "0"}, &osvschema.Event{Fixed: "1.2.3"}, &osvschema.Event{Fixed: "2.0.0"}),
					rangeWith(&osvschema.Event{Fixed: "9.9.9"}),
				},
			}}},
			"1.2.3",
		},
		{
			"later ranges ignored",
			&osvschema.Vulnerability{Affected: []*osvschema.Affected{
				{Ranges: []*osvschema.Range{rangeWith(&osvschema.Event{Introduced: "0"})}},
				{Ranges: []*osvschema.Range{rangeWith(&osvschema.Event{Fixed: "3.0.0"})}},
			}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixAvailable(tt.v); got != tt.want {
				t.Errorf("FixAvailable = %q, want %q", got, tt.want)
			}
		})
	}
}
