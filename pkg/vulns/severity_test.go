package vulns

import (
	"testing"

	"github.com/ossf/osv-schema/bindings/go/osvschema"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

func TestScoreVector(t *testing.T) {
	tests := []struct {
		name   string
		kind   osvschema.Severity_Type
		vector string
		want   string
	}{
		{"v3 bare critical", osvschema.Severity_CVSS_V3, "AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "9.8"},
		{"v3 bare high", osvschema.Severity_CVSS_V3, "AV:N/AC:L/PR:N/UI:N/S:U/C:L/I:L/A:L", "7.3"},
		{"v3.1 prefixed", osvschema.Severity_CVSS_V3, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "9.8"},
		{"v3.0 prefixed", osvschema.Severity_CVSS_V3, "CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "9.8"},
		{"v4", osvschema.Severity_CVSS_V4, "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N", "9.3"},
		{"garbage", osvschema.Severity_CVSS_V3, "not a vector", deps.ScoreUnknown},
		{"empty", osvschema.Severity_CVSS_V3, "", deps.ScoreUnknown},
		{"v4 vector as v3", osvschema.Severity_CVSS_V3, "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N", deps.ScoreUnknown},
		{"unsupported kind", osvschema.Severity_CVSS_V2, "AV:N/AC:L/Au:N/C:P/I:P/A:P", deps.ScoreUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreVector(tt.kind, tt.vector); got != tt.want {
				t.Errorf("ScoreVector(%v, %q) = %q, want %q", tt.kind, tt.vector, got, tt.want)
			}
		})
	}
}

func TestSeverity(t *testing.T) {
	v := &osvschema.Vulnerability{
		Severity: []*osvschema.Severity{
			{Type: osvschema.Severity_CVSS_V3, Score: "broken"},
			{Type: osvschema.Severity_CVSS_V3, Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:L/I:L/A:L"},
			{Type: osvschema.Severity_CVSS_V3, Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"},
		},
	}
	got := Severity(v)
	if got.CVSSv3 != "7.3" || got.CVSSv4 != deps.ScoreUnknown {
		t.Errorf("Severity = %+v, want v3 7.3 and v4 unknown", got)
	}

	empty := Severity(&osvschema.Vulnerability{})
	if empty.CVSSv3 != deps.ScoreUnknown || empty.CVSSv4 != deps.ScoreUnknown {
		t.Errorf("Severity(empty) = %+v, want both unknown", empty)
	}
}

func TestRating(t *testing.T) {
	tests := []struct{ score, want string }{
		{"9.8", "CRITICAL"},
		{"7.3", "HIGH"},
		{"5.0", "MEDIUM"},
		{"2.1", "LOW"},
		{deps.ScoreUnknown, ""},
	}
	for _, tt := range tests {
		if got := Rating(tt.score); got != tt.want {
			t.Errorf("Rating(%q) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
