package vulns

import (
	"strconv"
	"strings"

	"github.com/ossf/osv-schema/bindings/go/osvschema"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// ScoreVector computes the base score of a CVSS vector and formats it with
// one decimal. Vectors without a "CVSS:x.y/" prefix are read as CVSS 3.1
// or 4.0 according to kind. Any parse failure yields [deps.ScoreUnknown].
func ScoreVector(kind osvschema.Severity_Type, vector string) string {
	score, ok := calculate(kind, strings.TrimSpace(vector))
	if !ok {
		return deps.ScoreUnknown
	}
	return strconv.FormatFloat(score, 'f', 1, 64)
}

func calculate(kind osvschema.Severity_Type, vector string) (float64, bool) {
	if vector == "" {
		return 0, false
	}
	switch kind {
	case osvschema.Severity_CVSS_V3:
		switch {
		case strings.HasPrefix(vector, "CVSS:3.0/"):
			vec, err := gocvss30.ParseVector(vector)
			if err != nil {
				return 0, false
			}
			return vec.BaseScore(), true
		case !strings.HasPrefix(vector, "CVSS:"):
			vector = "CVSS:3.1/" + vector
		}
		vec, err := gocvss31.ParseVector(vector)
		if err != nil {
			return 0, false
		}
		return vec.BaseScore(), true
	case osvschema.Severity_CVSS_V4:
		if !strings.HasPrefix(vector, "CVSS:") {
			vector = "CVSS:4.0/" + vector
		}
		vec, err := gocvss40.ParseVector(vector)
		if err != nil {
			return 0, false
		}
		return vec.Score(), true
	}
	return 0, false
}

// Severity scores every CVSS v3 and v4 vector of v. The first parseable
// vector of each kind wins; kinds with none stay [deps.ScoreUnknown].
func Severity(v *osvschema.Vulnerability) *deps.SeverityScore {
	s := &deps.SeverityScore{CVSSv3: deps.ScoreUnknown, CVSSv4: deps.ScoreUnknown}
	for _, sev := range v.GetSeverity() {
		score := ScoreVector(sev.GetType(), sev.GetScore())
		if score == deps.ScoreUnknown {
			continue
		}
		switch sev.GetType() {
		case osvschema.Severity_CVSS_V3:
			if s.CVSSv3 == deps.ScoreUnknown {
				s.CVSSv3 = score
			}
		case osvschema.Severity_CVSS_V4:
			if s.CVSSv4 == deps.ScoreUnknown {
				s.CVSSv4 = score
			}
		}
	}
	return s
}

// Rating returns the qualitative CVSS rating ("CRITICAL", "HIGH", ...) of
// a formatted score, or "" when the score is unknown.
func Rating(score string) string {
	f, err := strconv.ParseFloat(score, 64)
	if err != nil {
		return ""
	}
	r, err := gocvss31.Rating(f)
	if err != nil {
		return ""
	}
	return r
}
