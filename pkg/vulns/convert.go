package vulns

import (
	"slices"

	"github.com/ossf/osv-schema/bindings/go/osvschema"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// Placeholder is the ID-only record attached during ID discovery.
func Placeholder(id string) deps.Vulnerability {
	return deps.Vulnerability{
		ID:         id,
		References: []deps.Reference{},
		Affected:   []deps.Affected{},
		Aliases:    []string{},
	}
}

// FromOSV converts a full OSV record.
func FromOSV(v *osvschema.Vulnerability) deps.Vulnerability {
	out := Placeholder(v.GetId())
	out.Summary = v.GetSummary()
	out.Details = v.GetDetails()
	out.SeverityScore = Severity(v)
	out.FixAvailable = FixAvailable(v)
	if aliases := v.GetAliases(); len(aliases) > 0 {
		out.Aliases = slices.Clone(aliases)
	}

	for _, r := range v.GetReferences() {
		out.References = append(out.References, deps.Reference{Type: r.GetType().String(), URL: r.GetUrl()})
	}
	for _, a := range v.GetAffected() {
		aff := deps.Affected{
			Package: deps.AffectedPackage{
				Name:      a.GetPackage().GetName(),
				Ecosystem: a.GetPackage().GetEcosystem(),
			},
		}
		for _, r := range a.GetRanges() {
			rng := deps.Range{Type: r.GetType().String(), Events: make([]deps.Event, 0, len(r.GetEvents()))}
			for _, e := range r.GetEvents() {
				rng.Events = append(rng.Events, deps.Event{
					Introduced:   e.GetIntroduced(),
					Fixed:        e.GetFixed(),
					LastAffected: e.GetLastAffected(),
					Limit:        e.GetLimit(),
				})
			}
			aff.Ranges = append(aff.Ranges, rng)
		}
		out.Affected = append(out.Affected, aff)
	}
	return out
}

// FixAvailable returns the first "fixed" event of the first range of the
// first affected package, or "".
func FixAvailable(v *osvschema.Vulnerability) string {
	affected := v.GetAffected()
	if len(affected) == 0 {
		return ""
	}
	ranges := affected[0].GetRanges()
	if len(ranges) == 0 {
		return ""
	}
	for _, e := range ranges[0].GetEvents() {
		if f := e.GetFixed(); f != "" {
			return f
		}
	}
	return ""
}
