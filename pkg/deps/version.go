package deps

import (
	"regexp"
	"strings"
)

// VersionUnknown is returned by NormalizeVersion for inputs that do not
// describe a release.
const VersionUnknown = "unknown"

var (
	commitRE    = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	hexDottedRE = regexp.MustCompile(`^[0-9a-fA-F]{20,}\.`)
	shortHashRE = regexp.MustCompile(`^[0-9a-fA-F]{7,}$`)
	leadingRE   = regexp.MustCompile(`^[^0-9]+`)
	coreRE      = regexp.MustCompile(`^[0-9xX*]+(?:\.[0-9xX*]*)*`)
)

const maxMajorLen = 10

// NormalizeVersion cleans a raw manifest version into "major.minor.patch"
// with an optional "-pre" or "+build" suffix. Commit hashes, empty strings
// and inputs without any digit yield VersionUnknown.
//
//	NormalizeVersion("^2.6.9")       // "2.6.9"
//	NormalizeVersion("~> 5.2")       // "5.2.0"
//	NormalizeVersion("1.x")          // "1.0.0"
//	NormalizeVersion("1.0.0-beta.1") // "1.0.0-beta.1"
func NormalizeVersion(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, VersionUnknown) {
		return VersionUnknown
	}
	if commitRE.MatchString(v) || hexDottedRE.MatchString(v) {
		return VersionUnknown
	}
	if !strings.Contains(v, ".") && shortHashRE.MatchString(v) {
		return VersionUnknown
	}

	v = leadingRE.ReplaceAllString(v, "")
	core := coreRE.FindString(v)
	if core == "" {
		return VersionUnknown
	}
	rest := v[len(core):]

	var extra string
	if rest != "" && (rest[0] == '-' || rest[0] == '+') {
		extra = strings.TrimRight(strings.Fields(rest)[0], ",;")
	}

	segs := strings.Split(core, ".")
	out := [3]string{"0", "0", "0"}
	for i := 0; i < len(segs) && i < 3; i++ {
		s := segs[i]
		if s == "" || strings.ContainsAny(s, "xX*") {
			continue
		}
		out[i] = s
	}
	if len(out[0]) > maxMajorLen {
		return VersionUnknown
	}
	return out[0] + "." + out[1] + "." + out[2] + extra
}
