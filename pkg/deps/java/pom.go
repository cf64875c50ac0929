package java

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// maxPropertyDepth bounds nested ${...} expansion so self-referencing
// properties terminate.
const maxPropertyDepth = 10

var propertyRE = regexp.MustCompile(`\$\{([^}]+)\}`)

type POMParser struct{}

func (p *POMParser) Type() string              { return "pom.xml" }
func (p *POMParser) Supports(name string) bool { return name == "pom.xml" }

// Parse returns the POM's direct dependencies. ${name} placeholders are
// expanded from <properties> and the project.* built-ins before the
// version is normalized; a placeholder that stays unresolved yields an
// unknown version.
func (p *POMParser) Parse(_ context.Context, file deps.ManifestFile) ([]deps.Dependency, error) {
	var pom pomProject
	if err := xml.Unmarshal([]byte(file.Content), &pom); err != nil {
		return nil, fmt.Errorf("decode pom.xml: %w", err)
	}

	props := pom.properties()
	var out []deps.Dependency
	seen := make(map[string]bool)

	for _, dep := range pom.Dependencies {
		group := props.expand(dep.GroupID)
		artifact := props.expand(dep.ArtifactID)
		// Skip coordinates that still carry placeholders
		if group == "" || artifact == "" || strings.Contains(group+artifact, "${") {
			continue
		}
		coord := group + ":" + artifact
		if seen[coord] {
			continue
		}
		seen[coord] = true

		version := props.expand(dep.Version)
		if strings.Contains(version, "${") {
			version = deps.VersionUnknown
		}
		scope := strings.TrimSpace(dep.Scope)
		if scope == "" {
			scope = "compile"
		}
		out = append(out, deps.Dependency{
			Name:           coord,
			Version:        deps.NormalizeVersion(version),
			Ecosystem:      deps.Maven,
			DependencyType: scope,
		})
	}
	return out, nil
}

type properties map[string]string

func (pom *pomProject) properties() properties {
	props := make(properties, len(pom.Properties)+6)
	for k, v := range pom.Properties {
		props[k] = v
	}

	version := pom.Version
	group := pom.GroupID
	if pom.Parent != nil {
		if version == "" {
			version = pom.Parent.Version
		}
		if group == "" {
			group = pom.Parent.GroupID
		}
		props["project.parent.version"] = pom.Parent.Version
		props["project.parent.groupId"] = pom.Parent.GroupID
	}
	props["project.version"] = version
	props["project.groupId"] = group
	props["project.artifactId"] = pom.ArtifactID
	if _, ok := props["version"]; !ok {
		props["version"] = version
	}
	return props
}

func (p properties) expand(s string) string {
	s = strings.TrimSpace(s)
	for range maxPropertyDepth {
		if !strings.Contains(s, "${") {
			return s
		}
		next := propertyRE.ReplaceAllStringFunc(s, func(m string) string {
			if v, ok := p[m[2:len(m)-1]]; ok {
				return strings.TrimSpace(v)
			}
			return m
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Parent       *pomParent      `xml:"parent"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// pomProperties decodes the free-form <properties> element into a map
// keyed by child element name.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = make(pomProperties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = v
		case xml.EndElement:
			return nil
		}
	}
}
