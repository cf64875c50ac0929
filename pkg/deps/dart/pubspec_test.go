package dart

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

func TestPubspec_Supports(t *testing.T) {
	parser := &Pubspec{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"pubspec.yaml", true},
		{"pubspec.lock", false},
		{"pubspec.yml", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestPubspec_Parse(t *testing.T) {
	content := `name: my_app
environment:
  sdk: ">=3.0.0 <4.0.0"

dependencies:
  flutter:
    sdk: flutter
  http: ^1.1.0
  provider: 6.0.5
  intl:
    hosted: https://pub.dev
    version: ^0.18.1
  local_pkg:
    path: ../local_pkg
  forked:
    git:
      url: https://github.com/acme/forked.git
  collection:

dev_dependencies:
  flutter_test:
    sdk: flutter
  mockito: ">=5.4.0 <6.0.0"
`

	got, err := (&Pubspec{}).Parse(context.Background(), deps.ManifestFile{Path: "app/pubspec.yaml", Content: content})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	dep := func(name, version, kind string) deps.Dependency {
		return deps.Dependency{Name: name, Version: version, Ecosystem: deps.Pub, DependencyType: kind}
	}
	want := []deps.Dependency{
		dep("http", "1.1.0", "dependencies"),
		dep("provider", "6.0.5", "dependencies"),
		dep("intl", "0.18.1", "dependencies"),
		dep("collection", deps.VersionUnknown, "dependencies"),
		dep("mockito", "5.4.0", "dev_dependencies"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestPubspec_ParseEmpty(t *testing.T) {
	got, err := (&Pubspec{}).Parse(context.Background(), deps.ManifestFile{Path: "pubspec.yaml", Content: "name: empty\n"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d dependencies, want 0", len(got))
	}
}

func TestPubspec_ParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "dependencies: [unclosed"},
		{"list section", "dependencies:\n  - http\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (&Pubspec{}).Parse(context.Background(), deps.ManifestFile{Path: "pubspec.yaml", Content: tt.content}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
