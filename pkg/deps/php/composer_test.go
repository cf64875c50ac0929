package php

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

func TestComposerJSON_Supports(t *testing.T) {
	parser := &ComposerJSON{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"composer.json", true},
		{"Composer.json", true},
		{"composer.lock", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestComposerJSON_Parse(t *testing.T) {
	content := `{
  "name": "acme/app",
  "require": {
    "php": ">=8.1",
    "ext-json": "*",
    "laravel/framework": "^10.0",
    "guzzlehttp/guzzle": "^7.2 || ^8.0",
    "Monolog/Monolog": "3.4.0"
  },
  "require-dev": {
    "phpunit/phpunit": "~10.1",
    "acme/tooling": "dev-main"
  }
}`

	got, err := (&ComposerJSON{}).Parse(context.Background(), deps.ManifestFile{Path: "composer.json", Content: content})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	dep := func(name, version, kind string) deps.Dependency {
		return deps.Dependency{Name: name, Version: version, Ecosystem: deps.Composer, DependencyType: kind}
	}
	want := []deps.Dependency{
		dep("monolog/monolog", "3.4.0", "require"),
		dep("guzzlehttp/guzzle", "7.2.0", "require"),
		dep("laravel/framework", "10.0.0", "require"),
		dep("acme/tooling", deps.VersionUnknown, "require-dev"),
		dep("phpunit/phpunit", "10.1.0", "require-dev"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestComposerJSON_ParseInvalid(t *testing.T) {
	if _, err := (&ComposerJSON{}).Parse(context.Background(), deps.ManifestFile{Path: "composer.json", Content: "[1,"}); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
