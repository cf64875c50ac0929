package ruby

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

func TestGemfile_Supports(t *testing.T) {
	parser := &Gemfile{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"Gemfile", true},
		{"Gemfile.lock", false},
		{"gemfile", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestGemfile_Parse(t *testing.T) {
	content := `source 'https://rubygems.org'

gem 'rails', '~> 7.1.2'
gem "puma", ">= 5.0"
gem 'bootsnap', require: false
gem 'rails'  # duplicate should be ignored
# gem 'commented_out', '1.0'

group :development, :test do
  gem 'rspec-rails', '6.0.3'
  platforms :mri do
    gem 'byebug', '11.1.3'
  end
end

gem 'nokogiri', '1.15.4'
`

	got, err := (&Gemfile{}).Parse(context.Background(), deps.ManifestFile{Path: "Gemfile", Content: content})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	dep := func(name, version, group string) deps.Dependency {
		return deps.Dependency{Name: name, Version: version, Ecosystem: deps.RubyGems, DependencyType: group}
	}
	want := []deps.Dependency{
		dep("rails", "7.1.2", "default"),
		dep("puma", "5.0.0", "default"),
		dep("bootsnap", deps.VersionUnknown, "default"),
		dep("rspec-rails", "6.0.3", "development,test"),
		dep("byebug", "11.1.3", "development,test"),
		dep("nokogiri", "1.15.4", "default"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestGemfile_Type(t *testing.T) {
	parser := &Gemfile{}
	if got := parser.Type(); got != "Gemfile" {
		t.Errorf("Type() = %q, want %q", got, "Gemfile")
	}
}

func TestGroupName(t *testing.T) {
	tests := []struct{ in, want string }{
		{":development", "development"},
		{":development, :test", "development,test"},
		{"(:test)", "test"},
	}
	for _, tt := range tests {
		if got := groupName(tt.in); got != tt.want {
			t.Errorf("groupName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
