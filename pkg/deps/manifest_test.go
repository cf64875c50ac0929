package deps

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeParser struct {
	name string
	eco  Ecosystem
	fail map[string]error
	out  map[string][]Dependency
}

func (p *fakeParser) Type() string                  { return p.name }
func (p *fakeParser) Supports(filename string) bool { return filename == p.name }
func (p *fakeParser) Parse(_ context.Context, f ManifestFile) ([]Dependency, error) {
	if err := p.fail[f.Path]; err != nil {
		return nil, err
	}
	return p.out[f.Path], nil
}

func TestDetectManifest(t *testing.T) {
	req := &fakeParser{name: "requirements.txt"}
	pkg := &fakeParser{name: "package.json"}

	tests := []struct {
		path    string
		want    ManifestParser
		wantErr bool
	}{
		{"requirements.txt", req, false},
		{"svc/api/package.json", pkg, false},
		{"Cargo.toml", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectManifest(tt.path, req, pkg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectManifest error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectManifest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLanguageParseRecordsFileFailures(t *testing.T) {
	p := &fakeParser{
		name: "package.json",
		eco:  NPM,
		fail: map[string]error{"bad/package.json": errors.New("invalid character '}'")},
		out: map[string][]Dependency{
			"a/package.json": {{Name: "express", Version: "4.18.2", Ecosystem: NPM}},
			"b/package.json": {{Name: "express", Version: "4.18.2", Ecosystem: NPM}},
		},
	}
	lang := &Language{
		Name:            "javascript",
		Ecosystem:       NPM,
		ManifestParsers: func(Registries) []ManifestParser { return []ManifestParser{p} },
	}

	store := NewStore()
	ledger := NewLedger(nil)
	files := []ManifestFile{
		{Path: "a/package.json"},
		{Path: "bad/package.json"},
		{Path: "b/package.json"},
		{Path: "c/yarn.lock"},
	}
	if err := lang.Parse(context.Background(), files, Registries{}, store, ledger); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if store.Len() != 1 {
		t.Errorf("store Len = %d, want 1", store.Len())
	}
	if n := len(store.Files("express@4.18.2@npm")); n != 2 {
		t.Errorf("express declared in %d files, want 2", n)
	}
	if n := ledger.Count(StepFileParsing); n != 2 {
		t.Errorf("File Parsing issues = %d, want 2 (bad json, unsupported file)", n)
	}
}

func TestLanguageParseRejectsUnsafeNames(t *testing.T) {
	p := &fakeParser{
		name: "package.json",
		out: map[string][]Dependency{
			"package.json": {
				{Name: "express", Version: "4.18.2", Ecosystem: NPM},
				{Name: "../../admin", Version: "1.0.0", Ecosystem: NPM},
				{Name: "", Version: "1.0.0", Ecosystem: NPM},
				{Name: "@types/node", Version: "20.1.0", Ecosystem: NPM},
			},
		},
	}
	lang := &Language{
		Name:            "javascript",
		Ecosystem:       NPM,
		ManifestParsers: func(Registries) []ManifestParser { return []ManifestParser{p} },
	}

	store := NewStore()
	ledger := NewLedger(nil)
	if err := lang.Parse(context.Background(), []ManifestFile{{Path: "package.json"}}, Registries{}, store, ledger); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if store.Len() != 2 {
		t.Errorf("store Len = %d, want 2", store.Len())
	}
	if _, ok := store.Get("../../admin@1.0.0@npm"); ok {
		t.Error("traversal name was stored")
	}
	issues := ledger.Issues(StepFileParsing)
	if len(issues) != 2 {
		t.Fatalf("File Parsing issues = %q, want 2", issues)
	}
	if !strings.Contains(issues[0], `"../../admin"`) {
		t.Errorf("issue = %q, want the rejected name", issues[0])
	}
}

func TestLanguageParseStopsOnCancel(t *testing.T) {
	lang := &Language{
		Name:            "javascript",
		Ecosystem:       NPM,
		ManifestParsers: func(Registries) []ManifestParser { return []ManifestParser{&fakeParser{name: "package.json"}} },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := lang.Parse(ctx, []ManifestFile{{Path: "package.json"}}, Registries{}, NewStore(), NewLedger(nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Parse error = %v, want context.Canceled", err)
	}
}

func TestEcosystem(t *testing.T) {
	tests := []struct {
		in     string
		want   Ecosystem
		system string
	}{
		{"NPM", NPM, "npm"},
		{"pypi", PyPI, "pypi"},
		{"MAVEN", Maven, "maven"},
		{"RUBYGEMS", RubyGems, "rubygems"},
		{"composer", Composer, ""},
		{"Pub", Pub, ""},
		{"GO", Unknown, ""},
	}
	for _, tt := range tests {
		got := ParseEcosystem(tt.in)
		if got != tt.want {
			t.Errorf("ParseEcosystem(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got.System() != tt.system {
			t.Errorf("%s.System() = %q, want %q", got, got.System(), tt.system)
		}
	}
	if Unknown.Known() || !Composer.Known() {
		t.Error("Known() misclassifies ecosystems")
	}
}

func TestSeverityScoreMax(t *testing.T) {
	tests := []struct {
		s    *SeverityScore
		want float64
	}{
		{nil, -1},
		{&SeverityScore{CVSSv3: ScoreUnknown, CVSSv4: ScoreUnknown}, -1},
		{&SeverityScore{CVSSv3: "7.3", CVSSv4: ScoreUnknown}, 7.3},
		{&SeverityScore{CVSSv3: "7.3", CVSSv4: "9.1"}, 9.1},
	}
	for _, tt := range tests {
		if got := tt.s.Max(); got != tt.want {
			t.Errorf("Max(%+v) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
