package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/riskgraph/pkg/deps"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/pipeline"
)

type fakeAnalyzer struct {
	got []deps.ManifestFile
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, files []deps.ManifestFile, _ pipeline.Progress) (*pipeline.Result, error) {
	f.got = files
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{
		RunID: "run-1",
		Dependencies: map[string][]deps.Dependency{
			"package.json": {{
				Name:            "express",
				Version:         "4.18.2",
				Ecosystem:       deps.NPM,
				Vulnerabilities: []deps.Vulnerability{{ID: "OSV-EXP-001"}},
			}},
		},
	}, nil
}

func newTestServer(t *testing.T, a Analyzer) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(a, log.New(io.Discard)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeAnalyzer{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestAnalyze(t *testing.T) {
	a := &fakeAnalyzer{}
	srv := newTestServer(t, a)

	resp := post(t, srv.URL+"/v1/analyze", `{"files": [{"path": "package.json", "content": "{}"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var res pipeline.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.RunID != "run-1" || len(res.Dependencies["package.json"]) != 1 {
		t.Errorf("result = %+v", res)
	}
	want := []deps.ManifestFile{{Path: "package.json", Content: "{}"}}
	if diff := cmp.Diff(want, a.got); diff != "" {
		t.Errorf("analyzer input mismatch (-want +got):\n%s", diff)
	}
}

func TestGraph(t *testing.T) {
	srv := newTestServer(t, &fakeAnalyzer{})
	resp := post(t, srv.URL+"/v1/graph", `{"files": [{"path": "package.json", "content": "{}"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Run-ID"); got != "run-1" {
		t.Errorf("X-Run-ID = %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"file:package.json" -> "express@4.18.2@npm"`) {
		t.Errorf("graph body = %s", body)
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{files`},
		{"no files", `{"files": []}`},
		{"unknown field", `{"files": [], "extra": true}`},
		{"absolute path", `{"files": [{"path": "/etc/passwd", "content": ""}]}`},
		{"traversal", `{"files": [{"path": "../package.json", "content": ""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAnalyzer{}
			srv := newTestServer(t, a)
			resp := post(t, srv.URL+"/v1/analyze", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var e ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
				t.Errorf("error body = %+v (%v)", e, err)
			}
			if a.got != nil {
				t.Error("analyzer ran on invalid input")
			}
		})
	}
}

func TestAnalyzeTooManyFiles(t *testing.T) {
	files := make([]deps.ManifestFile, MaxFiles+1)
	for i := range files {
		files[i] = deps.ManifestFile{Path: "package.json"}
	}
	body, _ := json.Marshal(AnalyzeRequest{Files: files})

	srv := newTestServer(t, &fakeAnalyzer{})
	if resp := post(t, srv.URL+"/v1/analyze", string(body)); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeFailure(t *testing.T) {
	srv := newTestServer(t, &fakeAnalyzer{err: errors.New("boom")})
	resp := post(t, srv.URL+"/v1/analyze", `{"files": [{"path": "package.json", "content": "{}"}]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	var e ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatal(err)
	}
	if e.Code != rgerrors.ErrCodeInternal || e.Message != "boom" {
		t.Errorf("error = %+v", e)
	}
}

func TestRequiresJSON(t *testing.T) {
	srv := newTestServer(t, &fakeAnalyzer{})
	resp, err := http.Post(srv.URL+"/v1/analyze", "text/plain", strings.NewReader("hi"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(&fakeAnalyzer{}, log.New(io.Discard)).ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe after cancel = %v, want nil", err)
	}
}
