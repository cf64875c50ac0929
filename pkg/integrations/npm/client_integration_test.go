//go:build integration

package npm

import (
	"context"
	"testing"
	"time"
)

func TestLatestVersion_Integration(t *testing.T) {
	client := NewClient(nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		pkg     string
		wantErr bool
	}{
		{"express", false},
		{"@types/node", false},
		{"this-package-should-not-exist-12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			v, err := client.LatestVersion(ctx, tt.pkg, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LatestVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && v == "" {
				t.Error("expected non-empty version")
			}
		})
	}
}
