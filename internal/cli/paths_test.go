package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	home := t.TempDir()

	tests := []struct {
		name string
		fn   func() (string, error)
		env  string
		xdg  string
		want string
	}{
		{"cache default", cacheDir, "XDG_CACHE_HOME", "", filepath.Join(home, ".cache", appName)},
		{"cache xdg", cacheDir, "XDG_CACHE_HOME", "/tmp/xdg-cache", filepath.Join("/tmp/xdg-cache", appName)},
		{"config default", configDir, "XDG_CONFIG_HOME", "", filepath.Join(home, ".config", appName)},
		{"config xdg", configDir, "XDG_CONFIG_HOME", "/tmp/xdg-config", filepath.Join("/tmp/xdg-config", appName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", home)
			t.Setenv(tt.env, tt.xdg)

			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	tests := []struct {
		name    string
		config  string
		want    string
		wantErr bool
	}{
		{"default", "", filepath.Join("/tmp/xdg-cache", appName), false},
		{"configured dir", "[cache]\ndir = \"/srv/riskgraph\"\n", "/srv/riskgraph", false},
		{"redis backend", "[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379/0\"\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			c := New(os.Stderr, LogInfo)
			if tt.config != "" {
				c.configPath = writeConfig(t, tt.config)
			}

			got, err := c.fileCacheDir()
			if (err != nil) != tt.wantErr {
				t.Fatalf("fileCacheDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("fileCacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}
