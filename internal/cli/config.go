package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/riskgraph/pkg/cache"
	"github.com/matzehuels/riskgraph/pkg/pipeline"
)

// configFile is the file name looked up in the config directory.
const configFile = "config.toml"

// defaultAddr is where serve listens when neither flag nor file sets it.
const defaultAddr = "127.0.0.1:8080"

// Config is the on-disk configuration.
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[pipeline]
//	vuln_concurrency = 20
//	detail_retry = { max_retries = 6, base_delay = "1s" }
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache    cache.Config     `toml:"cache"`
	Pipeline pipeline.Options `toml:"pipeline"`
	Server   ServerConfig     `toml:"server"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields the zero config; a missing explicit file is
// an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return &cfg, nil
}
