package substrate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is a client's settings, kept in TOML: which node to dial and how
// to authenticate to it, where to persist a checkpoint cursor, and the
// fetch concurrency and page size to use. The inspector CLI loads it at
// startup; the transport packages take their settings as arguments and do
// not read Config themselves.
type Config struct {
	Node       NodeConfig       `toml:"node"`
	Checkpoint CheckpointConfig `toml:"checkpoint"`
	Fetch      FetchConfig      `toml:"fetch"`
}

// NodeConfig names the upstream RPC endpoint and how to authenticate to it.
type NodeConfig struct {
	WebSocketURL      string `toml:"websocket_url"`
	RequestTimeoutSec int    `toml:"request_timeout_sec"`
	// BearerToken, if set, is the secret the inspector CLI hands to
	// substratews.Dial, which signs a short-lived JWT with it and sends that
	// as a bearer header on the WebSocket upgrade request. Empty means no
	// auth header is sent.
	BearerToken string `toml:"bearer_token,omitempty"`
}

// CheckpointConfig names where the last-seen-block cursor is persisted
// between process restarts.
type CheckpointConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// FetchConfig holds a FetchAll concurrency bound and a KeyIter page size.
// Nothing in this package applies them on its own: a caller copies them
// into StorageClient.FetchConcurrency and Iter's pageSize argument.
type FetchConfig struct {
	Concurrency int    `toml:"concurrency"`
	PageSize    uint32 `toml:"page_size"`
}

// DefaultConfig returns sensible defaults: a local node, no auth, no
// checkpoint persistence, and moderate fetch concurrency.
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			WebSocketURL:      "ws://127.0.0.1:9944",
			RequestTimeoutSec: 30,
		},
		Checkpoint: CheckpointConfig{
			Enabled: false,
			Path:    "./substrate-checkpoint.db",
		},
		Fetch: FetchConfig{
			Concurrency: 8,
			PageSize:    256,
		},
	}
}

// LoadConfig reads a TOML config file, overlaying it onto DefaultConfig so
// an omitted section keeps its default rather than zeroing out.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("substrate: read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("substrate: parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as TOML, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("substrate: create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("substrate: open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("substrate: encode config: %w", err)
	}
	return nil
}
