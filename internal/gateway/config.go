// Package gateway holds the daemon configuration: local data paths, the
// HTTP listen address and the storage gateway nodes the packed ciphertexts
// are destined for. No network I/O happens here; the nodes are validated
// and handed to the external storage collaborator.
package gateway

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/multiformats/go-multiaddr"
	"gopkg.in/yaml.v3"
)

var ErrInvalidGatewayNode = errors.New("invalid gateway node multiaddr")

type Config struct {
	DataDir    string        `yaml:"dataDir"`
	ListenAddr string        `yaml:"listenAddr"`
	Gateway    GatewayConfig `yaml:"gateway"`
}

type GatewayConfig struct {
	// BaseURL is the public retrieval prefix recorded in document metadata.
	BaseURL string `yaml:"baseUrl"`
	// Nodes are storage gateway endpoints as multiaddrs.
	Nodes []string `yaml:"nodes"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:    "data",
		ListenAddr: "127.0.0.1:8790",
		Gateway: GatewayConfig{
			BaseURL: "https://gateway.docseal.local/ipfs",
		},
	}
}

// LoadFromPath reads the YAML config, falling back through default
// candidate paths, then applies env overrides. A missing file is not an
// error; defaults apply.
func LoadFromPath(configPath string) (Config, error) {
	cfg := DefaultConfig()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"go-backend/configs/config.yaml",
			"configs/config.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overlays non-zero fields of src onto dst.
func Merge(dst *Config, src Config) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
	if src.Gateway.BaseURL != "" {
		dst.Gateway.BaseURL = src.Gateway.BaseURL
	}
	if src.Gateway.Nodes != nil {
		dst.Gateway.Nodes = src.Gateway.Nodes
	}
}

// ApplyEnvOverrides applies DOCSEAL_* environment variables on top of the
// file config.
func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DOCSEAL_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCSEAL_LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCSEAL_GATEWAY_URL")); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCSEAL_GATEWAY_NODES")); v != "" {
		nodes := strings.Split(v, ",")
		out := nodes[:0]
		for _, n := range nodes {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
		cfg.Gateway.Nodes = out
	}
}

// Validate rejects malformed gateway node addresses early, before anything
// is recorded against them.
func Validate(cfg Config) error {
	for _, node := range cfg.Gateway.Nodes {
		if _, err := multiaddr.NewMultiaddr(node); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidGatewayNode, node, err)
		}
	}
	return nil
}

// RetrievalURL builds the gateway URL recorded in a document record.
func RetrievalURL(cfg Config, cid string) string {
	base := strings.TrimRight(cfg.Gateway.BaseURL, "/")
	if base == "" || cid == "" {
		return ""
	}
	return base + "/" + cid
}
