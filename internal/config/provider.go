package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default lookup locations, checked in order. The first existing file wins.
const (
	envConfigPath     = "BIDGEN_CONFIG"
	localConfigPath   = "bidgen.yaml"
	projectConfigPath = "configs/bidgen.yaml"
)

// Provider is the layered configuration source for the pipeline. Values are
// read from a YAML file resolved via env-var override path, package-local
// path, then project-root path. Lookup is by dotted key.
type Provider struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Load resolves the configuration file through the layered lookup and reads
// it. A missing file is not an error; the provider then serves defaults only.
func Load() (*Provider, error) {
	_ = godotenv.Load()

	p := &Provider{values: map[string]any{}}
	for _, candidate := range []string{os.Getenv(envConfigPath), localConfigPath, projectConfigPath} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			p.path = candidate
			break
		}
	}
	if p.path == "" {
		return p, nil
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Provider, error) {
	_ = godotenv.Load()

	p := &Provider{path: filepath.Clean(path), values: map[string]any{}}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the backing file. Keys read between reloads see a
// consistent snapshot.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", p.path, err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse config %s: %w", p.path, err)
	}
	p.mu.Lock()
	p.values = values
	p.mu.Unlock()
	return nil
}

// Path reports which file backs this provider, empty when none was found.
func (p *Provider) Path() string {
	return p.path
}

// Get returns the value at the dotted key, or def when the key is absent.
func (p *Provider) Get(key string, def any) any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var cur any = p.values
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = m[part]
		if !ok {
			return def
		}
	}
	return cur
}

// GetString returns the value at key coerced to a string.
func (p *Provider) GetString(key, def string) string {
	switch v := p.Get(key, def).(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetFloat returns the value at key coerced to a float64.
func (p *Provider) GetFloat(key string, def float64) float64 {
	switch v := p.Get(key, def).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// GetInt returns the value at key coerced to an int.
func (p *Provider) GetInt(key string, def int) int {
	switch v := p.Get(key, def).(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// GetStringMap returns the mapping at key with values stringified.
func (p *Provider) GetStringMap(key string) map[string]string {
	raw, ok := p.Get(key, nil).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// Sub returns the raw mapping at key, nil when absent.
func (p *Provider) Sub(key string) map[string]any {
	m, _ := p.Get(key, nil).(map[string]any)
	return m
}
