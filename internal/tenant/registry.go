package tenant

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type SchoolConfig struct {
	Code     string          `json:"school_code"`
	Name     string          `json:"name"`
	County   string          `json:"county,omitempty"`
	Classes  []string        `json:"classes,omitempty"`
	Streams  []string        `json:"streams,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

type SchoolsFile struct {
	Schools []SchoolConfig `json:"schools"`
}

// Registry holds the schools known to this deployment, keyed by upper-cased code.
type Registry struct {
	mu      sync.RWMutex
	schools map[string]*SchoolConfig
}

func NewRegistry() *Registry {
	return &Registry{
		schools: make(map[string]*SchoolConfig),
	}
}

// LoadFromFile reads a schools.json file. A missing file yields an empty,
// open registry so that single-school setups need no configuration.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schools config: %w", err)
	}

	var file SchoolsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schools config: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Schools {
		registry.Register(&file.Schools[i])
	}
	return registry, nil
}

func (r *Registry) Register(cfg *SchoolConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schools[Canonical(cfg.Code)] = cfg
}

func (r *Registry) Get(code string) *SchoolConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schools[Canonical(code)]
}

// Open reports whether the registry is empty and therefore accepts any code.
func (r *Registry) Open() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schools) == 0
}

// Allows reports whether code may be used as a tenant.
func (r *Registry) Allows(code string) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	return r.Open() || r.Get(code) != nil
}

// FeatureEnabled reports whether a module may serve code. Only an explicit
// false in the school's features map switches a module off.
func (r *Registry) FeatureEnabled(code, feature string) bool {
	if r == nil {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.schools[Canonical(code)]
	if !ok {
		return true
	}
	enabled, set := cfg.Features[feature]
	return !set || enabled
}

func (r *Registry) All() []*SchoolConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*SchoolConfig, 0, len(r.schools))
	for _, cfg := range r.schools {
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// SchoolName returns the configured display name, or "" when unknown.
func (r *Registry) SchoolName(code string) string {
	if cfg := r.Get(code); cfg != nil {
		return cfg.Name
	}
	return ""
}
