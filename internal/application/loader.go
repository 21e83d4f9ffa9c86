package application

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// RulesetLoader parses, validates, and caches YAML rulesets, turning
// them into assembled engines. Identical rulesets share one cached
// engine, keyed by the SHA256 of the normalized configuration, and
// singleflight keeps concurrent loads of the same ruleset from
// assembling it twice.
type RulesetLoader struct {
	validator *validator.Validate

	// opts are the assembly options applied to every loaded engine,
	// fixed at loader construction.
	opts []Option

	// cache maps config hash to the assembled engine. Engines are
	// immutable, so sharing them between callers is safe.
	cache   map[string]*Engine
	cacheMu sync.RWMutex
	sf      singleflight.Group
}

// NewRulesetLoader creates a loader. The given options apply to every
// engine it assembles.
func NewRulesetLoader(opts ...Option) (*RulesetLoader, error) {
	v := validator.New()
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &RulesetLoader{
		validator: v,
		opts:      opts,
		cache:     make(map[string]*Engine),
	}, nil
}

// LoadFromFile loads a ruleset file and returns the assembled engine.
func (l *RulesetLoader) LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset: %w", err)
	}
	return l.load(data)
}

// LoadFromReader loads a ruleset from any reader and returns the
// assembled engine.
func (l *RulesetLoader) LoadFromReader(r io.Reader) (*Engine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset: %w", err)
	}
	return l.load(data)
}

func (l *RulesetLoader) load(data []byte) (*Engine, error) {
	config, err := l.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ruleset: %w", err)
	}

	// Hash the normalized config, not the raw bytes, so formatting
	// differences share one cache entry.
	hash, err := configHash(config)
	if err != nil {
		return nil, err
	}

	v, err, _ := l.sf.Do(hash, func() (any, error) {
		if engine, ok := l.cached(hash); ok {
			return engine, nil
		}

		if err := l.validateConfig(config); err != nil {
			return nil, fmt.Errorf("ruleset validation failed: %w", err)
		}
		engine, err := NewEngine(*config, l.opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble engine: %w", err)
		}

		l.store(hash, engine)
		return engine, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Engine), nil
}

// parseYAML decodes in strict mode so unknown fields fail loudly
// instead of being silently ignored.
func (l *RulesetLoader) parseYAML(data []byte) (*RulesetConfig, error) {
	var config RulesetConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

func (l *RulesetLoader) validateConfig(config *RulesetConfig) error {
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	return nil
}

// configHash computes the SHA256 of the re-encoded config so that
// semantically identical rulesets hash the same regardless of
// whitespace or key order.
func configHash(config *RulesetConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (l *RulesetLoader) cached(hash string) (*Engine, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	engine, ok := l.cache[hash]
	return engine, ok
}

func (l *RulesetLoader) store(hash string, engine *Engine) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache[hash] = engine
}
