package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/JingYue2000/ChainForge/infrastructure/render"
	"github.com/JingYue2000/ChainForge/internal/domain"
	"github.com/JingYue2000/ChainForge/internal/ports"
)

// Inspector is a fully assembled response inspector: a configured group
// renderer plus its optional filter. Inspectors are immutable and safe
// for concurrent use.
type Inspector struct {
	name     string
	renderer *render.GroupRenderer
}

// Name returns the inspector's configured name.
func (ins *Inspector) Name() string { return ins.name }

// Render renders one response record into its ranked unit list.
func (ins *Inspector) Render(ctx context.Context, resp *domain.Response) ([]render.Unit, error) {
	return ins.renderer.Render(ctx, resp)
}

// RenderAll renders multiple responses with bounded parallelism,
// returning unit lists in input order.
func (ins *Inspector) RenderAll(ctx context.Context, responses []*domain.Response, parallelism int) ([][]render.Unit, error) {
	return ins.renderer.RenderAll(ctx, responses, parallelism)
}

// NewInspector assembles an inspector directly from a renderer
// configuration, bypassing YAML loading. Useful for embedding the
// engine programmatically.
func NewInspector(name string, config render.Config, opts ...render.Option) (*Inspector, error) {
	renderer, err := render.NewGroupRenderer(name, config, opts...)
	if err != nil {
		return nil, err
	}
	return &Inspector{name: name, renderer: renderer}, nil
}

// InspectorLoader provides YAML configuration parsing, validation, and
// caching for inspectors, transforming declarative specifications into
// executable render pipelines.
//
// Identical configuration sources (by SHA256) compile once; concurrent
// requests for the same source are deduplicated.
type InspectorLoader struct {
	// validator performs struct field validation for inspector
	// configurations and their nested components.
	validator *validator.Validate

	// collaborators are applied to every built renderer in addition to
	// the configured filter.
	collaborators []render.Option

	// cache stores built inspectors indexed by SHA256 hash of the
	// source YAML. Cached inspectors are immutable.
	cache   map[string]*Inspector
	cacheMu sync.RWMutex

	// sf prevents duplicate builds when multiple goroutines request the
	// same configuration simultaneously.
	sf singleflight.Group
}

// NewInspectorLoader creates an inspector loader with an empty cache.
// The supplied options (toolbar, text renderer, variable resolver,
// metrics) are installed on every inspector the loader builds.
func NewInspectorLoader(collaborators ...render.Option) *InspectorLoader {
	return &InspectorLoader{
		validator:     validator.New(),
		collaborators: collaborators,
		cache:         make(map[string]*Inspector),
	}
}

// LoadFromFile reads, validates, and builds an inspector from a YAML
// file.
func (l *InspectorLoader) LoadFromFile(path string) (*Inspector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	inspector, err := l.LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return inspector, nil
}

// LoadFromReader reads, validates, and builds an inspector from YAML
// source. Identical sources return the cached instance.
func (l *InspectorLoader) LoadFromReader(r io.Reader) (*Inspector, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	sum := sha256.Sum256(source)
	key := hex.EncodeToString(sum[:])

	l.cacheMu.RLock()
	cached, ok := l.cache[key]
	l.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err, _ := l.sf.Do(key, func() (any, error) {
		// Re-check under singleflight in case a concurrent build won.
		l.cacheMu.RLock()
		cached, ok := l.cache[key]
		l.cacheMu.RUnlock()
		if ok {
			return cached, nil
		}

		inspector, err := l.build(source)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = inspector
		l.cacheMu.Unlock()
		return inspector, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Inspector), nil
}

// build parses, validates, and assembles an inspector from raw YAML.
func (l *InspectorLoader) build(source []byte) (*Inspector, error) {
	var config InspectorConfig

	decoder := yaml.NewDecoder(bytes.NewReader(source))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("parse inspector config: %w", err)
	}

	if err := l.validator.Struct(&config); err != nil {
		return nil, fmt.Errorf("inspector config validation failed: %w", err)
	}

	rendererConfig := render.DefaultConfig()
	if !config.Renderer.Parameters.IsZero() {
		// yaml.Node.Decode ignores unknown fields, so round-trip through a
		// strict decoder to catch parameter typos.
		raw, err := yaml.Marshal(&config.Renderer.Parameters)
		if err != nil {
			return nil, fmt.Errorf("encode renderer parameters: %w", err)
		}
		paramDecoder := yaml.NewDecoder(bytes.NewReader(raw))
		paramDecoder.KnownFields(true)
		if err := paramDecoder.Decode(&rendererConfig); err != nil {
			return nil, fmt.Errorf("decode renderer parameters: %w", err)
		}
	}

	opts := make([]render.Option, 0, len(l.collaborators)+1)
	opts = append(opts, l.collaborators...)

	filter, err := buildFilter(config.Filter)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		opts = append(opts, render.WithFilter(filter))
	}

	renderer, err := render.NewGroupRenderer(config.Renderer.ID, rendererConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("build renderer %q: %w", config.Renderer.ID, err)
	}

	return &Inspector{name: config.Metadata.Name, renderer: renderer}, nil
}

// buildFilter constructs the configured item filter, or nil when
// filtering is disabled.
func buildFilter(config FilterConfig) (ports.ItemFilter, error) {
	switch config.Type {
	case "", "none":
		return nil, nil
	case "substring":
		filter, err := render.NewSubstringFilter(config.Query, config.CaseSensitive)
		if err != nil {
			return nil, fmt.Errorf("build substring filter: %w", err)
		}
		return filter, nil
	case "fuzzy":
		filter, err := render.NewFuzzyFilter(render.FuzzyFilterConfig{
			Query:         config.Query,
			Threshold:     config.Threshold,
			CaseSensitive: config.CaseSensitive,
		})
		if err != nil {
			return nil, fmt.Errorf("build fuzzy filter: %w", err)
		}
		return filter, nil
	default:
		return nil, fmt.Errorf("unknown filter type: %q", config.Type)
	}
}
