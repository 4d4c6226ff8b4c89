// Package application wires validated configuration into ready-to-use
// inspectors, bridging declarative YAML and the render infrastructure.
package application

import "gopkg.in/yaml.v3"

// InspectorConfig is the complete declarative specification for a
// response inspector: how groups are rendered and which filter, if any,
// narrows the item list first.
type InspectorConfig struct {
	// Version specifies the configuration schema version.
	Version string `yaml:"version" validate:"required"`

	// Metadata contains descriptive information about this inspector
	// for organization and discovery.
	Metadata Metadata `yaml:"metadata" validate:"required"`

	// Renderer holds the group renderer parameters as flexible YAML,
	// validated against the renderer's own configuration schema.
	Renderer RendererConfig `yaml:"renderer" validate:"required"`

	// Filter optionally narrows the item list before grouping.
	Filter FilterConfig `yaml:"filter"`
}

// Metadata provides descriptive information about an inspector.
type Metadata struct {
	// Name is the human-readable identifier for this inspector and must
	// be unique within the deployment scope.
	Name string `yaml:"name" validate:"required,min=1,max=255"`

	// Description explains the inspector's purpose.
	Description string `yaml:"description" validate:"max=1000"`

	// Tags are categorical labels for filtering and grouping inspectors.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
}

// RendererConfig identifies the renderer instance and carries its
// type-specific parameters as flexible YAML.
type RendererConfig struct {
	// ID is the unique identifier for the renderer instance.
	ID string `yaml:"id" validate:"required,min=1,max=100"`

	// Parameters contains renderer configuration as flexible YAML that
	// is validated by the renderer during construction.
	Parameters yaml.Node `yaml:"parameters"`
}

// FilterConfig selects and configures the optional item filter.
type FilterConfig struct {
	// Type selects the filter implementation. "none" (or empty)
	// disables filtering.
	Type string `yaml:"type" validate:"omitempty,oneof=none substring fuzzy"`

	// Query is the search text for substring and fuzzy filters.
	Query string `yaml:"query" validate:"max=10000"`

	// Threshold is the minimum similarity for the fuzzy filter (0.0-1.0).
	Threshold float64 `yaml:"threshold" validate:"min=0.0,max=1.0"`

	// CaseSensitive controls case sensitivity for both filter types.
	CaseSensitive bool `yaml:"case_sensitive"`
}
