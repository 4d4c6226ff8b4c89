package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/JingYue2000/ChainForge/internal/domain"
	"github.com/JingYue2000/ChainForge/internal/ports"
)

// Config controls group rendering behavior. The zero value renders
// content and scores in narrow layout with no heading.
//
// Configuration is immutable after renderer creation and thread-safe for
// concurrent access. Changes require creating a new renderer instance.
type Config struct {
	// OnlyShowScores suppresses representative content entirely,
	// emitting an empty placeholder per group. Scores, counts, and
	// toolbar callbacks are unaffected.
	OnlyShowScores bool `yaml:"only_show_scores" json:"only_show_scores"`

	// WideFormat selects the wide layout. It is forwarded to the rating
	// toolbar and moves the heading placement (see Render).
	WideFormat bool `yaml:"wide_format" json:"wide_format"`

	// HideEvalScores excludes evaluation scores from the output even
	// when the response carries them.
	HideEvalScores bool `yaml:"hide_eval_scores" json:"hide_eval_scores"`

	// Label is an optional heading emitted once per response.
	Label string `yaml:"label" json:"label" validate:"max=255"`
}

// DefaultConfig returns a Config with production defaults: full content
// and score rendering in narrow layout.
func DefaultConfig() Config { return Config{} }

// Unit is one group's fully resolved output, consumed by the
// presentation layer.
type Unit struct {
	// Key is the group's canonical key.
	Key string

	// Kind is the payload kind of the group's members.
	Kind domain.ResponseKind

	// Display is the representative content in display form. Empty for
	// image groups (ImageData carries the payload) and when content is
	// suppressed via OnlyShowScores.
	Display string

	// ImageData holds the decoded image bytes for image groups.
	// Nil for text groups, suppressed content, and undecodable payloads.
	ImageData []byte

	// Repeats is the group size when the group has more than one
	// member, and 0 for singleton groups.
	Repeats int

	// Indices lists the group members' positions within the post-filter
	// item list, ascending.
	Indices []int

	// Score is the formatted evaluation score for this group, nil when
	// scores do not participate or no score exists for the key.
	Score *domain.FormattedScore

	// Label is the response heading. Exactly one unit per response
	// carries a non-empty label.
	Label string
}

// Option configures optional collaborators on a GroupRenderer.
type Option func(*GroupRenderer)

// WithFilter installs an item filter applied before grouping.
func WithFilter(f ports.ItemFilter) Option {
	return func(gr *GroupRenderer) { gr.filter = f }
}

// WithTextRenderer installs a custom display renderer for plain text.
func WithTextRenderer(tr ports.TextRenderer) Option {
	return func(gr *GroupRenderer) { gr.textRenderer = tr }
}

// WithToolbar installs the rating-toolbar collaborator invoked per group.
func WithToolbar(tb ports.RatingToolbar) Option {
	return func(gr *GroupRenderer) { gr.toolbar = tb }
}

// WithVariableResolver installs the resolver for indirect variable handles.
func WithVariableResolver(vr ports.VariableResolver) Option {
	return func(gr *GroupRenderer) { gr.resolver = vr }
}

// WithMetrics installs a metrics collector for render observability.
func WithMetrics(mc ports.MetricsCollector) Option {
	return func(gr *GroupRenderer) { gr.metrics = mc }
}

// GroupRenderer deduplicates a response's items into frequency-ranked
// groups and resolves each group into a presentation-ready Unit. It is
// the only component that talks to the external collaborators (rating
// toolbar, text renderer, filter, variable resolver).
//
// Concurrency: GroupRenderer is stateless and safe for concurrent
// execution. Rendering is idempotent: identical inputs always produce an
// identical ordered unit list.
type GroupRenderer struct {
	// name is the unique identifier for this renderer instance.
	name string
	// config contains the validated configuration parameters.
	config Config

	filter       ports.ItemFilter
	textRenderer ports.TextRenderer
	toolbar      ports.RatingToolbar
	resolver     ports.VariableResolver
	metrics      ports.MetricsCollector

	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NewGroupRenderer creates a GroupRenderer with validated configuration
// and optional collaborators. The renderer is immediately ready for
// concurrent use after successful creation.
//
// Returns ErrEmptyRendererName if name is empty, or a configuration
// validation error if the config fails validation constraints.
func NewGroupRenderer(name string, config Config, opts ...Option) (*GroupRenderer, error) {
	if name == "" {
		return nil, ErrEmptyRendererName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	gr := &GroupRenderer{
		name:   name,
		config: config,
		tracer: otel.Tracer("group-renderer"),
	}
	for _, opt := range opts {
		opt(gr)
	}
	return gr, nil
}

// Name returns the unique identifier for this renderer instance.
func (gr *GroupRenderer) Name() string { return gr.name }

// Render transforms one response record into its ranked unit list.
//
// Steps: optional filtering, canonical-key grouping, ranking by
// descending count (ties broken by ascending first index), per-group
// score lookup and formatting, heading placement, and one toolbar
// callback per group.
//
// A nil response or empty item list yields an empty result, not an
// error. The score lookup is keyed by canonical key and built from the
// unfiltered items, so filtering cannot break score alignment; divergent
// scores under one key resolve last-write-wins, which is only meaningful
// because identical items are expected to carry identical scores.
//
// Errors are limited to resource guards: item counts above MaxItems and
// payloads above MaxStringLength are rejected.
func (gr *GroupRenderer) Render(ctx context.Context, resp *domain.Response) ([]Unit, error) {
	_, span := gr.tracer.Start(ctx, "GroupRenderer.Render",
		trace.WithAttributes(
			attribute.String("renderer.id", gr.name),
			attribute.Bool("config.only_show_scores", gr.config.OnlyShowScores),
			attribute.Bool("config.wide_format", gr.config.WideFormat),
			attribute.Bool("config.hide_eval_scores", gr.config.HideEvalScores),
		),
	)
	defer span.End()

	start := time.Now()

	if resp == nil || len(resp.Items) == 0 {
		return nil, nil
	}

	if len(resp.Items) > MaxItems {
		err := fmt.Errorf("%w: %d exceeds %d", ErrTooManyItems, len(resp.Items), MaxItems)
		span.RecordError(err)
		return nil, err
	}

	for i, item := range resp.Items {
		if len(item.Text) > MaxStringLength {
			err := fmt.Errorf("item %d too long: %d bytes exceeds limit of %d", i, len(item.Text), MaxStringLength)
			span.RecordError(err)
			return nil, err
		}
	}

	useScores := len(resp.EvalScores) > 0 && !gr.config.HideEvalScores

	var scoreByKey map[string]domain.EvalScore
	if useScores {
		scoreByKey = make(map[string]domain.EvalScore, len(resp.EvalScores))
		for i, item := range resp.Items {
			if i >= len(resp.EvalScores) {
				break
			}
			scoreByKey[item.CanonicalKey()] = resp.EvalScores[i]
		}
	}

	items := resp.Items
	if gr.filter != nil {
		items = gr.filter.Filter(items)
	}
	if len(items) == 0 {
		return nil, nil
	}

	groups := domain.RankGroups(domain.GroupResponses(items))

	units := make([]Unit, len(groups))
	for gi, group := range groups {
		representative := items[group.Indices[0]]

		unit := Unit{
			Key:     group.Key,
			Kind:    representative.Kind,
			Indices: group.Indices,
		}
		if group.Count() > 1 {
			unit.Repeats = group.Count()
		}

		if !gr.config.OnlyShowScores {
			unit.Display, unit.ImageData = gr.representativeContent(representative)
		}

		if useScores {
			if score, ok := scoreByKey[group.Key]; ok {
				formatted := domain.FormatScore(score, domain.FormatOptions{HidePrefix: true})
				unit.Score = &formatted
			}
		}

		if gr.toolbar != nil {
			gr.toolbar.Attach(resp.UID, group.Indices, gr.config.WideFormat, representative)
		}

		units[gi] = unit
	}

	// Exactly one heading per response: on the first unit, except in
	// narrow layout with multiple groups where it trails the last unit.
	if heading := gr.heading(resp); heading != "" {
		pos := 0
		if !gr.config.WideFormat && len(units) > 1 {
			pos = len(units) - 1
		}
		units[pos].Label = heading
	}

	latency := time.Since(start)
	span.SetAttributes(
		attribute.Int("render.items_count", len(items)),
		attribute.Int("render.groups_count", len(groups)),
		attribute.Int64("render.latency_ms", latency.Milliseconds()),
	)

	if gr.metrics != nil {
		labels := map[string]string{"renderer": gr.name}
		gr.metrics.RecordLatency("render", latency, labels)
		gr.metrics.RecordCounter("render_units_emitted", float64(len(units)), labels)
		for _, group := range groups {
			gr.metrics.RecordHistogram("response_group_size", float64(group.Count()), labels)
		}
	}

	return units, nil
}

// representativeContent resolves a group representative into its display
// form. Image payloads are base64-decoded; undecodable payloads render
// as an empty image rather than failing. Plain text passes through the
// custom text renderer when one is installed.
func (gr *GroupRenderer) representativeContent(item domain.ResponseItem) (string, []byte) {
	if item.Kind == domain.KindImage {
		data, err := base64.StdEncoding.DecodeString(item.Text)
		if err != nil {
			return "", nil
		}
		return "", data
	}

	text := item.Text
	if gr.textRenderer != nil {
		text = gr.textRenderer.RenderText(text)
	}
	return text, nil
}

// heading builds the response heading from the configured label and the
// response's variable assignments. Variable values pass through the
// resolver when one is installed; unknown handles fall back to the raw
// value. Variable order is sorted by name for determinism.
func (gr *GroupRenderer) heading(resp *domain.Response) string {
	parts := make([]string, 0, 1+len(resp.Vars))
	if gr.config.Label != "" {
		parts = append(parts, gr.config.Label)
	}

	names := make([]string, 0, len(resp.Vars))
	for name := range resp.Vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := resp.Vars[name]
		if gr.resolver != nil {
			if resolved, ok := gr.resolver.Resolve(value); ok {
				value = resolved
			}
		}
		parts = append(parts, name+"="+value)
	}

	return strings.Join(parts, ", ")
}

// Validate checks if the renderer is properly configured and ready for
// execution. It is safe for concurrent use.
func (gr *GroupRenderer) Validate() error {
	if err := validate.Struct(gr.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters and
// returns a new GroupRenderer instance to maintain thread-safety.
// Decoding is strict so configuration typos are not silently ignored.
func (gr *GroupRenderer) UnmarshalParameters(params yaml.Node) (*GroupRenderer, error) {
	var config Config

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	if err := encoder.Encode(&params); err != nil {
		return nil, fmt.Errorf("failed to encode YAML node: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close YAML encoder: %w", err)
	}

	decoder := yaml.NewDecoder(&buf)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode parameters (check for typos): %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	return &GroupRenderer{
		name:         gr.name,
		config:       config,
		filter:       gr.filter,
		textRenderer: gr.textRenderer,
		toolbar:      gr.toolbar,
		resolver:     gr.resolver,
		metrics:      gr.metrics,
		tracer:       gr.tracer,
	}, nil
}
