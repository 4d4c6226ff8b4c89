// Package domain contains pure, dependency-light domain models and
// algorithms for the response inspection engine.
package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ResponseKind identifies the payload type carried by a ResponseItem.
// Plain text is the common case; special kinds require distinct rendering
// treatment but identical grouping treatment.
type ResponseKind string

// Supported response payload kinds.
const (
	// KindText marks a plain-text response payload.
	KindText ResponseKind = "text"

	// KindImage marks a base64-encoded image payload. The encoded bytes
	// are carried in the item's Text field.
	KindImage ResponseKind = "image"
)

// keySeparator joins the kind tag with the payload when deriving canonical
// keys for special-typed items. It is a non-printable byte so a plain-text
// item can never collide with a tagged key coincidentally.
const keySeparator = "\x1f"

// ResponseItem is a single generated response. It is either plain text or
// a tagged special payload (currently only images, carried as base64 text).
// Identity for grouping purposes is the item's canonical key.
type ResponseItem struct {
	// Kind identifies the payload type. An empty Kind is treated as text.
	Kind ResponseKind `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Text holds the payload: the response text for text items, or the
	// base64-encoded bytes for image items.
	Text string `yaml:"text" json:"text"`
}

// TextItem creates a plain-text response item.
func TextItem(text string) ResponseItem {
	return ResponseItem{Kind: KindText, Text: text}
}

// ImageItem creates an image response item from a base64-encoded payload.
func ImageItem(encoded string) ResponseItem {
	return ResponseItem{Kind: KindImage, Text: encoded}
}

// IsSpecial reports whether the item carries a non-plain-text payload.
func (it ResponseItem) IsSpecial() bool {
	return it.Kind != "" && it.Kind != KindText
}

// CanonicalKey derives the deterministic string used for grouping and
// evaluation-score lookup. Identical content always yields an identical
// key. Plain-text items use the text itself; special-typed items prefix
// the payload with the kind tag so a text item that coincidentally shares
// the same bytes never lands in the same group.
//
// CanonicalKey is a pure function of the item's content and is total:
// every item yields exactly one key.
func (it ResponseItem) CanonicalKey() string {
	if !it.IsSpecial() {
		return it.Text
	}
	return string(it.Kind) + keySeparator + it.Text
}

// UnmarshalYAML decodes a response item from either a bare scalar
// (plain text) or a mapping with explicit kind and text fields.
func (it *ResponseItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		it.Kind = KindText
		it.Text = node.Value
		return nil
	}

	type rawItem struct {
		Kind ResponseKind `yaml:"kind"`
		Text string       `yaml:"text"`
	}
	var raw rawItem
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("decode response item: %w", err)
	}

	if raw.Kind == "" {
		raw.Kind = KindText
	}
	it.Kind = raw.Kind
	it.Text = raw.Text
	return nil
}

// Response is one record of generated items plus optional per-item
// evaluation scores. EvalScores, when present, is positionally aligned
// with Items. Vars and Metavars carry the prompt-variable assignments
// that produced the items; they only affect heading output.
type Response struct {
	// UID uniquely identifies this response record.
	UID string `yaml:"uid" json:"uid"`

	// Items are the generated responses in generation order.
	Items []ResponseItem `yaml:"items" json:"items"`

	// EvalScores holds one evaluation score per item, aligned by index.
	// May be nil or shorter than Items when scores are unavailable.
	EvalScores []EvalScore `yaml:"eval_scores,omitempty" json:"eval_scores,omitempty"`

	// Vars maps prompt-variable names to their (possibly indirect) values.
	Vars map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`

	// Metavars maps metadata-variable names to values.
	Metavars map[string]string `yaml:"metavars,omitempty" json:"metavars,omitempty"`
}
