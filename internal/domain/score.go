package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// foldCaser is a package-level Unicode case folder for performance.
// This avoids creating a new caser for each classification.
var foldCaser = cases.Fold()

// ScoreKind discriminates the three EvalScore variants.
type ScoreKind int

// EvalScore variants.
const (
	// ScoreScalar is a primitive value (boolean-like string, number, text).
	ScoreScalar ScoreKind = iota

	// ScoreSequence is an ordered list of scalar values.
	ScoreSequence

	// ScoreStructure is a mapping from unique string keys to nested
	// scores, iterated in insertion order.
	ScoreStructure
)

// EvalScore is a recursively structured evaluation result attached to a
// response item. It is an explicit sum type with three constructors
// (ScalarScore, SequenceScore, StructureScore); consumers dispatch on
// Kind rather than runtime type introspection.
//
// The zero value is an empty scalar.
type EvalScore struct {
	kind    ScoreKind
	value   any
	seq     []EvalScore
	entries *orderedmap.OrderedMap[string, EvalScore]
}

// ScoreEntry is one key/value pair of a structure score. Entry order in
// StructureScore determines iteration order.
type ScoreEntry struct {
	Key   string
	Value EvalScore
}

// ScalarScore creates a scalar evaluation score from a primitive value.
// Unexpected value shapes are acceptable; they are coerced to their
// string form when rendered.
func ScalarScore(v any) EvalScore {
	return EvalScore{kind: ScoreScalar, value: v}
}

// SequenceScore creates an ordered sequence score from scalar values.
func SequenceScore(vals ...any) EvalScore {
	seq := make([]EvalScore, len(vals))
	for i, v := range vals {
		seq[i] = ScalarScore(v)
	}
	return EvalScore{kind: ScoreSequence, seq: seq}
}

// StructureScore creates a keyed structure score. Entries iterate in the
// order given; a repeated key overwrites the earlier value while keeping
// its original position, so keys stay unique.
func StructureScore(entries ...ScoreEntry) EvalScore {
	om := orderedmap.New[string, EvalScore](len(entries))
	for _, e := range entries {
		om.Set(e.Key, e.Value)
	}
	return EvalScore{kind: ScoreStructure, entries: om}
}

// Kind returns the variant of this score.
func (s EvalScore) Kind() ScoreKind { return s.kind }

// Sequence returns the elements of a sequence score.
// It returns nil for other variants.
func (s EvalScore) Sequence() []EvalScore { return s.seq }

// Entries returns the structure's key/value pairs in iteration order.
// It returns nil for other variants.
func (s EvalScore) Entries() []ScoreEntry {
	if s.kind != ScoreStructure || s.entries == nil {
		return nil
	}
	entries := make([]ScoreEntry, 0, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, ScoreEntry{Key: pair.Key, Value: pair.Value})
	}
	return entries
}

// Value returns the raw scalar value. Rendering may truncate the textual
// form of floats, but the value returned here is never altered.
func (s EvalScore) Value() any { return s.value }

// ScalarText returns the string form of a scalar score's value.
// Unexpected shapes are coerced via fmt rather than rejected.
func (s EvalScore) ScalarText() string {
	switch v := s.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// CoerceScore converts an arbitrary decoded value (e.g. from JSON) into
// an EvalScore. Slices become sequences, string-keyed maps become
// structures, and everything else becomes a scalar. Plain Go maps carry
// no insertion order, so map keys are sorted for determinism; decode
// through YAML (UnmarshalYAML) when source order must be preserved.
func CoerceScore(v any) EvalScore {
	switch val := v.(type) {
	case EvalScore:
		return val
	case []any:
		return SequenceScore(val...)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]ScoreEntry, len(keys))
		for i, k := range keys {
			entries[i] = ScoreEntry{Key: k, Value: CoerceScore(val[k])}
		}
		return StructureScore(entries...)
	default:
		return ScalarScore(v)
	}
}

// UnmarshalYAML decodes an evaluation score from a YAML node, preserving
// mapping key order for structure scores.
func (s *EvalScore) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := scoreFromNode(node)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func scoreFromNode(node *yaml.Node) (EvalScore, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		vals := make([]any, len(node.Content))
		for i, el := range node.Content {
			vals[i] = scalarValue(el)
		}
		return SequenceScore(vals...), nil

	case yaml.MappingNode:
		// Mapping node content alternates key, value.
		entries := make([]ScoreEntry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			nested, err := scoreFromNode(node.Content[i+1])
			if err != nil {
				return EvalScore{}, err
			}
			entries = append(entries, ScoreEntry{Key: node.Content[i].Value, Value: nested})
		}
		return StructureScore(entries...), nil

	case yaml.ScalarNode:
		return ScalarScore(scalarValue(node)), nil

	case yaml.AliasNode:
		return scoreFromNode(node.Alias)

	default:
		return EvalScore{}, fmt.Errorf("unsupported score node kind: %d", node.Kind)
	}
}

// scalarValue decodes a scalar YAML node into a typed Go value, falling
// back to the raw string when typed decoding fails.
func scalarValue(node *yaml.Node) any {
	var v any
	if err := node.Decode(&v); err != nil {
		return node.Value
	}
	return v
}

// Classification is the fixed success/failure bucket assigned to a
// scalar score's text form.
type Classification int

// Scalar classifications.
const (
	// ClassNeutral applies to any text outside the success and failure
	// vocabularies.
	ClassNeutral Classification = iota

	// ClassSuccess applies to boolean-like affirmative text.
	ClassSuccess

	// ClassFailure applies to boolean-like negative text.
	ClassFailure
)

// String returns a short label for the classification.
func (c Classification) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassFailure:
		return "failure"
	default:
		return "neutral"
	}
}

// Global success/failure vocabulary. Classification compares the trimmed,
// case-folded scalar text against these sets with exact matching only;
// no prefix or substring matching.
var (
	successTokens = map[string]struct{}{"true": {}, "yes": {}}
	failureTokens = map[string]struct{}{"false": {}, "no": {}}
)

// Classify assigns a success/failure/neutral bucket to scalar text.
// Matching is case-insensitive and whitespace-insensitive but exact.
func Classify(text string) Classification {
	return classifyFolded(foldCaser.String(strings.TrimSpace(text)))
}

// classifyFolded classifies text that is already trimmed and case-folded.
func classifyFolded(folded string) Classification {
	if _, ok := successTokens[folded]; ok {
		return ClassSuccess
	}
	if _, ok := failureTokens[folded]; ok {
		return ClassFailure
	}
	return ClassNeutral
}
