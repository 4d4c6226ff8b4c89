package domain

import (
	"math"
	"strconv"
	"strings"
)

// Formatting constants for evaluation-score rendering.
const (
	// ScalarPrefix labels a top-level scalar score.
	ScalarPrefix = "score: "

	// SequencePrefix labels a top-level sequence score.
	SequencePrefix = "scores: "

	// MaxScoreDepth bounds structure/sequence nesting during formatting.
	// Deeper nesting renders a truncation marker rather than recursing,
	// guarding against cyclic or adversarial inputs.
	MaxScoreDepth = 32

	// truncationMarker replaces any content nested beyond MaxScoreDepth.
	truncationMarker = "…"

	// floatDisplayPlaces is the decimal precision applied to non-integral
	// floats nested in a structure. Truncation affects only the textual
	// rendering, never the underlying value.
	floatDisplayPlaces = 4
)

// FormatOptions controls evaluation-score formatting.
type FormatOptions struct {
	// HidePrefix suppresses the "score: "/"scores: " label on the
	// top-level value. Nested structure entries never repeat the label.
	HidePrefix bool

	// OnlyString collapses the presentation to the plain search text,
	// discarding structured line output.
	OnlyString bool
}

// ScoreLine is one line of a score's presentation, carrying the
// classification that drives success/failure styling downstream.
type ScoreLine struct {
	Text  string
	Class Classification
}

// FormattedScore is the dual output of score formatting: an ordered,
// classification-annotated presentation and a canonical plain-text form
// used for search. Both are produced in a single pass so they can never
// drift out of sync.
type FormattedScore struct {
	// Lines is the presentation form, one entry per visual line.
	Lines []ScoreLine

	// Search is the canonical plain-text form. Structure entries are
	// newline-joined.
	Search string
}

// Display returns the presentation as a single newline-joined string.
func (f FormattedScore) Display() string {
	parts := make([]string, len(f.Lines))
	for i, line := range f.Lines {
		parts[i] = line.Text
	}
	return strings.Join(parts, "\n")
}

// FormatScore converts an evaluation score into its presentation and
// search forms. It is pure and total: any well-formed score formats
// without error, unrecognized scalar text classifies as neutral, and
// nesting beyond MaxScoreDepth renders a truncation marker.
func FormatScore(score EvalScore, opts FormatOptions) FormattedScore {
	return formatScore(score, opts, 0)
}

func formatScore(score EvalScore, opts FormatOptions, depth int) FormattedScore {
	if depth > MaxScoreDepth {
		return FormattedScore{
			Lines:  []ScoreLine{{Text: truncationMarker, Class: ClassNeutral}},
			Search: truncationMarker,
		}
	}

	switch score.Kind() {
	case ScoreSequence:
		return formatSequence(score, opts)
	case ScoreStructure:
		return formatStructure(score, opts, depth)
	default:
		return formatScalar(score, opts)
	}
}

// formatSequence flattens a sequence to one comma-joined line.
// Presentation and search text are identical for sequences.
func formatSequence(score EvalScore, opts FormatOptions) FormattedScore {
	parts := make([]string, len(score.Sequence()))
	for i, el := range score.Sequence() {
		parts[i] = el.ScalarText()
	}

	joined := strings.Join(parts, ", ")
	if !opts.HidePrefix {
		joined = SequencePrefix + joined
	}
	return FormattedScore{
		Lines:  []ScoreLine{{Text: joined, Class: ClassNeutral}},
		Search: joined,
	}
}

// formatStructure renders each entry as "<key>: <nested>" in insertion
// order. Nested values never repeat the score label; OnlyString
// propagates down. Non-integral float entries are display-truncated
// before recursing.
func formatStructure(score EvalScore, opts FormatOptions, depth int) FormattedScore {
	entries := score.Entries()
	lines := make([]ScoreLine, 0, len(entries))
	searches := make([]string, 0, len(entries))

	for _, entry := range entries {
		val := entry.Value
		if val.Kind() == ScoreScalar {
			if text, ok := truncatedFloatText(val.Value()); ok {
				val = ScalarScore(text)
			}
		}

		nested := formatScore(val, FormatOptions{HidePrefix: true, OnlyString: opts.OnlyString}, depth+1)
		searches = append(searches, entry.Key+": "+nested.Search)

		if len(nested.Lines) > 0 {
			// The key labels the first nested line; continuation lines
			// of a nested structure keep their own keys.
			first := nested.Lines[0]
			lines = append(lines, ScoreLine{Text: entry.Key + ": " + first.Text, Class: first.Class})
			lines = append(lines, nested.Lines[1:]...)
		}
	}

	search := strings.Join(searches, "\n")
	if opts.OnlyString {
		return FormattedScore{
			Lines:  []ScoreLine{{Text: search, Class: ClassNeutral}},
			Search: search,
		}
	}
	return FormattedScore{Lines: lines, Search: search}
}

// formatScalar trims, case-folds, and classifies a scalar's text form.
func formatScalar(score EvalScore, opts FormatOptions) FormattedScore {
	folded := foldCaser.String(strings.TrimSpace(score.ScalarText()))
	class := classifyFolded(folded)

	if opts.OnlyString {
		return FormattedScore{
			Lines:  []ScoreLine{{Text: folded, Class: class}},
			Search: folded,
		}
	}

	display := folded
	if !opts.HidePrefix {
		display = ScalarPrefix + folded
	}
	return FormattedScore{
		Lines:  []ScoreLine{{Text: display, Class: class}},
		Search: folded,
	}
}

// truncatedFloatText returns the fixed four-decimal text form of a
// non-integral float value. Integral floats and non-float values report
// ok=false and keep their natural rendering.
func truncatedFloatText(v any) (string, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	default:
		return "", false
	}

	if math.Trunc(f) == f {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', floatDisplayPlaces, 64), true
}
