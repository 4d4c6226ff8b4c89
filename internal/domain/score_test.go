package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Classification
	}{
		{name: "capitalized true is success", text: "True", expected: ClassSuccess},
		{name: "padded yes is success", text: " yes ", expected: ClassSuccess},
		{name: "uppercase no is failure", text: "NO", expected: ClassFailure},
		{name: "false is failure", text: "false", expected: ClassFailure},
		{name: "unrecognized text is neutral", text: "maybe", expected: ClassNeutral},
		{name: "empty text is neutral", text: "", expected: ClassNeutral},
		{name: "prefix match does not classify", text: "yesterday", expected: ClassNeutral},
		{name: "substring match does not classify", text: "it is true", expected: ClassNeutral},
		{name: "numeric text is neutral", text: "0.75", expected: ClassNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.text))
		})
	}
}

func TestScalarText(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "string passes through", value: "hello", expected: "hello"},
		{name: "bool true", value: true, expected: "true"},
		{name: "bool false", value: false, expected: "false"},
		{name: "float without trailing zeros", value: 0.5, expected: "0.5"},
		{name: "integral float", value: 3.0, expected: "3"},
		{name: "int", value: 42, expected: "42"},
		{name: "int64", value: int64(-7), expected: "-7"},
		{name: "nil is empty", value: nil, expected: ""},
		{name: "unexpected shape coerces via fmt", value: []int{1, 2}, expected: "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScalarScore(tt.value).ScalarText())
		})
	}
}

func TestStructureScore_PreservesInsertionOrder(t *testing.T) {
	score := StructureScore(
		ScoreEntry{Key: "zeta", Value: ScalarScore(1)},
		ScoreEntry{Key: "alpha", Value: ScalarScore(2)},
		ScoreEntry{Key: "mid", Value: ScalarScore(3)},
	)

	entries := score.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "zeta", entries[0].Key)
	assert.Equal(t, "alpha", entries[1].Key)
	assert.Equal(t, "mid", entries[2].Key)
}

func TestStructureScore_DuplicateKeyKeepsPositionOverwritesValue(t *testing.T) {
	score := StructureScore(
		ScoreEntry{Key: "a", Value: ScalarScore("first")},
		ScoreEntry{Key: "b", Value: ScalarScore("middle")},
		ScoreEntry{Key: "a", Value: ScalarScore("second")},
	)

	entries := score.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "second", entries[0].Value.ScalarText())
	assert.Equal(t, "b", entries[1].Key)
}

func TestCoerceScore(t *testing.T) {
	t.Run("slice becomes sequence", func(t *testing.T) {
		score := CoerceScore([]any{"low", "high"})
		require.Equal(t, ScoreSequence, score.Kind())
		require.Len(t, score.Sequence(), 2)
	})

	t.Run("map becomes structure with sorted keys", func(t *testing.T) {
		score := CoerceScore(map[string]any{"b": 1, "a": 2})
		require.Equal(t, ScoreStructure, score.Kind())
		entries := score.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Key)
		assert.Equal(t, "b", entries[1].Key)
	})

	t.Run("nested map recurses", func(t *testing.T) {
		score := CoerceScore(map[string]any{"outer": map[string]any{"inner": "yes"}})
		entries := score.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, ScoreStructure, entries[0].Value.Kind())
	})

	t.Run("primitive becomes scalar", func(t *testing.T) {
		score := CoerceScore(true)
		assert.Equal(t, ScoreScalar, score.Kind())
		assert.Equal(t, "true", score.ScalarText())
	})

	t.Run("existing score passes through", func(t *testing.T) {
		original := SequenceScore("a", "b")
		assert.Equal(t, original, CoerceScore(original))
	})
}

func TestEvalScore_UnmarshalYAML(t *testing.T) {
	t.Run("mapping preserves source order", func(t *testing.T) {
		src := "zeta: 1\nalpha: yes\nmid:\n  inner: no\n"

		var score EvalScore
		require.NoError(t, yaml.Unmarshal([]byte(src), &score))

		require.Equal(t, ScoreStructure, score.Kind())
		entries := score.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, "zeta", entries[0].Key)
		assert.Equal(t, "alpha", entries[1].Key)
		assert.Equal(t, "mid", entries[2].Key)
		assert.Equal(t, ScoreStructure, entries[2].Value.Kind())
	})

	t.Run("sequence decodes scalars", func(t *testing.T) {
		var score EvalScore
		require.NoError(t, yaml.Unmarshal([]byte("[low, high, low]"), &score))

		require.Equal(t, ScoreSequence, score.Kind())
		require.Len(t, score.Sequence(), 3)
		assert.Equal(t, "low", score.Sequence()[0].ScalarText())
	})

	t.Run("scalar decodes with native type", func(t *testing.T) {
		var score EvalScore
		require.NoError(t, yaml.Unmarshal([]byte("0.25"), &score))

		require.Equal(t, ScoreScalar, score.Kind())
		assert.Equal(t, 0.25, score.Value())
	})
}
