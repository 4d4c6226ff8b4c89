package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResponseItem_CanonicalKey(t *testing.T) {
	tests := []struct {
		name     string
		item     ResponseItem
		expected string
	}{
		{
			name:     "text item uses the text itself",
			item:     TextItem("hello"),
			expected: "hello",
		},
		{
			name:     "zero kind treated as text",
			item:     ResponseItem{Text: "hello"},
			expected: "hello",
		},
		{
			name:     "image item prefixes the kind tag",
			item:     ImageItem("aGVsbG8="),
			expected: "image\x1faGVsbG8=",
		},
		{
			name:     "empty text is a valid key",
			item:     TextItem(""),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.item.CanonicalKey())
		})
	}
}

func TestResponseItem_CanonicalKeyDeterministic(t *testing.T) {
	item := ImageItem("cGF5bG9hZA==")
	assert.Equal(t, item.CanonicalKey(), item.CanonicalKey())
	assert.Equal(t, item.CanonicalKey(), ImageItem("cGF5bG9hZA==").CanonicalKey())
}

func TestResponseItem_UnmarshalYAML(t *testing.T) {
	t.Run("bare scalar is plain text", func(t *testing.T) {
		var item ResponseItem
		require.NoError(t, yaml.Unmarshal([]byte(`"just text"`), &item))

		assert.Equal(t, KindText, item.Kind)
		assert.Equal(t, "just text", item.Text)
	})

	t.Run("mapping carries kind and text", func(t *testing.T) {
		var item ResponseItem
		require.NoError(t, yaml.Unmarshal([]byte("kind: image\ntext: aGVsbG8="), &item))

		assert.Equal(t, KindImage, item.Kind)
		assert.Equal(t, "aGVsbG8=", item.Text)
	})

	t.Run("mapping without kind defaults to text", func(t *testing.T) {
		var item ResponseItem
		require.NoError(t, yaml.Unmarshal([]byte("text: plain"), &item))

		assert.Equal(t, KindText, item.Kind)
	})
}

func TestResponse_UnmarshalYAML(t *testing.T) {
	src := `
uid: r-42
items:
  - foo
  - kind: image
    text: aGVsbG8=
eval_scores:
  - verdict: "yes"
  - 0.5
vars:
  topic: cats
`

	var resp Response
	require.NoError(t, yaml.Unmarshal([]byte(src), &resp))

	assert.Equal(t, "r-42", resp.UID)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "foo", resp.Items[0].Text)
	assert.Equal(t, KindImage, resp.Items[1].Kind)
	require.Len(t, resp.EvalScores, 2)
	assert.Equal(t, ScoreStructure, resp.EvalScores[0].Kind())
	assert.Equal(t, ScoreScalar, resp.EvalScores[1].Kind())
	assert.Equal(t, "cats", resp.Vars["topic"])
}
