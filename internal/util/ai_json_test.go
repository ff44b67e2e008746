package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type qa struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func TestCleanAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []qa
		wantErr bool
	}{
		{
			name: "plain array",
			raw:  `[{"question":"Q1","answer":"A1"}]`,
			want: []qa{{"Q1", "A1"}},
		},
		{
			name: "json fence",
			raw:  "```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```",
			want: []qa{{"Q1", "A1"}},
		},
		{
			name: "bare fence",
			raw:  "```\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```",
			want: []qa{{"Q1", "A1"}},
		},
		{
			name: "prose around json",
			raw:  "Sure! Here you go:\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\nHope it helps.",
			want: []qa{{"Q1", "A1"}},
		},
		{
			name: "think block",
			raw:  "<think>reasoning</think>[{\"question\":\"Q1\",\"answer\":\"A1\"}]",
			want: []qa{{"Q1", "A1"}},
		},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "garbage", raw: "no json here", wantErr: true},
		{name: "broken json", raw: `[{"question": "Q1",`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []qa
			err := CleanAIJSON(tc.raw, &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCleanAIJSON_Object(t *testing.T) {
	var out struct {
		Title       string `json:"title"`
		Explanation string `json:"explanation"`
	}
	err := CleanAIJSON("Result:\n{\"title\":\"T\",\"explanation\":\"E\"} trailing", &out)
	require.NoError(t, err)
	assert.Equal(t, "T", out.Title)
	assert.Equal(t, "E", out.Explanation)
}

func TestFixEscapedNewlines(t *testing.T) {
	assert.Equal(t, "a\n```js\nx\n```", FixEscapedNewlines(`a\n`+"```js"+`\nx\n`+"```"))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("  ```json\n{\"a\":1}\n```  "))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}
