package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Matched  bool   `json:"matched"`
	RuleName string `json:"rule_name"`
	Reason   string `json:"reason"`
}

func TestParsePlainJSON(t *testing.T) {
	v, err := Parse[verdict](`{"matched": true, "rule_name": "disk-pressure", "reason": "disk is full"}`)
	require.NoError(t, err)
	assert.True(t, v.Matched)
	assert.Equal(t, "disk-pressure", v.RuleName)
}

func TestParseCodeFencedJSON(t *testing.T) {
	reply := "```json\n{\"matched\": false, \"rule_name\": \"\", \"reason\": \"no rule applies\"}\n```"
	v, err := Parse[verdict](reply)
	require.NoError(t, err)
	assert.False(t, v.Matched)
	assert.Equal(t, "no rule applies", v.Reason)
}

func TestParseRepairsSloppyJSON(t *testing.T) {
	reply := `{
		matched: true, // model forgot the quotes
		rule_name: "upgrade-window",
		reason: "asks about maintenance",
	}`
	v, err := Parse[verdict](reply)
	require.NoError(t, err)
	assert.True(t, v.Matched)
	assert.Equal(t, "upgrade-window", v.RuleName)
}

func TestParseExtractsEmbeddedObject(t *testing.T) {
	reply := `Sure! Here is the verdict you asked for:
{"matched": true, "rule_name": "disk-pressure", "reason": "matches"}
Let me know if you need anything else.`
	v, err := Parse[verdict](reply)
	require.NoError(t, err)
	assert.True(t, v.Matched)
}

func TestParseArrayReply(t *testing.T) {
	v, err := Parse[[]string]("```\n[\"a\", \"b\", \"c\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse[verdict]("I cannot answer that.")
	require.Error(t, err)

	_, err = Parse[verdict]("")
	require.Error(t, err)
}
