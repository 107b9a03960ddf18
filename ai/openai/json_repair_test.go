package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "already valid", input: `{"query": "rainfall data"}`},
		{name: "missing opening quote", input: `{query": "rainfall data"}`},
		{name: "trailing comma", input: `{"query": "rainfall data",}`},
		{name: "markdown fences", input: "```json\n{\"query\": \"rainfall data\"}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := repairJSON(tt.input)

			var decoded struct {
				Query string `json:"query"`
			}
			require.NoError(t, json.Unmarshal([]byte(repaired), &decoded), "repaired: %s", repaired)
			assert.Equal(t, "rainfall data", decoded.Query)
		})
	}
}

func TestScrubString(t *testing.T) {
	assert.Equal(t, "What datasets cover rainfall", scrubString("  What datasets cover rainfall?! "))
}
