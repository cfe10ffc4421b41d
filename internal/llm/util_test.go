package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const overviewJSON = `{"sections": [{"label": "Business Overview", "content": "Acme lends to SMEs in the EU."}]}`

func TestCleanJSONBlock_Fences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json fence", "```json\n" + overviewJSON + "\n```", overviewJSON},
		{"bare fence", "```\n" + overviewJSON + "\n```", overviewJSON},
		{"upper-case language tag", "```JSON\n" + overviewJSON + "```", overviewJSON},
		{"fence on one line", "```" + overviewJSON + "```", overviewJSON},
		{"fence with surrounding whitespace", "\n\n```json\n" + overviewJSON + "\n```\n", overviewJSON},
		{"no fence", overviewJSON, overviewJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestCleanJSONBlock_SurroundingText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before the memo",
			input:    "Here is the briefing note on Acme:\n\n" + overviewJSON,
			expected: overviewJSON,
		},
		{
			name:     "trailing offer to expand",
			input:    `{"sections": []}` + "\n\nLet me know if the Industry Outlook should be expanded.",
			expected: `{"sections": []}`,
		},
		{
			name:     "braces and brackets inside content",
			input:    `Result: {"sections": [{"label": "Key Questions for Management", "content": "Ask about {churn} and [margins]."}]} done`,
			expected: `{"sections": [{"label": "Key Questions for Management", "content": "Ask about {churn} and [margins]."}]}`,
		},
		{
			name:     "escaped quotes inside content",
			input:    `Output: {"sections": [{"label": "Business Overview", "content": "Acme calls itself \"the payments layer\"."}]}`,
			expected: `{"sections": [{"label": "Business Overview", "content": "Acme calls itself \"the payments layer\"."}]}`,
		},
		{
			name:     "label array",
			input:    "Sections covered:\n[\"Business Overview\", \"Fundraising History\"]",
			expected: `["Business Overview", "Fundraising History"]`,
		},
		{
			name:     "object wins over a later array",
			input:    `{"sections": []} [1, 2]`,
			expected: `{"sections": []}`,
		},
		{
			name:     "no JSON at all",
			input:    "  Not available  ",
			expected: "Not available",
		},
		{
			name:     "truncated object is returned as is",
			input:    `Result: {"sections": [{"label": "Fundraising History"`,
			expected: `Result: {"sections": [{"label": "Fundraising History"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sections object", overviewJSON, overviewJSON},
		{"trailing text dropped", `{"label": "Fundraising History"} and more`, `{"label": "Fundraising History"}`},
		{"template braces in a string", `{"query": "{{.Company}} funding"}`, `{"query": "{{.Company}} funding"}`},
		{"unbalanced", `{"label": "Fundraising History"`, ""},
		{"empty input", "", ""},
		{"not an object", `["Business Overview"]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"labels", `["Business Overview", "Fundraising History"]`, `["Business Overview", "Fundraising History"]`},
		{"section objects", `[{"label": "A"}, {"label": "B"}] extra`, `[{"label": "A"}, {"label": "B"}]`},
		{"bracket inside a string", `["Series [A]", "Seed"]`, `["Series [A]", "Seed"]`},
		{"empty input", "", ""},
		{"not an array", `{"sections": []}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONArray(tt.input))
		})
	}
}
