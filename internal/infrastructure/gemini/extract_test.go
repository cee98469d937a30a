package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{
			name:     "bare object",
			input:    `{"shouldCreateRoute": true}`,
			expected: `{"shouldCreateRoute": true}`,
			found:    true,
		},
		{
			name:     "object wrapped in prose",
			input:    "Tabii, işte sonuç:\n{\"a\": 1}\nBaşka bir şey lazım mı?",
			expected: `{"a": 1}`,
			found:    true,
		},
		{
			name:     "code fence",
			input:    "```json\n{\"a\": {\"b\": 2}}\n```",
			expected: `{"a": {"b": 2}}`,
			found:    true,
		},
		{
			name:     "braces inside strings are skipped",
			input:    `{"explanation": "kullan { ve } dikkatli", "ok": true}`,
			expected: `{"explanation": "kullan { ve } dikkatli", "ok": true}`,
			found:    true,
		},
		{
			name:     "escaped quote inside string",
			input:    `{"text": "o \"yer\" buradadır"}`,
			expected: `{"text": "o \"yer\" buradadır"}`,
			found:    true,
		},
		{
			name:  "no object",
			input: "sadece düz metin",
			found: false,
		},
		{
			name:  "unbalanced object",
			input: `{"a": 1`,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	assert.Equal(t, "Merhaba dünya", StripMarkdown("**Merhaba** *dünya*"))
	assert.Equal(t, "Başlık\nmetin", StripMarkdown("## Başlık\nmetin"))
	assert.Equal(t, "sade metin", StripMarkdown("  sade metin  "))
}
