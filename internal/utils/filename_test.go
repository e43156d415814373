package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keeps plain names",
			input:    "board.cvg",
			expected: "board.cvg",
		},
		{
			name:     "drops directories",
			input:    "../../etc/board.xml",
			expected: "board.xml",
		},
		{
			name:     "drops windows paths",
			input:    `C:\Users\me\board.cvg`,
			expected: "board.cvg",
		},
		{
			name:     "removes invalid characters",
			input:    `bo<>"|?*ard.cvg`,
			expected: "board.cvg",
		},
		{
			name:     "collapses whitespace",
			input:    "my \t board\n  v2.cvg",
			expected: "my board v2.cvg",
		},
		{
			name:     "empty name",
			input:    "   ",
			expected: "upload",
		},
		{
			name:     "only a directory",
			input:    "dir/",
			expected: "dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Long(t *testing.T) {
	result := SanitizeFilename(strings.Repeat("a", 300) + ".cvg")

	assert.Len(t, result, MaxFilenameLength)
	assert.True(t, strings.HasSuffix(result, ".cvg"))
}
