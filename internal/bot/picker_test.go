package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scriptorium/internal/models"
)

func TestDeriveCode(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		expected string
	}{
		{
			name:     "plain txt file",
			fileName: "abc123.txt",
			expected: "abc123",
		},
		{
			name:     "no extension",
			fileName: "abc123",
			expected: "abc123",
		},
		{
			name:     "dot inside name",
			fileName: "fragment.v2.txt",
			expected: "fragment.v2",
		},
		{
			name:     "cyrillic name",
			fileName: "отрывок7.txt",
			expected: "отрывок7",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveCode(tc.fileName))
		})
	}
}

func TestChooseText_SingleFile(t *testing.T) {
	texts := []models.TextFile{{ID: "1", Name: "only.txt"}}
	assert.Equal(t, texts[0], ChooseText(texts))
}

func TestChooseText_StaysInSet(t *testing.T) {
	texts := []models.TextFile{
		{ID: "1", Name: "a.txt"},
		{ID: "2", Name: "b.txt"},
		{ID: "3", Name: "c.txt"},
	}

	ids := map[string]bool{"1": true, "2": true, "3": true}
	for i := 0; i < 50; i++ {
		chosen := ChooseText(texts)
		assert.True(t, ids[chosen.ID], "chose a file outside the set: %q", chosen.ID)
	}
}

func TestIssueMessage(t *testing.T) {
	assert.Equal(t, "Hello\n\nВаш код: abc123", IssueMessage("Hello", "abc123"))
}

func TestArchiveName(t *testing.T) {
	testCases := []struct {
		name     string
		code     string
		suffix   int
		expected string
	}{
		{
			name:     "first photo",
			code:     "abc123",
			suffix:   1,
			expected: "abc123_1.jpg",
		},
		{
			name:     "second photo",
			code:     "abc123",
			suffix:   2,
			expected: "abc123_2.jpg",
		},
		{
			name:     "double digit suffix",
			code:     "xyz",
			suffix:   11,
			expected: "xyz_11.jpg",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ArchiveName(tc.code, tc.suffix))
		})
	}
}
