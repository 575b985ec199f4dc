package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParamsNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PageParams
		expected PageParams
	}{
		{
			name:     "defaults applied",
			in:       PageParams{},
			expected: PageParams{Page: 1, Size: 20, Sort: "id", Order: "asc"},
		},
		{
			name:     "size clamped to maximum",
			in:       PageParams{Page: 2, Size: 5000, Sort: "name", Order: "desc"},
			expected: PageParams{Page: 2, Size: 100, Sort: "name", Order: "desc"},
		},
		{
			name:     "sort outside allow-list falls back",
			in:       PageParams{Page: 1, Size: 10, Sort: "password; DROP TABLE", Order: "asc"},
			expected: PageParams{Page: 1, Size: 10, Sort: "id", Order: "asc"},
		},
		{
			name:     "order normalized to lowercase",
			in:       PageParams{Page: 1, Size: 10, Sort: "id", Order: "DESC"},
			expected: PageParams{Page: 1, Size: 10, Sort: "id", Order: "desc"},
		},
		{
			name:     "unknown order falls back to ascending",
			in:       PageParams{Page: 1, Size: 10, Sort: "id", Order: "sideways"},
			expected: PageParams{Page: 1, Size: 10, Sort: "id", Order: "asc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize("id", "name")
			assert.Equal(t, tt.expected, tt.in)
		})
	}
}

func TestPageParamsOffset(t *testing.T) {
	p := PageParams{Page: 3, Size: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestNewPageNormalizesNilItems(t *testing.T) {
	page := NewPage[string](nil, PageParams{Page: 1, Size: 20}, 0)
	assert.NotNil(t, page.Items, "empty pages must serialize as [] not null")
	assert.Empty(t, page.Items)
}
