package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int) *int { return &v }

func TestGetPageParams(t *testing.T) {
	tests := []struct {
		name         string
		page, size   *int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", nil, nil, 1, 10},
		{"explicit", ptr(3), ptr(25), 3, 25},
		{"non-positive page", ptr(0), ptr(5), 1, 5},
		{"negative size", ptr(2), ptr(-1), 2, 10},
		{"size capped", ptr(1), ptr(1000), 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := GetPageParams(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, size)
		})
	}
}
