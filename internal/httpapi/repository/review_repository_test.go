package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingFromAverage(t *testing.T) {
	tests := []struct {
		name     string
		average  float64
		count    int64
		expected *int
	}{
		{"mean of 4 and 8", 6.0, 2, intPtr(6)},
		{"half rounds away from zero", 4.5, 2, intPtr(5)},
		{"half rounds away from zero high", 7.5, 4, intPtr(8)},
		{"below half rounds down", 6.4, 5, intPtr(6)},
		{"above half rounds up", 6.6, 5, intPtr(7)},
		{"single review", 10.0, 1, intPtr(10)},
		{"no reviews", 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ratingFromAverage(tt.average, tt.count)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func intPtr(i int) *int { return &i }
