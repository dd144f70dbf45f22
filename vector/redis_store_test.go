package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"scaled vectors still parallel", []float32{1, 2, 3}, []float32{2, 4, 6}, 1.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	metadata := map[string]string{"user_id": "u1", "filename": "a.txt"}

	assert.True(t, MatchesFilter(metadata, nil))
	assert.True(t, MatchesFilter(metadata, map[string]string{"user_id": "u1"}))
	assert.True(t, MatchesFilter(metadata, map[string]string{"user_id": "u1", "filename": "a.txt"}))
	assert.False(t, MatchesFilter(metadata, map[string]string{"user_id": "u2"}))
	assert.False(t, MatchesFilter(metadata, map[string]string{"missing": "x"}))
	assert.False(t, MatchesFilter(nil, map[string]string{"user_id": "u1"}))
}
