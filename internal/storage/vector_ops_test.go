package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeVector(t *testing.T) {
	vector := []float32{0.25, -1.5, 3.75, 0}
	blob := serializeVector(vector)
	require.Len(t, blob, len(vector)*4)

	got := deserializeVector(blob)
	assert.Equal(t, vector, got)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBM25Normalization(t *testing.T) {
	// Raw FTS5 scores are negative; normalized scores must land in (0, 1]
	for _, raw := range []float64{0, -1, -10, -50, -500} {
		normalized := 1.0 / (1.0 + math.Abs(raw)/50.0)
		assert.Greater(t, normalized, 0.0)
		assert.LessOrEqual(t, normalized, 1.0)
	}
}

func TestSanitizeFTSQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"plain terms quoted", "refund webhook", `"refund" "webhook"`},
		{"boolean operators neutralized", "refund AND webhook", `"refund" "and" "webhook"`},
		{"wildcards stripped", "refund*", `"refund"`},
		{"parens stripped", "(refund)", `"refund"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFTSQuery(tt.query))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike(`100%`))
	assert.Equal(t, `a\_b`, escapeLike(`a_b`))
	assert.Equal(t, `plain`, escapeLike(`plain`))
}
