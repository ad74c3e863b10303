package snr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		snrDb    float64
		category Category
		pass     bool
	}{
		{"at undetectable limit", -15.54, CategoryUndetectable, false},
		{"just above limit", -15.0, CategoryBelowThreshold, true},
		{"minimum detectable", 0.0, CategoryMarginallyDetectable, true},
		{"standard confidence boundary", 6.0, CategoryDetectable, true},
		{"detectable", 8.0, CategoryDetectable, true},
		{"high confidence boundary", 9.5, CategoryHighConfidence, true},
		{"negative infinity", math.Inf(-1), CategoryUndetectable, false},
		{"positive infinity", math.Inf(1), CategoryHighConfidence, true},
		{"nan", math.NaN(), CategoryUndetectable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.snrDb)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.pass, got.SakanaPrinciplePass)
		})
	}
}

func TestIsDetectable(t *testing.T) {
	assert.True(t, IsDetectable(0))
	assert.True(t, IsDetectable(math.Inf(1)))
	assert.False(t, IsDetectable(-0.01))
	assert.False(t, IsDetectable(math.NaN()))
}
