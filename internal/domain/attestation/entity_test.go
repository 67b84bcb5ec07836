package attestation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

func TestGrade_IsValid(t *testing.T) {
	tests := []struct {
		grade Grade
		valid bool
	}{
		{1, false},
		{2, true},
		{3, true},
		{4, true},
		{5, true},
		{6, false},
		{0, false},
		{-3, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.grade.IsValid(), "grade %d", tt.grade)
	}
}

func TestGrade_Validate(t *testing.T) {
	assert.NoError(t, Grade(4).Validate())

	err := Grade(6).Validate()
	assert.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGrade_IsFailing(t *testing.T) {
	assert.True(t, Grade(2).IsFailing())
	assert.False(t, Grade(3).IsFailing())
	assert.False(t, Grade(5).IsFailing())
}

func TestGPABandOf(t *testing.T) {
	tests := []struct {
		avg  float64
		band GPABand
	}{
		{5.0, BandHigh},
		{4.5, BandHigh},
		{4.49, BandMid},
		{3.5, BandMid},
		{3.49, BandLow},
		{2.0, BandLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.band, GPABandOf(tt.avg), "avg %v", tt.avg)
	}
}

func TestFormatGPA(t *testing.T) {
	assert.Equal(t, "4.00", FormatGPA(4.0))
	assert.Equal(t, "4.50", FormatGPA(4.5))
	assert.Equal(t, "3.67", FormatGPA(11.0/3.0))
}
