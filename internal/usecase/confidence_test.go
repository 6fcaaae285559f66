package usecase_test

import (
	"testing"

	"docqa-orchestrator/internal/domain"
	"docqa-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestEstimateConfidence(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		want      domain.Confidence
	}{
		{"weak single best match", []float64{0.50}, domain.ConfidenceLow},
		{"borderline weak best", []float64{0.46}, domain.ConfidenceLow},
		{"strong best with clear gap", []float64{0.10, 0.25}, domain.ConfidenceHigh},
		{"close pair is medium", []float64{0.40, 0.42}, domain.ConfidenceMedium},
		{"single acceptable match", []float64{0.20}, domain.ConfidenceMedium},
		{"gap without strong best", []float64{0.35, 0.50}, domain.ConfidenceMedium},
		{"strong best without gap", []float64{0.10, 0.15}, domain.ConfidenceMedium},
		{"exactly at weak boundary", []float64{0.45}, domain.ConfidenceMedium},
		{"unsorted input is handled", []float64{0.25, 0.10}, domain.ConfidenceHigh},
		{"empty degrades to low", nil, domain.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.EstimateConfidence(tt.distances))
		})
	}
}

func TestEstimateConfidence_DoesNotMutateInput(t *testing.T) {
	distances := []float64{0.40, 0.10, 0.30}
	_ = usecase.EstimateConfidence(distances)
	assert.Equal(t, []float64{0.40, 0.10, 0.30}, distances)
}
