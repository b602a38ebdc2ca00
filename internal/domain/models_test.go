package domain_test

import (
	"testing"

	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed float64
		quantity  float64
		want      int
	}{
		{"zero quantity", 5, 0, 0},
		{"negative quantity", 5, -1, 0},
		{"halfway", 5, 10, 50},
		{"floors fraction", 1, 3, 33},
		{"complete", 10, 10, 100},
		{"overshoot clamps to 100", 15, 10, 100},
		{"negative completed clamps to 0", -2, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ComputeProgress(tt.completed, tt.quantity))
		})
	}
}

func TestOfferItemRecalculateTotals(t *testing.T) {
	item := domain.OfferItem{
		Quantity:          10,
		UnitPrice:         1000,
		MaterialUnitPrice: 500,
	}
	item.RecalculateTotals()

	assert.Equal(t, 10000.0, item.WorkTotal)
	assert.Equal(t, 5000.0, item.MaterialTotal)
	assert.Equal(t, 15000.0, item.TotalPrice)
}

func TestOfferItemRecalculateTotalsZeroQuantity(t *testing.T) {
	item := domain.OfferItem{
		Quantity:          0,
		UnitPrice:         1000,
		MaterialUnitPrice: 500,
	}
	item.RecalculateTotals()

	assert.Zero(t, item.WorkTotal)
	assert.Zero(t, item.MaterialTotal)
	assert.Zero(t, item.TotalPrice)
}

func TestOfferStatusIsValid(t *testing.T) {
	valid := []domain.OfferStatus{
		domain.OfferStatusDraft,
		domain.OfferStatusSent,
		domain.OfferStatusAccepted,
		domain.OfferStatusInWork,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, domain.OfferStatus("rejected").IsValid())
	assert.False(t, domain.OfferStatus("").IsValid())
}

func TestOfferStatusIsConvertible(t *testing.T) {
	assert.True(t, domain.OfferStatusSent.IsConvertible())
	assert.True(t, domain.OfferStatusAccepted.IsConvertible())
	assert.False(t, domain.OfferStatusDraft.IsConvertible())
	assert.False(t, domain.OfferStatusInWork.IsConvertible())
}
