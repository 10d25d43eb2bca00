package classifier

import (
	"testing"

	"almabot/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Simple(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  domain.Signal
	}{
		{name: "above upper buys", price: 105, want: domain.SignalBuy},
		{name: "below lower sells", price: 85, want: domain.SignalSell},
		{name: "inside bands holds", price: 95, want: domain.SignalHold},
		{name: "on upper band holds", price: 100, want: domain.SignalHold},
		{name: "on lower band holds", price: 90, want: domain.SignalHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(domain.VariantSimple, tt.price, 100, 90, 0, false)
			assert.Equal(t, tt.want, got.Signal)
		})
	}
}

func TestClassify_Dual(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		upper, lower float64
		want         domain.Signal
	}{
		{name: "above both buys", price: 105, upper: 100, lower: 90, want: domain.SignalBuy},
		{name: "below both sells", price: 85, upper: 100, lower: 90, want: domain.SignalSell},
		{name: "between bands holds", price: 95, upper: 100, lower: 90, want: domain.SignalHold},
		{name: "crossed bands hold even above both", price: 105, upper: 90, lower: 100, want: domain.SignalHold},
		{name: "crossed bands hold even below both", price: 85, upper: 90, lower: 100, want: domain.SignalHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(domain.VariantDual, tt.price, tt.upper, tt.lower, 0, false)
			assert.Equal(t, tt.want, got.Signal)
		})
	}
}

func TestClassify_TrendBreakout(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		trend      float64
		wantSignal domain.Signal
		wantState  domain.MarketState
	}{
		{name: "above band and trend", price: 106, trend: 102, wantSignal: domain.SignalBuy, wantState: domain.StateTrend},
		{name: "below band and trend", price: 84, trend: 95, wantSignal: domain.SignalSell, wantState: domain.StateTrend},
		{name: "above band only", price: 101, trend: 103, wantSignal: domain.SignalBuy, wantState: domain.StateBreakout},
		{name: "below band only", price: 89, trend: 80, wantSignal: domain.SignalSell, wantState: domain.StateBreakout},
		{name: "inside bands", price: 95, trend: 95, wantSignal: domain.SignalHold, wantState: domain.StateSideways},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(domain.VariantTrendBreakout, tt.price, 100, 90, tt.trend, true)
			assert.Equal(t, tt.wantSignal, got.Signal)
			assert.Equal(t, tt.wantState, got.State)
		})
	}
}

func TestClassify_TrendBreakoutWithoutTrendPanics(t *testing.T) {
	assert.Panics(t, func() {
		Classify(domain.VariantTrendBreakout, 100, 100, 90, 0, false)
	})
}

func TestClassify_UnknownVariantPanics(t *testing.T) {
	assert.Panics(t, func() {
		Classify(domain.Variant("bogus"), 100, 100, 90, 0, false)
	})
}
