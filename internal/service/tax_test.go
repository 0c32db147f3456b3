package service

import (
	"context"
	"errors"
	"storefront/internal/cache"
	"storefront/internal/client/mocks"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTaxService_Rate(t *testing.T) {
	ctx := context.Background()
	policy := pricing.DefaultPolicy()

	tests := []struct {
		name  string
		rates []*model.TaxRate
		err   error
		want  string
	}{
		{
			name: "country rate wins over wildcard",
			rates: []*model.TaxRate{
				{Country: "", Rate: "15.0000"},
				{Country: "DE", Rate: "19.0000"},
				{Country: "NL", Rate: "21.0000", Priority: 1},
			},
			want: "21",
		},
		{
			name: "lowest priority first",
			rates: []*model.TaxRate{
				{Country: "NL", Rate: "9.0000", Priority: 2},
				{Country: "nl", Rate: "21.0000", Priority: 1},
			},
			want: "21",
		},
		{
			name:  "wildcard rate",
			rates: []*model.TaxRate{{Country: "", Rate: "20"}},
			want:  "20",
		},
		{
			name:  "no matching rate falls back",
			rates: []*model.TaxRate{{Country: "BE", Rate: "21"}},
			want:  "21",
		},
		{
			name: "unparsable rate is skipped",
			rates: []*model.TaxRate{
				{Country: "NL", Rate: "n/a", Priority: 1},
				{Country: "NL", Rate: "9", Priority: 2},
			},
			want: "9",
		},
		{
			name: "woocommerce down falls back",
			err:  errors.New("connection refused"),
			want: "21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			woo := new(mocks.MockWooCommerceClient)
			woo.On("ListTaxRates", mock.Anything, "").Return(tt.rates, tt.err).Once()

			svc := NewTaxService(woo, cache.NewNoop(), time.Hour, "NL", policy, discardLog)

			got := svc.Rate(ctx, "")
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			woo.AssertExpectations(t)
		})
	}
}

func TestTaxService_ReducedClass(t *testing.T) {
	woo := new(mocks.MockWooCommerceClient)
	woo.On("ListTaxRates", mock.Anything, "reduced-rate").
		Return([]*model.TaxRate{{Country: "NL", Rate: "9.0000", Class: "reduced-rate"}}, nil).Once()

	svc := NewTaxService(woo, cache.NewNoop(), time.Hour, "NL", pricing.DefaultPolicy(), discardLog)

	assert.Equal(t, "9", svc.Rate(context.Background(), "reduced-rate").String())
	woo.AssertExpectations(t)
}
