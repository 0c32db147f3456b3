package service

import (
	"context"
	"storefront/internal/logger"
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

var discardLog = logger.Discard()

// fixedTax always answers with the same rate.
type fixedTax struct {
	rate decimal.Decimal
}

func (f fixedTax) Rate(context.Context, string) decimal.Decimal { return f.rate }

func (f fixedTax) Refresh(context.Context) error { return nil }

var vat21 = fixedTax{rate: decimal.NewFromInt(21)}

func intPtr(n int) *int { return &n }

// stocked is a product priced 12.10 incl. VAT (10.00 net) with managed stock.
func stocked(id int64, stock int) *model.Product {
	return &model.Product{
		ID:            id,
		Name:          "Product",
		Slug:          "product",
		Sku:           "SKU",
		RegularPrice:  "12.10",
		Price:         "12.10",
		ManageStock:   true,
		StockQuantity: intPtr(stock),
		StockStatus:   model.StockStatusInStock,
		Backorders:    model.BackordersNo,
	}
}
