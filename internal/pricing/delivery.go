package pricing

import (
	"storefront/internal/model"
	"time"
)

const (
	MetaLeadTimeInStock   = "lead_time_in_stock"
	MetaLeadTimeBackorder = "lead_time_backorder"
)

type Delivery struct {
	Days        int       `json:"days"`
	Date        time.Time `json:"date"`
	Backordered int       `json:"backordered"`
}

func leadTime(p *model.Product, key string, fallback int) int {
	if days, ok := p.MetaInt(key); ok && days >= 0 {
		return days
	}
	return fallback
}

// LeadTimes returns the in-stock and backorder lead times in working days,
// preferring the product's ACF overrides.
func LeadTimes(p *model.Product, policy Policy) (inStock, backorder int) {
	return leadTime(p, MetaLeadTimeInStock, policy.LeadTimeInStockDays),
		leadTime(p, MetaLeadTimeBackorder, policy.LeadTimeBackorderDays)
}

// EstimateDelivery uses the backorder lead time as soon as any unit of qty
// cannot be served from stock.
func EstimateDelivery(p *model.Product, qty int, policy Policy, now time.Time) Delivery {
	inStock, backorder := LeadTimes(p, policy)
	_, back := SplitBackorder(p, qty)

	days := inStock
	if back > 0 {
		days = backorder
	}

	return Delivery{
		Days:        days,
		Date:        AddWorkingDays(now, days),
		Backordered: back,
	}
}

// AddWorkingDays moves n weekdays forward from t and returns that day at
// midnight in t's location.
func AddWorkingDays(t time.Time, n int) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}
