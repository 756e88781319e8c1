package dataprocessing

import (
	"sort"
	"strings"
	"time"

	"procurekpi/pkg/contracts/domain"
)

// AggregateRisk counts high-defect and delayed orders per supplier.
// Suppliers are ranked by defect rate, then delay rate (both descending),
// then name. Rows without a supplier are not counted.
func AggregateRisk(table *domain.Table) []domain.SupplierRisk {
	bySupplier := make(map[string]*domain.SupplierRisk)
	for _, row := range table.Rows {
		if !hasSupplier(row) {
			continue
		}
		risk, ok := bySupplier[row.Supplier]
		if !ok {
			risk = &domain.SupplierRisk{Supplier: row.Supplier}
			bySupplier[row.Supplier] = risk
		}
		risk.TotalOrders++
		if row.IsHighDefect {
			risk.HighDefectCount++
		}
		if row.IsDelayed {
			risk.DelayedCount++
		}
	}

	result := make([]domain.SupplierRisk, 0, len(bySupplier))
	for _, risk := range bySupplier {
		total := float64(risk.TotalOrders)
		risk.DefectRatePct = float64(risk.HighDefectCount) / total * 100
		risk.DelayRatePct = float64(risk.DelayedCount) / total * 100
		result = append(result, *risk)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.DefectRatePct != b.DefectRatePct {
			return a.DefectRatePct > b.DefectRatePct
		}
		if a.DelayRatePct != b.DelayRatePct {
			return a.DelayRatePct > b.DelayRatePct
		}
		return a.Supplier < b.Supplier
	})

	return result
}

func hasSupplier(row domain.Order) bool {
	return strings.TrimSpace(row.Supplier) != ""
}

// AggregateSavings sums costs per supplier, ranked by total savings
// descending. SavingsPct is 0 for a supplier with zero total cost. Rows
// without a supplier are not counted.
func AggregateSavings(table *domain.Table) []domain.SupplierSavings {
	bySupplier := make(map[string]*domain.SupplierSavings)
	for _, row := range table.Rows {
		if !hasSupplier(row) {
			continue
		}
		s, ok := bySupplier[row.Supplier]
		if !ok {
			s = &domain.SupplierSavings{Supplier: row.Supplier}
			bySupplier[row.Supplier] = s
		}
		s.TotalOrders++
		s.TotalQuantity += row.Quantity
		s.TotalCost += row.TotalCost
		s.NegotiatedCost += row.NegotiatedCost
		s.TotalSavings += row.CostSavings
	}

	result := make([]domain.SupplierSavings, 0, len(bySupplier))
	for _, s := range bySupplier {
		if s.TotalCost != 0 {
			s.SavingsPct = s.TotalSavings / s.TotalCost * 100
		}
		result = append(result, *s)
	}

	sortSavings(result, func(s domain.SupplierSavings) float64 { return s.TotalSavings })
	return result
}

// TopSavings returns the n suppliers with the largest total savings
func TopSavings(savings []domain.SupplierSavings, n int) []domain.SupplierSavings {
	return topBy(savings, n, func(s domain.SupplierSavings) float64 { return s.TotalSavings })
}

// TopSavingsPct returns the n suppliers with the largest savings percentage
func TopSavingsPct(savings []domain.SupplierSavings, n int) []domain.SupplierSavings {
	return topBy(savings, n, func(s domain.SupplierSavings) float64 { return s.SavingsPct })
}

func topBy(savings []domain.SupplierSavings, n int, key func(domain.SupplierSavings) float64) []domain.SupplierSavings {
	ranked := append([]domain.SupplierSavings(nil), savings...)
	sortSavings(ranked, key)
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// sortSavings orders by key descending, then supplier name
func sortSavings(s []domain.SupplierSavings, key func(domain.SupplierSavings) float64) {
	sort.Slice(s, func(i, j int) bool {
		ki, kj := key(s[i]), key(s[j])
		if ki != kj {
			return ki > kj
		}
		return s[i].Supplier < s[j].Supplier
	})
}

// AggregateMonthlyTrends averages unit and negotiated prices per order month,
// oldest first. Rows without an order date are skipped.
func AggregateMonthlyTrends(table *domain.Table) []domain.MonthlyPriceTrend {
	type acc struct {
		unit, negotiated float64
		count            int
	}
	byMonth := make(map[time.Time]*acc)
	for _, row := range table.Rows {
		month, ok := row.OrderMonth()
		if !ok {
			continue
		}
		a, exists := byMonth[month]
		if !exists {
			a = &acc{}
			byMonth[month] = a
		}
		a.unit += row.UnitPrice
		a.negotiated += row.NegotiatedPrice
		a.count++
	}

	result := make([]domain.MonthlyPriceTrend, 0, len(byMonth))
	for month, a := range byMonth {
		result = append(result, domain.MonthlyPriceTrend{
			Month:              month,
			AvgUnitPrice:       a.unit / float64(a.count),
			AvgNegotiatedPrice: a.negotiated / float64(a.count),
			OrderCount:         a.count,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Month.Before(result[j].Month)
	})
	return result
}
