package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// ComputeVisitStats aggregates purchases by hour and weekday in the location of now.
// Ties for the most frequent hour resolve to the earliest hour.
func ComputeVisitStats(txs []model.Transaction, now time.Time) model.VisitStats {
	stats := model.VisitStats{TotalSpent: decimal.Zero, MostFrequentHour: -1}
	loc := now.Location()
	year, month, _ := now.Date()
	for _, tx := range txs {
		at := tx.CreatedAt.In(loc)
		stats.TotalVisits++
		stats.TotalSpent = stats.TotalSpent.Add(tx.Amount)
		if y, m, _ := at.Date(); y == year && m == month {
			stats.CurrentMonthVisits++
		}
		stats.ByHour[at.Hour()]++
		stats.ByWeekday[(int(at.Weekday())+6)%7]++
	}
	best := 0
	for hour, visits := range stats.ByHour {
		if visits > best {
			best = visits
			stats.MostFrequentHour = hour
		}
	}
	return stats
}
