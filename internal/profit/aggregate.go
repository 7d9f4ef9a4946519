package profit

import (
	"math"
	"slices"
	"sort"
	"time"
)

// Counts reports whether r contributes to revenue.
func Counts(r Record) bool {
	return r.TotalPrice != nil && slices.Contains(RevenueStatuses, r.Status)
}

// Since returns the start of the reporting window monthsBack months before now,
// truncated to the day. The day is clamped to the target month's last day, so
// one month before March 31 is the end of February. monthsBack == 0 means all
// history and yields nil.
func Since(now time.Time, monthsBack int) *time.Time {
	if monthsBack <= 0 {
		return nil
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, time.UTC)
	day := min(now.Day(), daysIn(first))
	t := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}

// Filter keeps the revenue records whose check-in falls on or after since.
func Filter(records []Record, since *time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !Counts(r) {
			continue
		}
		if since != nil && r.CheckIn.Before(*since) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Total sums the revenue records, rounded to cents.
func Total(records []Record) float64 {
	var sum float64
	for _, r := range records {
		if Counts(r) {
			sum += *r.TotalPrice
		}
	}
	return round2(sum)
}

// MonthLabel formats the calendar month of t.
func MonthLabel(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// Monthly buckets revenue by check-in month. Only months with revenue appear,
// in ascending order.
func Monthly(records []Record) []MonthAmount {
	buckets := make(map[string]float64)
	for _, r := range records {
		if !Counts(r) {
			continue
		}
		buckets[MonthLabel(r.CheckIn)] += *r.TotalPrice
	}
	return toSeries(buckets)
}

// ZeroFill adds a zero entry for every month between from and to (inclusive)
// missing from series. Months of series outside the range are kept.
func ZeroFill(series []MonthAmount, from, to time.Time) []MonthAmount {
	buckets := make(map[string]float64, len(series))
	for _, m := range series {
		buckets[m.Month] += m.Amount
	}

	cur := monthStart(from)
	end := monthStart(to)
	for !cur.After(end) {
		label := MonthLabel(cur)
		if _, ok := buckets[label]; !ok {
			buckets[label] = 0
		}
		cur = cur.AddDate(0, 1, 0)
	}
	return toSeries(buckets)
}

// Predict fits an ordinary least-squares line through history, using x = 0..n-1
// for the months in order, and extends it monthsAhead months past the last one.
// Fewer than two points, or a non-positive horizon, yields an empty result.
// Negative predictions are returned as computed.
func Predict(history []MonthAmount, monthsAhead int) []MonthAmount {
	n := len(history)
	if n < 2 || monthsAhead <= 0 {
		return []MonthAmount{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, m := range history {
		x := float64(i)
		sumX += x
		sumY += m.Amount
		sumXY += x * m.Amount
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	last, err := time.Parse(MonthLayout, history[n-1].Month)
	out := make([]MonthAmount, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		label := ""
		if err == nil {
			label = MonthLabel(last.AddDate(0, i, 0))
		}
		out = append(out, MonthAmount{
			Month:  label,
			Amount: round2(slope*float64(n+i-1) + intercept),
		})
	}
	return out
}

func toSeries(buckets map[string]float64) []MonthAmount {
	out := make([]MonthAmount, 0, len(buckets))
	for month, amount := range buckets {
		out = append(out, MonthAmount{Month: month, Amount: round2(amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
