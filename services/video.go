package services

import (
	"fmt"
	"math"
	"sort"

	"social-analytics/models"
)

// TransformVideo builds one VideoDayMetric per row. Completion rate is
// clamped to 0-100 and revenue to >= 0. A missing average watch time is
// derived from total watch time over views.
func (t *Transformer) TransformVideo(records []models.RawRecord) (*models.VideoResult, error) {
	const rt = models.RecordVideoAnalytics

	days := make([]models.VideoDayMetric, 0, len(records))
	dated := 0
	for _, rec := range records {
		date, ok := ParseDate(t.aliases.Field(rt, rec, "date"))
		if ok {
			dated++
			date = dayOf(date)
		} else {
			date = t.today()
		}

		day := models.VideoDayMetric{
			Date:               date,
			Undated:            !ok,
			Views:              t.count(rt, rec, "views"),
			WatchTimeMs:        t.count(rt, rec, "watch_time_ms"),
			CompletionRate:     clamp(t.decimal(rt, rec, "completion_rate"), 0, 100),
			AverageWatchTimeMs: t.count(rt, rec, "average_watch_time_ms"),
			EstimatedRevenue:   math.Max(0, t.decimal(rt, rec, "estimated_revenue")),
		}
		if day.AverageWatchTimeMs == 0 && day.Views > 0 {
			day.AverageWatchTimeMs = int64(math.Round(float64(day.WatchTimeMs) / float64(day.Views)))
		}
		days = append(days, day)
	}

	if dated == 0 {
		return nil, fmt.Errorf("video analytics: no row has a parseable date: %w", ErrMalformedSchema)
	}

	return BuildVideoResult(days), nil
}

// BuildVideoResult orders days chronologically and computes totals. The
// mean completion rate is a plain average across days.
func BuildVideoResult(in []models.VideoDayMetric) *models.VideoResult {
	days := make([]models.VideoDayMetric, len(in))
	copy(days, in)
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	totals := models.VideoTotals{Days: len(days)}
	var watchMs int64
	var completion, revenue float64
	for _, d := range days {
		totals.Views += d.Views
		watchMs += d.WatchTimeMs
		completion += d.CompletionRate
		revenue += d.EstimatedRevenue
	}
	totals.WatchTimeMinutes = int64(math.Round(float64(watchMs) / 60000))
	if len(days) > 0 {
		totals.AvgCompletionRate = round1(completion / float64(len(days)))
	}
	totals.EstimatedRevenue = round2(revenue)

	return &models.VideoResult{Days: days, Totals: totals}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
