package services

import (
	"fmt"
	"sort"

	"social-analytics/models"
)

// TransformOverview builds one DailyMetric per row. Rows with an unparseable
// date are kept under today; the file fails only when no row has a date.
func (t *Transformer) TransformOverview(records []models.RawRecord) (*models.OverviewResult, error) {
	const rt = models.RecordAccountOverview

	daily := make([]models.DailyMetric, 0, len(records))
	dated := 0
	for _, rec := range records {
		date, ok := ParseDate(t.aliases.Field(rt, rec, "date"))
		if ok {
			dated++
			date = dayOf(date)
		} else {
			date = t.today()
		}

		daily = append(daily, models.DailyMetric{
			Date:          date,
			Undated:       !ok,
			Impressions:   t.count(rt, rec, "impressions"),
			Likes:         t.count(rt, rec, "likes"),
			Engagements:   t.count(rt, rec, "engagements"),
			Reposts:       t.count(rt, rec, "reposts"),
			Shares:        t.count(rt, rec, "shares"),
			Replies:       t.count(rt, rec, "replies"),
			Bookmarks:     t.count(rt, rec, "bookmarks"),
			NewFollows:    t.signedCount(rt, rec, "new_follows"),
			Unfollows:     t.count(rt, rec, "unfollows"),
			ProfileVisits: t.count(rt, rec, "profile_visits"),
			VideoViews:    t.count(rt, rec, "video_views"),
			MediaViews:    t.count(rt, rec, "media_views"),
		})
	}

	if dated == 0 {
		return nil, fmt.Errorf("account overview: no row has a parseable date: %w", ErrMalformedSchema)
	}
	if skipped := len(records) - dated; skipped > 0 {
		t.logger.Warn("[transform] %d overview rows had unparseable dates, bucketed under today", skipped)
	}

	return BuildOverviewResult(daily), nil
}

// BuildOverviewResult orders days chronologically, recomputes the running
// follower count and sums totals. The input slice is not modified.
func BuildOverviewResult(days []models.DailyMetric) *models.OverviewResult {
	daily := make([]models.DailyMetric, len(days))
	copy(daily, days)
	sort.SliceStable(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})
	accumulateFollowers(daily)

	totals := models.OverviewTotals{Days: len(daily)}
	for _, d := range daily {
		totals.Impressions += d.Impressions
		totals.Likes += d.Likes
		totals.Engagements += d.Engagements
		totals.Reposts += d.Reposts
		totals.Shares += d.Shares
		totals.Replies += d.Replies
		totals.Bookmarks += d.Bookmarks
		totals.NewFollows += d.NewFollows
		totals.Unfollows += d.Unfollows
		totals.ProfileVisits += d.ProfileVisits
		totals.VideoViews += d.VideoViews
		totals.MediaViews += d.MediaViews
	}
	totals.NetFollowers = totals.NewFollows - totals.Unfollows

	return &models.OverviewResult{Daily: daily, Totals: totals}
}

// accumulateFollowers sets Followers to the running sum of
// NewFollows-Unfollows, starting from zero.
func accumulateFollowers(daily []models.DailyMetric) {
	var running int64
	for i := range daily {
		running += daily[i].NewFollows - daily[i].Unfollows
		daily[i].Followers = running
	}
}
