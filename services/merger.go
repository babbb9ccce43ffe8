package services

import (
	"time"

	"social-analytics/models"
	"social-analytics/utils"
)

// Merger combines per-file results into one MergedDataset. Account and video
// days are concatenated as-is; posts are deduplicated by id, first seen wins.
type Merger struct {
	logger   *utils.Logger
	topLimit int
	now      func() time.Time
}

// NewMerger creates a Merger.
func NewMerger(logger *utils.Logger, topLimit int) *Merger {
	if topLimit <= 0 {
		topLimit = DefaultTopPostsLimit
	}
	return &Merger{logger: logger, topLimit: topLimit, now: time.Now}
}

// WithClock overrides the clock used for undated posts and UpdatedAt.
func (m *Merger) WithClock(now func() time.Time) *Merger {
	m.now = now
	return m
}

// Merge builds a fresh dataset from results in order. Nothing in results is
// modified.
func (m *Merger) Merge(results []*FileResult) *models.MergedDataset {
	var (
		overviewDays []models.DailyMetric
		videoDays    []models.VideoDayMetric
		posts        []models.PostItem
		hasOverview  bool
		hasContent   bool
		hasVideo     bool
		duplicates   int
	)

	seen := utils.NewIDSet()
	for _, r := range results {
		if r == nil {
			continue
		}
		switch {
		case r.Overview != nil:
			hasOverview = true
			overviewDays = append(overviewDays, r.Overview.Daily...)
		case r.Content != nil:
			hasContent = true
			for _, p := range r.Content.Posts {
				if !seen.Add(p.ID) {
					duplicates++
					continue
				}
				posts = append(posts, p)
			}
		case r.Video != nil:
			hasVideo = true
			videoDays = append(videoDays, r.Video.Days...)
		}
	}
	if duplicates > 0 {
		m.logger.Debug("[merger] Ignored %d duplicate posts (%d unique kept)", duplicates, seen.Size())
	}

	ds := &models.MergedDataset{UpdatedAt: m.now().UTC()}
	if hasOverview {
		ds.Overview = BuildOverviewResult(overviewDays)
	}
	if hasContent {
		ds.Content = BuildContentResult(posts, m.topLimit, m.now())
		ds.TopPosts = ds.Content.TopPosts
		ds.HookPerformance = ds.Content.HookPerformance
	}
	if hasVideo {
		ds.Video = BuildVideoResult(videoDays)
	}

	switch {
	case ds.Overview != nil && len(ds.Overview.Daily) > 0:
		ds.Series = ds.Overview.Daily
		ds.SeriesSource = models.RecordAccountOverview
	case ds.Content != nil:
		ds.Series = ds.Content.Daily
		ds.SeriesSource = models.RecordContentAnalytics
	}

	ds.Summary = BuildSummary(ds)
	return ds
}

// BuildSummary accumulates totals from whichever results are present.
// Account overview totals win over content totals for the fields both carry.
func BuildSummary(ds *models.MergedDataset) models.Summary {
	var s models.Summary

	if c := ds.Content; c != nil {
		s.TotalImpressions = c.Totals.Impressions
		s.TotalLikes = c.Totals.Likes
		s.TotalReposts = c.Totals.Reposts
		s.TotalReplies = c.Totals.Replies
		s.TotalBookmarks = c.Totals.Bookmarks
		s.TotalShares = c.Totals.Shares
		s.TotalPosts = c.Totals.Posts
		s.NewFollows = c.Totals.NewFollows
		s.ProfileVisits = c.Totals.ProfileVisits
	}

	if o := ds.Overview; o != nil {
		s.TotalImpressions = o.Totals.Impressions
		s.TotalLikes = o.Totals.Likes
		s.TotalReposts = o.Totals.Reposts
		s.TotalReplies = o.Totals.Replies
		s.TotalBookmarks = o.Totals.Bookmarks
		s.TotalShares = o.Totals.Shares
		s.NewFollows = o.Totals.NewFollows
		s.Unfollows = o.Totals.Unfollows
		s.ProfileVisits = o.Totals.ProfileVisits
		s.VideoViews = o.Totals.VideoViews
	}

	if v := ds.Video; v != nil {
		s.VideoViews = v.Totals.Views
		s.WatchTimeMinutes = v.Totals.WatchTimeMinutes
		s.AvgCompletionRate = v.Totals.AvgCompletionRate
		s.EstimatedRevenue = v.Totals.EstimatedRevenue
	}

	s.NetFollowerChange = s.NewFollows - s.Unfollows
	if n := len(ds.Series); n > 0 {
		s.CurrentFollowers = ds.Series[n-1].Followers
	}
	s.EngagementRate = EngagementRate(s.TotalLikes, s.TotalReposts, s.TotalReplies, s.TotalImpressions)
	return s
}

// EngagementRate is (likes+reposts+replies)/impressions as a percentage
// rounded to one decimal. Zero impressions gives 0.
func EngagementRate(likes, reposts, replies, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return round1(float64(likes+reposts+replies) / float64(impressions) * 100)
}

// fileResultsOf turns a stored dataset back into leading merge inputs so a
// new batch extends it instead of replacing it.
func fileResultsOf(ds *models.MergedDataset) []*FileResult {
	if ds.Empty() {
		return nil
	}

	var out []*FileResult
	if ds.Overview != nil {
		out = append(out, &FileResult{Name: "existing", Type: models.RecordAccountOverview, Overview: ds.Overview, Rows: len(ds.Overview.Daily)})
	}
	if ds.Content != nil {
		out = append(out, &FileResult{Name: "existing", Type: models.RecordContentAnalytics, Content: ds.Content, Rows: len(ds.Content.Posts)})
	}
	if ds.Video != nil {
		out = append(out, &FileResult{Name: "existing", Type: models.RecordVideoAnalytics, Video: ds.Video, Rows: len(ds.Video.Days)})
	}
	return out
}
