package models

import "time"

// OverviewTotals sums every numeric account-overview column across all days.
type OverviewTotals struct {
	Days          int   `json:"days"`
	Impressions   int64 `json:"impressions"`
	Likes         int64 `json:"likes"`
	Engagements   int64 `json:"engagements"`
	Reposts       int64 `json:"reposts"`
	Shares        int64 `json:"shares"`
	Replies       int64 `json:"replies"`
	Bookmarks     int64 `json:"bookmarks"`
	NewFollows    int64 `json:"newFollows"`
	Unfollows     int64 `json:"unfollows"`
	NetFollowers  int64 `json:"netFollowers"`
	ProfileVisits int64 `json:"profileVisits"`
	VideoViews    int64 `json:"videoViews"`
	MediaViews    int64 `json:"mediaViews"`
}

// OverviewResult is the transform output of an account-overview export.
type OverviewResult struct {
	Daily  []DailyMetric  `json:"daily"`
	Totals OverviewTotals `json:"totals"`
}

// ContentTotals sums post metrics across a content export.
type ContentTotals struct {
	Posts         int   `json:"posts"`
	Impressions   int64 `json:"impressions"`
	Likes         int64 `json:"likes"`
	Reposts       int64 `json:"reposts"`
	Shares        int64 `json:"shares"`
	Replies       int64 `json:"replies"`
	Bookmarks     int64 `json:"bookmarks"`
	NewFollows    int64 `json:"newFollows"`
	ProfileVisits int64 `json:"profileVisits"`
	URLClicks     int64 `json:"urlClicks"`
}

// HookPerformance rolls up posts sharing a hook type.
type HookPerformance struct {
	Hook           HookType `json:"hook"`
	Posts          int      `json:"posts"`
	AvgImpressions int64    `json:"avgImpressions"`
	AvgEngagement  float64  `json:"avgEngagement"`
}

// ContentResult is the transform output of a content export.
type ContentResult struct {
	Posts           []PostItem        `json:"posts"`
	Daily           []DailyMetric     `json:"daily"`
	TopPosts        []PostItem        `json:"topPosts"`
	HookPerformance []HookPerformance `json:"hookPerformance"`
	Totals          ContentTotals     `json:"totals"`
}

// VideoTotals aggregates a video export.
type VideoTotals struct {
	Days              int     `json:"days"`
	Views             int64   `json:"views"`
	WatchTimeMinutes  int64   `json:"watchTimeMinutes"`
	AvgCompletionRate float64 `json:"avgCompletionRate"`
	EstimatedRevenue  float64 `json:"estimatedRevenue"`
}

// VideoResult is the transform output of a video export.
type VideoResult struct {
	Days   []VideoDayMetric `json:"days"`
	Totals VideoTotals      `json:"totals"`
}

// Summary is the running account summary presented on dashboard cards.
// Counts are integers, rates are 0-100 percentages, revenue is a decimal amount.
type Summary struct {
	TotalImpressions  int64   `json:"totalImpressions"`
	TotalLikes        int64   `json:"totalLikes"`
	TotalReposts      int64   `json:"totalReposts"`
	TotalReplies      int64   `json:"totalReplies"`
	TotalBookmarks    int64   `json:"totalBookmarks"`
	TotalShares       int64   `json:"totalShares"`
	TotalPosts        int     `json:"totalPosts"`
	NewFollows        int64   `json:"newFollows"`
	Unfollows         int64   `json:"unfollows"`
	NetFollowerChange int64   `json:"netFollowerChange"`
	CurrentFollowers  int64   `json:"currentFollowers"`
	ProfileVisits     int64   `json:"profileVisits"`
	VideoViews        int64   `json:"videoViews"`
	WatchTimeMinutes  int64   `json:"watchTimeMinutes"`
	AvgCompletionRate float64 `json:"avgCompletionRate"`
	EstimatedRevenue  float64 `json:"estimatedRevenue"`
	EngagementRate    float64 `json:"engagementRate"`
}

// MergedDataset is the unified result of one or more imports. It is rebuilt
// from its per-type results on every import and never mutated in place.
type MergedDataset struct {
	BatchID         string            `json:"batchId"`
	Files           []string          `json:"files"`
	Overview        *OverviewResult   `json:"overview,omitempty"`
	Content         *ContentResult    `json:"content,omitempty"`
	Video           *VideoResult      `json:"video,omitempty"`
	Series          []DailyMetric     `json:"series"`
	SeriesSource    RecordType        `json:"seriesSource"`
	TopPosts        []PostItem        `json:"topPosts"`
	HookPerformance []HookPerformance `json:"hookPerformance"`
	Summary         Summary           `json:"summary"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Empty reports whether the dataset carries no imported data.
func (d *MergedDataset) Empty() bool {
	return d == nil || (d.Overview == nil && d.Content == nil && d.Video == nil)
}
