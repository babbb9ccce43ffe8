package models

import "time"

// TimeWindow selects the period a dashboard view covers.
type TimeWindow string

const (
	Window7Days  TimeWindow = "7d"
	Window30Days TimeWindow = "30d"
	Window90Days TimeWindow = "90d"
	WindowAll    TimeWindow = "all"
)

// Days returns the window length in days, or 0 for all time.
func (w TimeWindow) Days() int {
	switch w {
	case Window7Days:
		return 7
	case Window30Days:
		return 30
	case Window90Days:
		return 90
	default:
		return 0
	}
}

// Trends compares the recent half of a window against the older half.
type Trends struct {
	ImpressionsChange   float64 `json:"impressionsChange"`
	LikesChange         float64 `json:"likesChange"`
	NetFollowers        int64   `json:"netFollowers"`
	NetFollowersDelta   int64   `json:"netFollowersDelta"`
	EngagementRate      float64 `json:"engagementRate"`
	EngagementRateDelta float64 `json:"engagementRateDelta"`
}

// TopPostView is a ranked post with presentation-ready dates.
type TopPostView struct {
	PostItem
	DisplayDate string `json:"date"`
	PostedAt    string `json:"postedAt"`
}

// DashboardView is a time-filtered projection of a MergedDataset.
type DashboardView struct {
	Window          TimeWindow        `json:"window"`
	ReferenceDate   time.Time         `json:"referenceDate"`
	From            *time.Time        `json:"from"`
	Series          []DailyMetric     `json:"series"`
	SeriesSource    RecordType        `json:"seriesSource"`
	Video           []VideoDayMetric  `json:"video"`
	TopPosts        []TopPostView     `json:"topPosts"`
	HookPerformance []HookPerformance `json:"hookPerformance"`
	Summary         Summary           `json:"summary"`
	Trends          Trends            `json:"trends"`
}
