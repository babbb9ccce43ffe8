package models

import "time"

// HookType is the rhetorical style inferred from a post's opening text.
type HookType string

const (
	HookContrarian    HookType = "Contrarian"
	HookDataNumbers   HookType = "Data/Numbers"
	HookFOMO          HookType = "FOMO"
	HookQuestion      HookType = "Question"
	HookStory         HookType = "Story"
	HookBoldStatement HookType = "Bold Statement"
)

// ContentType is the post format. Thread is only produced by the API path,
// which sees reply linkage; spreadsheet exports never expose it.
type ContentType string

const (
	ContentLongForm   ContentType = "Long-form"
	ContentSinglePost ContentType = "Single Post"
	ContentThread     ContentType = "Thread"
	ContentUnknown    ContentType = "Unknown"
)

// DailyMetric is one calendar day of account-level (or post-aggregated) activity.
// Followers is the running total of NewFollows-Unfollows up to and including Date.
// Undated marks the fallback bucket for rows whose date could not be parsed.
type DailyMetric struct {
	Date          time.Time `json:"date"`
	Undated       bool      `json:"undated,omitempty"`
	Impressions   int64     `json:"impressions"`
	Likes         int64     `json:"likes"`
	Engagements   int64     `json:"engagements"`
	Reposts       int64     `json:"reposts"`
	Shares        int64     `json:"shares"`
	Replies       int64     `json:"replies"`
	Bookmarks     int64     `json:"bookmarks"`
	NewFollows    int64     `json:"newFollows"`
	Unfollows     int64     `json:"unfollows"`
	ProfileVisits int64     `json:"profileVisits"`
	VideoViews    int64     `json:"videoViews"`
	MediaViews    int64     `json:"mediaViews"`
	Followers     int64     `json:"followers"`
}

// Engagement is likes + reposts + replies.
func (d DailyMetric) Engagement() int64 {
	return d.Likes + d.Reposts + d.Replies
}

// PostItem is a single post from a content export or the remote API.
// Timestamp is nil when the source value could not be parsed.
type PostItem struct {
	ID              string      `json:"id"`
	Text            string      `json:"text"`
	Timestamp       *time.Time  `json:"timestamp"`
	Impressions     int64       `json:"impressions"`
	Likes           int64       `json:"likes"`
	Reposts         int64       `json:"reposts"`
	Shares          int64       `json:"shares"`
	Replies         int64       `json:"replies"`
	Bookmarks       int64       `json:"bookmarks"`
	NewFollows      int64       `json:"newFollows"`
	ProfileVisits   int64       `json:"profileVisits"`
	URLClicks       int64       `json:"urlClicks"`
	HashtagClicks   int64       `json:"hashtagClicks"`
	PermalinkClicks int64       `json:"permalinkClicks"`
	DetailExpands   int64       `json:"detailExpands"`
	HookType        HookType    `json:"hookType"`
	ContentType     ContentType `json:"contentType"`
}

// Engagement is likes + reposts + replies.
func (p PostItem) Engagement() int64 {
	return p.Likes + p.Reposts + p.Replies
}

// VideoDayMetric is one day of video performance. Undated has the same
// meaning as on DailyMetric.
type VideoDayMetric struct {
	Date               time.Time `json:"date"`
	Undated            bool      `json:"undated,omitempty"`
	Views              int64     `json:"views"`
	WatchTimeMs        int64     `json:"watchTimeMs"`
	CompletionRate     float64   `json:"completionRate"`
	AverageWatchTimeMs int64     `json:"averageWatchTimeMs"`
	EstimatedRevenue   float64   `json:"estimatedRevenue"`
}
