package services

import (
	"strings"

	"social-analytics/models"
)

var (
	videoMarkers   = []string{"watch_time", "completion_rate", "average_watch_time"}
	contentMarkers = []string{"post_id", "post_text", "post_link", "tweet"}
	overviewFields = []string{"impressions", "likes", "engagements", "new_follows", "profile_visits"}
)

// Classify decides which export schema a normalized column set belongs to.
// Video is checked first, then content, then account overview.
func Classify(columns []string) models.RecordType {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}

	if isVideoExport(columns, set) {
		return models.RecordVideoAnalytics
	}

	for _, c := range columns {
		if containsAny(c, contentMarkers) {
			return models.RecordContentAnalytics
		}
	}

	if set["date"] {
		for _, f := range overviewFields {
			if set[f] {
				return models.RecordAccountOverview
			}
		}
	}

	return models.RecordUnknown
}

func isVideoExport(columns []string, set map[string]bool) bool {
	mentionsWatch := false
	for _, c := range columns {
		if containsAny(c, videoMarkers) {
			return true
		}
		// Account overview exports also carry a "video views" column; it only
		// signals a video export when there is no impressions column.
		if strings.Contains(c, "video_views") && !set["impressions"] {
			return true
		}
		if strings.Contains(c, "watch") {
			mentionsWatch = true
		}
	}
	return set["views"] && mentionsWatch
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
