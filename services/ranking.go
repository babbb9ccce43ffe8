package services

import (
	"math"
	"sort"

	"social-analytics/models"
)

// TopPosts returns posts with any impressions or likes, ordered by
// impressions descending. Ties keep input order.
func TopPosts(posts []models.PostItem, limit int) []models.PostItem {
	ranked := make([]models.PostItem, 0, len(posts))
	for _, p := range posts {
		if p.Impressions > 0 || p.Likes > 0 {
			ranked = append(ranked, p)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Impressions > ranked[j].Impressions
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RollupHooks groups posts by hook type. Average engagement is the hook's
// total engagement over its total impressions, as a percentage.
func RollupHooks(posts []models.PostItem) []models.HookPerformance {
	type stat struct {
		posts       int
		impressions int64
		engagement  int64
	}

	stats := make(map[models.HookType]*stat)
	for _, p := range posts {
		hook := p.HookType
		if hook == "" {
			hook = DetectHook(p.Text)
		}
		s, ok := stats[hook]
		if !ok {
			s = &stat{}
			stats[hook] = s
		}
		s.posts++
		s.impressions += p.Impressions
		s.engagement += p.Engagement()
	}

	out := make([]models.HookPerformance, 0, len(stats))
	for hook, s := range stats {
		hp := models.HookPerformance{
			Hook:           hook,
			Posts:          s.posts,
			AvgImpressions: int64(math.Round(float64(s.impressions) / float64(s.posts))),
		}
		if s.impressions > 0 {
			hp.AvgEngagement = round1(float64(s.engagement) / float64(s.impressions) * 100)
		}
		out = append(out, hp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgImpressions != out[j].AvgImpressions {
			return out[i].AvgImpressions > out[j].AvgImpressions
		}
		return out[i].Hook < out[j].Hook
	})
	return out
}
