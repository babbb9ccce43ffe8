package services

import (
	"time"

	"social-analytics/models"
)

type periodTotals struct {
	impressions int64
	likes       int64
	reposts     int64
	replies     int64
	netFollows  int64
}

func (p *periodTotals) add(d models.DailyMetric) {
	p.impressions += d.Impressions
	p.likes += d.Likes
	p.reposts += d.Reposts
	p.replies += d.Replies
	p.netFollows += d.NewFollows - d.Unfollows
}

func (p periodTotals) engagementRate() float64 {
	return EngagementRate(p.likes, p.reposts, p.replies, p.impressions)
}

// computeTrends compares the recent half of the window with the older half.
// For a window of days > 0 the halves are date ranges ending at ref; for all
// time the ordered series is split by count.
func computeTrends(series []models.DailyMetric, ref time.Time, days int) models.Trends {
	var current, previous periodTotals

	if days > 0 {
		half := days / 2
		if half == 0 {
			half = 1
		}
		curFrom := ref.AddDate(0, 0, -(half - 1))
		prevFrom := ref.AddDate(0, 0, -(2*half - 1))
		prevTo := ref.AddDate(0, 0, -half)
		for _, d := range series {
			switch {
			case inWindow(d.Date, curFrom, ref):
				current.add(d)
			case inWindow(d.Date, prevFrom, prevTo):
				previous.add(d)
			}
		}
	} else {
		half := len(series) / 2
		for _, d := range series[:half] {
			previous.add(d)
		}
		for _, d := range series[len(series)-half:] {
			current.add(d)
		}
	}

	curRate := current.engagementRate()
	return models.Trends{
		ImpressionsChange:   percentChange(current.impressions, previous.impressions),
		LikesChange:         percentChange(current.likes, previous.likes),
		NetFollowers:        current.netFollows,
		NetFollowersDelta:   current.netFollows - previous.netFollows,
		EngagementRate:      curRate,
		EngagementRateDelta: round1(curRate - previous.engagementRate()),
	}
}

// percentChange is the relative change from prev to cur in percent. A zero
// previous period counts as +100% when anything happened since, else 0.
func percentChange(cur, prev int64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(cur-prev) / float64(prev) * 100)
}
