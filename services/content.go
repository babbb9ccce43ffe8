package services

import (
	"fmt"
	"sort"
	"time"

	"social-analytics/models"
)

// TransformContent builds one PostItem per usable row. A row with neither
// text nor any positive metric is dropped. Posts missing an id get
// "<source>#<row>" so they survive deduplication.
func (t *Transformer) TransformContent(source string, records []models.RawRecord) (*models.ContentResult, error) {
	const rt = models.RecordContentAnalytics

	posts := make([]models.PostItem, 0, len(records))
	dropped := 0
	for i, rec := range records {
		text := t.aliases.Field(rt, rec, "text")
		post := models.PostItem{
			ID:              t.aliases.Field(rt, rec, "id"),
			Text:            text,
			Impressions:     t.count(rt, rec, "impressions"),
			Likes:           t.count(rt, rec, "likes"),
			Reposts:         t.count(rt, rec, "reposts"),
			Shares:          t.count(rt, rec, "shares"),
			Replies:         t.count(rt, rec, "replies"),
			Bookmarks:       t.count(rt, rec, "bookmarks"),
			NewFollows:      t.signedCount(rt, rec, "new_follows"),
			ProfileVisits:   t.count(rt, rec, "profile_visits"),
			URLClicks:       t.count(rt, rec, "url_clicks"),
			HashtagClicks:   t.count(rt, rec, "hashtag_clicks"),
			PermalinkClicks: t.count(rt, rec, "permalink_clicks"),
			DetailExpands:   t.count(rt, rec, "detail_expands"),
			HookType:        DetectHook(text),
			ContentType:     DetectContentType(text),
		}

		if text == "" && !hasPositiveMetric(post) {
			dropped++
			continue
		}
		if post.ID == "" {
			post.ID = fmt.Sprintf("%s#%d", source, i+1)
		}
		if ts, ok := ParseDate(t.aliases.Field(rt, rec, "timestamp")); ok {
			post.Timestamp = &ts
		}

		posts = append(posts, post)
	}

	if len(posts) == 0 {
		return nil, fmt.Errorf("content analytics: %d rows, none usable: %w", len(records), ErrMalformedSchema)
	}
	if dropped > 0 {
		t.logger.Debug("[transform] Dropped %d empty content rows from %s", dropped, source)
	}

	return BuildContentResult(posts, t.topLimit, t.now()), nil
}

// BuildContentResult derives the daily series, top posts, hook rollup and
// totals from a post list. Posts without a timestamp are counted under the
// day of now, flagged Undated unless dated posts share that day.
func BuildContentResult(posts []models.PostItem, topLimit int, now time.Time) *models.ContentResult {
	return &models.ContentResult{
		Posts:           posts,
		Daily:           dailyFromPosts(posts, now),
		TopPosts:        TopPosts(posts, topLimit),
		HookPerformance: RollupHooks(posts),
		Totals:          contentTotals(posts),
	}
}

func contentTotals(posts []models.PostItem) models.ContentTotals {
	totals := models.ContentTotals{Posts: len(posts)}
	for _, p := range posts {
		totals.Impressions += p.Impressions
		totals.Likes += p.Likes
		totals.Reposts += p.Reposts
		totals.Shares += p.Shares
		totals.Replies += p.Replies
		totals.Bookmarks += p.Bookmarks
		totals.NewFollows += p.NewFollows
		totals.ProfileVisits += p.ProfileVisits
		totals.URLClicks += p.URLClicks
	}
	return totals
}

func dailyFromPosts(posts []models.PostItem, now time.Time) []models.DailyMetric {
	today := dayOf(now)
	byDay := make(map[time.Time]*models.DailyMetric)
	for _, p := range posts {
		day := today
		if p.Timestamp != nil {
			day = dayOf(*p.Timestamp)
		}

		d, ok := byDay[day]
		if !ok {
			d = &models.DailyMetric{Date: day, Undated: true}
			byDay[day] = d
		}
		// A day is undated only while every post in it is.
		if p.Timestamp != nil {
			d.Undated = false
		}
		d.Impressions += p.Impressions
		d.Likes += p.Likes
		d.Reposts += p.Reposts
		d.Shares += p.Shares
		d.Replies += p.Replies
		d.Bookmarks += p.Bookmarks
		d.NewFollows += p.NewFollows
		d.ProfileVisits += p.ProfileVisits
		d.Engagements += p.Engagement()
	}

	daily := make([]models.DailyMetric, 0, len(byDay))
	for _, d := range byDay {
		daily = append(daily, *d)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})
	accumulateFollowers(daily)
	return daily
}

func hasPositiveMetric(p models.PostItem) bool {
	return p.Impressions > 0 || p.Likes > 0 || p.Reposts > 0 || p.Shares > 0 ||
		p.Replies > 0 || p.Bookmarks > 0 || p.NewFollows > 0 || p.ProfileVisits > 0 ||
		p.URLClicks > 0 || p.HashtagClicks > 0 || p.PermalinkClicks > 0 || p.DetailExpands > 0
}
