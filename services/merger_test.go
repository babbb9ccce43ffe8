package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/models"
)

func newTestMerger() *Merger {
	return NewMerger(newTestLogger(), DefaultTopPostsLimit).WithClock(clock)
}

func contentFile(name string, ids []string, label string) *FileResult {
	posts := make([]models.PostItem, 0, len(ids))
	for i, id := range ids {
		ts := day(2024, 1, 1+i)
		posts = append(posts, models.PostItem{
			ID:          id,
			Text:        fmt.Sprintf("%s post %s", label, id),
			Timestamp:   &ts,
			Impressions: int64(10 * (i + 1)),
			Likes:       1,
		})
	}
	return &FileResult{
		Name:    name,
		Type:    models.RecordContentAnalytics,
		Content: BuildContentResult(posts, DefaultTopPostsLimit, fixedNow),
	}
}

func TestMerge_DeduplicatesPostsFirstSeenWins(t *testing.T) {
	a := contentFile("a.csv", []string{"1", "2", "3", "4", "5"}, "A")
	b := contentFile("b.csv", []string{"1", "2", "3", "6", "7"}, "B")

	ds := newTestMerger().Merge([]*FileResult{a, b})
	require.NotNil(t, ds.Content)

	posts := ds.Content.Posts
	assert.Len(t, posts, 5+5-3)

	byID := make(map[string]models.PostItem)
	for _, p := range posts {
		byID[p.ID] = p
	}
	for _, id := range []string{"1", "2", "3"} {
		assert.Equal(t, "A post "+id, byID[id].Text)
	}
	assert.Equal(t, 7, ds.Summary.TotalPosts)
}

func TestMerge_SeriesPrefersOverview(t *testing.T) {
	tr := newTestTransformer()
	overview, err := tr.TransformFile(models.UploadFile{Name: "o.csv", Content: overviewCSV})
	require.NoError(t, err)
	content := contentFile("c.csv", []string{"x", "y"}, "C")

	m := newTestMerger()

	ds := m.Merge([]*FileResult{content, overview})
	assert.Equal(t, models.RecordAccountOverview, ds.SeriesSource)
	assert.Len(t, ds.Series, 3)

	ds = m.Merge([]*FileResult{content})
	assert.Equal(t, models.RecordContentAnalytics, ds.SeriesSource)
	assert.Len(t, ds.Series, 2)

	empty := &FileResult{Type: models.RecordAccountOverview, Overview: &models.OverviewResult{}}
	ds = m.Merge([]*FileResult{empty, content})
	assert.Equal(t, models.RecordContentAnalytics, ds.SeriesSource)
}

func TestMerge_OverviewTotalsWin(t *testing.T) {
	tr := newTestTransformer()
	overview, err := tr.TransformFile(models.UploadFile{Name: "o.csv", Content: overviewCSV})
	require.NoError(t, err)
	content := contentFile("c.csv", []string{"x", "y"}, "C")

	ds := newTestMerger().Merge([]*FileResult{content, overview})

	assert.Equal(t, int64(600), ds.Summary.TotalImpressions)
	assert.Equal(t, int64(60), ds.Summary.TotalLikes)
	assert.Equal(t, 2, ds.Summary.TotalPosts)
	assert.Equal(t, int64(7), ds.Summary.CurrentFollowers)
	assert.Equal(t, int64(7), ds.Summary.NetFollowerChange)
	assert.Equal(t, 10.0, ds.Summary.EngagementRate)
}

func TestMerge_ConcatenatesOverviewFiles(t *testing.T) {
	first := &FileResult{Type: models.RecordAccountOverview, Overview: BuildOverviewResult([]models.DailyMetric{
		{Date: day(2024, 2, 1), Impressions: 5, NewFollows: 2},
	})}
	second := &FileResult{Type: models.RecordAccountOverview, Overview: BuildOverviewResult([]models.DailyMetric{
		{Date: day(2024, 1, 31), Impressions: 7, NewFollows: 1},
	})}

	ds := newTestMerger().Merge([]*FileResult{first, second})
	require.Len(t, ds.Series, 2)
	assert.Equal(t, day(2024, 1, 31), ds.Series[0].Date)
	assert.Equal(t, int64(3), ds.Series[1].Followers)
	assert.Equal(t, int64(12), ds.Summary.TotalImpressions)
}

func TestMerge_VideoTotalsFeedSummary(t *testing.T) {
	tr := newTestTransformer()
	video, err := tr.TransformFile(models.UploadFile{Name: "v.csv", Content: videoCSV})
	require.NoError(t, err)

	ds := newTestMerger().Merge([]*FileResult{video})
	assert.Equal(t, int64(400), ds.Summary.VideoViews)
	assert.Equal(t, int64(6), ds.Summary.WatchTimeMinutes)
	assert.Empty(t, ds.Series)
	assert.Equal(t, fixedNow, ds.UpdatedAt.In(time.UTC))
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 0.0, EngagementRate(5, 5, 5, 0))
	assert.Equal(t, 15.0, EngagementRate(10, 3, 2, 100))
	assert.Equal(t, 33.3, EngagementRate(1, 0, 0, 3))
}
