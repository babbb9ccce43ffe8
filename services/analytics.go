package services

import (
	"fmt"
	"strings"
	"time"

	"social-analytics/metrics"
	"social-analytics/models"
	"social-analytics/utils"
)

// DefaultSummaryTopPosts is the top-post count shown on dashboard views.
const DefaultSummaryTopPosts = 5

// ParseTimeWindow validates a window string such as "7d" or "all".
func ParseTimeWindow(s string) (models.TimeWindow, error) {
	w := models.TimeWindow(strings.ToLower(strings.TrimSpace(s)))
	switch w {
	case models.Window7Days, models.Window30Days, models.Window90Days, models.WindowAll:
		return w, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidTimeWindow)
}

// Engine projects a MergedDataset onto a time window and computes trends.
type Engine struct {
	logger   *utils.Logger
	recorder metrics.Recorder
	topPosts int
	now      func() time.Time
}

// NewEngine creates an Engine showing topPosts posts per view.
func NewEngine(logger *utils.Logger, recorder metrics.Recorder, topPosts int) *Engine {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	if topPosts <= 0 {
		topPosts = DefaultSummaryTopPosts
	}
	return &Engine{logger: logger, recorder: recorder, topPosts: topPosts, now: time.Now}
}

// WithClock overrides the clock used when a dataset carries no dates at all.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// View filters ds to window, anchored at the most recent date in ds.
func (e *Engine) View(ds *models.MergedDataset, window models.TimeWindow) (*models.DashboardView, error) {
	if _, err := ParseTimeWindow(string(window)); err != nil {
		return nil, err
	}
	if ds == nil {
		ds = &models.MergedDataset{}
	}

	ref := e.ReferenceDate(ds)
	view := &models.DashboardView{
		Window:          window,
		ReferenceDate:   ref,
		SeriesSource:    ds.SeriesSource,
		HookPerformance: ds.HookPerformance,
	}

	days := window.Days()
	var from time.Time
	if days > 0 {
		from = ref.AddDate(0, 0, -(days - 1))
		view.From = &from
	}

	view.Series = filterDaily(ds.Series, from, ref)
	if ds.Video != nil {
		view.Video = filterVideo(ds.Video.Days, from, ref)
	}

	var posts []models.PostItem
	if ds.Content != nil {
		posts = filterPosts(ds.Content.Posts, from, ref)
		view.HookPerformance = RollupHooks(posts)
	}
	for _, p := range TopPosts(posts, e.topPosts) {
		view.TopPosts = append(view.TopPosts, models.TopPostView{
			PostItem:    p,
			DisplayDate: DisplayDate(p.Timestamp, ref),
			PostedAt:    postedAt(p.Timestamp),
		})
	}

	view.Summary = windowSummary(ds, view, posts)
	view.Trends = computeTrends(view.Series, ref, days)

	e.recorder.IncViewComputed(string(window))
	e.logger.Debug("[analytics] Window %s anchored at %s: %d days, %d posts",
		window, ref.Format("2006-01-02"), len(view.Series), len(posts))
	return view, nil
}

// ReferenceDate is the latest parsed day in the series, video days or post
// timestamps. Fallback buckets for undated rows are ignored. It falls back to
// today for a dataset without any dates.
func (e *Engine) ReferenceDate(ds *models.MergedDataset) time.Time {
	var ref time.Time
	later := func(t time.Time) {
		if d := dayOf(t); d.After(ref) {
			ref = d
		}
	}

	for _, d := range ds.Series {
		if !d.Undated {
			later(d.Date)
		}
	}
	if ds.Video != nil {
		for _, d := range ds.Video.Days {
			if !d.Undated {
				later(d.Date)
			}
		}
	}
	if ds.Content != nil {
		for _, p := range ds.Content.Posts {
			if p.Timestamp != nil {
				later(*p.Timestamp)
			}
		}
	}

	if ref.IsZero() {
		return dayOf(e.now())
	}
	return ref
}

func inWindow(t, from, ref time.Time) bool {
	d := dayOf(t)
	return !d.After(ref) && (from.IsZero() || !d.Before(from))
}

func filterDaily(in []models.DailyMetric, from, ref time.Time) []models.DailyMetric {
	out := make([]models.DailyMetric, 0, len(in))
	for _, d := range in {
		if inWindow(d.Date, from, ref) {
			out = append(out, d)
		}
	}
	return out
}

func filterVideo(in []models.VideoDayMetric, from, ref time.Time) []models.VideoDayMetric {
	out := make([]models.VideoDayMetric, 0, len(in))
	for _, d := range in {
		if inWindow(d.Date, from, ref) {
			out = append(out, d)
		}
	}
	return out
}

// filterPosts keeps posts dated inside the window and every undated post.
func filterPosts(in []models.PostItem, from, ref time.Time) []models.PostItem {
	out := make([]models.PostItem, 0, len(in))
	for _, p := range in {
		if p.Timestamp == nil || inWindow(*p.Timestamp, from, ref) {
			out = append(out, p)
		}
	}
	return out
}

// windowSummary recomputes the dataset summary from the windowed rows.
func windowSummary(ds *models.MergedDataset, view *models.DashboardView, posts []models.PostItem) models.Summary {
	windowed := &models.MergedDataset{
		Series:       view.Series,
		SeriesSource: ds.SeriesSource,
	}
	if ds.Overview != nil && ds.SeriesSource == models.RecordAccountOverview {
		windowed.Overview = BuildOverviewResult(view.Series)
	}
	if ds.Content != nil {
		windowed.Content = &models.ContentResult{Posts: posts, Totals: contentTotals(posts)}
	}
	if ds.Video != nil {
		windowed.Video = BuildVideoResult(view.Video)
	}

	s := BuildSummary(windowed)
	// Followers are cumulative over the whole history, not the window.
	s.CurrentFollowers = ds.Summary.CurrentFollowers
	return s
}

// DisplayDate renders a post date relative to ref.
func DisplayDate(ts *time.Time, ref time.Time) string {
	if ts == nil {
		return "Unknown"
	}
	days := int(dayOf(ref).Sub(dayOf(*ts)).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return ts.Format("Jan 2, 2006")
	}
}

func postedAt(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Format("3:04 PM")
}
