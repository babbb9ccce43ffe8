package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"social-analytics/metrics"
	"social-analytics/models"
	"social-analytics/utils"
)

// BatchPolicy decides what happens to a batch when some files fail.
type BatchPolicy string

const (
	// PolicyBestEffort merges every file that parsed and reports the rest.
	PolicyBestEffort BatchPolicy = "best_effort"
	// PolicyAtomic leaves the dataset untouched if any file fails.
	PolicyAtomic BatchPolicy = "atomic"
)

// FileSummary describes one successfully transformed file.
type FileSummary struct {
	Name string            `json:"name"`
	Type models.RecordType `json:"type"`
	Rows int               `json:"rows"`
}

// ImportResult is the outcome of one batch. Dataset is the dataset the
// caller should persist; on failure it is the dataset passed in.
type ImportResult struct {
	BatchID  string                `json:"batchId"`
	Dataset  *models.MergedDataset `json:"-"`
	Imported []FileSummary         `json:"imported"`
	Failed   []*FileError          `json:"-"`
}

// Importer runs the per-file pipeline over a batch and merges the results
// into the existing dataset.
type Importer struct {
	logger      *utils.Logger
	transformer *Transformer
	merger      *Merger
	recorder    metrics.Recorder
	policy      BatchPolicy
	now         func() time.Time
}

// NewImporter wires a Transformer and Merger with the given limits.
func NewImporter(logger *utils.Logger, recorder metrics.Recorder, policy BatchPolicy, topLimit int) *Importer {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	if policy == "" {
		policy = PolicyBestEffort
	}
	return &Importer{
		logger:      logger,
		transformer: NewTransformer(logger, topLimit),
		merger:      NewMerger(logger, topLimit),
		recorder:    recorder,
		policy:      policy,
		now:         time.Now,
	}
}

// WithClock overrides the clock for every stage.
func (im *Importer) WithClock(now func() time.Time) *Importer {
	im.now = now
	im.transformer.WithClock(now)
	im.merger.WithClock(now)
	return im
}

// Import transforms files in order and merges them after any data already
// in existing. Failed files never discard existing data.
func (im *Importer) Import(existing *models.MergedDataset, files []models.UploadFile) (*ImportResult, error) {
	start := time.Now()
	defer func() { im.recorder.ObserveImportDuration(time.Since(start)) }()

	res := &ImportResult{BatchID: uuid.NewString(), Dataset: existing}
	if len(files) == 0 {
		return res, fmt.Errorf("empty batch: %w", ErrNothingImported)
	}

	var (
		results []*FileResult
		errs    []error
	)
	for _, f := range files {
		fr, err := im.transformer.TransformFile(f)
		if err != nil {
			fe := &FileError{File: f.Name, Err: err}
			im.logger.Warn("[importer] Rejected %s: %v", f.Name, err)
			im.recorder.IncFileFailed(fe.Reason())
			res.Failed = append(res.Failed, fe)
			errs = append(errs, fe)
			continue
		}
		im.logger.Info("[importer] Parsed %s as %s (%d rows)", f.Name, fr.Type.Label(), fr.Rows)
		results = append(results, fr)
	}

	if len(errs) > 0 && im.policy == PolicyAtomic {
		im.logger.Warn("[importer] Batch %s aborted: %d of %d files failed", res.BatchID, len(errs), len(files))
		return res, fmt.Errorf("atomic import aborted: %w", errors.Join(errs...))
	}
	if len(results) == 0 {
		return res, errors.Join(append([]error{ErrNothingImported}, errs...)...)
	}

	for _, fr := range results {
		im.recorder.IncFileImported(string(fr.Type))
		im.recorder.ObserveRowsAccepted(string(fr.Type), fr.Rows)
		res.Imported = append(res.Imported, FileSummary{Name: fr.Name, Type: fr.Type, Rows: fr.Rows})
	}

	merged := im.merger.Merge(append(fileResultsOf(existing), results...))
	merged.BatchID = res.BatchID
	if existing != nil {
		merged.Files = append(merged.Files, existing.Files...)
	}
	for _, fr := range results {
		merged.Files = append(merged.Files, fr.Name)
	}
	res.Dataset = merged

	im.logger.Info("[importer] Batch %s: %d imported, %d failed, %d posts, %d series days",
		res.BatchID, len(results), len(errs), merged.Summary.TotalPosts, len(merged.Series))
	return res, nil
}

// BuildFromAPIPosts builds a dataset from posts already fetched from the
// remote API. The daily series covers the last days days ending today with
// zero-filled gaps; follower counts come from the profile since the API has
// no follower history.
func (im *Importer) BuildFromAPIPosts(posts []models.APIPost, profile models.APIProfile, days int) *models.MergedDataset {
	if days <= 0 {
		days = 30
	}
	today := dayOf(im.now())
	from := today.AddDate(0, 0, -(days - 1))

	series := make([]models.DailyMetric, days)
	for i := range series {
		series[i] = models.DailyMetric{Date: from.AddDate(0, 0, i), Followers: profile.Followers}
	}

	seen := utils.NewIDSet()
	items := make([]models.PostItem, 0, len(posts))
	for _, p := range posts {
		if !seen.Add(p.ID) {
			continue
		}
		item := postFromAPI(p)
		items = append(items, item)

		if item.Timestamp == nil || !inWindow(*item.Timestamp, from, today) {
			continue
		}
		d := &series[int(dayOf(*item.Timestamp).Sub(from).Hours()/24)]
		d.Impressions += item.Impressions
		d.Likes += item.Likes
		d.Reposts += item.Reposts
		d.Replies += item.Replies
		d.Bookmarks += item.Bookmarks
		d.Engagements += item.Engagement()
	}

	content := BuildContentResult(items, im.merger.topLimit, im.now())
	ds := &models.MergedDataset{
		BatchID:         uuid.NewString(),
		Files:           []string{"api:" + profile.Username},
		Content:         content,
		Series:          series,
		SeriesSource:    models.RecordContentAnalytics,
		TopPosts:        content.TopPosts,
		HookPerformance: content.HookPerformance,
		UpdatedAt:       im.now().UTC(),
	}
	ds.Summary = BuildSummary(ds)
	ds.Summary.CurrentFollowers = profile.Followers

	im.recorder.IncFileImported("api")
	im.recorder.ObserveRowsAccepted("api", len(items))
	im.logger.Info("[importer] Built dataset from %d API posts for @%s", len(items), profile.Username)
	return ds
}

func postFromAPI(p models.APIPost) models.PostItem {
	m := p.PublicMetrics
	item := models.PostItem{
		ID:          p.ID,
		Text:        p.Text,
		Impressions: m.ImpressionCount,
		Likes:       m.LikeCount,
		Reposts:     m.RetweetCount,
		Replies:     m.ReplyCount,
		Bookmarks:   m.BookmarkCount,
		HookType:    DetectHook(p.Text),
		ContentType: DetectContentType(p.Text),
	}
	if ts, ok := ParseDate(p.CreatedAt); ok {
		item.Timestamp = &ts
	}
	for _, ref := range p.ReferencedTweets {
		if ref.Type == "replied_to" {
			item.ContentType = models.ContentThread
			break
		}
	}
	return item
}
