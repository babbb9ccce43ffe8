package services

import (
	"fmt"
	"time"

	"social-analytics/models"
	"social-analytics/utils"
)

// DefaultTopPostsLimit is the top-posts length when none is configured.
const DefaultTopPostsLimit = 10

// FileResult is the typed output of one transformed file. Exactly one of
// Overview, Content or Video is set, matching Type.
type FileResult struct {
	Name     string
	Type     models.RecordType
	Rows     int
	Overview *models.OverviewResult
	Content  *models.ContentResult
	Video    *models.VideoResult
}

// Transformer turns one decoded and classified file into its typed result.
type Transformer struct {
	logger   *utils.Logger
	decoder  *Decoder
	aliases  *AliasTable
	topLimit int
	now      func() time.Time
}

// NewTransformer creates a Transformer using the built-in alias table.
func NewTransformer(logger *utils.Logger, topLimit int) *Transformer {
	if topLimit <= 0 {
		topLimit = DefaultTopPostsLimit
	}
	return &Transformer{
		logger:   logger,
		decoder:  NewDecoder(logger),
		aliases:  DefaultAliases(),
		topLimit: topLimit,
		now:      time.Now,
	}
}

// WithClock overrides the clock used for the "today" fallback bucket.
func (t *Transformer) WithClock(now func() time.Time) *Transformer {
	t.now = now
	return t
}

// WithAliases replaces the alias table.
func (t *Transformer) WithAliases(aliases *AliasTable) *Transformer {
	t.aliases = aliases
	return t
}

// TransformFile runs decode, classify and the matching transform for one file.
func (t *Transformer) TransformFile(f models.UploadFile) (*FileResult, error) {
	table, err := t.decoder.Decode(f.Content)
	if err != nil {
		return nil, err
	}

	recordType := Classify(table.Columns)
	t.logger.Debug("[transform] %s classified as %s", f.Name, recordType.Label())

	res := &FileResult{Name: f.Name, Type: recordType}
	switch recordType {
	case models.RecordAccountOverview:
		res.Overview, err = t.TransformOverview(table.Records)
		if err == nil {
			res.Rows = len(res.Overview.Daily)
		}
	case models.RecordContentAnalytics:
		res.Content, err = t.TransformContent(f.Name, table.Records)
		if err == nil {
			res.Rows = len(res.Content.Posts)
		}
	case models.RecordVideoAnalytics:
		res.Video, err = t.TransformVideo(table.Records)
		if err == nil {
			res.Rows = len(res.Video.Days)
		}
	default:
		return nil, fmt.Errorf("columns %v: %w", table.Columns, ErrUnrecognizedSchema)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Transformer) today() time.Time {
	return dayOf(t.now())
}

// count parses a pure count; negative values are clamped to 0.
func (t *Transformer) count(rt models.RecordType, rec models.RawRecord, field string) int64 {
	return max(0, ParseCount(t.aliases.Field(rt, rec, field)))
}

// signedCount parses a net change such as new follows, which may be negative.
func (t *Transformer) signedCount(rt models.RecordType, rec models.RawRecord, field string) int64 {
	return ParseCount(t.aliases.Field(rt, rec, field))
}

func (t *Transformer) decimal(rt models.RecordType, rec models.RawRecord, field string) float64 {
	return ParseDecimal(t.aliases.Field(rt, rec, field))
}
