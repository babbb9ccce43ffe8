package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/models"
)

func TestClassify_ReferenceSamples(t *testing.T) {
	d := NewDecoder(newTestLogger())

	tests := []struct {
		name string
		text string
		want models.RecordType
	}{
		{"overview", overviewCSV, models.RecordAccountOverview},
		{"content", contentCSV, models.RecordContentAnalytics},
		{"video", videoCSV, models.RecordVideoAnalytics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := d.Decode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Classify(table.Columns))
		})
	}
}

func TestClassify_Columns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    models.RecordType
	}{
		{"empty", nil, models.RecordUnknown},
		{"views with watch column", []string{"day", "views", "watched_to_end"}, models.RecordVideoAnalytics},
		{"views alone", []string{"date", "views"}, models.RecordUnknown},
		{"video views only", []string{"date", "video_views"}, models.RecordVideoAnalytics},
		{"overview carrying video views", []string{"date", "impressions", "video_views"}, models.RecordAccountOverview},
		{"tweet column", []string{"tweet_permalink", "impressions"}, models.RecordContentAnalytics},
		{"date without metrics", []string{"date", "notes"}, models.RecordUnknown},
		{"metrics without date", []string{"day", "impressions"}, models.RecordUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.columns))
		})
	}
}
