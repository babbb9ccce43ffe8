package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/models"
)

func TestDefaultAliases(t *testing.T) {
	table := DefaultAliases()

	assert.Equal(t, 1, table.Version)
	assert.Equal(t, []string{"reposts", "retweets"}, table.For(models.RecordAccountOverview, "reposts"))
	assert.Equal(t, []string{"post_id", "tweet_id", "id"}, table.For(models.RecordContentAnalytics, "id"))
	assert.Contains(t, table.For(models.RecordVideoAnalytics, "completion_rate"), "completion_rate_%")
	assert.Equal(t, []string{"unmapped"}, table.For(models.RecordVideoAnalytics, "unmapped"))
}

func TestParseAliasTable(t *testing.T) {
	table, err := ParseAliasTable([]byte(`
version: 2
schemas:
  content_analytics:
    text: [body]
`))
	require.NoError(t, err)
	assert.Equal(t, "hello", table.Field(models.RecordContentAnalytics, models.RawRecord{"body": "hello"}, "text"))

	_, err = ParseAliasTable([]byte("version: 1\n"))
	assert.Error(t, err)

	_, err = ParseAliasTable([]byte("schemas: [oops"))
	assert.Error(t, err)
}
