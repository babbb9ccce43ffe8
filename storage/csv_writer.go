package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"social-analytics/models"
)

var (
	seriesHeader = []string{
		"date", "impressions", "likes", "engagements", "reposts", "shares", "replies",
		"bookmarks", "new_follows", "unfollows", "profile_visits", "followers",
	}
	postsHeader = []string{
		"post_id", "date", "text", "impressions", "likes", "reposts", "replies",
		"bookmarks", "hook_type", "content_type",
	}
)

// CSVWriter writes one export table to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// NewSeriesWriter creates a CSV file for a daily series.
func NewSeriesWriter(path string) (*CSVWriter, error) {
	return NewCSVWriter(path, seriesHeader)
}

// NewPostsWriter creates a CSV file for ranked posts.
func NewPostsWriter(path string) (*CSVWriter, error) {
	return NewCSVWriter(path, postsHeader)
}

// WriteSeries appends one row per day.
func (c *CSVWriter) WriteSeries(days []models.DailyMetric) error {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			itoa(d.Impressions),
			itoa(d.Likes),
			itoa(d.Engagements),
			itoa(d.Reposts),
			itoa(d.Shares),
			itoa(d.Replies),
			itoa(d.Bookmarks),
			itoa(d.NewFollows),
			itoa(d.Unfollows),
			itoa(d.ProfileVisits),
			itoa(d.Followers),
		})
	}
	return c.writeRows(rows)
}

// WritePosts appends one row per post.
func (c *CSVWriter) WritePosts(posts []models.TopPostView) error {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		date := ""
		if p.Timestamp != nil {
			date = p.Timestamp.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			p.ID,
			date,
			p.Text,
			itoa(p.Impressions),
			itoa(p.Likes),
			itoa(p.Reposts),
			itoa(p.Replies),
			itoa(p.Bookmarks),
			string(p.HookType),
			string(p.ContentType),
		})
	}
	return c.writeRows(rows)
}

func (c *CSVWriter) writeRows(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, reporting either failure.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return errors.Join(c.writer.Error(), c.file.Close())
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
