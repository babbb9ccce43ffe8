package services

import (
	"regexp"
	"strings"

	"social-analytics/models"
	"social-analytics/utils"
)

var (
	// whitespaceRegexp matches internal whitespace runs in column names
	whitespaceRegexp = regexp.MustCompile(`\s+`)
	// parenReplacer strips parentheses, e.g. "Watch Time (ms)" -> "watch time ms"
	parenReplacer = strings.NewReplacer("(", "", ")", "")
)

// titleMarkers flag a decorative first row such as "Account overview".
var titleMarkers = []string{"overview", "analytics", "summary"}

// Table is one decoded file: normalized column names plus rows in file order.
type Table struct {
	Columns     []string
	Records     []models.RawRecord
	HasTitleRow bool
}

// Decoder splits exported spreadsheet text into RawRecords.
type Decoder struct {
	logger *utils.Logger
}

// NewDecoder creates a Decoder with the given logger.
func NewDecoder(logger *utils.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode parses the full text of one file. Rows with fewer cells than the
// header are padded with empty strings; rows with no non-empty cell are skipped.
func (d *Decoder) Decode(text string) (*Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, ErrEmptyInput
	}

	table := &Table{}
	headerIdx := 0
	if first := parseLine(lines[0]); isTitleRow(first) {
		d.logger.Debug("[decoder] Skipping title row: %q", strings.TrimSpace(lines[0]))
		table.HasTitleRow = true
		headerIdx = 1
	}

	for _, cell := range parseLine(lines[headerIdx]) {
		table.Columns = append(table.Columns, NormalizeColumn(cell))
	}

	skipped := 0
	for _, line := range lines[headerIdx+1:] {
		cells := parseLine(line)
		if !hasContent(cells) {
			skipped++
			continue
		}

		rec := make(models.RawRecord, len(table.Columns))
		for i, col := range table.Columns {
			if col == "" {
				continue
			}
			if _, dup := rec[col]; dup {
				continue
			}
			if i < len(cells) {
				rec[col] = cells[i]
			} else {
				rec[col] = ""
			}
		}
		table.Records = append(table.Records, rec)
	}

	d.logger.Debug("[decoder] Decoded %d columns, %d rows (skipped %d blank)",
		len(table.Columns), len(table.Records), skipped)
	return table, nil
}

// NormalizeColumn trims, lowercases, strips parentheses and joins words with
// underscores.
func NormalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimSpace(parenReplacer.Replace(s))
	return whitespaceRegexp.ReplaceAllString(s, "_")
}

// parseLine splits one line on commas. A double quote toggles quoted mode,
// in which commas are literal; quote characters themselves are dropped.
func parseLine(line string) []string {
	line = strings.TrimRight(line, "\r")

	var cells []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(cells, strings.TrimSpace(current.String()))
}

func isTitleRow(cells []string) bool {
	nonEmpty := 0
	for _, c := range cells {
		if c != "" {
			nonEmpty++
		}
	}
	if len(cells) > 3 && nonEmpty <= 2 {
		return true
	}

	first := strings.ToLower(cells[0])
	for _, marker := range titleMarkers {
		if strings.Contains(first, marker) {
			return true
		}
	}
	return false
}

func hasContent(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}
