package models

// RawRecord holds one decoded spreadsheet row keyed by normalized column name.
// It only lives for the duration of a single file transform.
type RawRecord map[string]string

// RecordType identifies which export schema a file follows.
type RecordType string

const (
	RecordAccountOverview  RecordType = "account_overview"
	RecordContentAnalytics RecordType = "content_analytics"
	RecordVideoAnalytics   RecordType = "video_analytics"
	RecordUnknown          RecordType = "unknown"
)

// Label returns a human readable schema name.
func (t RecordType) Label() string {
	switch t {
	case RecordAccountOverview:
		return "Account overview"
	case RecordContentAnalytics:
		return "Content analytics"
	case RecordVideoAnalytics:
		return "Video analytics"
	default:
		return "Unknown"
	}
}

// UploadFile is one user-supplied export: file name plus its decoded text.
type UploadFile struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content"`
}
