package models

// Status records how classification of one row concluded.
type Status string

const (
	StatusOK             Status = "ok"
	StatusUnclassifiable Status = "unclassifiable"
	StatusFailed         Status = "failed"
)

// Row is one data row of an input workbook. Index is 0-based over the
// data rows (header excluded) and stable for the lifetime of the file.
type Row struct {
	Index int
	Text  string
}

// RowResult is the recorded outcome for one classified row. Label is
// only meaningful when Status is StatusOK.
type RowResult struct {
	Status Status `json:"status"`
	Label  Label  `json:"label"`
}

// ScoreCell returns the value for the 情緒分析 column of the augmented sheet.
func (r RowResult) ScoreCell() string {
	switch r.Status {
	case StatusOK:
		return r.Label.Score()
	case StatusUnclassifiable:
		return "無法判斷"
	case StatusFailed:
		return "失敗"
	}
	return ""
}

// LabelCell returns the value for the 情緒標籤 column of the augmented sheet.
func (r RowResult) LabelCell() string {
	switch r.Status {
	case StatusOK:
		return r.Label.Display()
	case StatusUnclassifiable:
		return "無法判斷"
	case StatusFailed:
		return "失敗"
	}
	return ""
}
