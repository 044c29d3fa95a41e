package models

// Label is the sentiment assigned to one row of feedback.
// The numeric values match what the model is prompted to emit.
type Label int8

const (
	LabelPositive Label = 1
	LabelNeutral  Label = 0
	LabelNegative Label = -1
)

// ParseLabel maps a cleaned model reply to a Label.
// Anything outside the prompted token set is not a label.
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "1":
		return LabelPositive, true
	case "0":
		return LabelNeutral, true
	case "-1":
		return LabelNegative, true
	}
	return 0, false
}

// Score returns the numeric token written to the 情緒分析 column.
func (l Label) Score() string {
	switch l {
	case LabelPositive:
		return "1"
	case LabelNegative:
		return "-1"
	default:
		return "0"
	}
}

// Display returns the Chinese label written to the 情緒標籤 column.
func (l Label) Display() string {
	switch l {
	case LabelPositive:
		return "正向"
	case LabelNegative:
		return "負向"
	default:
		return "中性"
	}
}
