package models

// RunReport is the write-once per-file summary produced after the last
// row of a workbook has been handled.
type RunReport struct {
	SourceFile     string `json:"source_file"`
	TotalRows      int    `json:"total_rows"`
	Positive       int    `json:"positive"`
	Neutral        int    `json:"neutral"`
	Negative       int    `json:"negative"`
	Unclassifiable int    `json:"unclassifiable"`
	Failed         int    `json:"failed"`
	Skipped        int    `json:"skipped"`
}

// Classified is the number of rows the model produced a label for.
func (r RunReport) Classified() int {
	return r.Positive + r.Neutral + r.Negative
}
