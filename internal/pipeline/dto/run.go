package dto

// IngestionSummary is the output of one ingestion run, stored on the run history.
type IngestionSummary struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Alerts    int      `json:"alerts"`
	Symbols   []string `json:"symbols"`
}

// VerificationSummary is the output of one verification sweep.
type VerificationSummary struct {
	Pending  int     `json:"pending"`
	Verified int     `json:"verified"`
	Skipped  int     `json:"skipped"`
	Failed   int     `json:"failed"`
	Total    int64   `json:"total"`
	Correct  int64   `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
