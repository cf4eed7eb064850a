package mcp

// TrendReport is the build_trend tool response.
type TrendReport struct {
	URL     string `json:"url"`
	JobKey  string `json:"job_key"`
	Number  int    `json:"number"`
	Outcome string `json:"outcome"`

	// PreviousOutcome and PreviousNumber describe the build the trend was
	// computed against; absent when the build has no comparable history.
	PreviousOutcome string `json:"previous_outcome,omitempty"`
	PreviousNumber  int    `json:"previous_number,omitempty"`

	Trend       string `json:"trend"`
	Description string `json:"description"`
}

// HistoryEntry is one build in a job_trend_history response.
type HistoryEntry struct {
	Number     int    `json:"number"`
	URL        string `json:"url"`
	Outcome    string `json:"outcome"`
	Trend      string `json:"trend"`
	RecordedAt string `json:"recorded_at"`
}

// HistoryReport is the job_trend_history tool response.
type HistoryReport struct {
	JobKey string         `json:"job_key"`
	Builds []HistoryEntry `json:"builds"`
}
