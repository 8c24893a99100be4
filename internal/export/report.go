package export

import (
	"encoding/json"
	"fmt"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
)

// Result is the outcome for one message.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	Label     string   `json:"label"`
	LabelID   string   `json:"label_id"`
	Listed    int      `json:"listed"`
	Extracted int      `json:"extracted"`
	Skipped   int      `json:"skipped"`
	Appended  int      `json:"appended"`
	DryRun    bool     `json:"dry_run,omitempty"`
	Results   []Result `json:"results"`
}

// SkippedIDs returns the ids of skipped messages in listing order.
func (r *Report) SkippedIDs() []string {
	var ids []string
	for _, res := range r.Results {
		if res.Status == StatusSkipped {
			ids = append(ids, res.ID)
		}
	}
	return ids
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data), nil
}

// processEach calls fn for every id in order and records its outcome. An
// error from fn marks the id skipped and never stops the loop.
func processEach(ids []string, fn func(id string) error) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		res := Result{ID: id, Status: StatusSuccess}
		if err := fn(id); err != nil {
			res.Status = StatusSkipped
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}
