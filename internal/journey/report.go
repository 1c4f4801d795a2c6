package journey

import "fmt"

// Outcome is the per-record result of one dispatch attempt. A failed
// attempt leaves the booking due; it is retried on the next scheduled run.
type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeFailed    Outcome = "failed"
	OutcomeWouldSend Outcome = "would_send"
)

// Result records what happened to one booking in a batch.
type Result struct {
	BookingID string  `json:"booking_id"`
	Email     string  `json:"email"`
	Outcome   Outcome `json:"status"`
	Detail    string  `json:"detail,omitempty"`
	Fields    Fields  `json:"fields,omitempty"` // populated on dry runs
}

// BatchReport aggregates one ProcessBatch run.
type BatchReport struct {
	Kind      Kind     `json:"kind"`
	DryRun    bool     `json:"dry_run"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	WouldSend int      `json:"would_send"`
	Results   []Result `json:"results"`
}

func (r *BatchReport) add(res Result) {
	switch res.Outcome {
	case OutcomeSent:
		r.Sent++
	case OutcomeFailed:
		r.Failed++
	case OutcomeWouldSend:
		r.WouldSend++
	}
	r.Results = append(r.Results, res)
}

// Summary returns a one-line summary for logs.
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("kind=%s sent=%d failed=%d would_send=%d",
		r.Kind, r.Sent, r.Failed, r.WouldSend)
}
