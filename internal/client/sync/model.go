package sync

import "expense-tracker-go/internal/model"

// Reconciliation is the coordinator's view of the collection: records the
// server has confirmed and records still waiting to be pushed.
type Reconciliation struct {
	Confirmed []model.Expense `json:"confirmed"`
	Pending   []model.Expense `json:"pending"`
}

// All is the read boundary: confirmed records followed by pending ones.
func (r Reconciliation) All() []model.Expense {
	out := make([]model.Expense, 0, len(r.Confirmed)+len(r.Pending))
	out = append(out, r.Confirmed...)
	return append(out, r.Pending...)
}

func (r Reconciliation) clone() Reconciliation {
	return Reconciliation{
		Confirmed: cloneOrEmpty(r.Confirmed),
		Pending:   cloneOrEmpty(r.Pending),
	}
}

func cloneOrEmpty(items []model.Expense) []model.Expense {
	if items == nil {
		return []model.Expense{}
	}
	return model.CloneExpenses(items)
}

type ResultStatus string

const (
	ResultStatusApplied ResultStatus = "applied"
	ResultStatusFailed  ResultStatus = "failed"
	// ResultStatusDiscarded marks a record deleted locally while its push
	// was in flight; the server copy is removed again.
	ResultStatusDiscarded ResultStatus = "discarded"
)

type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
	BatchStatusFailed         BatchStatus = "failed"
)

type ItemResult struct {
	LocalID  string       `json:"localId"`
	ServerID string       `json:"serverId,omitempty"`
	Status   ResultStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
}

type BatchSummary struct {
	Total     int `json:"total"`
	Applied   int `json:"applied"`
	Failed    int `json:"failed"`
	Discarded int `json:"discarded"`
}

// Report describes one sync pass. Skipped is set when the coordinator was
// offline or unauthenticated and did nothing.
type Report struct {
	Status  BatchStatus  `json:"status"`
	Summary BatchSummary `json:"summary"`
	Results []ItemResult `json:"results"`
	Pulled  bool         `json:"pulled"`
	Skipped bool         `json:"skipped"`
}

func (r *Report) add(result ItemResult) {
	r.Results = append(r.Results, result)
	r.Summary.Total++
	switch result.Status {
	case ResultStatusApplied:
		r.Summary.Applied++
	case ResultStatusFailed:
		r.Summary.Failed++
	case ResultStatusDiscarded:
		r.Summary.Discarded++
	}
}

func deriveBatchStatus(summary BatchSummary, pulled bool) BatchStatus {
	if summary.Failed == 0 && pulled {
		return BatchStatusSuccess
	}
	if summary.Applied > 0 || summary.Discarded > 0 || pulled {
		return BatchStatusPartialSuccess
	}
	return BatchStatusFailed
}
