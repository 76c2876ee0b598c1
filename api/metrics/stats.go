package metrics

// RunStats 一次运行的统计，运行结束时打印
type RunStats struct {
	NumRequests  uint64 `json:"num_requests"`
	NumSucceeded uint64 `json:"num_succeeded"`
	NumFailed    uint64 `json:"num_failed"`
	NumRejected  uint64 `json:"num_rejected"`
	NumRecords   uint64 `json:"num_records"`
}
