package riskscan

const (
	WorkflowName   = "risk_scan"
	ActivityCohort = "risk_scan_cohort"
	ActivityChunk  = "risk_scan_chunk"
)

type ScanInput struct {
	Dispatch bool `json:"dispatch"`
	// BatchSize overrides the worker's configured chunk size when positive.
	BatchSize int `json:"batchSize,omitempty"`
}

type CohortResult struct {
	UserIDs   []string `json:"userIds"`
	BatchSize int      `json:"batchSize"`
}

type ChunkInput struct {
	UserIDs  []string `json:"userIds"`
	Dispatch bool     `json:"dispatch"`
}

type ChunkResult struct {
	Scored           int            `json:"scored"`
	Failed           int            `json:"failed"`
	Dispatched       int            `json:"dispatched"`
	DispatchFailures int            `json:"dispatchFailures"`
	Levels           map[string]int `json:"levels"`
}

type ScanSummary struct {
	Learners int `json:"learners"`
	Chunks   int `json:"chunks"`
	ChunkResult
}

func (s *ScanSummary) add(r ChunkResult) {
	s.Chunks++
	s.Scored += r.Scored
	s.Failed += r.Failed
	s.Dispatched += r.Dispatched
	s.DispatchFailures += r.DispatchFailures
	if s.Levels == nil {
		s.Levels = map[string]int{}
	}
	for k, v := range r.Levels {
		s.Levels[k] += v
	}
}

// Chunks splits ids into consecutive slices of at most size.
func Chunks(ids []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}
