package llmcall

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of calls a Recorder keeps.
const DefaultCapacity = 200

// Recorder keeps the most recent calls in memory. Older calls are dropped
// once capacity is reached. A nil *Recorder ignores every Record.
type Recorder struct {
	mu    sync.RWMutex
	calls []Call
	next  int
	full  bool
}

// NewRecorder creates a recorder holding up to capacity calls.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{calls: make([]Call, capacity)}
}

// Record stores a copy of call.
func (r *Recorder) Record(call *Call) {
	if r == nil || call == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[r.next] = *call
	r.next = (r.next + 1) % len(r.calls)
	if r.next == 0 {
		r.full = true
	}
}

// Len returns the number of calls held.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.calls)
	}
	return r.next
}

// QueryFilter specifies filters for listing calls.
type QueryFilter struct {
	Provider string
	Model    string
	Filename string
	Success  *bool
	After    *time.Time
	Before   *time.Time
	Limit    int
	Offset   int
}

func (f QueryFilter) match(c *Call) bool {
	if f.Provider != "" && c.Provider != f.Provider {
		return false
	}
	if f.Model != "" && c.Model != f.Model {
		return false
	}
	if f.Filename != "" && c.Filename != f.Filename {
		return false
	}
	if f.Success != nil && c.Success != *f.Success {
		return false
	}
	if f.After != nil && !c.Timestamp.After(*f.After) {
		return false
	}
	if f.Before != nil && !c.Timestamp.Before(*f.Before) {
		return false
	}
	return true
}

// List returns calls matching the filter, newest first.
func (r *Recorder) List(filter QueryFilter) []Call {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	n := r.next
	if r.full {
		n = len(r.calls)
	}
	result := make([]Call, 0, n)
	// Walk backwards from the most recent write.
	for i := 1; i <= n; i++ {
		c := &r.calls[(r.next-i+len(r.calls))%len(r.calls)]
		if filter.match(c) {
			result = append(result, *c)
		}
	}
	r.mu.RUnlock()

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []Call{}
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result
}

// Get returns the call with id, or nil.
func (r *Recorder) Get(id string) *Call {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.calls {
		if r.calls[i].ID == id && id != "" {
			c := r.calls[i]
			return &c
		}
	}
	return nil
}

// Summary aggregates the calls held by a recorder.
type Summary struct {
	Calls        int            `json:"calls" yaml:"calls"`
	Succeeded    int            `json:"succeeded" yaml:"succeeded"`
	Failed       int            `json:"failed" yaml:"failed"`
	InputTokens  int            `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int            `json:"output_tokens" yaml:"output_tokens"`
	AvgLatencyMs int64          `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	ByErrorKind  map[string]int `json:"by_error_kind,omitempty" yaml:"by_error_kind,omitempty"`
}

// Summarize aggregates every held call.
func (r *Recorder) Summarize() Summary {
	var s Summary
	calls := r.List(QueryFilter{})
	var latency int64
	for _, c := range calls {
		s.Calls++
		s.InputTokens += c.InputTokens
		s.OutputTokens += c.OutputTokens
		latency += c.LatencyMs
		if c.Success {
			s.Succeeded++
			continue
		}
		s.Failed++
		if c.ErrorKind != "" {
			if s.ByErrorKind == nil {
				s.ByErrorKind = make(map[string]int)
			}
			s.ByErrorKind[c.ErrorKind]++
		}
	}
	if s.Calls > 0 {
		s.AvgLatencyMs = latency / int64(s.Calls)
	}
	return s
}
