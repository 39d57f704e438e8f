package report

import (
	"fmt"
	"sort"
	"sync"
)

// Report is the error-logger collaborator of spec §5/§6: it receives
// Diagnostic records from the tokenizer, at most once per distinct
// diagnostic, and must tolerate concurrent calls from different workers
// (spec §5, "the logger is expected to handle concurrent calls from
// different workers").
type Report struct {
	mu    sync.Mutex
	seen  map[string]bool
	diags []Diagnostic
}

// Add records a diagnostic, deduplicating on (id, primary position,
// message). Safe for concurrent use.
func (r *Report) Add(d Diagnostic) {
	key := fmt.Sprintf("%s|%v|%s", d.id, d.Primary(), d.message)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen == nil {
		r.seen = make(map[string]bool)
	}
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.diags = append(r.diags, d)
}

// HasErrors reports whether any diagnostic at [Error] severity was
// recorded.
func (r *Report) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.diags {
		if d.severity == Error {
			return true
		}
	}
	return false
}

// All returns a snapshot of every diagnostic recorded so far, sorted by
// primary source location (file, then line, then column), with ties
// broken by insertion order.
func (r *Report) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Primary(), out[j].Primary()
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// Len returns the number of distinct diagnostics recorded so far.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.diags)
}
