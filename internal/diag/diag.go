// Package diag carries the non-fatal messages produced while normalizing
// content: skipped objects, substituted defaults and malformed fields.
package diag

import (
	"fmt"
	"sync"

	"craftexport.ai/internal/logging"
)

type Kind string

const (
	// KindSkip: the object was dropped from the output.
	KindSkip Kind = "skip"
	// KindSubstitute: a default or sentinel stands in for missing data.
	KindSubstitute Kind = "substitute"
	// KindMalformed: a field did not match the expected shape; its object was dropped.
	KindMalformed Kind = "malformed"
	KindNote      Kind = "note"
)

type Diagnostic struct {
	Stage   string `json:"stage"`
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Subject == "" {
		return fmt.Sprintf("[%s/%s] %s", d.Stage, d.Kind, d.Message)
	}
	return fmt.Sprintf("[%s/%s] %s: %s", d.Stage, d.Kind, d.Subject, d.Message)
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Report(d Diagnostic)
}

type nop struct{}

func (nop) Report(Diagnostic) {}

// Nop returns the default, silent sink.
func Nop() Sink { return nop{} }

// Reporter is a stage-bound helper over a Sink.
type Reporter struct {
	Sink  Sink
	Stage string
}

func (r Reporter) Emit(kind Kind, subject, format string, args ...any) {
	if r.Sink == nil {
		return
	}
	r.Sink.Report(Diagnostic{
		Stage:   r.Stage,
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// Recorder keeps every diagnostic in memory.
type Recorder struct {
	mu  sync.Mutex
	all []Diagnostic
}

func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	r.all = append(r.all, d)
	r.mu.Unlock()
}

func (r *Recorder) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.all))
	copy(out, r.all)
	return out
}

func (r *Recorder) Filter(stage string, kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.All() {
		if (stage == "" || d.Stage == stage) && (kind == "" || d.Kind == kind) {
			out = append(out, d)
		}
	}
	return out
}

// Counts tallies diagnostics by kind.
func (r *Recorder) Counts() map[Kind]int {
	out := map[Kind]int{}
	for _, d := range r.All() {
		out[d.Kind]++
	}
	return out
}

// LogSink forwards diagnostics to a logger. Malformed input is logged at
// error level, everything else at debug so the default output stays quiet.
type LogSink struct {
	Logger logging.Logger
}

func (s LogSink) Report(d Diagnostic) {
	kv := []any{"stage", d.Stage, "kind", string(d.Kind)}
	if d.Subject != "" {
		kv = append(kv, "subject", d.Subject)
	}
	if d.Kind == KindMalformed {
		s.Logger.Error(d.Message, kv...)
		return
	}
	s.Logger.Debug(d.Message, kv...)
}

type multi []Sink

func (m multi) Report(d Diagnostic) {
	for _, s := range m {
		s.Report(d)
	}
}

// Multi fans a diagnostic out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
