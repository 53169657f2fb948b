// Package metrics provides optional Prometheus instrumentation for the
// structural operations of an xlist.Tree: node allocations and frees,
// overflow splits, underflow merges and redistributes, and root collapses.
//
// Grounded on ssargent-freyjadb/pkg/api/metrics.go's Metrics struct (a
// promauto-registered set of counters/gauges, constructed once and handed to
// the code that drives the counted operations).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts structural Tree operations. A nil *Recorder is a valid,
// inert receiver for every method here, so a Tree that was never given a
// Recorder (the default) pays no branching cost beyond a nil check.
type Recorder struct {
	allocations   prometheus.Counter
	frees         prometheus.Counter
	splits        prometheus.Counter
	merges        prometheus.Counter
	redistributes prometheus.Counter
	rootCollapses prometheus.Counter
}

// NewRecorder registers a fresh set of counters on reg and returns a
// Recorder backed by them. Pass prometheus.NewRegistry() for an isolated
// registry (e.g. in tests), or prometheus.DefaultRegisterer to expose the
// counters on the process-wide /metrics endpoint.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		reg.MustRegister(c)
		return c
	}
	return &Recorder{
		allocations:   counter("xlist_node_allocations_total", "Internal nodes allocated."),
		frees:         counter("xlist_node_frees_total", "Internal nodes returned to the allocator."),
		splits:        counter("xlist_node_splits_total", "Overflow splits performed."),
		merges:        counter("xlist_node_merges_total", "Underflow merges performed."),
		redistributes: counter("xlist_node_redistributes_total", "Underflow redistributions performed."),
		rootCollapses: counter("xlist_root_collapses_total", "Root collapses performed."),
	}
}

func (r *Recorder) Allocation() {
	if r != nil {
		r.allocations.Inc()
	}
}

func (r *Recorder) Free() {
	if r != nil {
		r.frees.Inc()
	}
}

func (r *Recorder) Split() {
	if r != nil {
		r.splits.Inc()
	}
}

func (r *Recorder) Merge() {
	if r != nil {
		r.merges.Inc()
	}
}

func (r *Recorder) Redistribute() {
	if r != nil {
		r.redistributes.Inc()
	}
}

func (r *Recorder) RootCollapse() {
	if r != nil {
		r.rootCollapses.Inc()
	}
}
