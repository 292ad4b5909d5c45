// Package metrics provides application-level metrics collection.
// Counters are atomic and process-local; `taskwiser status` prints them.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Provider RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Payout run metrics
	runsStarted   atomic.Int64
	runsCompleted atomic.Int64
	runsStopped   atomic.Int64

	// Per-transfer metrics
	transfersSubmitted atomic.Int64
	transfersConfirmed atomic.Int64
	transfersFailed    atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records a provider call with its duration and success status.
func (m *Metrics) RecordRPCCall(duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}
}

// RecordRunStarted records the start of a payout run.
func (m *Metrics) RecordRunStarted() {
	m.runsStarted.Add(1)
}

// RecordRunFinished records a run outcome.
func (m *Metrics) RecordRunFinished(completed bool) {
	if completed {
		m.runsCompleted.Add(1)
		return
	}
	m.runsStopped.Add(1)
}

// RecordTransferSubmitted records a transaction handed to the wallet.
func (m *Metrics) RecordTransferSubmitted() {
	m.transfersSubmitted.Add(1)
}

// RecordTransferResult records a transfer reaching a terminal status.
func (m *Metrics) RecordTransferResult(err error) {
	if err != nil {
		m.transfersFailed.Add(1)
		return
	}
	m.transfersConfirmed.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal      int64 `json:"rpc_calls_total"`
	RPCErrorsTotal     int64 `json:"rpc_errors_total"`
	RPCLatencyNanos    int64 `json:"rpc_latency_nanos"`
	RunsStarted        int64 `json:"runs_started"`
	RunsCompleted      int64 `json:"runs_completed"`
	RunsStopped        int64 `json:"runs_stopped"`
	TransfersSubmitted int64 `json:"transfers_submitted"`
	TransfersConfirmed int64 `json:"transfers_confirmed"`
	TransfersFailed    int64 `json:"transfers_failed"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:      m.rpcCallsTotal.Load(),
		RPCErrorsTotal:     m.rpcErrorsTotal.Load(),
		RPCLatencyNanos:    m.rpcLatencyNanos.Load(),
		RunsStarted:        m.runsStarted.Load(),
		RunsCompleted:      m.runsCompleted.Load(),
		RunsStopped:        m.runsStopped.Load(),
		TransfersSubmitted: m.transfersSubmitted.Load(),
		TransfersConfirmed: m.transfersConfirmed.Load(),
		TransfersFailed:    m.transfersFailed.Load(),
	}
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.rpcLatencyNanos.Load()) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.runsStarted.Store(0)
	m.runsCompleted.Store(0)
	m.runsStopped.Store(0)
	m.transfersSubmitted.Store(0)
	m.transfersConfirmed.Store(0)
	m.transfersFailed.Store(0)
}
