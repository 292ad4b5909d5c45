// Package report records the outcome of payout runs on disk.
package report

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Asad272002/TaskWiser-V2/internal/chain"
	"github.com/Asad272002/TaskWiser-V2/internal/fileutil"
	"github.com/Asad272002/TaskWiser-V2/internal/notify"
	"github.com/Asad272002/TaskWiser-V2/internal/payout"
)

// File names inside a run directory.
const (
	PayoutsFile = "payouts.csv"
	SummaryFile = "summary.json"
)

// Row is one recipient line of a run report.
type Row struct {
	RunID   string `csv:"run_id" json:"-"`
	Index   int    `csv:"index" json:"index"`
	Address string `csv:"address" json:"address"`
	Amount  string `csv:"amount" json:"amount"`
	Token   string `csv:"token" json:"token"`
	Status  string `csv:"status" json:"status"`
	TxHash  string `csv:"tx_hash" json:"tx_hash,omitempty"`
	TxURL   string `csv:"tx_url" json:"tx_url,omitempty"`
	Message string `csv:"message" json:"message,omitempty"`
}

// Report is the outcome of one payout run.
type Report struct {
	RunID      string    `json:"run_id"`
	Network    string    `json:"network"`
	ChainID    string    `json:"chain_id"`
	Account    string    `json:"account"`
	Token      string    `json:"token"`
	State      string    `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Confirmed  int       `json:"confirmed"`
	TxHashes   []string  `json:"tx_hashes"`
	Error      string    `json:"error,omitempty"`
	Rows       []Row     `json:"rows"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Build assembles a report from the executor's final snapshot.
func Build(runID string, network chain.Network, account string, started time.Time, snap payout.Snapshot, runErr error) *Report {
	rows := make([]Row, len(snap.Targets))
	for i, t := range snap.Targets {
		st := payout.Status{}
		if i < len(snap.Statuses) {
			st = snap.Statuses[i]
		}
		rows[i] = Row{
			RunID:   runID,
			Index:   i + 1,
			Address: t.Address,
			Amount:  t.Amount,
			Token:   snap.Token.Symbol,
			Status:  st.Kind.String(),
			TxHash:  st.TxHash,
			TxURL:   network.TxURL(st.TxHash),
			Message: st.Message,
		}
	}

	r := &Report{
		RunID:      runID,
		Network:    network.Name,
		ChainID:    network.ChainID,
		Account:    account,
		Token:      snap.Token.Symbol,
		State:      snap.State.String(),
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		Total:      len(snap.Targets),
		Confirmed:  lo.CountBy(rows, func(r Row) bool { return r.Status == payout.StatusSuccess.String() }),
		TxHashes:   append([]string{}, snap.SuccessHashes...),
		Rows:       rows,
	}
	if runErr != nil {
		r.Error = snap.LastError
		if r.Error == "" {
			r.Error = runErr.Error()
		}
	}
	return r
}

// Completed reports whether every transfer confirmed.
func (r *Report) Completed() bool {
	return r.Error == "" && r.Total > 0 && r.Confirmed == r.Total
}

// Summary converts the report into a notification payload.
func (r *Report) Summary() notify.Summary {
	return notify.Summary{
		RunID:     r.RunID,
		Network:   r.Network,
		Token:     r.Token,
		Account:   r.Account,
		Completed: r.Completed(),
		Total:     r.Total,
		Confirmed: r.Confirmed,
		TxHashes:  r.TxHashes,
		TxURLs: lo.FilterMap(r.Rows, func(row Row, _ int) (string, bool) {
			return row.TxURL, row.TxURL != ""
		}),
		Error: r.Error,
	}
}

// Dir is where a run's files live under home.
func Dir(home, runID string) string {
	return filepath.Join(home, "reports", runID)
}

// Save writes payouts.csv and summary.json into dir.
func (r *Report) Save(dir string) error {
	if err := r.WriteCSV(filepath.Join(dir, PayoutsFile)); err != nil {
		return err
	}
	return r.WriteJSON(filepath.Join(dir, SummaryFile))
}

// WriteCSV writes the per-recipient rows.
func (r *Report) WriteCSV(path string) error {
	return fileutil.WriteAtomic(path, 0o600, func(w io.Writer) error {
		return gocsv.Marshal(r.Rows, w)
	})
}

// WriteJSON writes the whole report.
func (r *Report) WriteJSON(path string) error {
	return fileutil.WriteAtomic(path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(r)
	})
}

// Load reads a report saved by Save.
func Load(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, SummaryFile)) //nolint:gosec // path under the reports directory
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	for i := range r.Rows {
		r.Rows[i].RunID = r.RunID
	}
	return &r, nil
}

// List returns the run ids stored under home, newest first.
func List(home string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(home, "reports"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type run struct {
		id  string
		mod time.Time
	}
	var runs []run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		runs = append(runs, run{id: e.Name(), mod: info.ModTime()})
	}
	slices.SortFunc(runs, func(a, b run) int { return b.mod.Compare(a.mod) })
	return lo.Map(runs, func(r run, _ int) string { return r.id }), nil
}
