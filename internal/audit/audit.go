// Package audit checks trial configurations and attempt folders for data
// problems that would silently lower or drop a team's score.
package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/signalnine/scorekeeper/internal/runlog"
	"github.com/signalnine/scorekeeper/internal/runner"
	"github.com/signalnine/scorekeeper/internal/sensorcost"
	"github.com/signalnine/scorekeeper/internal/trialconfig"
)

var (
	ErrZeroMaxScore     = errors.New("order has maximum score 0")
	ErrMaxScoreMismatch = errors.New("trial log maximum score differs from config")
	ErrUnexpectedOrder  = errors.New("trial log reports an order missing from config")
)

// Defect is one problem found during an audit.
type Defect struct {
	Trial string
	Team  result.Team
	Path  string
	Err   error
}

func (d Defect) Error() string {
	where := d.Trial
	if d.Team != "" {
		where += "/" + string(d.Team)
	}
	return fmt.Sprintf("%s: %s: %v", where, d.Path, d.Err)
}

func (d Defect) Unwrap() error { return d.Err }

type Auditor struct {
	trialsDir string
	store     *logstore.Store
	workers   int
}

func New(trialsDir string, store *logstore.Store, workers int) *Auditor {
	return &Auditor{trialsDir: trialsDir, store: store, workers: workers}
}

// Run audits every trial config and every attempt of teams for trials. The
// defects come back in a stable order: by trial, config first, then team
// and attempt.
func (a *Auditor) Run(ctx context.Context, trials []string, teams []result.Team) ([]Defect, error) {
	sorted := append([]string(nil), trials...)
	sort.Strings(sorted)

	var jobs []runner.Job
	for _, trial := range sorted {
		path := filepath.Join(a.trialsDir, trial+".yaml")
		maxScores := make(map[string]int)
		configOK := false

		f, err := trialconfig.Read(path)
		if err != nil {
			jobs = append(jobs, fail(Defect{Trial: trial, Path: path, Err: err}))
		} else {
			infos, defects := f.OrderInfos()
			var found []error
			for _, d := range defects {
				found = append(found, Defect{Trial: trial, Path: path, Err: d})
			}
			for _, o := range infos {
				maxScores[o.OrderID] = o.MaxScore
				if o.MaxScore == 0 {
					found = append(found, Defect{Trial: trial, Path: path, Err: fmt.Errorf("%w: %s", ErrZeroMaxScore, o.OrderID)})
				}
			}
			configOK = len(infos) > 0
			if len(found) > 0 {
				jobs = append(jobs, fail(found...))
			}
		}

		for _, team := range teams {
			attempts, err := a.store.TrialAttempts(team, trial)
			if err != nil {
				return nil, err
			}
			for _, at := range attempts {
				jobs = append(jobs, a.attemptJob(trial, team, at, maxScores, configOK))
			}
		}
	}

	var defects []Defect
	for _, err := range runner.RunPool(ctx, a.workers, jobs) {
		for _, e := range flatten(err) {
			var d Defect
			if errors.As(e, &d) {
				defects = append(defects, d)
				continue
			}
			return defects, e
		}
	}
	return defects, nil
}

func fail(defects ...error) runner.Job {
	return func(context.Context) error { return errors.Join(defects...) }
}

func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func (a *Auditor) attemptJob(trial string, team result.Team, at logstore.Attempt, maxScores map[string]int, checkScores bool) runner.Job {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var found []error
		add := func(path string, err error) {
			found = append(found, Defect{Trial: trial, Team: team, Path: path, Err: err})
		}

		if _, err := sensorcost.ParseFile(at.CostPath()); err != nil {
			add(at.CostPath(), err)
		}

		rep, err := runlog.ParseFile(at.LogPath())
		if err != nil {
			add(at.LogPath(), err)
			return errors.Join(found...)
		}
		if err := rep.Check(); err != nil {
			add(at.LogPath(), err)
		}
		if _, err := rep.CompletionTime(); err != nil && !errors.Is(err, runlog.ErrTruncated) {
			add(at.LogPath(), err)
		}
		if checkScores {
			logged := rep.MaxScores()
			ids := make([]string, 0, len(logged))
			for id := range logged {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				want, ok := maxScores[id]
				switch {
				case !ok:
					add(at.LogPath(), fmt.Errorf("%w: %s", ErrUnexpectedOrder, id))
				case want != logged[id]:
					add(at.LogPath(), fmt.Errorf("%w: %s logged %d, config %d", ErrMaxScoreMismatch, id, logged[id], want))
				}
			}
		}
		return errors.Join(found...)
	}
}
