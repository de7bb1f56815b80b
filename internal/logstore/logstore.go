// Package logstore locates the run folders the competition harness leaves
// behind: <logs>/<team>/<trial>_<n>/ holding trial_log.txt and
// sensor_cost.txt.
package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/signalnine/scorekeeper/internal/result"
)

const (
	LogFile  = "trial_log.txt"
	CostFile = "sensor_cost.txt"

	// bestPrefix marks folders holding copies of already selected runs.
	bestPrefix = "best_"
)

// Attempt is one run folder of a team.
type Attempt struct {
	Dir   string
	Trial string
	Index int
}

func (a Attempt) Name() string     { return filepath.Base(a.Dir) }
func (a Attempt) LogPath() string  { return filepath.Join(a.Dir, LogFile) }
func (a Attempt) CostPath() string { return filepath.Join(a.Dir, CostFile) }

// ParseAttempt interprets dir as an attempt folder named <trial>_<n> with a
// non-negative integer n.
func ParseAttempt(dir string) (Attempt, bool) {
	name := filepath.Base(dir)
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return Attempt{}, false
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < 0 {
		return Attempt{}, false
	}
	return Attempt{Dir: dir, Trial: name[:i], Index: n}, true
}

// Store reads a logs directory.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// TeamDir returns the folder holding the attempts of team.
func (s *Store) TeamDir(team result.Team) string {
	return filepath.Join(s.dir, string(team))
}

// Teams lists the team folders of the logs directory in name order.
func (s *Store) Teams() ([]result.Team, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	var teams []result.Team
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		teams = append(teams, result.Team(e.Name()))
	}
	return teams, nil
}

// Attempts lists every attempt folder of team ordered by trial name, then
// attempt index. A team without a folder has no attempts.
func (s *Store) Attempts(team result.Team) ([]Attempt, error) {
	entries, err := os.ReadDir(s.TeamDir(team))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing attempts of %s: %w", team, err)
	}
	var attempts []Attempt
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if a, ok := ParseAttempt(filepath.Join(s.TeamDir(team), e.Name())); ok {
			attempts = append(attempts, a)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		if attempts[i].Trial != attempts[j].Trial {
			return attempts[i].Trial < attempts[j].Trial
		}
		return attempts[i].Index < attempts[j].Index
	})
	return attempts, nil
}

// TrialAttempts lists the attempts of team for trial in index order.
func (s *Store) TrialAttempts(team result.Team, trial string) ([]Attempt, error) {
	all, err := s.Attempts(team)
	if err != nil {
		return nil, err
	}
	var out []Attempt
	for _, a := range all {
		if a.Trial == trial {
			out = append(out, a)
		}
	}
	return out, nil
}

// Trials collects the distinct trial names attempted by any of teams.
func (s *Store) Trials(teams []result.Team) ([]string, error) {
	seen := make(map[string]struct{})
	for _, team := range teams {
		attempts, err := s.Attempts(team)
		if err != nil {
			return nil, err
		}
		for _, a := range attempts {
			if strings.HasPrefix(a.Trial, bestPrefix) {
				continue
			}
			seen[a.Trial] = struct{}{}
		}
	}
	trials := make([]string, 0, len(seen))
	for t := range seen {
		trials = append(trials, t)
	}
	sort.Strings(trials)
	return trials, nil
}
