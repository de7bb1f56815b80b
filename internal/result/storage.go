package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	runMetaFile     = "run.json"
	leaderboardFile = "leaderboard.json"
	trialsDir       = "trials"
)

func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// NewRunMeta stamps a fresh run identifier.
func NewRunMeta(weights Weights, teams []Team, trials []string) *RunMeta {
	return &RunMeta{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Weights:   weights,
		Teams:     teams,
		Trials:    trials,
	}
}

func TrialPath(runDir, trial string) string {
	return filepath.Join(runDir, trialsDir, trial+".json")
}

func WriteRunMeta(runDir string, meta *RunMeta) error {
	return writeJSON(filepath.Join(runDir, runMetaFile), meta)
}

func ReadRunMeta(runDir string) (*RunMeta, error) {
	var meta RunMeta
	if err := readJSON(filepath.Join(runDir, runMetaFile), &meta); err != nil {
		return nil, fmt.Errorf("reading run meta: %w", err)
	}
	return &meta, nil
}

func WriteTrialInfo(runDir string, info *TrialInfo) error {
	return writeJSON(TrialPath(runDir, info.TrialName), info)
}

func ReadTrialInfo(path string) (*TrialInfo, error) {
	var info TrialInfo
	if err := readJSON(path, &info); err != nil {
		return nil, fmt.Errorf("reading trial info: %w", err)
	}
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("reading trial info %s: %w", filepath.Base(path), err)
	}
	return &info, nil
}

// ReadTrialInfos loads every stored trial of a run, sorted by trial name.
func ReadTrialInfos(runDir string) ([]*TrialInfo, error) {
	entries, err := os.ReadDir(filepath.Join(runDir, trialsDir))
	if err != nil {
		return nil, fmt.Errorf("listing stored trials: %w", err)
	}
	var infos []*TrialInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := ReadTrialInfo(filepath.Join(runDir, trialsDir, e.Name()))
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].TrialName < infos[j].TrialName
	})
	return infos, nil
}

func WriteLeaderboard(runDir string, lb *Leaderboard) error {
	return writeJSON(filepath.Join(runDir, leaderboardFile), lb)
}

func ReadLeaderboard(runDir string) (*Leaderboard, error) {
	var lb Leaderboard
	if err := readJSON(filepath.Join(runDir, leaderboardFile), &lb); err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	return &lb, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
