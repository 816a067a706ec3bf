package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	statePrefix     = "run-"
	stateSuffix     = ".state.yaml"
	stateTimeLayout = "20060102-150405.000000000"

	// legacyStateTimeLayout names files written before sub-second precision
	legacyStateTimeLayout = "20060102-150405"
)

// ErrNoRunState means the log directory holds no run state file
var ErrNoRunState = errors.New("no previous run state found")

// RunStatus is the overall status recorded for a run
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunSucceeded   RunStatus = "succeeded"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// RunState is the persisted record of one run, rewritten after every step
type RunState struct {
	mu sync.Mutex

	ID         string       `yaml:"id"`
	Title      string       `yaml:"title"`
	Status     RunStatus    `yaml:"status"`
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at,omitempty"`
	StartStep  string       `yaml:"start_step,omitempty"`
	Error      string       `yaml:"error,omitempty"`
	Steps      []StepRecord `yaml:"steps"`
	History    []StateEvent `yaml:"history"`
}

// StepRecord is the persisted outcome of one step
type StepRecord struct {
	Number   int         `yaml:"number"`
	Name     string      `yaml:"name"`
	Target   string      `yaml:"target"`
	Status   StepStatus  `yaml:"status"`
	Failure  FailureKind `yaml:"failure,omitempty"`
	Reason   string      `yaml:"reason,omitempty"`
	ExitCode int         `yaml:"exit_code"`
	Elapsed  string      `yaml:"elapsed,omitempty"`
}

// StateEvent is one entry of the run history
type StateEvent struct {
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	Step      string    `yaml:"step,omitempty"`
	Type      string    `yaml:"type"`
	Message   string    `yaml:"message"`
}

// NewRunState creates the state of a run starting now
func NewRunState(title string, steps []Step, now time.Time) *RunState {
	s := &RunState{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    RunRunning,
		StartedAt: now,
		Steps:     make([]StepRecord, len(steps)),
		History:   make([]StateEvent, 0),
	}
	for i, st := range steps {
		s.Steps[i] = StepRecord{Number: st.Number, Name: st.Name, Target: st.Target, Status: StepPending, ExitCode: -1}
	}
	return s
}

// AddEvent appends an event to the run history
func (s *RunState) AddEvent(step, eventType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, StateEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Step:      step,
		Type:      eventType,
		Message:   message,
	})
}

// Record copies a step result into the state
func (s *RunState) Record(r RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Steps {
		if s.Steps[i].Name != r.Name {
			continue
		}
		s.Steps[i].Status = r.Status
		s.Steps[i].Failure = r.Failure
		s.Steps[i].Reason = r.Reason
		s.Steps[i].ExitCode = r.ExitCode
		if r.Elapsed > 0 {
			s.Steps[i].Elapsed = r.Elapsed.Round(time.Millisecond).String()
		}
		return
	}
}

// Finish sets the final status of the run
func (s *RunState) Finish(status RunStatus, err error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.FinishedAt = now
	if err != nil {
		s.Error = err.Error()
	}
}

// StepStatus returns the recorded status of a step, pending if unknown
func (s *RunState) StepStatus(name string) StepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.Steps {
		if r.Name == name {
			return r.Status
		}
	}
	return StepPending
}

// Save writes the state as YAML, creating the directory if needed
func (s *RunState) Save(path string) error {
	s.mu.Lock()
	data, err := yaml.Marshal(s)
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "failed to marshal run state")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write run state")
	}
	return nil
}

// LoadRunState reads a state file written by Save
func LoadRunState(path string) (*RunState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read run state")
	}
	var s RunState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse run state %s", path)
	}
	return &s, nil
}

// StatePath returns the state file path for a run started at t
func StatePath(dir string, t time.Time) string {
	return filepath.Join(dir, statePrefix+t.Format(stateTimeLayout)+stateSuffix)
}

// StateFile is a run state file found in the log directory
type StateFile struct {
	Path      string
	StartedAt time.Time
}

// ListStateFiles returns the run state files in dir, oldest first. Files
// whose names do not carry a run timestamp are ignored.
func ListStateFiles(dir string) ([]StateFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []StateFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, statePrefix) || !strings.HasSuffix(name, stateSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, statePrefix), stateSuffix)
		t, err := time.ParseInLocation(stateTimeLayout, stamp, time.Local)
		if err != nil {
			t, err = time.ParseInLocation(legacyStateTimeLayout, stamp, time.Local)
		}
		if err != nil {
			continue
		}
		files = append(files, StateFile{Path: filepath.Join(dir, name), StartedAt: t})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].StartedAt.Equal(files[j].StartedAt) {
			return files[i].StartedAt.Before(files[j].StartedAt)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// LatestRunState loads the most recent run state in dir
func LatestRunState(dir string) (*RunState, string, error) {
	files, err := ListStateFiles(dir)
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", ErrNoRunState
	}
	latest := files[len(files)-1].Path
	s, err := LoadRunState(latest)
	if err != nil {
		return nil, "", err
	}
	return s, latest, nil
}
