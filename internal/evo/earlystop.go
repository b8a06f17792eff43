package evo

import "fmt"

// MonitorState is the early-stopping state machine's current state.
type MonitorState string

const (
	MonitorRunning MonitorState = "RUNNING"
	MonitorStopped MonitorState = "STOPPED"
)

// EarlyStoppingConfig enables halting the generational loop after
// MaxOverfit consecutive generations without validation improvement.
type EarlyStoppingConfig struct {
	Enabled    bool
	MaxOverfit int
}

func (c EarlyStoppingConfig) Validate() error {
	if c.Enabled && c.MaxOverfit <= 0 {
		return fmt.Errorf("early_stopping.max_overfit must be > 0 when enabled: %d", c.MaxOverfit)
	}
	return nil
}

// Monitor tracks the validation score across generations. Scores are
// losses: a strict decrease counts as improvement. Once STOPPED the
// monitor stays stopped until Reset.
type Monitor struct {
	cfg       EarlyStoppingConfig
	best      float64
	bestValid bool
	overfit   int
	state     MonitorState
}

func NewMonitor(cfg EarlyStoppingConfig) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{cfg: cfg, state: MonitorRunning}, nil
}

// Observe feeds one generation's validation score and returns the
// resulting state. A disabled monitor never transitions.
func (m *Monitor) Observe(score float64) MonitorState {
	if m.state == MonitorStopped {
		return m.state
	}
	if !m.bestValid || score < m.best {
		m.best = score
		m.bestValid = true
		m.overfit = 0
		return m.state
	}
	m.overfit++
	if m.cfg.Enabled && m.overfit >= m.cfg.MaxOverfit {
		m.state = MonitorStopped
	}
	return m.state
}

// State returns the current state without observing anything.
func (m *Monitor) State() MonitorState {
	return m.state
}

// Best returns the best validation score observed so far; the bool is
// false before the first observation.
func (m *Monitor) Best() (float64, bool) {
	return m.best, m.bestValid
}

// Overfit returns the count of consecutive non-improving generations.
func (m *Monitor) Overfit() int {
	return m.overfit
}

// Reset restores the monitor to its initial RUNNING state.
func (m *Monitor) Reset() {
	m.best = 0
	m.bestValid = false
	m.overfit = 0
	m.state = MonitorRunning
}
