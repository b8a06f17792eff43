package evo

import "testing"

func TestMonitorStopsAfterMaxOverfit(t *testing.T) {
	m, err := NewMonitor(EarlyStoppingConfig{Enabled: true, MaxOverfit: 3})
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}

	scores := []struct {
		score float64
		want  MonitorState
	}{
		{5.0, MonitorRunning}, // first observation improves
		{4.0, MonitorRunning}, // improvement resets the counter
		{4.0, MonitorRunning}, // equal score does not improve: 1
		{4.5, MonitorRunning}, // 2
		{4.0, MonitorStopped}, // 3: stop
	}
	for i, s := range scores {
		if got := m.Observe(s.score); got != s.want {
			t.Fatalf("observation %d (%g): state = %s, want %s", i, s.score, got, s.want)
		}
	}
	if best, ok := m.Best(); !ok || best != 4.0 {
		t.Fatalf("best = %g (%v), want 4.0", best, ok)
	}
}

func TestMonitorImprovementResetsCounter(t *testing.T) {
	m, err := NewMonitor(EarlyStoppingConfig{Enabled: true, MaxOverfit: 2})
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}

	m.Observe(3.0)
	m.Observe(3.0)
	if m.Overfit() != 1 {
		t.Fatalf("overfit = %d, want 1", m.Overfit())
	}
	m.Observe(2.0)
	if m.Overfit() != 0 {
		t.Fatalf("overfit after improvement = %d, want 0", m.Overfit())
	}
	if m.State() != MonitorRunning {
		t.Fatalf("state = %s, want RUNNING", m.State())
	}
}

func TestMonitorDisabledNeverStops(t *testing.T) {
	m, err := NewMonitor(EarlyStoppingConfig{})
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}
	for i := 0; i < 100; i++ {
		if got := m.Observe(1.0); got != MonitorRunning {
			t.Fatalf("disabled monitor stopped at observation %d", i)
		}
	}
	if m.Overfit() != 99 {
		t.Fatalf("overfit = %d, want 99", m.Overfit())
	}
}

func TestMonitorStaysStopped(t *testing.T) {
	m, err := NewMonitor(EarlyStoppingConfig{Enabled: true, MaxOverfit: 1})
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}
	m.Observe(2.0)
	if got := m.Observe(2.0); got != MonitorStopped {
		t.Fatalf("state = %s, want STOPPED", got)
	}
	// An improvement after stopping must not resurrect the run.
	if got := m.Observe(1.0); got != MonitorStopped {
		t.Fatalf("stopped monitor transitioned back to %s", got)
	}
}

func TestMonitorReset(t *testing.T) {
	m, err := NewMonitor(EarlyStoppingConfig{Enabled: true, MaxOverfit: 1})
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}
	m.Observe(2.0)
	m.Observe(2.0)
	m.Reset()
	if m.State() != MonitorRunning || m.Overfit() != 0 {
		t.Fatalf("reset left state=%s overfit=%d", m.State(), m.Overfit())
	}
	if _, ok := m.Best(); ok {
		t.Fatal("reset should clear the best score")
	}
}

func TestEarlyStoppingConfigValidate(t *testing.T) {
	if err := (EarlyStoppingConfig{Enabled: true, MaxOverfit: 0}).Validate(); err == nil {
		t.Fatal("enabled monitor with max_overfit 0 should fail validation")
	}
	if err := (EarlyStoppingConfig{Enabled: false, MaxOverfit: 0}).Validate(); err != nil {
		t.Fatalf("disabled monitor should not validate max_overfit: %v", err)
	}
}
