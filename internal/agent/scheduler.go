package agent

import (
	"context"
	"fmt"
	"time"

	"anoa.com/collegetrack/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner and the registered agents.
type Scheduler struct {
	cron    *cron.Cron
	agents  []Agent
	timeout time.Duration
}

// NewScheduler builds a scheduler whose scheduled runs are bounded by timeout. Overlapping
// runs of the same agent are skipped.
func NewScheduler(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		agents:  make([]Agent, 0),
		timeout: timeout,
	}
}

// RegisterAgent adds agent and schedules it when it has a schedule.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	s.agents = append(s.agents, agent)

	schedule := agent.GetSchedule()
	if schedule == "" {
		logger.Info().Str("agent", agent.GetName()).Msg("registered on-demand agent")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.run(ctx, agent)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule agent %s: %w", agent.GetName(), err)
	}

	logger.Info().Str("agent", agent.GetName()).Str("schedule", schedule).Msg("scheduled agent")
	return nil
}

func (s *Scheduler) run(ctx context.Context, agent Agent) {
	start := time.Now()
	log := logger.WithField("agent", agent.GetName())
	log.Info().Msg("starting job")
	if err := agent.Execute(ctx); err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info().Int("agents", len(s.agents)).Msg("agent scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn().Msg("agent scheduler stopped before running jobs finished")
		return
	}
	logger.Info().Msg("agent scheduler stopped")
}

// RunAgentByName runs one agent immediately.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	for _, agent := range s.agents {
		if agent.GetName() == name {
			return agent.Execute(ctx)
		}
	}
	return fmt.Errorf("agent %q is not registered", name)
}

func (s *Scheduler) GetRegisteredAgents() []string {
	names := make([]string, len(s.agents))
	for i, agent := range s.agents {
		names[i] = agent.GetName()
	}
	return names
}
