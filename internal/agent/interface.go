package agent

import "context"

// Agent is a background job the Scheduler can run on a cron schedule or on demand.
type Agent interface {
	// GetName identifies the agent in logs and for RunAgentByName.
	GetName() string

	// GetSchedule returns a cron expression, or "" for on-demand only.
	GetSchedule() string

	Execute(ctx context.Context) error
}
