package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DueApplicationFinder lists applications with a deadline in [from, to).
type DueApplicationFinder interface {
	FindDueBetween(ctx context.Context, from, to time.Time, statuses []entity.ApplicationStatus) ([]entity.Application, error)
}

// DeadlineNotifier sends a reminder for one application and reports how many users it reached.
type DeadlineNotifier interface {
	NotifyDeadline(ctx context.Context, app *entity.Application, daysLeft int) (int, error)
}

type DeadlineReminderConfig struct {
	Schedule string
	Window   time.Duration
}

// DeadlineReminderAgent reminds students and their parents about applications that are
// due soon and not yet submitted. Each application is reminded at most once per day; the
// daily claim lives in Redis, so without Redis every run reminds again.
type DeadlineReminderAgent struct {
	applications DueApplicationFinder
	notifier     DeadlineNotifier
	redis        *redis.Client
	config       DeadlineReminderConfig
	now          func() time.Time
}

var remindStatuses = []entity.ApplicationStatus{entity.StatusNotStarted, entity.StatusInProgress}

func NewDeadlineReminderAgent(applications DueApplicationFinder, notifier DeadlineNotifier, redisClient *redis.Client, config DeadlineReminderConfig) *DeadlineReminderAgent {
	if config.Window <= 0 {
		config.Window = 7 * 24 * time.Hour
	}
	return &DeadlineReminderAgent{
		applications: applications,
		notifier:     notifier,
		redis:        redisClient,
		config:       config,
		now:          time.Now,
	}
}

func (a *DeadlineReminderAgent) GetName() string {
	return "deadline-reminder"
}

func (a *DeadlineReminderAgent) GetSchedule() string {
	return a.config.Schedule
}

func (a *DeadlineReminderAgent) Execute(ctx context.Context) error {
	now := a.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	apps, err := a.applications.FindDueBetween(ctx, today, now.Add(a.config.Window), remindStatuses)
	if err != nil {
		return fmt.Errorf("failed to load due applications: %w", err)
	}

	var (
		errs     []error
		reminded int
	)
	for i := range apps {
		app := &apps[i]
		subject := reminderSubject(app.ID, today)

		claimed, err := ratelimiter.CheckAndSetRateLimit(ctx, a.redis, subject, ratelimiter.ScopeReminder, 36*time.Hour)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !claimed {
			continue
		}

		daysLeft := int(app.Deadline.Sub(today).Hours() / 24)
		if _, err := a.notifier.NotifyDeadline(ctx, app, daysLeft); err != nil {
			errs = append(errs, fmt.Errorf("application %s: %w", app.ID, err))
			if clearErr := ratelimiter.ClearRateLimit(ctx, a.redis, subject, ratelimiter.ScopeReminder); clearErr != nil {
				logger.Warn().Err(clearErr).Str("application_id", app.ID.String()).Msg("failed to release reminder claim")
			}
			continue
		}
		reminded++
	}

	logger.Info().Int("due", len(apps)).Int("reminded", reminded).Msg("deadline reminders sent")
	return errors.Join(errs...)
}

func reminderSubject(applicationID uuid.UUID, day time.Time) string {
	return applicationID.String() + ":" + day.Format("2006-01-02")
}
