package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/internal/modules/notification/dto"
	notifRepo "anoa.com/collegetrack/internal/modules/notification/repository"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLimit = 20

// ParentLookup lists the parents linked to a student.
type ParentLookup interface {
	FindParentIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	NotifyStatusChange(ctx context.Context, app *entity.Application, log *entity.ApplicationStatusLog) error
	NotifyDeadline(ctx context.Context, app *entity.Application, daysLeft int) (int, error)
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.NotificationResponse, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	parents     ParentLookup
	redisClient *redis.Client
}

// NewNotificationService wires persistence and, when redisClient is non-nil, live delivery
// over the user_notifications:<userID> channels.
func NewNotificationService(repo notifRepo.NotificationRepository, parents ParentLookup, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		parents:     parents,
		redisClient: redisClient,
	}
}

func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(toResponse(notification))
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
				logger.Warn().Err(err).Str("user_id", notification.UserID.String()).Msg("failed to publish notification")
			}
		}
	}

	return nil
}

// NotifyStatusChange tells the student's linked parents about a transition, and the student
// too when someone else made it. The author of the change is never notified.
func (s *notificationService) NotifyStatusChange(ctx context.Context, app *entity.Application, log *entity.ApplicationStatusLog) error {
	recipients, err := s.recipients(ctx, app.StudentID)
	if err != nil {
		return err
	}

	title := "Application status updated"
	message := fmt.Sprintf("%s application moved from %s to %s", universityName(app), humanStatus(log.OldStatus), humanStatus(log.NewStatus))
	if log.Reason != nil && *log.Reason != "" {
		message += ": " + *log.Reason
	}

	appID := app.ID
	for _, userID := range recipients {
		if userID == log.ChangedBy {
			continue
		}
		if err := s.CreateNotification(ctx, &entity.Notification{
			UserID:        userID,
			Type:          entity.NotificationStatusChanged,
			Title:         title,
			Message:       message,
			ApplicationID: &appID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// NotifyDeadline sends a reminder to the student and linked parents and returns how many
// notifications were written.
func (s *notificationService) NotifyDeadline(ctx context.Context, app *entity.Application, daysLeft int) (int, error) {
	recipients, err := s.recipients(ctx, app.StudentID)
	if err != nil {
		return 0, err
	}

	var when string
	switch {
	case daysLeft <= 0:
		when = "today"
	case daysLeft == 1:
		when = "tomorrow"
	default:
		when = fmt.Sprintf("in %d days", daysLeft)
	}

	appID := app.ID
	sent := 0
	for _, userID := range recipients {
		if err := s.CreateNotification(ctx, &entity.Notification{
			UserID:        userID,
			Type:          entity.NotificationDeadlineReminder,
			Title:         "Application deadline approaching",
			Message:       fmt.Sprintf("%s application is due %s (%s) and is still %s", universityName(app), when, app.Deadline.Format("2006-01-02"), humanStatus(app.Status)),
			ApplicationID: &appID,
		}); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (s *notificationService) recipients(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	parentIDs, err := s.parents.FindParentIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return append([]uuid.UUID{studentID}, parentIDs...), nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.NotificationResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, toResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func toResponse(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:            n.ID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		ApplicationID: n.ApplicationID,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}
}

func universityName(app *entity.Application) string {
	if app.University != nil && app.University.Name != "" {
		return app.University.Name
	}
	return "Your"
}

func humanStatus(status entity.ApplicationStatus) string {
	switch status {
	case entity.StatusNotStarted:
		return "not started"
	case entity.StatusInProgress:
		return "in progress"
	case entity.StatusSubmitted:
		return "submitted"
	case entity.StatusUnderReview:
		return "under review"
	case entity.StatusAccepted:
		return "accepted"
	case entity.StatusRejected:
		return "rejected"
	case entity.StatusWaitlisted:
		return "waitlisted"
	}
	return string(status)
}
