// Package activity carries the audit trail from services to the activity_logs
// table through an in-process watermill topic, so request handlers never wait
// on the audit write.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const Topic = "activity_logs"

const (
	ActionRegister         = "REGISTER"
	ActionLogin            = "LOGIN"
	ActionApproveUser      = "APPROVE_USER"
	ActionRejectUser       = "REJECT_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionUpdateProfile    = "UPDATE_PROFILE"
	ActionCreatePost       = "CREATE_POST"
	ActionUpdatePost       = "UPDATE_POST"
	ActionDeletePost       = "DELETE_POST"
	ActionValidatePost     = "VALIDATE_POST"
	ActionLikePost         = "LIKE_POST"
	ActionUnlikePost       = "UNLIKE_POST"
	ActionCommentPost      = "COMMENT_POST"
	ActionBookmarkPost     = "BOOKMARK_POST"
	ActionUnbookmarkPost   = "UNBOOKMARK_POST"
	ActionCreateCategory   = "CREATE_CATEGORY"
	ActionUpdateCategory   = "UPDATE_CATEGORY"
	ActionDeleteCategory   = "DELETE_CATEGORY"
	ActionCreateDepartment = "CREATE_DEPARTMENT"
	ActionDeleteDepartment = "DELETE_DEPARTMENT"
	ActionCreateReport     = "CREATE_REPORT"
	ActionUpdateReport     = "UPDATE_REPORT"
)

// Logger records an audit entry. Implementations must not block the caller
// on storage and must not fail the caller's operation.
type Logger interface {
	Log(ctx context.Context, userID, action, description string)
}

type event struct {
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// NewPubSub returns the in-memory bus shared by Publisher and Subscriber.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewSlogLogger(slog.Default()),
	)
}

type Publisher struct {
	pub message.Publisher
}

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) Log(ctx context.Context, userID, action, description string) {
	if p == nil || p.pub == nil {
		return
	}

	payload, err := json.Marshal(event{
		UserID:      userID,
		Action:      action,
		Description: description,
		At:          time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to encode activity", "error", err, "action", action)
		return
	}

	err = p.pub.Publish(Topic, message.NewMessage(watermill.NewUUID(), payload))
	if err != nil {
		slog.Error("failed to publish activity", "error", err, "action", action, "user_id", userID)
	}
}

// Subscriber drains the activity topic into the activity_logs table.
type Subscriber struct {
	sub  message.Subscriber
	repo repository.ActivityRepository
	wg   sync.WaitGroup
}

func NewSubscriber(sub message.Subscriber, repo repository.ActivityRepository) *Subscriber {
	return &Subscriber{sub: sub, repo: repo}
}

// Start subscribes before returning so no entry published afterwards is lost.
// Consumption stops when ctx is cancelled or the bus is closed.
func (s *Subscriber) Start(ctx context.Context) error {
	messages, err := s.sub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for msg := range messages {
			s.handle(msg)
		}
	}()
	return nil
}

// Wait blocks until the consumer goroutine has exited.
func (s *Subscriber) Wait() {
	s.wg.Wait()
}

func (s *Subscriber) handle(msg *message.Message) {
	// Audit entries are best effort: always ack so a bad entry never blocks the topic
	defer msg.Ack()

	var e event
	err := json.Unmarshal(msg.Payload, &e)
	if err != nil {
		slog.Error("failed to decode activity", "error", err, "message_id", msg.UUID)
		return
	}

	entry := &model.ActivityLog{
		ID:          uuid.New().String(),
		Action:      e.Action,
		Description: e.Description,
		CreatedAt:   e.At,
	}
	if e.UserID != "" {
		entry.UserID = &e.UserID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.repo.Create(ctx, entry)
	if err != nil {
		slog.Error("failed to store activity", "error", err, "action", e.Action)
	}
}
