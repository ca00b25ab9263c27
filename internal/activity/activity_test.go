package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/model"
)

type memoryRepo struct {
	mu   sync.Mutex
	logs []*model.ActivityLog
}

func (r *memoryRepo) Create(ctx context.Context, log *model.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryRepo) Recent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.ActivityLog(nil), r.logs...), nil
}

func (r *memoryRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}

func TestPublishReachesRepository(t *testing.T) {
	bus := NewPubSub()
	repo := &memoryRepo{}

	sub := NewSubscriber(bus, repo)
	if err := sub.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	pub := NewPublisher(bus)
	pub.Log(context.Background(), "u1", ActionLikePost, "Like post p1")
	pub.Log(context.Background(), "", ActionRegister, "anonymous")

	deadline := time.Now().Add(2 * time.Second)
	for repo.len() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	sub.Wait()

	logs, _ := repo.Recent(context.Background(), 10)
	if len(logs) != 2 {
		t.Fatalf("stored %d entries, want 2", len(logs))
	}

	byAction := map[string]*model.ActivityLog{}
	for _, l := range logs {
		byAction[l.Action] = l
	}
	like := byAction[ActionLikePost]
	if like == nil || like.UserID == nil || *like.UserID != "u1" || like.Description != "Like post p1" {
		t.Errorf("like entry = %+v", like)
	}
	if reg := byAction[ActionRegister]; reg == nil || reg.UserID != nil {
		t.Errorf("anonymous entry = %+v", reg)
	}
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	p.Log(context.Background(), "u1", ActionLogin, "ignored")
}
