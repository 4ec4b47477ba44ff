package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/levpat/marketplace-blog/internal/config"

	"github.com/hibiken/asynq"
)

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	err = client.EnqueueUserWelcomeEmail(context.Background(), UserWelcomeEmailPayload{Email: "a@b.c"})
	if !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestUserWelcomeEmailTaskRoundTrip(t *testing.T) {
	task, err := NewUserWelcomeEmailTask(UserWelcomeEmailPayload{UserID: 3, Email: "john@example.com", FirstName: "John"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskUserWelcomeEmail {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	payload, err := ParseUserWelcomeEmailPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.UserID != 3 || payload.FirstName != "John" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseUserWelcomeEmailPayloadRejectsInvalid(t *testing.T) {
	if _, err := ParseUserWelcomeEmailPayload(asynq.NewTask(TaskUserWelcomeEmail, []byte("{"))); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ParseUserWelcomeEmailPayload(asynq.NewTask(TaskUserWelcomeEmail, []byte(`{"user_id":1}`))); err == nil {
		t.Fatalf("expected empty email error")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected addr %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency %d", cfg.Concurrency)
	}
	if cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("default queue should be registered: %+v", cfg.Queues)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2, Concurrency: 3, Queues: map[string]int{"critical": 5}})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt %+v", opt)
	}
	if cfg.Concurrency != 3 || cfg.Queues["critical"] != 5 {
		t.Fatalf("unexpected server config %+v", cfg)
	}
}
