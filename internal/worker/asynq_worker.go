package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/provider"
	"github.com/levpat/marketplace-blog/internal/queue"
	"github.com/levpat/marketplace-blog/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskUserWelcomeEmail, c.handleUserWelcomeEmail)
}

func (c *Consumer) handleUserWelcomeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_welcome_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseUserWelcomeEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_welcome_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	email := payload.Email
	firstName := payload.FirstName
	if payload.UserID != 0 && c.UserRepo != nil {
		user, err := c.UserRepo.GetByID(payload.UserID)
		if err != nil {
			logger.Warnw("worker_welcome_email_fetch_user_failed", "user_id", payload.UserID, "error", err)
			return err
		}
		if user == nil {
			logger.Debugw("worker_welcome_email_skip_user_not_found", "user_id", payload.UserID)
			return nil
		}
		email = user.Email
		firstName = user.FirstName
	}

	if c.EmailService == nil || !c.EmailService.Enabled() {
		logger.Debugw("worker_welcome_email_skip_disabled", "user_id", payload.UserID)
		return nil
	}
	if err := c.EmailService.SendWelcomeEmail(email, firstName); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceNotConfigured),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrEmailRecipientRejected):
			logger.Warnw("worker_welcome_email_send_skipped", "user_id", payload.UserID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			logger.Warnw("worker_welcome_email_send_failed", "user_id", payload.UserID, "error", err)
			return err
		}
	}
	logger.Infow("worker_welcome_email_sent", "user_id", payload.UserID)
	return nil
}
