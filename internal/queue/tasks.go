package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/levpat/marketplace-blog/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskUserWelcomeEmail 注册欢迎邮件任务
	TaskUserWelcomeEmail = constants.TaskUserWelcomeEmail
)

// ErrQueueDisabled 队列未启用
var ErrQueueDisabled = errors.New("queue is disabled")

// UserWelcomeEmailPayload 注册欢迎邮件任务载荷
type UserWelcomeEmailPayload struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// NewUserWelcomeEmailTask 创建注册欢迎邮件任务
func NewUserWelcomeEmailTask(payload UserWelcomeEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUserWelcomeEmail, body), nil
}

// ParseUserWelcomeEmailPayload 解析注册欢迎邮件任务载荷
func ParseUserWelcomeEmailPayload(task *asynq.Task) (UserWelcomeEmailPayload, error) {
	var payload UserWelcomeEmailPayload
	if task == nil {
		return payload, errors.New("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	if strings.TrimSpace(payload.Email) == "" {
		return payload, fmt.Errorf("decode %s payload: email is empty", task.Type())
	}
	return payload, nil
}
