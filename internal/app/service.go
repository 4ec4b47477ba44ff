package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

const defaultStopTimeout = 10 * time.Second

// ErrNoServices 运行器中没有可启动的服务
var ErrNoServices = errors.New("no services to run")

// Service 可被 Runner 管理的长驻服务（HTTP、asynq worker）
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 服务运行器
// 停止顺序与注册顺序一致：先停 HTTP 不再接收会投递任务的请求，再停 worker 消化队列。
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器，nil 服务会被忽略
func NewRunner(services ...Service) *Runner {
	kept := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			kept = append(kept, svc)
		}
	}
	return &Runner{services: kept}
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

type serviceExit struct {
	name string
	err  error
}

// Run 启动全部服务，任一服务退出或 ctx 取消后依次停止所有服务
// 启动失败的错误带上服务名；正常取消返回 nil，停止阶段的错误合并返回。
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return ErrNoServices
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(r.services))
	for _, svc := range r.services {
		go func(svc Service) {
			name := svc.Name()
			if log != nil {
				log.Infow("service_start", "service", name)
			}
			err := svc.Start(ctx)
			if log != nil {
				log.Infow("service_exit", "service", name, "error", err)
			}
			exits <- serviceExit{name: name, err: err}
		}(svc)
	}

	var runErr error
	select {
	case <-ctx.Done():
		if cause := ctx.Err(); !errors.Is(cause, context.Canceled) {
			runErr = cause
		}
	case exit := <-exits:
		if exit.err != nil {
			runErr = fmt.Errorf("%s: %w", exit.name, exit.err)
		}
	}
	cancel()

	if stopErr := r.stopAll(stopTimeout, log); stopErr != nil && runErr == nil {
		return stopErr
	}
	return runErr
}

func (r *Runner) stopAll(timeout time.Duration, log *zap.SugaredLogger) error {
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, svc := range r.services {
		if err := svc.Stop(stopCtx); err != nil {
			if log != nil {
				log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			}
			errs = append(errs, fmt.Errorf("stop %s: %w", svc.Name(), err))
		}
	}
	return errors.Join(errs...)
}
