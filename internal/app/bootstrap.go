package app

import (
	"errors"
	"fmt"

	"github.com/levpat/marketplace-blog/internal/config"
	"github.com/levpat/marketplace-blog/internal/logger"
	"github.com/levpat/marketplace-blog/internal/provider"
	"github.com/levpat/marketplace-blog/internal/router"
	"github.com/levpat/marketplace-blog/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !isValidMode(mode) {
		return nil, fmt.Errorf("unknown run mode %q", mode)
	}
	if container == nil {
		container = provider.NewContainer(cfg)
	}

	var services []Service

	// HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// Worker 服务，all 模式下队列未启用时跳过
	if mode == ModeAll || mode == ModeWorker {
		if !cfg.Queue.Enabled && mode == ModeAll {
			logger.Warnw("app_worker_skipped", "reason", "queue_disabled")
		} else {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	container := provider.NewContainer(opts.Config)
	defer container.Close()

	runner, err := BuildRunner(opts.Config, opts.Mode, container)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

func isValidMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	default:
		return false
	}
}
