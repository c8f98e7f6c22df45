package shutdown

import (
	"cmp"
	"context"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/aisgo/ais-validate/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

/* ========================================================================
 * Shutdown Manager - 优雅关停管理器
 * ========================================================================
 * 职责: 服务退出时按优先级释放资源（HTTP 服务器 -> 限流存储连接）
 * 特性:
 *   - 按优先级顺序执行关停钩子，同优先级并行执行
 *   - 总超时与单钩子超时
 *   - 信号监听 (SIGINT, SIGTERM, SIGQUIT)
 *   - 只执行一次，重复调用直接返回
 * ======================================================================== */

// Hook 关停钩子函数类型
type Hook func(ctx context.Context) error

type hookEntry struct {
	name     string
	hook     Hook
	priority int
}

type hookResult struct {
	name     string
	err      error
	duration time.Duration
}

// Manager 优雅关停管理器
type Manager struct {
	config *Config
	log    *logger.Logger
	hooks  []hookEntry
	mu     sync.Mutex
	done   chan struct{}
	once   sync.Once
}

// ManagerParams 依赖参数
type ManagerParams struct {
	fx.In

	Logger *logger.Logger
	Config *Config `optional:"true"`
}

// NewManager 创建优雅关停管理器
func NewManager(p ManagerParams) *Manager {
	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		config: p.Config.withDefaults(),
		log:    log.Named("shutdown"),
		done:   make(chan struct{}),
	}
}

// RegisterHook 注册关停钩子（默认优先级）
func (m *Manager) RegisterHook(name string, hook Hook) {
	m.RegisterHookWithPriority(name, hook, PriorityNormal)
}

// RegisterHookWithPriority 注册带优先级的关停钩子
func (m *Manager) RegisterHookWithPriority(name string, hook Hook, priority int) {
	if hook == nil {
		return
	}
	m.mu.Lock()
	m.hooks = append(m.hooks, hookEntry{name: name, hook: hook, priority: priority})
	m.mu.Unlock()

	m.log.Debug("Registered shutdown hook",
		zap.String("name", name),
		zap.Int("priority", priority),
	)
}

// Wait 阻塞等待关停信号后执行关停
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		m.log.Info("Received shutdown signal", zap.String("signal", sig.String()))
		m.Shutdown(context.Background())
	case <-m.done:
	}
}

// Shutdown 执行优雅关停
func (m *Manager) Shutdown(ctx context.Context) {
	m.once.Do(func() {
		defer close(m.done)
		m.run(ctx)
	})
}

// Done 关停完成通道
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// IsShutdown 是否已经关停
func (m *Manager) IsShutdown() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *Manager) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	m.mu.Lock()
	hooks := slices.Clone(m.hooks)
	m.mu.Unlock()
	slices.SortStableFunc(hooks, func(a, b hookEntry) int {
		return cmp.Compare(a.priority, b.priority)
	})

	m.log.Info("Starting graceful shutdown",
		zap.Int("hooks", len(hooks)),
		zap.Duration("timeout", m.config.Timeout),
	)

	var results []hookResult
	for start := 0; start < len(hooks); {
		end := start + 1
		for end < len(hooks) && hooks[end].priority == hooks[start].priority {
			end++
		}
		if ctx.Err() != nil {
			m.log.Warn("Shutdown timeout reached, skipping remaining hooks", zap.Int("skipped", len(hooks)-start))
			break
		}
		results = append(results, m.runGroup(ctx, hooks[start:end])...)
		start = end
	}

	m.report(results)
}

// runGroup 并行执行同一优先级的钩子
func (m *Manager) runGroup(ctx context.Context, group []hookEntry) []hookResult {
	resultChan := make(chan hookResult, len(group))
	for _, entry := range group {
		go func() {
			hookCtx, cancel := ctx, context.CancelFunc(func() {})
			if m.config.HookTimeout > 0 {
				hookCtx, cancel = context.WithTimeout(ctx, m.config.HookTimeout)
			}
			defer cancel()

			start := time.Now()
			err := entry.hook(hookCtx)
			resultChan <- hookResult{name: entry.name, err: err, duration: time.Since(start)}
		}()
	}

	results := make([]hookResult, 0, len(group))
	for len(results) < len(group) {
		select {
		case result := <-resultChan:
			results = append(results, result)
		case <-ctx.Done():
			m.log.Warn("Timeout waiting for shutdown hooks",
				zap.Int("completed", len(results)),
				zap.Int("total", len(group)),
			)
			return results
		}
	}
	return results
}

func (m *Manager) report(results []hookResult) {
	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			m.log.Error("Shutdown hook failed",
				zap.String("name", result.name),
				zap.Duration("duration", result.duration),
				zap.Error(result.err),
			)
			continue
		}
		m.log.Info("Shutdown hook completed",
			zap.String("name", result.name),
			zap.Duration("duration", result.duration),
		)
	}
	m.log.Info("Graceful shutdown finished",
		zap.Int("completed", len(results)),
		zap.Int("failed", failed),
	)
}
