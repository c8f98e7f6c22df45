package shutdown

import (
	"context"

	"go.uber.org/fx"
)

/* ========================================================================
 * Shutdown FX Module - 优雅关停 FX 模块
 * ========================================================================
 * fx 停止阶段执行所有已注册钩子
 * ======================================================================== */

// Module FX 模块（*Config 可选，由应用配置提供）
var Module = fx.Module("shutdown",
	fx.Provide(NewManager),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			m.Shutdown(ctx)
			return nil
		},
	})
}
