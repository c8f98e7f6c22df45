// Command ais-validate 对外提供声明式表单验证 HTTP API
package main

import (
	"fmt"
	"os"

	"github.com/aisgo/ais-validate/app"
	"github.com/aisgo/ais-validate/conf"
	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/ruleset"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// 构建时通过 ldflags 注入
var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	flags := pflag.NewFlagSet("ais-validate", pflag.ExitOnError)
	configDir := flags.StringP("config-dir", "c", ".", "directory containing the config file")
	configName := flags.StringP("config-name", "n", "config", "config file name without extension")
	envPrefix := flags.String("env-prefix", conf.DefaultEnvPrefix, "prefix of environment variables overriding config keys")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("ais-validate %s (%s)\n", Version, Commit)
		return
	}

	cfg, err := app.Load(app.NewLoader(*configDir, *configName, conf.WithEnvPrefix(*envPrefix)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ais-validate: %v\n", err)
		os.Exit(1)
	}

	// 不注册扩展：配置中的 depends / callback_ 规则在启动时告警
	fx.New(
		app.Module(cfg, ruleset.Extensions{}),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx").Logger}
		}),
	).Run()
}
