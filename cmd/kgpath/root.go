package main

import (
	"context"
	"fmt"

	"github.com/easyops/kgpath/pkg/core/config"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/spf13/cobra"
)

// app 保存一次命令执行共享的配置与可观测性组件
type app struct {
	configPath string
	logLevel   string

	cfg      *config.Config
	provider *otel.Provider
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "kgpath",
		Short: "Linearize knowledge-graph relation paths into model inputs",
		Long: `kgpath turns retrieved knowledge-graph relation paths into marked,
linearized text and assembles it, together with dialogue history, into
token-budgeted inputs for a sequence-to-sequence dialogue model.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.shutdown()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newLinearizeCmd(a),
		newMarkersCmd(a),
		newBuildCmd(a),
		newProfileCmd(a),
		newVocabCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup 加载配置并初始化可观测性，日志写入命令的错误输出
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Observability.Logging.Level = a.logLevel
	}
	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = version
	}

	provider, err := otel.NewProvider(cmd.Context(), cfg.Observability, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	otel.SetGlobal(provider)

	a.cfg = cfg
	a.provider = provider
	return nil
}

// shutdown 未配置指标导出器时把内存中累计的指标写入日志，然后关闭导出器
func (a *app) shutdown() error {
	if a.provider == nil {
		return nil
	}
	if rec, ok := a.provider.Metrics().(*otel.Recorder); ok {
		for _, s := range rec.Summary() {
			if s.Samples > 0 {
				a.logger().Info("run metric", "name", s.Name, "samples", s.Samples, "mean", s.Mean())
			} else {
				a.logger().Info("run metric", "name", s.Name, "total", s.Total)
			}
		}
	}
	return a.provider.Shutdown(context.Background())
}

func (a *app) logger() otel.Logger {
	if a.provider == nil {
		return otel.GetLogger()
	}
	return a.provider.Logger()
}
