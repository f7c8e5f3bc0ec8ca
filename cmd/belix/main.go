package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	configloader "github.com/belmonts/belix/external/config"
	"github.com/belmonts/belix/external/discord"
	"github.com/belmonts/belix/external/jsonstore"
	repositoryimpl "github.com/belmonts/belix/external/repository"
	schedulerimpl "github.com/belmonts/belix/external/scheduler"
	"github.com/belmonts/belix/external/timeparse"
	webhookimpl "github.com/belmonts/belix/external/webhook"
	"github.com/belmonts/belix/internal/birthday"
	"github.com/belmonts/belix/internal/commands"
	"github.com/belmonts/belix/internal/config"
	"github.com/belmonts/belix/internal/gathering"
	"github.com/belmonts/belix/internal/members"
	"github.com/belmonts/belix/internal/points"
	"github.com/belmonts/belix/internal/questions"
	"github.com/belmonts/belix/internal/reminder"
	"github.com/belmonts/belix/internal/terminology"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "belix",
	Short:         "BeliX Discord community bot",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, rookiesCmd, importMembersCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	slog.Info("startup: loading configuration")
	cfg, err := configloader.Load()
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	if cfg.IsDevelopment() {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug})))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	jsonstore.RegisterDI(injector)
	schedulerimpl.RegisterDI(injector)
	timeparse.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)

	points.RegisterDI(injector)
	members.RegisterDI(injector)
	birthday.RegisterDI(injector)
	terminology.RegisterDI(injector)
	questions.RegisterDI(injector)
	reminder.RegisterDI(injector)
	gathering.RegisterDI(injector)
	commands.RegisterDI(injector)

	return injector
}

func invoke[T any](injector do.Injector, what string) (T, error) {
	v, err := do.Invoke[T](injector)
	if err != nil {
		return v, fmt.Errorf("failed to resolve %s: %w", what, err)
	}
	return v, nil
}
