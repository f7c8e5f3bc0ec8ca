package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/belmonts/belix/external/httpapi"
	"github.com/belmonts/belix/internal/birthday"
	"github.com/belmonts/belix/internal/commands"
	"github.com/belmonts/belix/internal/config"
	discordpkg "github.com/belmonts/belix/internal/discord"
	"github.com/belmonts/belix/internal/gathering"
	"github.com/belmonts/belix/internal/members"
	"github.com/belmonts/belix/internal/points"
	"github.com/belmonts/belix/internal/questions"
	"github.com/belmonts/belix/internal/reminder"
	"github.com/belmonts/belix/internal/scheduler"
	"github.com/belmonts/belix/internal/status"
	"github.com/belmonts/belix/internal/telemetry"
	"github.com/belmonts/belix/internal/terminology"
)

const (
	discordConnectTimeout = 20 * time.Second
	shutdownTimeout       = 15 * time.Second
	serviceName           = "belix"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve the bot until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		slog.Info("startup: building dependency graph")
		injector := setupDI(cfg)
		return runBot(cfg, injector)
	},
}

type bot struct {
	discord       discordpkg.Client
	scheduler     scheduler.Scheduler
	tracker       *status.Tracker
	points        *points.Service
	members       *members.Service
	birthday      *birthday.Service
	terminology   *terminology.Service
	questions     *questions.Service
	reminders     *reminder.Manager
	broadcaster   *reminder.Broadcaster
	meetings      *gathering.Manager
	confirmations *gathering.Confirmations
	router        *commands.Router
}

func resolve(injector do.Injector) (*bot, error) {
	var (
		b   bot
		err error
	)
	if b.discord, err = invoke[discordpkg.Client](injector, "discord client"); err != nil {
		return nil, err
	}
	if b.scheduler, err = invoke[scheduler.Scheduler](injector, "scheduler"); err != nil {
		return nil, err
	}
	if b.points, err = invoke[*points.Service](injector, "points service"); err != nil {
		return nil, err
	}
	if b.members, err = invoke[*members.Service](injector, "members service"); err != nil {
		return nil, err
	}
	if b.birthday, err = invoke[*birthday.Service](injector, "birthday service"); err != nil {
		return nil, err
	}
	if b.terminology, err = invoke[*terminology.Service](injector, "terminology service"); err != nil {
		return nil, err
	}
	if b.questions, err = invoke[*questions.Service](injector, "questions service"); err != nil {
		return nil, err
	}
	if b.reminders, err = invoke[*reminder.Manager](injector, "reminder manager"); err != nil {
		return nil, err
	}
	if b.broadcaster, err = invoke[*reminder.Broadcaster](injector, "reminder broadcaster"); err != nil {
		return nil, err
	}
	if b.meetings, err = invoke[*gathering.Manager](injector, "meeting manager"); err != nil {
		return nil, err
	}
	if b.confirmations, err = invoke[*gathering.Confirmations](injector, "gathering confirmations"); err != nil {
		return nil, err
	}
	if b.router, err = invoke[*commands.Router](injector, "command router"); err != nil {
		return nil, err
	}
	b.tracker = status.NewTracker(b.scheduler.Next)
	return &b, nil
}

func (b *bot) registerHandlers() {
	dc := b.discord
	dc.RegisterReadyHandler(b.tracker.HandleReady)
	dc.RegisterReadyHandler(b.router.HandleReady)
	dc.RegisterReadyHandler(b.members.HandleReady)
	dc.RegisterMemberAddHandler(b.members.HandleMemberAdd)
	dc.RegisterMemberUpdateHandler(b.members.HandleMemberUpdate)
	dc.RegisterMessageHandler(b.tracker.HandleMessage)
	dc.RegisterMessageHandler(b.points.HandleMessage)
	dc.RegisterMessageHandler(b.reminders.HandleMessage)
	dc.RegisterMessageHandler(b.router.HandleMessage)
	dc.RegisterReactionHandler(b.points.HandleReaction)
	dc.RegisterVoiceStateUpdateHandler(b.meetings.HandleVoiceStateUpdate)
	dc.RegisterInteractionHandler(b.router.HandleInteraction)
}

func (b *bot) scheduleJobs() error {
	var jobs []scheduler.Job
	jobs = append(jobs, b.birthday.Jobs()...)
	jobs = append(jobs, b.terminology.Jobs()...)
	jobs = append(jobs, b.questions.Jobs()...)
	jobs = append(jobs, b.broadcaster.Jobs()...)
	jobs = append(jobs, b.meetings.Jobs()...)
	jobs = append(jobs, b.confirmations.Jobs()...)
	for _, job := range jobs {
		if err := b.scheduler.AddDaily(job); err != nil {
			return fmt.Errorf("schedule %q: %w", job.Name, err)
		}
		slog.Info("scheduled daily job", "job", job.Name, "at", job.At.String())
	}
	return nil
}

type httpServer interface {
	Start()
	Shutdown(ctx context.Context) error
}

// startServing starts the HTTP server and connects to the gateway. The
// server is shut down again when the connection fails.
func startServing(ctx context.Context, srv httpServer, connect func(context.Context) error) error {
	srv.Start()
	slog.Info("startup: connecting to discord gateway")
	if err := connect(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			slog.Error("http server shutdown failed", "error", serr)
		}
		return fmt.Errorf("discord connect failed: %w", err)
	}
	return nil
}

func runBot(cfg *config.Config, injector do.Injector) error {
	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing(cfg.OTelEndpoint, serviceName, version)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	b, err := resolve(injector)
	if err != nil {
		return err
	}
	b.registerHandlers()
	if err := b.scheduleJobs(); err != nil {
		return err
	}

	srv, err := httpapi.NewServer(cfg.HTTPAddr, b.tracker)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()
	if err := startServing(ctx, srv, b.discord.Connect); err != nil {
		return err
	}
	slog.Info("startup: discord connected", "guild_id", cfg.DiscordGuildID)

	if err := b.reminders.Restore(ctx); err != nil {
		slog.Error("failed to restore reminders", "error", err)
	}
	b.scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	b.scheduler.Stop(shutdownCtx)
	b.meetings.Shutdown(shutdownCtx)
	b.reminders.Stop()
	b.tracker.SetOffline()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
	if err := b.discord.Close(); err != nil {
		slog.Error("discord close failed", "error", err)
	}
	return nil
}
