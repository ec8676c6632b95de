package cmd

import (
	"log/slog"

	"socialdemo/internal/api"
	"socialdemo/internal/app"
	"socialdemo/internal/scheduler"
	"socialdemo/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the optional generation schedule",
	Long: `Serve an HTTP API for starting and inspecting generation runs.
When a schedule is configured, the configured request is also replayed
on that cron schedule.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVarP(&serveSchedule, "schedule", "s", "", "Cron schedule (overrides server.schedule)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveSchedule != "" {
		cfg.Server.Schedule = serveSchedule
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	service, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	runs := api.NewRegistry(ctx, app.NewPipeline(service))
	defer runs.Wait()

	if cfg.Server.Schedule != "" {
		sched := scheduler.NewScheduler(runs, app.RequestFromConfig(cfg.Server.Request))
		if err := sched.Start(cfg.Server.Schedule); err != nil {
			return err
		}
		defer sched.Stop()
	}

	server := api.NewServer(cfg.Server.Addr, api.NewHandlers(runs, service.Store()))
	if err := server.Start(ctx); err != nil {
		return err
	}

	slog.Info("Waiting for running generations to stop")
	return nil
}
