package cmd

import (
	"fmt"

	"socialdemo/internal/app"
	"socialdemo/pkg/config"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured providers and backends",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	fmt.Println(titleStyle.Render("Socialdemo status"))
	printKey("Text generation ("+cfg.Text.Provider+")", service.Text() != nil)
	printKey("Image generation", service.Images() != nil)
	printKey("Summarization", service.Summarizer() != nil)
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Model:    %s", cfg.Text.Model)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Store:    %s", cfg.Store.Driver)))

	backend := "local " + cfg.Images.Dir
	if cfg.UseGCS() {
		backend = "gs://" + cfg.GCSBucket
	}
	images, err := service.ImageStore().ListImages(ctx)
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  Images:   %s (%v)", backend, err)))
	} else {
		fmt.Println(infoStyle.Render(fmt.Sprintf("  Images:   %s, %d stored", backend, len(images))))
	}

	users, err := service.Store().ListUserIDs(ctx)
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  Users:    %v", err)))
	} else if len(users) == 0 {
		fmt.Println(warnStyle.Render("  Users:    none active, generation will fail"))
	} else {
		fmt.Println(infoStyle.Render(fmt.Sprintf("  Users:    %d active", len(users))))
	}

	if cfg.Server.Schedule != "" {
		fmt.Println(infoStyle.Render(fmt.Sprintf("  Schedule: %s", cfg.Server.Schedule)))
	}
	return nil
}

func printKey(name string, ok bool) {
	if ok {
		fmt.Println(successStyle.Render("✓ " + name))
		return
	}
	fmt.Println(warnStyle.Render("✗ " + name + " not configured"))
}
