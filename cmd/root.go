package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"socialdemo/internal/llm"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var verbose bool

var errorStyle = warnStyle.Bold(true)

var rootCmd = &cobra.Command{
	Use:   "socialdemo",
	Short: "Populate a social network with generated demo content",
	Long: `Socialdemo fills a social network with synthetic posts, comments,
events and topics written by a text generation API, illustrated with
generated images and attributed to random active users.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
}

// Execute runs the CLI; SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stderr)
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(stderr, err)
	}
	return err
}

// printError reports err once. A missing key is shown by its hint alone.
func printError(w io.Writer, err error) {
	msg := err.Error()
	if errors.Is(err, llm.ErrMissingAPIKey) {
		msg = strings.TrimPrefix(msg, llm.ErrMissingAPIKey.Error()+": ")
	}
	_, _ = fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  verbose,
	})))
}
