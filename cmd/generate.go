package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"socialdemo/internal/app"
	"socialdemo/internal/batch"
	"socialdemo/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	genMethod      string
	genCompany     string
	genDescription string
	genURL         string
	genItems       int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one batch of demo content",
	Long: `Generate posts, events and topics for a company. In manual mode the
company name and description drive the prompts; in automatic mode a summary
of the page at --url is used instead. Without flags an interactive form asks
for the request.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genMethod, "method", "m", "", "Generation method: manual or automatic")
	generateCmd.Flags().StringVarP(&genCompany, "company", "c", "", "Company name (manual)")
	generateCmd.Flags().StringVarP(&genDescription, "description", "d", "", "Company description (manual)")
	generateCmd.Flags().StringVarP(&genURL, "url", "u", "", "Page to summarize (automatic)")
	generateCmd.Flags().IntVarP(&genItems, "items", "n", 1, "Items to generate per content kind")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := app.GenerationRequest{
		Method:             app.Method(strings.ToLower(genMethod)),
		CompanyName:        genCompany,
		CompanyDescription: genDescription,
		SourceURL:          genURL,
		ItemsPerKind:       genItems,
	}
	if !anyChanged(cmd, "method", "company", "description", "url", "items") {
		if err := askRequest(&req); err != nil {
			return err
		}
	}
	if req.Method == "" {
		req.Method = app.MethodManual
	}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	report, err := app.NewPipeline(service).Run(ctx, req, app.RunOptions{
		OnProgress: printProgress,
	})
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func askRequest(req *app.GenerationRequest) error {
	method := string(app.MethodManual)
	if err := huh.NewSelect[string]().
		Title("Generation method").
		Options(
			huh.NewOption("Manual: describe the company", string(app.MethodManual)),
			huh.NewOption("Automatic: summarize a web page", string(app.MethodAutomatic)),
		).
		Value(&method).
		Run(); err != nil {
		return err
	}
	req.Method = app.Method(method)

	items := strconv.Itoa(req.ItemsPerKind)
	var group *huh.Group
	if req.Method == app.MethodAutomatic {
		group = huh.NewGroup(
			huh.NewInput().
				Title("Source URL").
				Placeholder("https://example.com/about").
				Value(&req.SourceURL).
				Validate(required("Source URL")),
			itemsInput(&items),
		)
	} else {
		group = huh.NewGroup(
			huh.NewInput().
				Title("Company name").
				Value(&req.CompanyName).
				Validate(required("Company name")),
			huh.NewText().
				Title("Company description").
				Value(&req.CompanyDescription).
				Validate(required("Company description")),
			itemsInput(&items),
		)
	}

	if err := huh.NewForm(group).Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(items))
	if err != nil {
		return fmt.Errorf("items per kind: %w", err)
	}
	req.ItemsPerKind = n
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.CompanyDescription = strings.TrimSpace(req.CompanyDescription)
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	return nil
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func itemsInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Items per kind").
		Description("Each item produces one post, one event and one topic").
		Value(value).
		Validate(func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < 0 {
				return fmt.Errorf("enter a number of zero or more")
			}
			return nil
		})
}

func printProgress(p batch.Progress) {
	line := fmt.Sprintf("[%d/%d] %s", p.Current, p.Total, p.Unit)
	if p.Err != nil {
		fmt.Println(warnStyle.Render(line + ": " + p.Err.Error()))
		return
	}
	fmt.Println(infoStyle.Render(line))
}

func printReport(report *batch.Report) {
	if report.State == batch.StateCompleted {
		fmt.Println(successStyle.Render("✓ " + report.Message))
		return
	}
	fmt.Println(warnStyle.Render(report.Message))
	for _, e := range report.Errors {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  %s: %s", e.Unit, e.Err)))
	}
}
