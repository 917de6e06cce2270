package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diillson/tmc-summarizer-go/internal/adapter/driven/config"
	"github.com/diillson/tmc-summarizer-go/internal/adapter/driving/web"
	"github.com/diillson/tmc-summarizer-go/internal/application/usecase"
	"github.com/diillson/tmc-summarizer-go/internal/log"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/diillson/tmc-summarizer-go/pkg/console"
	"github.com/diillson/tmc-summarizer-go/pkg/version"
)

const defaultListenAddr = ":8080"

// UseCaseFactory builds a summary use case writing to the given console.
type UseCaseFactory func(c types.ConsoleInterface) *usecase.SummaryUseCase

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	newUseCase UseCaseFactory
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:          "tmc",
		Short:        "Summarize raw Turning Movement Count spreadsheets",
		Version:      formattedVersion,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "TMC Summarizer version: %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")

	summarizeCmd := &cobra.Command{
		Use:   "summarize <input_folder>",
		Short: "Write the summary workbook for every count file in a folder",
		Args:  cobra.ExactArgs(1),
		RunE:  app.runSummarize,
	}
	flags := summarizeCmd.Flags()
	flags.StringP("output-dir", "o", "", "Directory to save the report files (default: the input folder)")
	flags.StringP("report-name", "n", "", "Base name for the report files, without extension (default: \"TMC Summary\")")
	flags.StringSliceP("report-type", "y", nil, "Additional report types: csv, json, pdf")
	flags.Int("window", 0, "Number of consecutive intervals in a peak window (default: 4)")
	flags.Int("split-hour", 0, "Hour of day separating AM from PM peaks (default: 12)")
	flags.String("publish-db", "", "Publish raw counts to a database (sqlite://path or postgres://...)")
	flags.String("s3-uri", "", "Upload the reports to s3://bucket/prefix")
	flags.StringP("profile", "p", "", "AWS profile used for the S3 upload")
	flags.Bool("zip", false, "Bundle every generated file into a zip archive")
	flags.Bool("open", false, "Open the summary workbook when done")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "Pick the input and output folders interactively",
		Args:  cobra.NoArgs,
		RunE:  app.runGUI,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload form over HTTP",
		Args:  cobra.NoArgs,
		RunE:  app.runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default: \":8080\")")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(summarizeCmd, guiCmd, serveCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetUseCaseFactory sets how commands build the summary use case.
func (app *CLIApp) SetUseCaseFactory(factory UseCaseFactory) {
	app.newUseCase = factory
}

// parseSummaryOptions lê as flags do comando summarize.
func parseSummaryOptions(cmd *cobra.Command, inputDir string) (*types.SummaryOptions, error) {
	configFile, _ := cmd.Flags().GetString("config-file")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	reportName, _ := cmd.Flags().GetString("report-name")
	reportType, _ := cmd.Flags().GetStringSlice("report-type")
	window, _ := cmd.Flags().GetInt("window")
	splitHour, _ := cmd.Flags().GetInt("split-hour")
	publishDB, _ := cmd.Flags().GetString("publish-db")
	s3URI, _ := cmd.Flags().GetString("s3-uri")
	profile, _ := cmd.Flags().GetString("profile")
	zip, _ := cmd.Flags().GetBool("zip")

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		// Convert to absolute path
		if outputDir, err = filepath.Abs(outputDir); err != nil {
			return nil, err
		}
	}

	return &types.SummaryOptions{
		InputDir:   absInput,
		OutputDir:  outputDir,
		ConfigFile: configFile,
		ReportName: reportName,
		ReportType: reportType,
		PeakWindow: window,
		SplitHour:  splitHour,
		PublishDB:  publishDB,
		S3URI:      s3URI,
		Profile:    profile,
		Zip:        zip,
	}, nil
}

// runSummarize é o ponto de entrada do comando summarize.
func (app *CLIApp) runSummarize(cmd *cobra.Command, args []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	opts, err := parseSummaryOptions(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := app.newUseCase(console.NewConsole()).WriteSummaryFile(cmd.Context(), opts)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s %s\n", console.BrightCyan("Summary workbook:"), console.BrightGreen(result.Workbook))

	if open, _ := cmd.Flags().GetBool("open"); open {
		return openFile(result.Workbook)
	}
	return nil
}

// runGUI escolhe as pastas num seletor interativo e abre o resultado.
func (app *CLIApp) runGUI(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	configFile, _ := cmd.Flags().GetString("config-file")
	opts, err := pickFolders()
	if err != nil {
		return err
	}
	opts.ConfigFile = configFile

	result, err := app.newUseCase(console.NewConsole()).WriteSummaryFile(cmd.Context(), opts)
	if err != nil {
		fmt.Println(console.BoldRed(err.Error()))
		return err
	}
	fmt.Printf("\n%s %s\n", console.BrightCyan("Summary workbook:"), console.BrightGreen(result.Workbook))
	return openFile(result.Workbook)
}

// runServe inicia o servidor web até receber SIGINT/SIGTERM.
func (app *CLIApp) runServe(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	addr, _ := cmd.Flags().GetString("addr")
	configFile, _ := cmd.Flags().GetString("config-file")

	if err := log.Init(debug); err != nil {
		return err
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	if addr == "" && configFile != "" {
		cfg, err := config.NewConfigRepository().LoadConfigFile(configFile)
		if err != nil {
			return err
		}
		addr = cfg.ListenAddr
	}
	if addr == "" {
		addr = defaultListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(app.newUseCase(console.NewLoggerConsole(logger)), logger, "")
	return server.Run(ctx, addr)
}
