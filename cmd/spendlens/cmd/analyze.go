package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spendlens/cmd/spendlens/config"
	"spendlens/internal/categorizer"
	"spendlens/internal/models"
	"spendlens/internal/parsers"
	"spendlens/internal/recurring"
	"spendlens/internal/reporter"
	apperrors "spendlens/pkg/errors"
	"spendlens/pkg/logger"
)

// Flags for the analyze command
var (
	inputFile     string
	outputFile    string
	outputFormat  string
	rulesDB       string
	openAIKey     string
	openAIModel   string
	noAI          bool
	skipRecurring bool
	strictParse   bool
)

// analyzeCmd runs the full pipeline: parse, categorize, detect recurring
// charges, report
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Categorize a bank statement and detect recurring charges",
	Long: `Analyze parses a bank statement export, assigns every transaction a
spending category and detects recurring subscription charges.

Supported input formats: CSV and delimited text, Excel (.xlsx), OFX/QFX.
The format is detected automatically.

Categorization consults, in priority order: user-taught rules, the merchant
cache, the AI classifier (one batched call per run) and deterministic
heuristics. Without an OpenAI API key the pipeline degrades to heuristics
only.

Examples:
  # Console summary
  spendlens analyze --input statement.csv

  # CSV export with recurring-subscription block
  spendlens analyze --input statement.ofx --output report.csv --output-format csv

  # Persistent learned rules, no AI calls
  spendlens analyze --input export.xlsx --rules-db rules.db --no-ai`,

	PreRunE: validateAnalyzeFlags,
	RunE:    runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to statement export (required)")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default: stdout)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	analyzeCmd.Flags().StringVar(&rulesDB, "rules-db", "", "path to learned-rules database (optional)")
	analyzeCmd.Flags().StringVar(&openAIKey, "openai-key", "", "OpenAI API key (or SPENDLENS_OPENAI_KEY)")
	analyzeCmd.Flags().StringVar(&openAIModel, "openai-model", "", "OpenAI model override")
	analyzeCmd.Flags().BoolVar(&noAI, "no-ai", false, "skip AI classification, heuristics only")
	analyzeCmd.Flags().BoolVar(&skipRecurring, "skip-recurring", false, "skip recurring-charge detection")
	analyzeCmd.Flags().BoolVar(&strictParse, "strict", false, "fail when any row cannot be parsed")

	analyzeCmd.MarkFlagRequired("input")

	viper.BindPFlag("input", analyzeCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", analyzeCmd.Flags().Lookup("output"))
	viper.BindPFlag("output-format", analyzeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("rules-db", analyzeCmd.Flags().Lookup("rules-db"))
	viper.BindPFlag("openai-key", analyzeCmd.Flags().Lookup("openai-key"))
	viper.BindPFlag("openai-model", analyzeCmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("no-ai", analyzeCmd.Flags().Lookup("no-ai"))
	viper.BindPFlag("skip-recurring", analyzeCmd.Flags().Lookup("skip-recurring"))
	viper.BindPFlag("strict", analyzeCmd.Flags().Lookup("strict"))
}

func validateAnalyzeFlags(cmd *cobra.Command, args []string) error {
	inputFile = viper.GetString("input")
	outputFile = viper.GetString("output")
	outputFormat = viper.GetString("output-format")
	rulesDB = viper.GetString("rules-db")
	openAIKey = viper.GetString("openai-key")
	openAIModel = viper.GetString("openai-model")
	noAI = viper.GetBool("no-ai")
	skipRecurring = viper.GetBool("skip-recurring")
	strictParse = viper.GetBool("strict")

	if inputFile == "" {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "input", nil, nil)
	}

	if _, err := config.BuildReportConfig(outputFormat, true); err != nil {
		return err
	}

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	if err := doAnalyze(cmd.Context()); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}

func doAnalyze(ctx context.Context) error {
	log := logger.GetGlobalLogger().WithComponent("analyze")

	data, err := os.ReadFile(inputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.FileError(apperrors.CodeFileNotFound, inputFile, err)
		}
		if os.IsPermission(err) {
			return apperrors.FileError(apperrors.CodeFilePermission, inputFile, err)
		}
		return apperrors.FileError(apperrors.CodeFileCorrupted, inputFile, err)
	}

	parseResult := parsers.ParseUpload(inputFile, data)

	for _, rowErr := range parseResult.Errors {
		log.WithField("detail", rowErr).Warn("Parse issue")
	}

	if len(parseResult.Transactions) == 0 {
		return apperrors.ParseError(apperrors.CodeNoTransactions, 0, "", "", nil).
			WithContext("parse_errors", parseResult.Errors)
	}

	if strictParse && len(parseResult.Errors) > 0 {
		return apperrors.ParseError(apperrors.CodeInvalidData, 0, "rows",
			fmt.Sprintf("%d rows failed", len(parseResult.Errors)), nil).
			WithContext("detail", FormatRowErrors(parseResult.Errors))
	}

	ruleManager, closer, err := config.BuildRuleManager(rulesDB)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	cache := config.BuildCache()
	cache.Start(ctx)
	defer cache.Stop()

	classifier := config.BuildClassifier(openAIKey, openAIModel, noAI)
	if classifier == nil {
		log.Info("No classifier configured, deterministic categorization only")
	}

	pipeline := categorizer.NewPipeline(cache, ruleManager, classifier)
	result := pipeline.Categorize(ctx, parseResult.Transactions)

	var analysis *models.RecurringAnalysis
	if !skipRecurring {
		analysis = recurring.Detect(result.Transactions)
	}

	reportConfig, err := config.BuildReportConfig(outputFormat, !skipRecurring)
	if err != nil {
		return err
	}

	generator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return err
	}

	writer := os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return apperrors.FileError(apperrors.CodeFilePermission, outputFile, err)
		}
		defer file.Close()
		writer = file
	}

	return generator.GenerateReport(result, analysis, writer)
}
