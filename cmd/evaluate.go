package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/o1-assessor/internal/assessment"
	"github.com/spigell/o1-assessor/internal/criteria"
	"github.com/spigell/o1-assessor/internal/document"
	"github.com/spigell/o1-assessor/internal/logger"
	"github.com/spigell/o1-assessor/internal/report"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <resume-file>",
	Short: "Rate a résumé against every criterion and print the eligibility verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return evaluate(cmd.Context(), cmd.OutOrStdout(), args[0], output)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().BoolP("verbose", "v", false, "include chain-of-thought reasoning in the report")
	evaluateCmd.Flags().Duration("deadline", 60*time.Second, "abort the whole assessment after this long (0 disables)")
	evaluateCmd.Flags().StringP("format", "f", string(report.FormatJSON), "report format: json or markdown")
	evaluateCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")

	viper.BindPFlag("verbose", evaluateCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("deadline", evaluateCmd.Flags().Lookup("deadline"))
	viper.BindPFlag("format", evaluateCmd.Flags().Lookup("format"))
}

// evaluate runs one assessment and writes the report.
func evaluate(ctx context.Context, stdout io.Writer, resumePath, output string) error {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Printf("creating a logger: %s", err)
		return err
	}
	defer func() { _ = zlog.Sync() }()

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	zlog.Info("starting the o1-assessor", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	format, err := report.ParseFormat(config.Format)
	if err != nil {
		return err
	}

	info, err := loadCatalog(config.CriteriaFile)
	if err != nil {
		return err
	}

	text, err := document.Load(resumePath)
	if err != nil {
		return err
	}

	zlog.Info("résumé loaded",
		zap.String("file", resumePath),
		zap.Int("characters", len([]rune(text))),
		zap.Strings("criteria", info.Names()),
	)

	gen, err := newGenerator(ctx, config.AI, zlog)
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	provider := normalizeProvider(config.AI.Provider)
	evaluator := assessment.NewEvaluator(gen, logger.WithCommonFields(zlog, provider, gen.Model()), config.AI.MaxLogLength)
	analyzer := assessment.NewAnalyzer(evaluator, config.Policy, zlog)

	if config.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Deadline)
		defer cancel()
	}

	run, err := analyzer.Analyze(ctx, text, info)
	if err != nil {
		return err
	}

	if !config.Verbose {
		run = run.Redacted()
	}

	w := stdout
	if output = strings.TrimSpace(output); output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := report.Write(w, format, run); err != nil {
		return err
	}

	if output != "" {
		zlog.Info("report written", zap.String("filename", output))
	}
	return nil
}

func loadCatalog(path string) (*criteria.VisaInfo, error) {
	if path = strings.TrimSpace(path); path == "" {
		return criteria.Default()
	}
	return criteria.Load(path)
}
