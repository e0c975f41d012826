package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nordlys-media/veracity/internal/bootstrap"
	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/logging"
)

var (
	noHeadlines   bool
	noExplanation bool
	languageHint  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text or URL]",
	Short: "Analyze a claim or article without starting the server",
	Long: `Analyze runs a single submission through the full pipeline and prints the
verdict as JSON. The argument is either the text of a claim or an article
URL whose content is fetched and extracted first. With no argument the text
is read from stdin.

Examples:
  # Analyze a claim
  veracity analyze "The moon is made of cheese"

  # Analyze an article by URL, skipping the generated explanation
  veracity analyze --no-explanation https://example.com/story

  # Analyze text piped from a file
  cat article.txt | veracity analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&noHeadlines, "no-headlines", false, "skip the headline cross-reference signal")
	analyzeCmd.Flags().BoolVar(&noExplanation, "no-explanation", false, "skip the generated explanation signal")
	analyzeCmd.Flags().StringVar(&languageHint, "lang", "", "ISO 639-1 language hint, skips detection")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr at warn level so stdout stays clean verdict JSON.
	level := "warn"
	if cfg.Service.Debug {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:       level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	comps, err := bootstrap.NewComponents(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("assemble components: %w", err)
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	req := domain.NewAnalysisRequest(text)
	req.CrossReference = !noHeadlines
	req.Explain = !noExplanation
	req.LanguageHint = languageHint

	verdict, err := comps.Engine.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// readInput returns the submission text from the argument or from stdin.
func readInput(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
