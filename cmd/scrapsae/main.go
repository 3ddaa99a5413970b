package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/analyze"
	"github.com/oscarfg78/ScrapSAE-sub000/engine"
	"github.com/oscarfg78/ScrapSAE-sub000/gemini"
	"github.com/oscarfg78/ScrapSAE-sub000/goquery"
	"github.com/oscarfg78/ScrapSAE-sub000/htmltomarkdown"
	scraphttp "github.com/oscarfg78/ScrapSAE-sub000/http"
	"github.com/oscarfg78/ScrapSAE-sub000/rod"
	scrapslog "github.com/oscarfg78/ScrapSAE-sub000/slog"
	"github.com/oscarfg78/ScrapSAE-sub000/sqlite"
	"github.com/oscarfg78/ScrapSAE-sub000/trafilatura"
	"google.golang.org/genai"
)

// requestsPerSecond is the per-domain navigation rate.
const requestsPerSecond = 1.0

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrapsae"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrapsae --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SCRAPSAE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Sites = sqlite.NewSiteService(m.DB)
	deps.Staging = sqlite.NewStagingSink(m.DB)
	deps.Metrics = sqlite.NewMetricsService(m.DB)
	deps.Audit = sqlite.NewAuditService(m.DB)
	deps.Patterns = sqlite.NewPatternService(m.DB)

	// The browser, AI provider and engine are only needed by "run".
	if cmd == "run" {
		pool, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer pool.Close()

		diagnostics := sqlite.NewDiagnosticSink(m.DB)

		eng := &engine.Engine{
			Pool:        pool,
			Classifier:  scrapslog.NewLoggingClassifier(goquery.NewPageClassifier(), deps.Logger),
			Links:       goquery.NewLinkExtractor(),
			Staging:     scrapslog.NewLoggingStagingSink(deps.Staging, deps.Logger),
			SyncLog:     sqlite.NewSyncLogSink(m.DB),
			Metrics:     deps.Metrics,
			Diagnostics: diagnostics,
			Patterns:    deps.Patterns,
			Sitemaps:    scrapslog.NewLoggingSitemapService(scraphttp.NewSitemapService(nil), deps.Logger),
			Converter:   htmltomarkdown.NewConverter(),
			Extractor:   trafilatura.NewExtractor(),
			Limiter:     engine.NewDomainLimiter(requestsPerSecond),
			Learner:     analyze.NewLearner(deps.Patterns, deps.Logger),
			Logger:      deps.Logger,
		}

		// Selector inference needs a Gemini key; without one the
		// analyzer degrades to fallback promotion.
		var inference scrapsae.Inference
		if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  apiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
				return fmt.Errorf("failed to connect to Gemini API: %w", err)
			}
			inference = scrapslog.NewLoggingInference(gemini.NewInference(client), deps.Logger)
		}

		analyzer := analyze.NewAnalyzer(deps.Sites, deps.Audit, inference, diagnostics, deps.Logger)
		deps.Controller = engine.NewController(eng, deps.Sites, analyzer, deps.Logger)
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("SCRAPSAE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "scrapsae.db"
	}
	dir := filepath.Join(home, ".scrapsae")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "scrapsae.db")
}
