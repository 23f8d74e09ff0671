package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/documind/internal/document"
	"github.com/zombor/documind/internal/scanning"
	"github.com/zombor/documind/internal/server"
	"github.com/zombor/documind/internal/session"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type config struct {
	port           int
	storeType      string
	dbPath         string
	dataDir        string
	scannerType    string
	geminiKey      string
	ocrModel       string
	analysisModel  string
	thinkingBudget int
	vertexProject  string
	vertexRegion   string
	ollamaURL      string
	ollamaModel    string
	rateLimit      float64
	rateBurst      int
	failureReset   time.Duration
	authUser       string
	authPass       string
	logLevel       string
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	var cfg config
	fs := ff.NewFlagSet("documind")
	fs.IntVar(&cfg.port, 0, "port", 8080, "HTTP server port")
	fs.StringVar(&cfg.storeType, 0, "store", "bolt", "Document store: 'bolt' or 'file'")
	fs.StringVar(&cfg.dbPath, 0, "db", "documind.db", "Bolt database file path")
	fs.StringVar(&cfg.dataDir, 0, "data-dir", "./data", "Directory for the file store")
	fs.StringVar(&cfg.scannerType, 0, "scanner", "gemini", "Scanner type: 'gemini', 'vertex' or 'ollama'")
	fs.StringVar(&cfg.geminiKey, 0, "gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY or API_KEY env var)")
	fs.StringVar(&cfg.ocrModel, 0, "ocr-model", scanning.DefaultOCRModel, "Model used for text extraction")
	fs.StringVar(&cfg.analysisModel, 0, "analysis-model", scanning.DefaultAnalysisModel, "Model used for analysis")
	fs.IntVar(&cfg.thinkingBudget, 0, "thinking-budget", scanning.DefaultThinkingBudget, "Reasoning budget for analysis (0 disables)")
	fs.StringVar(&cfg.vertexProject, 0, "vertex-project", "", "Google Cloud project for Vertex AI")
	fs.StringVar(&cfg.vertexRegion, 0, "vertex-region", "us-central1", "Google Cloud region for Vertex AI")
	fs.StringVar(&cfg.ollamaURL, 0, "ollama-url", "http://localhost:11434", "Ollama API base URL")
	fs.StringVar(&cfg.ollamaModel, 0, "ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, bakllava, qwen2-vl)")
	fs.Float64Var(&cfg.rateLimit, 0, "rate-limit", 0, "Maximum model requests per second (0 disables)")
	fs.IntVar(&cfg.rateBurst, 0, "rate-burst", 1, "Model request burst size")
	fs.DurationVar(&cfg.failureReset, 0, "failure-reset", session.DefaultFailureDelay, "How long a failed scan stays visible")
	fs.StringVar(&cfg.authUser, 0, "auth-user", "", "Basic auth username (optional)")
	fs.StringVar(&cfg.authPass, 0, "auth-pass", "", "Basic auth password (optional)")
	fs.StringVar(&cfg.logLevel, 0, "log-level", "info", "Log level: debug, info, warn or error")
	_ = fs.StringLong("config", "", "Config file (optional)")
	showVersion := fs.BoolLong("version", "Show version information")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DOCUMIND"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", cfg.logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shut down")
}

func run(ctx context.Context, cfg config) error {
	kv, closeKV, err := openKV(cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	store := document.NewStore(kv)
	docs := store.LoadAll()
	slog.Info("Loaded scan history", "documents", len(docs))

	client, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.rateLimit > 0 {
		slog.Info("Rate limiting model requests", "per_second", cfg.rateLimit, "burst", cfg.rateBurst)
	}
	client = scanning.NewRateLimited(client, cfg.rateLimit, cfg.rateBurst)

	orch := session.New(store, client, session.Options{FailureDelay: cfg.failureReset})

	basicAuth := server.BasicAuth{
		Username: cfg.authUser,
		Password: cfg.authPass,
	}
	if cfg.authUser != "" || cfg.authPass != "" {
		slog.Info("Basic auth enabled", "user", cfg.authUser)
	}

	return server.NewServer(orch, basicAuth).Run(ctx, fmt.Sprintf(":%d", cfg.port))
}

// openKV opens the configured persistence backend
func openKV(cfg config) (document.KV, func() error, error) {
	switch cfg.storeType {
	case "bolt":
		slog.Info("Initializing database...", "path", cfg.dbPath)
		db, err := document.NewBoltKV(cfg.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing database: %w", err)
		}
		return db, db.Close, nil
	case "file":
		slog.Info("Initializing file store...", "path", cfg.dataDir)
		fkv, err := document.NewFileKV(cfg.dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing file store: %w", err)
		}
		return fkv, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("invalid store type %q: valid types are bolt or file", cfg.storeType)
	}
}

// openClient creates the configured scanning backend
func openClient(ctx context.Context, cfg config) (scanning.Client, error) {
	models := scanning.ModelConfig{
		OCRModel:       cfg.ocrModel,
		AnalysisModel:  cfg.analysisModel,
		ThinkingBudget: int32(cfg.thinkingBudget),
	}

	switch cfg.scannerType {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			apiKey = os.Getenv("API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "ocr_model", models.OCRModel, "analysis_model", models.AnalysisModel)
		client, err := scanning.NewGemini(apiKey, models)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		return client, nil
	case "vertex":
		slog.Info("Initializing Vertex AI scanner...", "project", cfg.vertexProject, "region", cfg.vertexRegion)
		client, err := scanning.NewVertex(ctx, cfg.vertexProject, cfg.vertexRegion, models)
		if err != nil {
			return nil, fmt.Errorf("initializing vertex: %w", err)
		}
		return client, nil
	case "ollama":
		// The Gemini model names mean nothing to Ollama
		models.OCRModel = cfg.ollamaModel
		models.AnalysisModel = cfg.ollamaModel
		slog.Info("Initializing Ollama scanner...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		client, err := scanning.NewOllama(cfg.ollamaURL, models)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("invalid scanner type %q: valid types are gemini, vertex or ollama", cfg.scannerType)
	}
}
