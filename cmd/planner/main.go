package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/civicbriefs/planner/internal/bank"
	"github.com/civicbriefs/planner/internal/handler"
	"github.com/civicbriefs/planner/internal/llm"
	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/planner"
	"github.com/civicbriefs/planner/internal/section"
	"github.com/civicbriefs/planner/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Test composition and adaptive study planning for exam preparation",
	}

	serve := serveCmd()
	root.AddCommand(serve, seedCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `planner --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP planner server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "planner.db", "SQLite database path (\"memory\" for in-memory store)")
	f.String("openai-key", "", "OpenAI API key (empty disables LLM plan enrichment)")
	f.String("openai-url", "", "OpenAI-compatible API base URL (empty for default)")
	f.String("openai-model", "gpt-4o-mini", "LLM model name")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import question JSON files into the database",
		RunE:  runSeed,
	}
	f := cmd.Flags()
	f.String("db", "planner.db", "SQLite database path")
	f.StringSliceP("questions", "q", nil, "Paths to questions JSON files (repeatable)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("questions")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("planner")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/planner")
	v.AddConfigPath("/etc/planner")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func openStore(path string) (store.Store, error) {
	if path == "memory" {
		return store.NewMemory(), nil
	}
	return store.NewSQLite(path)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	qbank := bank.NewSeeded(uint64(time.Now().UnixNano()))

	opts := []planner.Option{}
	if key := v.GetString("openai-key"); key != "" {
		client := llm.New(key, v.GetString("openai-url"), v.GetString("openai-model"))
		opts = append(opts, planner.WithEnricher(client))
		slog.Info("LLM plan enrichment enabled", "model", v.GetString("openai-model"))
	} else {
		slog.Info("LLM plan enrichment disabled, using deterministic plans")
	}

	engine := planner.New(db, qbank, opts...)
	h := handler.New(engine)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
	)
	return http.ListenAndServe(addr, r)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.NewSQLite(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return loadQuestions(context.Background(), db, v.GetStringSlice("questions"))
}

func loadQuestions(ctx context.Context, db *store.SQLite, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}

		if storedHash == hash {
			slog.Info("questions file unchanged, skipping", "path", path)
			continue
		}
		if storedHash != "" {
			slog.Warn("questions file changed since last import, skipping to avoid duplicate rows",
				"path", path)
			continue
		}

		var questions []model.QuestionImport
		if err := json.Unmarshal(data, &questions); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		imported := 0
		for _, qi := range questions {
			key, ok := section.Canonicalize(qi.Subject)
			if !ok {
				slog.Warn("skipping question with unknown subject", "path", path, "subject", qi.Subject)
				continue
			}
			_, err := db.InsertQuestion(ctx, model.Question{
				ID:            qi.QuestionID,
				Section:       key,
				SectionLabel:  section.Label(key),
				Subject:       qi.Subject,
				Topic:         qi.Topic,
				Difficulty:    qi.Difficulty,
				Prompt:        qi.Question,
				Options:       qi.Options,
				CorrectAnswer: qi.CorrectAnswer,
			})
			if err != nil {
				return fmt.Errorf("insert question from %s: %w", path, err)
			}
			imported++
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported questions", "path", path, "count", imported)
	}

	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
