package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/polytechbd/examroutine/internal/assistant"
	"github.com/polytechbd/examroutine/internal/channel"
	"github.com/polytechbd/examroutine/internal/handler"
	appI18n "github.com/polytechbd/examroutine/internal/i18n"
	"github.com/polytechbd/examroutine/internal/model"
	"github.com/polytechbd/examroutine/internal/reminder"
	"github.com/polytechbd/examroutine/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examroutine",
		Short: "Polytechnic exam routine service with a rule-based assistant",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `examroutine --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP routine server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "examroutine.db", "SQLite database path")
	f.StringP("routine", "r", "", "Seed routine JSON file, imported when the database is empty")
	f.StringP("lang", "l", "en", "Service message language (en, bn)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Initial admin password (or set EXAMROUTINE_ADMIN_PASSWORD)")
	f.String("telegram-token", "", "Telegram bot token; empty disables the Telegram channel")
	f.Bool("reminders", true, "Run the reminder delivery loop")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the exam routine as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "examroutine.db", "SQLite database path")
	f.String("department", "", "Only export exams for this department")
	f.String("semester", "", "Only export exams for this semester")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
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

	v.SetEnvPrefix("EXAMROUTINE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examroutine")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examroutine")
	v.AddConfigPath("/etc/examroutine")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// Seed the routine from a JSON file on first run.
	if path := v.GetString("routine"); path != "" {
		if err := loadRoutine(db, path); err != nil {
			return fmt.Errorf("load routine: %w", err)
		}
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	bot := assistant.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if v.GetBool("reminders") {
		svc := reminder.NewService(db, nil)
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("start reminder service: %w", err)
		}
		defer svc.Stop()
	}

	if token := v.GetString("telegram-token"); token != "" {
		tg, err := channel.NewTelegramChannel(token, bot, db)
		if err != nil {
			return fmt.Errorf("create telegram channel: %w", err)
		}
		if err := tg.Start(ctx); err != nil {
			return fmt.Errorf("start telegram channel: %w", err)
		}
		defer tg.Stop()
	}

	cfg := model.AppConfig{
		SecureCookies: v.GetBool("secure-cookies"),
		Lang:          lang,
	}
	h := handler.New(db, bot, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"reminders", v.GetBool("reminders"),
		"telegram", v.GetString("telegram-token") != "",
	)
	return http.ListenAndServe(addr, r)
}

// routineExport is the JSON shape produced by the export command and accepted
// back by --routine seeding.
type routineExport struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Count      int                `json:"count"`
	Exams      []model.ExamRecord `json:"exams"`
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var exams []model.ExamRecord
	dept, sem := v.GetString("department"), v.GetString("semester")
	if dept != "" || sem != "" {
		exams, err = db.ListExamsFiltered(dept, sem)
	} else {
		exams, err = db.ListExams()
	}
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	export := routineExport{
		ExportedAt: time.Now(),
		Count:      len(exams),
		Exams:      exams,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// loadRoutine imports exams from a JSON file when the database is empty.
// The file holds either a bare array of records or an export produced by the
// export command. Malformed records are skipped, not fatal.
func loadRoutine(db *store.Store, path string) error {
	count, err := db.ExamCount()
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("database already has exams, skipping routine seed", "count", count)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var records []model.ExamRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var export routineExport
		if err2 := json.Unmarshal(data, &export); err2 != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		records = export.Exams
	}

	imported, skipped := 0, 0
	for _, rec := range records {
		rec, ok := model.Normalize(rec)
		if !ok {
			skipped++
			continue
		}
		if _, err := db.InsertExam(rec); err != nil {
			return fmt.Errorf("insert exam from %s: %w", path, err)
		}
		imported++
	}

	slog.Info("imported routine", "path", path, "imported", imported, "skipped", skipped)
	return nil
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or EXAMROUTINE_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
