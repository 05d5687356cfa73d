package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/api"
	"github.com/example/examtrainer/internal/cache"
	"github.com/example/examtrainer/internal/config"
	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/internal/excel"
	"github.com/example/examtrainer/internal/mastery"
	"github.com/example/examtrainer/internal/scheduler"
	"github.com/example/examtrainer/internal/selection"
	"github.com/example/examtrainer/internal/submission"
)

func main() {
	importFile := flag.String("import", "", "import questions from the given .xlsx or .csv file and exit")
	flag.Parse()

	// .env is optional; real deployments configure the environment directly.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	driver, dsn := cfg.Driver()
	if err := database.Connect(driver, dsn); err != nil {
		sugar.Fatalw("failed to connect to database", "driver", driver, "error", err)
	}
	defer database.Close()

	if *importFile != "" {
		runImport(sugar, *importFile)
		return
	}

	users := database.NewUserRepository()
	questions := database.NewQuestionRepository()
	progress := database.NewUserProgressRepository()
	events := database.NewAnswerEventRepository()

	counts := cache.NewCatalogCounts(cfg.CacheTTL, questions.CountByCatalog)
	selector := selection.New(users, questions, sugar)
	coordinator := submission.New(users, progress, events, counts, sugar)
	aggregator := mastery.New(users, progress, events, cfg.MasteryStrict, cfg.DefaultDailyGoal, sugar)

	sched := scheduler.New(counts, sugar)
	sched.Start()
	defer sched.Stop()

	server := api.New(users, questions, selector, coordinator, aggregator, counts, cfg.DayLocation, sugar)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	go func() {
		sugar.Infow("listening", "addr", httpServer.Addr, "db", cfg.DBType)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server stopped", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	sugar.Infow("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("shutdown error", "error", err)
	}
}

func runImport(sugar *zap.SugaredLogger, path string) {
	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = path

	result, err := excel.ImportQuestions(context.Background(), importCfg)
	if err != nil {
		sugar.Fatalw("import failed", "file", path, "error", err)
	}
	sugar.Infow("import finished",
		"file", path,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	for _, msg := range result.Errors {
		sugar.Warnw("import row error", "error", msg)
	}
}

func buildLogger(mode string) (*zap.Logger, error) {
	if mode == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
