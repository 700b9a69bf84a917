package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"shop-review-tasks/config"
	"shop-review-tasks/handlers"
	"shop-review-tasks/models"
	"shop-review-tasks/services"
)

func main() {
	addr := pflag.String("addr", "", "listen address (default :$PORT)")
	runJob := pflag.String("run", "", "run a single job and exit: assign | sla")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := models.Open(cfg.DatabaseDriver, cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	var notifier services.Notifier
	if cfg.SlackEnabled() {
		notifier = services.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID, cfg.SlackAPIURL)
	} else {
		log.Println("SLACK_BOT_TOKEN is not set, assignment notifications are disabled")
	}
	engine := services.NewEngine(services.NewGormStore(db), notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *runJob != "" {
		if err := runOnce(ctx, engine, *runJob); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if cfg.SchedulerEnabled {
		if err := startScheduler(ctx, cfg, engine); err != nil {
			log.Fatalf("scheduler error: %v", err)
		}
	}

	r := gin.Default()
	handlers.SetupRouter(r, db, engine, cfg.CronSecret)

	listen := *addr
	if listen == "" {
		listen = ":" + cfg.Port
	}
	srv := &http.Server{Addr: listen, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 server listening on %s", listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// runOnce は外部のcronから1回だけジョブを実行するためのモード
func runOnce(ctx context.Context, engine *services.Engine, job string) error {
	switch job {
	case "assign":
		summary := engine.RunDailyAssignment(ctx)
		if !summary.Success {
			return fmt.Errorf("daily task assignment finished with %d errors", len(summary.Errors))
		}
		return nil
	case "sla":
		_, err := engine.SweepOpenTasks(ctx)
		return err
	default:
		return fmt.Errorf("unknown job %q (expected assign or sla)", job)
	}
}

func startScheduler(ctx context.Context, cfg *config.Config, engine *services.Engine) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if _, _, err := services.ParseClockTime(cfg.DailyAssignmentTime); err != nil {
		return fmt.Errorf("invalid DAILY_ASSIGNMENT_TIME %q: %w", cfg.DailyAssignmentTime, err)
	}

	go func() {
		err := services.RunDailyAt(ctx, "daily task assignment", cfg.DailyAssignmentTime, loc, func(ctx context.Context) {
			engine.RunDailyAssignment(ctx)
		})
		if err != nil {
			log.Printf("daily task assignment scheduler stopped: %v", err)
		}
	}()

	go services.RunEvery(ctx, "sla update", cfg.SLASweepInterval, func(ctx context.Context) {
		if _, err := engine.SweepOpenTasks(ctx); err != nil {
			log.Printf("sla update error: %v", err)
		}
	})

	log.Printf("⏰ scheduler started: assignment daily at %s (%s), sla update every %s",
		cfg.DailyAssignmentTime, loc, cfg.SLASweepInterval)
	return nil
}
