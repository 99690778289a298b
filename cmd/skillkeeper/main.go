package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ganot/skillkeeper/internal/config"
	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/domain/evidence"
	"github.com/ganot/skillkeeper/internal/domain/report"
	"github.com/ganot/skillkeeper/internal/domain/training"
	"github.com/ganot/skillkeeper/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	catalogRepo := sqlite.NewCatalogRepository(db)
	competencyRepo := sqlite.NewCompetencyRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	trainingEvidenceRepo := sqlite.NewExternalTrainingRepository(db)
	practiceRepo := sqlite.NewPracticeRepository(db)
	trainingRepo := sqlite.NewTrainingRepository(db)

	competencySvc := competency.NewService(competencyRepo, catalogRepo, competencyRepo, logger)
	evidenceSvc := evidence.NewService(sessionRepo, trainingEvidenceRepo, practiceRepo, catalogRepo, competencySvc, db, logger)
	trainingSvc := training.NewService(trainingRepo, thresholdsFromConfig(cfg.Compliance), logger)
	reportSvc := report.NewService(
		competencyRepo,
		catalogRepo,
		sqlite.EvidenceCounts{Sessions: sessionRepo, Trainings: trainingEvidenceRepo},
		trainingRepo,
		trainingSvc,
		logger,
	)
	ctx := context.Background()
	now := time.Now().UTC()

	switch cmd := argAt(1); cmd {
	case "overview":
		overview, err := reportSvc.Overview(ctx, now)
		if err != nil {
			logger.Error("overview failed", "error", err)
			os.Exit(1)
		}
		printJSON(overview)
	case "compliance":
		userID := argAt(2)
		if userID == "" {
			fmt.Fprintln(os.Stderr, "usage: skillkeeper compliance <user-id>")
			os.Exit(2)
		}
		snap, err := trainingSvc.Snapshot(ctx, userID, now)
		if err != nil {
			logger.Error("compliance snapshot failed", "user_id", userID, "error", err)
			os.Exit(1)
		}
		printJSON(snap)
	case "recycling":
		userID := argAt(2)
		if userID == "" {
			fmt.Fprintln(os.Stderr, "usage: skillkeeper recycling <user-id>")
			os.Exit(2)
		}
		if err := printRecycling(ctx, competencySvc, userID, now); err != nil {
			logger.Error("recycling report failed", "user_id", userID, "error", err)
			os.Exit(1)
		}
	case "approve-training":
		trainingID, validatorID := argAt(2), argAt(3)
		if trainingID == "" || validatorID == "" {
			fmt.Fprintln(os.Stderr, "usage: skillkeeper approve-training <training-id> <validator-id>")
			os.Exit(2)
		}
		result, err := evidenceSvc.ApproveExternalTraining(ctx, trainingID, validatorID)
		if err != nil {
			logger.Error("approval failed", "training_id", trainingID, "error", err)
			os.Exit(1)
		}
		printJSON(result)
	case "reject-training":
		trainingID, validatorID := argAt(2), argAt(3)
		if trainingID == "" || validatorID == "" {
			fmt.Fprintln(os.Stderr, "usage: skillkeeper reject-training <training-id> <validator-id>")
			os.Exit(2)
		}
		if err := evidenceSvc.RejectExternalTraining(ctx, trainingID, validatorID); err != nil {
			logger.Error("rejection failed", "training_id", trainingID, "error", err)
			os.Exit(1)
		}
		fmt.Println("rejected")
	default:
		fmt.Fprintln(os.Stderr, "usage: skillkeeper <overview|compliance|recycling|approve-training|reject-training> [args]")
		os.Exit(2)
	}
}

func printRecycling(ctx context.Context, svc *competency.Service, userID string, asOf time.Time) error {
	comps, err := svc.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	type line struct {
		CompetencyID string                     `json:"competency_id"`
		SkillID      string                     `json:"skill_id"`
		Status       competency.RecyclingStatus `json:"status"`
	}
	lines := make([]line, 0, len(comps))
	for _, comp := range comps {
		status, err := svc.Status(ctx, comp.ID, asOf)
		if err != nil {
			return err
		}
		lines = append(lines, line{CompetencyID: comp.ID, SkillID: comp.SkillID, Status: status})
	}
	printJSON(lines)
	return nil
}

func thresholdsFromConfig(cfg config.ComplianceConfig) training.Thresholds {
	return training.Thresholds{
		WindowYears:       cfg.WindowYears,
		RequiredDays:      cfg.RequiredDays,
		HoursPerDay:       cfg.HoursPerDay,
		MinLiveRatio:      cfg.MinLiveRatio,
		AtRiskWindowYears: cfg.AtRiskYears,
		AtRiskDays:        cfg.AtRiskDays,
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
}

func argAt(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
