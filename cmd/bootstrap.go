package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/logger"
	"deep-agent/pkg/metrics"
	"deep-agent/pkg/overrides"
	"deep-agent/pkg/utils"
)

// components are the wired evaluation core the CLI commands run against
type components struct {
	db        *database.SQLiteDB
	overrides *overrides.Service
	evaluator *evaluation.Evaluator
	trigger   *evaluation.Trigger
	logger    utils.ExtendedLogger
}

// buildComponents opens the database from the --db flag and wires the
// evaluation core on top of it. Callers own the returned close function.
func buildComponents() (*components, func(), error) {
	level := viper.GetString("log-level")
	if viper.GetBool("debug") {
		level = "debug"
	}
	log, err := logger.CreateLogger(viper.GetString("log-file"), level, viper.GetString("log-format"), true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewSQLiteDB(viper.GetString("db"))
	if err != nil {
		log.Close()
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	overrideService, err := overrides.NewService(db, log)
	if err != nil {
		db.Close()
		log.Close()
		return nil, nil, err
	}

	source, err := metrics.NewSQLiteSource(db)
	if err != nil {
		db.Close()
		log.Close()
		return nil, nil, err
	}

	evaluator, err := evaluation.NewEvaluator(source, evaluation.DefaultEvaluatorConfig(), log)
	if err != nil {
		db.Close()
		log.Close()
		return nil, nil, err
	}

	trigger, err := evaluation.NewTrigger(evaluator, db, log)
	if err != nil {
		db.Close()
		log.Close()
		return nil, nil, err
	}

	cleanup := func() {
		db.Close()
		log.Close()
	}

	return &components{
		db:        db,
		overrides: overrideService,
		evaluator: evaluator,
		trigger:   trigger,
		logger:    log,
	}, cleanup, nil
}
