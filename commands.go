package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/solver"
	"github.com/robalobadob/mastermind/internal/store"
	"github.com/robalobadob/mastermind/internal/tuning"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signalContext()
	defer stop()

	db, err := store.OpenMigrated(ctx, getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	mem := store.NewMemoryStore(6 * time.Hour)
	go mem.RunSweeper(ctx, 10*time.Minute)

	srv := httpserver.New(mem, db, httpserver.ConfigFromEnv())
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting mastermind server")
	if err := srv.Start(ctx, ":"+port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func runLearn(cmd *cobra.Command, args []string) {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := tuning.LoadConfig(learnConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load tuning config")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = learnSeed
	}

	tuner := tuning.New(cfg, solver.DefaultParams(), nil)
	if learnDBPath != "" {
		db, err := store.OpenMigrated(ctx, learnDBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open tuning database")
		}
		defer db.Close()
		tuner.Recorder = tuning.NewSQLRecorder(db)
	}

	rep, err := tuner.Learn(ctx, learnIterations)
	if err != nil {
		if solver.IsInvariant(err) {
			log.Fatal().Err(err).Msg("solver invariant violated")
		}
		log.Fatal().Err(err).Msg("tuning failed")
	}
	log.Info().Str("run", rep.RunID).Float64("initial", rep.Initial).Float64("final", rep.Final).Msg("tuning done")

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep.Params); err != nil {
		log.Fatal().Err(err).Msg("write params")
	}
}

func runEvaluate(cmd *cobra.Command, args []string) {
	ctx, stop := signalContext()
	defer stop()

	workers := evalWorkers
	if workers == 0 {
		workers, _ = strconv.Atoi(getEnv("EVAL_WORKERS", "1"))
	}
	pool, err := mastermind.SamplePool(rand.New(rand.NewSource(evalSeed)), evalPool)
	if err != nil {
		log.Fatal().Err(err).Int("pool", evalPool).Msg("sample pool")
	}

	ev := solver.NewEvaluator(workers)
	start := time.Now()
	var res solver.Result
	if evalPrecision > 0 {
		res, err = ev.EvaluateAdaptiveResult(ctx, pool, evalPrecision, solver.DefaultParams())
	} else {
		res, err = ev.EvaluateExactResult(ctx, pool, solver.DefaultParams())
	}
	if err != nil {
		if solver.IsInvariant(err) {
			log.Fatal().Err(err).Msg("solver invariant violated")
		}
		log.Fatal().Err(err).Msg("evaluation failed")
	}
	log.Info().Int("pool", len(pool)).Int("games", res.Games).Bool("settled", res.Settled).Dur("took", time.Since(start)).Msg("evaluation done")
	fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", res.Average)
}

func runSolve(cmd *cobra.Command, args []string) {
	secret, err := mastermind.Parse(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("parse secret")
	}
	trace, err := solver.NewSimulator(solver.DefaultParams()).Trace(secret)
	if err != nil {
		log.Fatal().Err(err).Msg("solve")
	}
	out := cmd.OutOrStdout()
	for _, st := range trace.Steps {
		fmt.Fprintf(out, "%2d  %s  %-4s  (%d candidates)\n", st.Round, st.Guess, st.Feedback, st.Remaining)
	}
	if trace.Solved {
		fmt.Fprintf(out, "solved %s in %d rounds\n", secret, trace.Rounds)
	} else {
		fmt.Fprintf(out, "gave up on %s after %d rounds\n", secret, len(trace.Steps))
	}
}
