package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

var (
	rootCmd = &cobra.Command{
		Use:   "mastermind",
		Short: "Mastermind solver, weight tuner and game server",
		Long: `Plays Mastermind (4 positions, 8 symbols) with a weighted-elimination
heuristic, evaluates it over pools of secrets, tunes its weights by hill
climbing and serves games and hints over HTTP.`,
		SilenceUsage: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Run:   runServe,
	}
	learnCmd = &cobra.Command{
		Use:   "learn",
		Short: "Tune the heuristic's weights and bias by hill climbing",
		Run:   runLearn,
	}
	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Average number of rounds the default heuristic needs over a pool of secrets",
		Run:   runEvaluate,
	}
	solveCmd = &cobra.Command{
		Use:   "solve [secret]",
		Short: "Print the solver's game against a secret such as ABCD",
		Args:  cobra.ExactArgs(1),
		Run:   runSolve,
	}

	learnIterations int
	learnConfigPath string
	learnSeed       int64
	learnDBPath     string

	evalPool      int
	evalPrecision float64
	evalSeed      int64
	evalWorkers   int
)

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		setupLogging()
		if err := mastermind.Init(); err != nil {
			log.Fatal().Err(err).Msg("failed to build combination universe")
		}
	}

	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().IntVarP(&learnIterations, "iterations", "n", 10, "Number of tuning cycles")
	learnCmd.Flags().StringVar(&learnConfigPath, "config", "tuning.yaml", "Tuning config file (optional)")
	learnCmd.Flags().Int64Var(&learnSeed, "seed", 0, "Sampling seed; overrides the config when set")
	learnCmd.Flags().StringVar(&learnDBPath, "db", "", "SQLite file to record run history in")

	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().IntVar(&evalPool, "pool", mastermind.Size, "Number of secrets to sample")
	evaluateCmd.Flags().Float64Var(&evalPrecision, "precision", 0, "Stop early once the running mean settles within this bound (0 plays the whole pool)")
	evaluateCmd.Flags().Int64Var(&evalSeed, "seed", 1, "Sampling seed")
	evaluateCmd.Flags().IntVar(&evalWorkers, "workers", 0, "Parallel games for exact evaluation (0 reads EVAL_WORKERS)")

	rootCmd.AddCommand(solveCmd)
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func setupLogging() {
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if getEnv("LOG_FORMAT", "json") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
