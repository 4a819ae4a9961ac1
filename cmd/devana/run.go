package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mahan2079/DeVana-sub002/internal/config"
	"github.com/mahan2079/DeVana-sub002/internal/logging"
	"github.com/mahan2079/DeVana-sub002/internal/optimization"
	"github.com/mahan2079/DeVana-sub002/internal/response"
	"github.com/mahan2079/DeVana-sub002/internal/server"
)

var (
	problemPath string
	algorithm   string
	iters       int
	seed        int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one optimization from a problem file",
	Long:  `Loads a YAML problem definition, runs the selected algorithm to completion, and prints the result as JSON.`,
	RunE:  runProblem,
}

func init() {
	runCmd.Flags().StringVar(&problemPath, "problem", "", "Problem file path (required)")
	runCmd.Flags().StringVar(&algorithm, "algorithm", "", "Override the problem's algorithm")
	runCmd.Flags().IntVar(&iters, "iters", 0, "Override the iteration budget")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Override the random seed")

	runCmd.MarkFlagRequired("problem")
	rootCmd.AddCommand(runCmd)
}

func runProblem(cmd *cobra.Command, args []string) error {
	problem, err := config.LoadProblem(problemPath)
	if err != nil {
		return err
	}
	if algorithm != "" {
		problem.Algorithm = algorithm
	}
	if iters > 0 {
		problem.MaxIterations = iters
	}
	if seed != 0 {
		problem.Seed = seed
	}

	// Same request-level defaults the HTTP service applies, so a problem
	// file that omits its iteration budget runs identically either way.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	problem.ApplyDefaults(cfg)

	if err := problem.Validate(); err != nil {
		return err
	}

	runLogger := logger.WithFields(map[string]interface{}{
		"problem":   problem.Name,
		"algorithm": problem.Algorithm,
	})
	runLogger.Info("Starting optimization")

	evaluator := response.NewModalEvaluator(logging.NewZapLogger(runLogger))
	engine, err := server.BuildEngine(problem, evaluator, logging.NewZapLogger(runLogger), nil)
	if err != nil {
		return err
	}

	var (
		result *optimization.Result
		runErr error
	)
	worker := optimization.NewWorker(engine, optimization.Callbacks{
		OnProgress: func(p optimization.Progress) {
			runLogger.Debug("Progress", map[string]interface{}{
				"iteration": p.Iteration,
				"current":   p.Current,
				"best":      p.Best,
			})
		},
		OnFinished: func(res *optimization.Result) { result = res },
		OnError:    func(err error) { runErr = err },
	})
	if err := worker.Start(); err != nil {
		return err
	}
	<-worker.Done()

	if runErr != nil {
		return runErr
	}

	runLogger.Info("Optimization complete", map[string]interface{}{
		"best":       result.BestFitness,
		"iterations": result.Iterations,
		"converged":  result.Converged,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
