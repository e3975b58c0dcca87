package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/exposition"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/gitinfo"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/server"
)

const defaultRefreshInterval = 60 * time.Second

var (
	serveFromFile string
	serveStdin    bool
	serveWatch    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rendered metrics snapshot over HTTP",
	Long: `Start the metrics server. The initial snapshot comes from a file
(--from-file), from standard input (--stdin), or from rendering the
configured results directory in-process. With --watch the results
directory is re-rendered periodically and the snapshot replaced.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveFromFile, "from-file", "",
		"serve a previously rendered metrics file")
	serveCmd.Flags().BoolVar(&serveStdin, "stdin", false,
		"read the initial snapshot from standard input")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false,
		"periodically re-render the results directory and replace the snapshot")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveFromFile != "" && serveStdin {
		return fmt.Errorf("--from-file and --stdin are mutually exclusive")
	}

	// Set up context with signal handling.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	initial, err := initialSnapshot(ctx, cfg.Ingest.ResultsDir)
	if err != nil {
		return err
	}

	srv := server.NewServer(log, &cfg.Server, initial)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}

	var refresher server.Refresher

	if serveWatch || cfg.RefreshInterval() > 0 {
		interval := cfg.RefreshInterval()
		if interval <= 0 {
			interval = defaultRefreshInterval
		}

		refresher = server.NewRefresher(log, cfg.Ingest.ResultsDir, interval, srv)

		if err := refresher.Start(ctx); err != nil {
			return fmt.Errorf("starting refresher: %w", err)
		}
	}

	// Wait for shutdown signal.
	sig := <-sigCh
	log.WithField("signal", sig).Info("Shutting down metrics server")
	cancel()

	if refresher != nil {
		if err := refresher.Stop(); err != nil {
			log.WithError(err).Warn("Refresher stop error")
		}
	}

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("stopping metrics server: %w", err)
	}

	return nil
}

// initialSnapshot resolves the payload served before any replacement.
func initialSnapshot(ctx context.Context, resultsDir string) ([]byte, error) {
	switch {
	case serveFromFile != "":
		data, err := os.ReadFile(serveFromFile)
		if err != nil {
			return nil, fmt.Errorf("reading metrics file: %w", err)
		}

		return data, nil

	case serveStdin:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot from stdin: %w", err)
		}

		return data, nil

	default:
		files := benchmark.Discover(resultsDir)
		if len(files) == 0 {
			log.WithField("dir", resultsDir).
				Info("No benchmark files found, serving empty snapshot")

			return nil, nil
		}

		collector := benchmark.NewCollector(log)
		records, _ := collector.Collect(files)
		lines := exposition.Render(records, gitinfo.Resolve(ctx))

		return exposition.Payload(lines), nil
	}
}
