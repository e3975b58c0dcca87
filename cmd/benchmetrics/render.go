package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/config"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/exposition"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/gitinfo"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/history"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/upload"
)

var (
	renderOutput string
	renderRecord bool
	renderUpload bool
)

var renderCmd = &cobra.Command{
	Use:   "render <benchmark-output-dir | results.json>",
	Short: "Render benchmark results to exposition format",
	Long: `Render benchmark result files into Prometheus text exposition format.

A directory argument is scanned recursively for raw harness output files
(*benchmarkData*.json). A file argument is read directly as a single
pre-summarized results file.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "",
		"write the rendered payload to this file instead of stdout")
	renderCmd.Flags().BoolVar(&renderRecord, "record", false,
		"record the run in the history database")
	renderCmd.Flags().BoolVar(&renderUpload, "upload", false,
		"upload the rendered snapshot to configured S3 storage")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading input path: %w", err)
	}

	var (
		records []benchmark.Record
		skipped int
		files   int
		meta    gitinfo.Meta
	)

	if info.IsDir() {
		records, skipped, files, meta = renderDiscovery(cmd, path)
	} else {
		records, meta, err = renderDirect(cmd, path)
		if err != nil {
			return err
		}

		files = 1
	}

	if len(records) == 0 {
		log.Info("No benchmark results extracted")

		return nil
	}

	log.WithField("records", len(records)).Info("Extracted benchmarks")

	lines := exposition.Render(records, meta)
	payload := exposition.Payload(lines)

	log.WithField("lines", len(lines)).Info("Generated metrics")

	if renderOutput != "" {
		if err := os.WriteFile(renderOutput, payload, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}

		log.WithField("path", renderOutput).Info("Metrics written")
	} else {
		if _, err := cmd.OutOrStdout().Write(payload); err != nil {
			return fmt.Errorf("writing metrics to stdout: %w", err)
		}
	}

	if renderRecord {
		if err := recordRun(cmd, cfg, meta, records, files, skipped, len(lines)); err != nil {
			return err
		}
	}

	if renderUpload {
		if err := uploadSnapshot(cmd, cfg, meta, payload); err != nil {
			return err
		}
	}

	return nil
}

// renderDiscovery scans a benchmark output directory for raw harness
// result files. Absence of files is a normal, non-fatal condition.
func renderDiscovery(
	cmd *cobra.Command,
	root string,
) ([]benchmark.Record, int, int, gitinfo.Meta) {
	files := benchmark.Discover(root)
	if len(files) == 0 {
		log.WithField("dir", root).Info("No benchmark files found")

		return nil, 0, 0, gitinfo.Resolve(cmd.Context())
	}

	log.WithField("files", len(files)).Info("Found benchmark files")

	collector := benchmark.NewCollector(log)
	records, skipped := collector.Collect(files)

	return records, skipped, len(files), gitinfo.Resolve(cmd.Context())
}

// renderDirect reads a single pre-summarized results file. The file
// must exist and parse; direct mode has exactly one input and nothing
// to fall back to.
func renderDirect(
	cmd *cobra.Command,
	path string,
) ([]benchmark.Record, gitinfo.Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gitinfo.Meta{}, fmt.Errorf("reading results file: %w", err)
	}

	res, err := benchmark.Decode(data)
	if err != nil {
		return nil, gitinfo.Meta{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	meta := gitinfo.Resolve(cmd.Context())

	// A pre-summarized file carries the commit it was produced from;
	// prefer it over the working tree.
	if res.GitCommit != "" {
		meta.Commit = gitinfo.TruncateCommit(res.GitCommit)
	}

	return res.Records, meta, nil
}

func recordRun(
	cmd *cobra.Command,
	cfg *config.Config,
	meta gitinfo.Meta,
	records []benchmark.Record,
	files, skipped, lines int,
) error {
	if cfg.Database == nil || !cfg.Database.Enabled {
		return fmt.Errorf("--record requires an enabled database section in config")
	}

	store := history.NewStore(log, cfg.Database)
	if err := store.Start(cmd.Context()); err != nil {
		return fmt.Errorf("starting history store: %w", err)
	}

	defer func() {
		if err := store.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop history store")
		}
	}()

	run := &history.Run{
		Commit:  meta.Commit,
		Branch:  meta.Branch,
		Files:   files,
		Skipped: skipped,
		Records: len(records),
		Lines:   lines,
	}

	if err := store.RecordRun(cmd.Context(), run, records); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	log.WithFields(logrus.Fields{
		"run":     run.ID,
		"records": len(records),
	}).Info("Run recorded")

	return nil
}

func uploadSnapshot(
	cmd *cobra.Command,
	cfg *config.Config,
	meta gitinfo.Meta,
	payload []byte,
) error {
	if cfg.Upload == nil || cfg.Upload.S3 == nil || !cfg.Upload.S3.Enabled {
		return fmt.Errorf("--upload requires an enabled upload.s3 section in config")
	}

	uploader, err := upload.NewS3Uploader(log, cfg.Upload.S3)
	if err != nil {
		return fmt.Errorf("creating S3 uploader: %w", err)
	}

	// Fail fast on misconfigured storage before pushing the snapshot.
	if err := uploader.Preflight(cmd.Context()); err != nil {
		return fmt.Errorf("S3 upload preflight check failed: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s-%s.txt",
		time.Now().UTC().Format("20060102T150405Z"), meta.Commit)

	if err := uploader.Push(cmd.Context(), key, payload); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}

	return nil
}
