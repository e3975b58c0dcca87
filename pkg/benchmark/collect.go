package benchmark

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Collector runs the decoder over a set of discovered files and
// accumulates the records of one ingestion run.
type Collector struct {
	log logrus.FieldLogger
}

// NewCollector creates a collector that reports per-file failures on log.
func NewCollector(log logrus.FieldLogger) *Collector {
	return &Collector{
		log: log.WithField("component", "collector"),
	}
}

// Collect decodes every file in order and concatenates the results.
// A file that cannot be read or parsed is logged with its identity and
// skipped; a single corrupt file never aborts the batch. The returned
// count is the number of skipped files.
func (c *Collector) Collect(files []string) ([]Record, int) {
	var (
		records []Record
		skipped int
	)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			c.log.WithError(err).
				WithField("file", filepath.Base(path)).
				Warn("Failed to read benchmark file")

			skipped++

			continue
		}

		res, err := Decode(data)
		if err != nil {
			c.log.WithError(err).
				WithField("file", filepath.Base(path)).
				Warn("Failed to decode benchmark file")

			skipped++

			continue
		}

		records = append(records, res.Records...)
	}

	return records, skipped
}
