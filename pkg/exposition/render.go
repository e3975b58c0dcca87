// Package exposition renders benchmark records into Prometheus text
// exposition format lines.
package exposition

import (
	"fmt"
	"strings"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/gitinfo"
)

// Metric family names.
const (
	MetricTimeNs      = "android_benchmark_time_ns"
	MetricAllocations = "android_benchmark_allocations"
	MetricIterations  = "android_benchmark_iterations"
)

// ContentType is the scrape response content type for the text
// exposition format.
const ContentType = "text/plain; version=0.0.4"

// Render converts records into exposition format lines, in insertion
// order. Per record the families are emitted time, allocations,
// iterations; stat variants in min, median, max order. A family whose
// median is zero is suppressed entirely so placeholder rows never reach
// the time series. Lines carry no timestamp; the scraper assigns one.
func Render(records []benchmark.Record, meta gitinfo.Meta) []string {
	lines := make([]string, 0, len(records)*7)

	for _, rec := range records {
		labels := labelSet(rec, meta)

		if rec.MedianTimeNs > 0 {
			lines = append(lines,
				statLine(MetricTimeNs, labels, "min", rec.MinTimeNs),
				statLine(MetricTimeNs, labels, "median", rec.MedianTimeNs),
				statLine(MetricTimeNs, labels, "max", rec.MaxTimeNs),
			)
		}

		if rec.MedianAllocationCount > 0 {
			lines = append(lines,
				statLine(MetricAllocations, labels, "min", rec.MinAllocationCount),
				statLine(MetricAllocations, labels, "median", rec.MedianAllocationCount),
				statLine(MetricAllocations, labels, "max", rec.MaxAllocationCount),
			)
		}

		if rec.Iterations > 0 {
			lines = append(lines, fmt.Sprintf(
				"%s{%s} %d", MetricIterations, labels, rec.Iterations,
			))
		}
	}

	return lines
}

// Payload joins rendered lines into a servable scrape body with a
// trailing newline. An empty line set yields an empty payload.
func Payload(lines []string) []byte {
	if len(lines) == 0 {
		return []byte{}
	}

	return []byte(strings.Join(lines, "\n") + "\n")
}

// labelSet builds the shared label pairs for one record.
func labelSet(rec benchmark.Record, meta gitinfo.Meta) string {
	return fmt.Sprintf(
		`test="%s",class="%s",method="%s",branch="%s",device="%s",brand="%s",commit="%s"`,
		EscapeLabelValue(rec.TestName),
		EscapeLabelValue(rec.ClassName),
		EscapeLabelValue(rec.MethodName),
		EscapeLabelValue(meta.Branch),
		EscapeLabelValue(rec.Device),
		EscapeLabelValue(rec.Brand),
		EscapeLabelValue(meta.Commit),
	)
}

// statLine formats one metric observation with a stat variant label.
func statLine(name, labels, stat string, value int64) string {
	return fmt.Sprintf(`%s{%s,stat="%s"} %d`, name, labels, stat, value)
}

// EscapeLabelValue escapes a label value for the exposition format by
// replacing every double quote with \". No other escaping is applied.
func EscapeLabelValue(v string) string {
	return strings.ReplaceAll(v, `"`, `\"`)
}
