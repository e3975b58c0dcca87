package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Result is the outcome of decoding one input file. GitCommit is only
// populated by the pre-summarized shape, which carries it at top level.
type Result struct {
	Records   []Record
	GitCommit string
}

// flexInt is an int64 that tolerates the loose typing of harness output:
// numbers (including floats, truncated), numeric strings, null, and any
// other value all decode without error. Anything non-numeric becomes 0.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0

		return nil
	}

	// Unquote string-typed numbers before parsing.
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0

			return nil
		}

		data = []byte(s)
	}

	if v, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*f = flexInt(v)

		return nil
	}

	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*f = flexInt(int64(v))

		return nil
	}

	*f = 0

	return nil
}

// rawDocument is the raw harness output shape ("Shape A"): device info
// lives under context.build and metrics are nested statistic blocks.
type rawDocument struct {
	Context *struct {
		Build struct {
			Model string `json:"model"`
			Brand string `json:"brand"`
		} `json:"build"`
	} `json:"context"`
	Benchmarks []rawBenchmark `json:"benchmarks"`
}

type rawBenchmark struct {
	Name      string `json:"name"`
	ClassName string `json:"className"`
	Metrics   struct {
		TimeNs          rawMetric `json:"timeNs"`
		AllocationCount rawMetric `json:"allocationCount"`
	} `json:"metrics"`
}

type rawMetric struct {
	Minimum flexInt           `json:"minimum"`
	Median  flexInt           `json:"median"`
	Maximum flexInt           `json:"maximum"`
	Runs    []json.RawMessage `json:"runs"`
}

// summaryDocument is the pre-summarized shape ("Shape B"): flat fields
// per benchmark plus top-level device, brand, and commit.
type summaryDocument struct {
	Device     string             `json:"device"`
	Brand      string             `json:"brand"`
	GitCommit  string             `json:"gitCommit"`
	Benchmarks []summaryBenchmark `json:"benchmarks"`
}

type summaryBenchmark struct {
	TestName              string  `json:"testName"`
	MinTimeNs             flexInt `json:"minTimeNs"`
	MedianTimeNs          flexInt `json:"medianTimeNs"`
	MaxTimeNs             flexInt `json:"maxTimeNs"`
	MinAllocationCount    flexInt `json:"minAllocationCount"`
	MedianAllocationCount flexInt `json:"medianAllocationCount"`
	MaxAllocationCount    flexInt `json:"maxAllocationCount"`
	Iterations            flexInt `json:"iterations"`
}

// Decode parses one result file of either shape into canonical records.
// Shape detection is structural: a top-level "context" object marks raw
// harness output, anything else is treated as pre-summarized. Missing
// fields default (strings to "unknown", numerics to 0); only content
// that is not valid JSON is an error.
func Decode(data []byte) (*Result, error) {
	var probe struct {
		Context json.RawMessage `json:"context"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing benchmark file: %w", err)
	}

	if len(probe.Context) > 0 && !bytes.Equal(probe.Context, []byte("null")) {
		return decodeRaw(data)
	}

	return decodeSummary(data)
}

func decodeRaw(data []byte) (*Result, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing raw benchmark file: %w", err)
	}

	device := UnknownValue
	brand := UnknownValue

	if doc.Context != nil {
		device = orUnknown(doc.Context.Build.Model)
		brand = orUnknown(doc.Context.Build.Brand)
	}

	res := &Result{Records: make([]Record, 0, len(doc.Benchmarks))}

	for _, b := range doc.Benchmarks {
		methodName := orUnknown(b.Name)
		className := orUnknown(b.ClassName)

		res.Records = append(res.Records, Record{
			TestName:              className + "." + methodName,
			ClassName:             className,
			MethodName:            methodName,
			MinTimeNs:             int64(b.Metrics.TimeNs.Minimum),
			MedianTimeNs:          int64(b.Metrics.TimeNs.Median),
			MaxTimeNs:             int64(b.Metrics.TimeNs.Maximum),
			MinAllocationCount:    int64(b.Metrics.AllocationCount.Minimum),
			MedianAllocationCount: int64(b.Metrics.AllocationCount.Median),
			MaxAllocationCount:    int64(b.Metrics.AllocationCount.Maximum),
			// Iteration count is the number of recorded runs. When the
			// harness omits the runs array this stays 0 even if timing
			// stats are present.
			Iterations: int64(len(b.Metrics.TimeNs.Runs)),
			Device:     device,
			Brand:      brand,
		})
	}

	return res, nil
}

func decodeSummary(data []byte) (*Result, error) {
	var doc summaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing summarized benchmark file: %w", err)
	}

	device := orUnknown(doc.Device)
	brand := orUnknown(doc.Brand)

	res := &Result{
		Records:   make([]Record, 0, len(doc.Benchmarks)),
		GitCommit: doc.GitCommit,
	}

	for _, b := range doc.Benchmarks {
		testName := orUnknown(b.TestName)
		className, methodName := splitTestName(testName)

		res.Records = append(res.Records, Record{
			TestName:              className + "." + methodName,
			ClassName:             className,
			MethodName:            methodName,
			MinTimeNs:             int64(b.MinTimeNs),
			MedianTimeNs:          int64(b.MedianTimeNs),
			MaxTimeNs:             int64(b.MaxTimeNs),
			MinAllocationCount:    int64(b.MinAllocationCount),
			MedianAllocationCount: int64(b.MedianAllocationCount),
			MaxAllocationCount:    int64(b.MaxAllocationCount),
			Iterations:            int64(b.Iterations),
			Device:                device,
			Brand:                 brand,
		})
	}

	return res, nil
}
