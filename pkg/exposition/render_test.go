package exposition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/gitinfo"
)

var testMeta = gitinfo.Meta{Commit: "abc1234", Branch: "main"}

func fullRecord() benchmark.Record {
	return benchmark.Record{
		TestName:              "com.x.Y.bench1",
		ClassName:             "com.x.Y",
		MethodName:            "bench1",
		MinTimeNs:             10,
		MedianTimeNs:          20,
		MaxTimeNs:             30,
		MinAllocationCount:    1,
		MedianAllocationCount: 2,
		MaxAllocationCount:    3,
		Iterations:            5,
		Device:                "Pixel",
		Brand:                 "Google",
	}
}

func TestRender_AllFamilies(t *testing.T) {
	lines := Render([]benchmark.Record{fullRecord()}, testMeta)
	require.Len(t, lines, 7)

	labels := `test="com.x.Y.bench1",class="com.x.Y",method="bench1",` +
		`branch="main",device="Pixel",brand="Google",commit="abc1234"`

	expected := []string{
		`android_benchmark_time_ns{` + labels + `,stat="min"} 10`,
		`android_benchmark_time_ns{` + labels + `,stat="median"} 20`,
		`android_benchmark_time_ns{` + labels + `,stat="max"} 30`,
		`android_benchmark_allocations{` + labels + `,stat="min"} 1`,
		`android_benchmark_allocations{` + labels + `,stat="median"} 2`,
		`android_benchmark_allocations{` + labels + `,stat="max"} 3`,
		`android_benchmark_iterations{` + labels + `} 5`,
	}

	assert.Equal(t, expected, lines)
}

func TestRender_MedianGating(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*benchmark.Record)
		want   int
	}{
		{
			name:   "zero median time drops all time lines",
			mutate: func(r *benchmark.Record) { r.MedianTimeNs = 0 },
			want:   4,
		},
		{
			name:   "zero median allocations drops all allocation lines",
			mutate: func(r *benchmark.Record) { r.MedianAllocationCount = 0 },
			want:   4,
		},
		{
			name:   "zero iterations drops the iterations line",
			mutate: func(r *benchmark.Record) { r.Iterations = 0 },
			want:   6,
		},
		{
			name: "all-zero record emits nothing",
			mutate: func(r *benchmark.Record) {
				r.MedianTimeNs = 0
				r.MedianAllocationCount = 0
				r.Iterations = 0
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fullRecord()
			tt.mutate(&rec)

			lines := Render([]benchmark.Record{rec}, testMeta)
			assert.Len(t, lines, tt.want)
		})
	}
}

func TestRender_NonZeroMinMaxEmittedWithZeroValues(t *testing.T) {
	// All three stat variants are on or off together; a positive median
	// drags zero min/max values along with it.
	rec := fullRecord()
	rec.MinTimeNs = 0
	rec.MaxTimeNs = 0

	lines := Render([]benchmark.Record{rec}, testMeta)
	require.Len(t, lines, 7)
	assert.True(t, strings.HasSuffix(lines[0], `,stat="min"} 0`))
	assert.True(t, strings.HasSuffix(lines[2], `,stat="max"} 0`))
}

func TestRender_InsertionOrderAcrossRecords(t *testing.T) {
	recA := fullRecord()
	recB := fullRecord()
	recB.TestName = "com.x.Y.bench2"
	recB.MethodName = "bench2"

	lines := Render([]benchmark.Record{recB, recA}, testMeta)
	require.Len(t, lines, 14)

	// No sorting by name: recB's lines come first because it was first.
	assert.Contains(t, lines[0], `method="bench2"`)
	assert.Contains(t, lines[7], `method="bench1"`)
}

func TestRender_EndToEndSpecSample(t *testing.T) {
	res, err := benchmark.Decode([]byte(`{
	  "context": {"build": {"model": "Pixel", "brand": "Google"}},
	  "benchmarks": [
	    {
	      "name": "bench1",
	      "className": "com.x.Y",
	      "metrics": {
	        "timeNs": {"minimum": 10, "median": 20, "maximum": 30, "runs": [1, 2, 3]},
	        "allocationCount": {"minimum": 0, "median": 0, "maximum": 0}
	      }
	    }
	  ]
	}`))
	require.NoError(t, err)

	lines := Render(res.Records, testMeta)
	require.Len(t, lines, 4)

	assert.True(t, strings.HasSuffix(lines[0], `,stat="min"} 10`))
	assert.True(t, strings.HasSuffix(lines[1], `,stat="median"} 20`))
	assert.True(t, strings.HasSuffix(lines[2], `,stat="max"} 30`))
	assert.True(t, strings.HasPrefix(lines[3], "android_benchmark_iterations{"))
	assert.True(t, strings.HasSuffix(lines[3], "} 3"))

	for _, line := range lines[:3] {
		assert.True(t, strings.HasPrefix(line, "android_benchmark_time_ns{"))
		assert.Contains(t, line, `device="Pixel"`)
		assert.Contains(t, line, `brand="Google"`)
	}
}

func TestEscapeLabelValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no quotes unchanged", input: "com.x.Y", want: "com.x.Y"},
		{name: "single quote escaped", input: `say "hi"`, want: `say \"hi\"`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLabelValue(tt.input))
		})
	}

	// Round trip: un-escaping a rendered value yields the original.
	original := `a "quoted" name`
	escaped := EscapeLabelValue(original)
	assert.Equal(t, original, strings.ReplaceAll(escaped, `\"`, `"`))

	// Idempotent on quote-free inputs.
	assert.Equal(t, "plain", EscapeLabelValue(EscapeLabelValue("plain")))
}

func TestPayload(t *testing.T) {
	assert.Empty(t, Payload(nil))
	assert.Equal(t, []byte("a 1\n"), Payload([]string{"a 1"}))
	assert.Equal(t, []byte("a 1\nb 2\n"), Payload([]string{"a 1", "b 2"}))
}
