package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawFixture = `{
  "context": {
    "build": {"model": "Pixel", "brand": "Google"}
  },
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
}`

func TestDecode_RawShape(t *testing.T) {
	res, err := Decode([]byte(rawFixture))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "com.x.Y.bench1", rec.TestName)
	assert.Equal(t, "com.x.Y", rec.ClassName)
	assert.Equal(t, "bench1", rec.MethodName)
	assert.Equal(t, int64(10), rec.MinTimeNs)
	assert.Equal(t, int64(20), rec.MedianTimeNs)
	assert.Equal(t, int64(30), rec.MaxTimeNs)
	assert.Equal(t, int64(0), rec.MedianAllocationCount)
	assert.Equal(t, int64(3), rec.Iterations)
	assert.Equal(t, "Pixel", rec.Device)
	assert.Equal(t, "Google", rec.Brand)
	assert.Empty(t, res.GitCommit)
}

func TestDecode_RawShapeMissingRuns(t *testing.T) {
	// Timing stats without a runs array still report zero iterations.
	res, err := Decode([]byte(`{
	  "context": {"build": {"model": "Pixel", "brand": "Google"}},
	  "benchmarks": [
	    {"name": "b", "className": "c", "metrics": {
	      "timeNs": {"minimum": 1, "median": 2, "maximum": 3}
	    }}
	  ]
	}`))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, int64(0), res.Records[0].Iterations)
	assert.Equal(t, int64(2), res.Records[0].MedianTimeNs)
}

func TestDecode_SummarizedShape(t *testing.T) {
	res, err := Decode([]byte(`{
	  "device": "Pixel 6",
	  "brand": "Google",
	  "gitCommit": "0123456789abcdef",
	  "benchmarks": [
	    {
	      "testName": "com.example.FooBenchmark.doWork",
	      "minTimeNs": 100,
	      "medianTimeNs": 200,
	      "maxTimeNs": 300,
	      "minAllocationCount": 4,
	      "medianAllocationCount": 5,
	      "maxAllocationCount": 6,
	      "iterations": 50
	    }
	  ]
	}`))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "com.example.FooBenchmark.doWork", rec.TestName)
	assert.Equal(t, "com.example.FooBenchmark", rec.ClassName)
	assert.Equal(t, "doWork", rec.MethodName)
	assert.Equal(t, int64(200), rec.MedianTimeNs)
	assert.Equal(t, int64(5), rec.MedianAllocationCount)
	assert.Equal(t, int64(50), rec.Iterations)
	assert.Equal(t, "Pixel 6", rec.Device)
	assert.Equal(t, "0123456789abcdef", res.GitCommit)
}

func TestDecode_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, res *Result)
	}{
		{
			name:  "summarized with all fields missing",
			input: `{"benchmarks": [{}]}`,
			check: func(t *testing.T, res *Result) {
				require.Len(t, res.Records, 1)
				rec := res.Records[0]
				assert.Equal(t, "unknown.unknown", rec.TestName)
				assert.Equal(t, "unknown", rec.ClassName)
				assert.Equal(t, "unknown", rec.MethodName)
				assert.Equal(t, "unknown", rec.Device)
				assert.Equal(t, "unknown", rec.Brand)
				assert.Equal(t, int64(0), rec.MedianTimeNs)
				assert.Equal(t, int64(0), rec.Iterations)
			},
		},
		{
			name:  "raw with missing build info",
			input: `{"context": {}, "benchmarks": [{"name": "b", "className": "c", "metrics": {}}]}`,
			check: func(t *testing.T, res *Result) {
				require.Len(t, res.Records, 1)
				assert.Equal(t, "unknown", res.Records[0].Device)
				assert.Equal(t, "unknown", res.Records[0].Brand)
			},
		},
		{
			name:  "summarized name without a dot",
			input: `{"benchmarks": [{"testName": "standalone"}]}`,
			check: func(t *testing.T, res *Result) {
				require.Len(t, res.Records, 1)
				rec := res.Records[0]
				assert.Equal(t, "unknown", rec.ClassName)
				assert.Equal(t, "standalone", rec.MethodName)
				assert.Equal(t, rec.ClassName+"."+rec.MethodName, rec.TestName)
			},
		},
		{
			name:  "no benchmarks at all",
			input: `{}`,
			check: func(t *testing.T, res *Result) {
				assert.Empty(t, res.Records)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestDecode_TestNameInvariant(t *testing.T) {
	inputs := []string{
		rawFixture,
		`{"benchmarks": [{"testName": "a.b.c"}]}`,
		`{"benchmarks": [{"testName": "nodot"}]}`,
		`{"benchmarks": [{}]}`,
	}

	for _, input := range inputs {
		res, err := Decode([]byte(input))
		require.NoError(t, err)

		for _, rec := range res.Records {
			assert.Equal(t, rec.ClassName+"."+rec.MethodName, rec.TestName)
		}
	}
}

func TestDecode_NumericCoercion(t *testing.T) {
	res, err := Decode([]byte(`{
	  "benchmarks": [
	    {
	      "testName": "a.b",
	      "minTimeNs": "150",
	      "medianTimeNs": 200.7,
	      "maxTimeNs": null,
	      "iterations": "not-a-number"
	    }
	  ]
	}`))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, int64(150), rec.MinTimeNs, "numeric string parses")
	assert.Equal(t, int64(200), rec.MedianTimeNs, "float truncates")
	assert.Equal(t, int64(0), rec.MaxTimeNs, "null coerces to zero")
	assert.Equal(t, int64(0), rec.Iterations, "garbage coerces to zero")
}

func TestDecode_MalformedInput(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)

	_, err = Decode([]byte(``))
	require.Error(t, err)
}
