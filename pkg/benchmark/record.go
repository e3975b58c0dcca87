// Package benchmark discovers and decodes Android microbenchmark result
// files into a canonical record model. Two on-disk JSON shapes are
// supported: the raw harness output written by the Android Benchmark
// library and the pre-summarized format produced by CI post-processing.
package benchmark

import "strings"

// UnknownValue is the default for any absent string field.
const UnknownValue = "unknown"

// Record is one benchmark method execution, normalized from either
// source shape. TestName is always ClassName + "." + MethodName.
type Record struct {
	TestName   string
	ClassName  string
	MethodName string

	MinTimeNs    int64
	MedianTimeNs int64
	MaxTimeNs    int64

	MinAllocationCount    int64
	MedianAllocationCount int64
	MaxAllocationCount    int64

	Iterations int64

	Device string
	Brand  string
}

// splitTestName derives class and method from a combined test name by
// splitting on the last dot. Names without a dot get an unknown class.
func splitTestName(testName string) (className, methodName string) {
	idx := strings.LastIndex(testName, ".")
	if idx < 0 {
		return UnknownValue, testName
	}

	return testName[:idx], testName[idx+1:]
}

// orUnknown returns s, or the unknown placeholder when s is empty.
func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}

	return s
}
