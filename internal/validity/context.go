package validity

import (
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/stats"
)

// ScaleMoments holds the population mean/SD of one questionnaire total over
// the non-null values of the filtered set. OK is false when the column is
// degenerate (n<2 or constant), in which case its z-scores are treated as
// absent, never as zero.
type ScaleMoments struct {
	Mean float64
	SD   float64
	N    int
	OK   bool
}

// Context is the per-request computation context: standardization constants
// and benchmark values computed once over the filtered population, then
// shared by every module so their statistics agree on the same constants.
// It replaces what would otherwise be ambient memoized scratch state.
type Context struct {
	Records []JoinedRecord
	Method  stats.Method

	moments map[string]ScaleMoments
}

// NewContext computes scale moments over the filtered records.
func NewContext(records []JoinedRecord, method stats.Method) *Context {
	ctx := &Context{
		Records: records,
		Method:  method,
		moments: make(map[string]ScaleMoments, len(ScaleIDs)),
	}
	for _, scale := range ScaleIDs {
		values := make([]float64, 0, len(records))
		for i := range records {
			if v := records[i].ScaleTotal(scale); v != nil {
				values = append(values, *v)
			}
		}
		mean, sd, ok := stats.MeanSD(values)
		ctx.moments[scale] = ScaleMoments{
			Mean: mean,
			SD:   sd,
			N:    len(values),
			OK:   ok && sd > 0,
		}
	}
	return ctx
}

// Moments returns the standardization constants for one scale.
func (c *Context) Moments(scale string) ScaleMoments {
	return c.moments[scale]
}

// Z standardizes a record's questionnaire total. ok=false when the value is
// absent or the scale's population moments are degenerate.
func (c *Context) Z(rec *JoinedRecord, scale string) (float64, bool) {
	m := c.moments[scale]
	v := rec.ScaleTotal(scale)
	if v == nil || !m.OK {
		return 0, false
	}
	return stats.ZScore(*v, m.Mean, m.SD), true
}

// Benchmark is the mean of the record's available scale z-scores, requiring
// at least two of the three components.
func (c *Context) Benchmark(rec *JoinedRecord) (float64, bool) {
	var sum float64
	var n int
	for _, scale := range ScaleIDs {
		if z, ok := c.Z(rec, scale); ok {
			sum += z
			n++
		}
	}
	if n < 2 {
		return 0, false
	}
	return sum / float64(n), true
}

// LOOBenchmark is the leave-one-out benchmark for one questionnaire: the
// mean z of the other two scales, requiring both to be present so the
// composite never partly contains the scale under evaluation.
func (c *Context) LOOBenchmark(rec *JoinedRecord, exclude string) (float64, bool) {
	var sum float64
	var n int
	for _, scale := range ScaleIDs {
		if scale == exclude {
			continue
		}
		z, ok := c.Z(rec, scale)
		if !ok {
			return 0, false
		}
		sum += z
		n++
	}
	if n < 2 {
		return 0, false
	}
	return sum / float64(n), true
}

// BenchmarkPairs aligns a per-record predictor with the benchmark, keeping
// only records where both exist. idx maps each pair back to Records.
func (c *Context) BenchmarkPairs(score []float64) (x, y []float64, idx []int) {
	for i := range c.Records {
		b, ok := c.Benchmark(&c.Records[i])
		if !ok {
			continue
		}
		x = append(x, score[i])
		y = append(y, b)
		idx = append(idx, i)
	}
	return x, y, idx
}

// BenchmarkValues returns every computable benchmark value in record order.
func (c *Context) BenchmarkValues() []float64 {
	values := make([]float64, 0, len(c.Records))
	for i := range c.Records {
		if b, ok := c.Benchmark(&c.Records[i]); ok {
			values = append(values, b)
		}
	}
	return values
}
