package components

import (
	"math"
	"strings"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders samples into at most width cells, averaging buckets when
// there are more samples than cells. A flat or empty series renders as the
// lowest tick.
func Sparkline(samples []float64, width int) string {
	if len(samples) == 0 || width <= 0 {
		return ""
	}
	buckets := resample(samples, width)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range buckets {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var sb strings.Builder
	for _, v := range buckets {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkTicks)-1)))
		}
		sb.WriteRune(sparkTicks[idx])
	}
	return sb.String()
}

func resample(samples []float64, width int) []float64 {
	if len(samples) <= width {
		return samples
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(samples) / width
		end := (i + 1) * len(samples) / width
		sum := 0.0
		for _, v := range samples[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Bar renders a percentage as a filled bar of width cells.
func Bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
