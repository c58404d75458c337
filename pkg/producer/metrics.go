package producer

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rhuss/strom/pkg/api"
)

// MetricsSample is one line of the metrics stream.
type MetricsSample struct {
	Timestamp         string  `json:"timestamp"`
	CPUUsage          float64 `json:"cpu_usage"`
	MemoryUsage       float64 `json:"memory_usage"`
	GPUUsage          float64 `json:"gpu_usage"`
	GPUMemory         float64 `json:"gpu_memory"`
	RequestsPerSecond int     `json:"requests_per_second"`
	ActiveConnections int     `json:"active_connections"`
	DiskUsage         float64 `json:"disk_usage"`
}

// newMetrics never ends on its own. It stops when the context passed to
// Next is cancelled.
func newMetrics(r *api.MetricsRequest, opts Options) Producer {
	interval := api.DefaultInterval
	if r.Interval != nil {
		interval = *r.Interval
	}

	return &sequence{
		pacer: opts.Pacer,
		delay: time.Duration(interval) * time.Second,
		n:     unbounded,
		chunk: func(int) (Chunk, error) {
			data, err := json.Marshal(sampleMetrics(opts.Rand, opts.Now()))
			if err != nil {
				return Chunk{}, err
			}
			return Chunk{Data: append(data, '\n')}, nil
		},
	}
}

func sampleMetrics(r *rand.Rand, now time.Time) MetricsSample {
	return MetricsSample{
		Timestamp:         now.Format(timestampLayout),
		CPUUsage:          uniform(r, 10, 90),
		MemoryUsage:       uniform(r, 20, 80),
		GPUUsage:          uniform(r, 0, 100),
		GPUMemory:         uniform(r, 0, 100),
		RequestsPerSecond: 10 + r.IntN(91),
		ActiveConnections: 5 + r.IntN(46),
		DiskUsage:         uniform(r, 30, 70),
	}
}

// uniform returns a value in [lo, hi] rounded to two decimals.
func uniform(r *rand.Rand, lo, hi float64) float64 {
	return math.Round((lo+r.Float64()*(hi-lo))*100) / 100
}
