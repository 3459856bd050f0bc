package logx

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PerformanceLogger provides structured logging for performance metrics
type PerformanceLogger struct {
	logger       *Logger
	metrics      map[string]*PerformanceMetric
	metricsMutex sync.RWMutex
}

// PerformanceMetric tracks performance data for a specific operation
type PerformanceMetric struct {
	Name          string        `json:"name"`
	Count         int64         `json:"count"`
	TotalDuration time.Duration `json:"total_duration"`
	MinDuration   time.Duration `json:"min_duration"`
	MaxDuration   time.Duration `json:"max_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
	LastExecuted  time.Time     `json:"last_executed"`
	ErrorCount    int64         `json:"error_count"`
	SuccessRate   float64       `json:"success_rate"`
	ConcurrentOps int64         `json:"concurrent_ops"`
	MaxConcurrent int64         `json:"max_concurrent"`
}

// PerformanceContext provides context for performance tracking
type PerformanceContext struct {
	metricName string
	startTime  time.Time
	logger     *PerformanceLogger
	ctx        context.Context
}

// NewPerformanceLogger creates a new performance logger
func NewPerformanceLogger(logger *Logger) *PerformanceLogger {
	return &PerformanceLogger{
		logger:  logger,
		metrics: make(map[string]*PerformanceMetric),
	}
}

// StartOperation starts tracking a performance operation
func (pl *PerformanceLogger) StartOperation(ctx context.Context, metricName string) *PerformanceContext {
	pl.metricsMutex.Lock()
	defer pl.metricsMutex.Unlock()

	// Get or create metric
	metric, exists := pl.metrics[metricName]
	if !exists {
		metric = &PerformanceMetric{
			Name:         metricName,
			MinDuration:  time.Hour, // Start with a high value
			LastExecuted: time.Now(),
		}
		pl.metrics[metricName] = metric
	}

	// Update concurrent operations
	metric.ConcurrentOps++
	if metric.ConcurrentOps > metric.MaxConcurrent {
		metric.MaxConcurrent = metric.ConcurrentOps
	}

	return &PerformanceContext{
		metricName: metricName,
		startTime:  time.Now(),
		logger:     pl,
		ctx:        ctx,
	}
}

// Complete marks an operation as completed and logs performance data
func (pc *PerformanceContext) Complete(err error) {
	duration := time.Since(pc.startTime)

	pc.logger.metricsMutex.Lock()
	defer pc.logger.metricsMutex.Unlock()

	metric := pc.logger.metrics[pc.metricName]
	metric.Count++
	metric.TotalDuration += duration
	metric.LastExecuted = time.Now()
	metric.ConcurrentOps--

	// Update min/max durations
	if duration < metric.MinDuration {
		metric.MinDuration = duration
	}
	if duration > metric.MaxDuration {
		metric.MaxDuration = duration
	}

	// Calculate average
	metric.AvgDuration = metric.TotalDuration / time.Duration(metric.Count)

	// Track errors
	if err != nil {
		metric.ErrorCount++
		metric.SuccessRate = float64(metric.Count-metric.ErrorCount) / float64(metric.Count) * 100

		pc.logger.logger.Error("Performance operation failed",
			"metric", pc.metricName,
			"duration", duration.String(),
			"error", err.Error(),
			"success_rate", fmt.Sprintf("%.2f%%", metric.SuccessRate),
		)
	} else {
		metric.SuccessRate = float64(metric.Count-metric.ErrorCount) / float64(metric.Count) * 100

		// Log performance data for slow operations or periodically
		if duration > 100*time.Millisecond || metric.Count%100 == 0 {
			pc.logger.logger.Info("Performance operation completed",
				"metric", pc.metricName,
				"duration", duration.String(),
				"avg_duration", metric.AvgDuration.String(),
				"success_rate", fmt.Sprintf("%.2f%%", metric.SuccessRate),
				"total_operations", metric.Count,
			)
		}
	}
}

