package models

import "time"

// Alert carries a residual-deviation breach raised by the target watcher.
type Alert struct {
	Pair            string    `json:"pair"`
	TargetSymbol    string    `json:"target_symbol"`
	ReferenceSymbol string    `json:"reference_symbol"`
	Residual        float64   `json:"residual_pct"`
	TargetDevPct    float64   `json:"target_deviation_pct"`
	ReferenceDevPct float64   `json:"reference_deviation_pct"`
	Correlation     float64   `json:"correlation"`
	Threshold       float64   `json:"threshold_pct"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
}

// MonitorSnapshot is a consistent copy of the coefficient store plus latch
// states, as served by the API.
type MonitorSnapshot struct {
	Correlation           float64 `json:"correlation"`
	MeanTarget            float64 `json:"mean_target"`
	MeanReference         float64 `json:"mean_reference"`
	ReferenceDeviationPct float64 `json:"reference_deviation_pct"`
	StatisticsReady       bool    `json:"statistics_ready"`
	ReferenceReady        bool    `json:"reference_ready"`
}
