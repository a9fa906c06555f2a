package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tmge",
		Name:      "sessions_active",
		Help:      "Number of live game sessions.",
	})

	sessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tmge",
		Name:      "sessions_created_total",
		Help:      "Sessions created, by variant.",
	}, []string{"variant"})

	inputsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tmge",
		Name:      "inputs_total",
		Help:      "Inputs delivered to games, by variant, kind and outcome.",
	}, []string{"variant", "kind", "accepted"})

	gamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tmge",
		Name:      "games_finished_total",
		Help:      "Games that reached game over, by variant.",
	}, []string{"variant"})

	finalScores = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tmge",
		Name:      "final_score",
		Help:      "Per-player score at game over.",
		Buckets:   prometheus.ExponentialBuckets(100, 2, 12),
	}, []string{"variant"})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tmge",
		Name:      "tick_duration_seconds",
		Help:      "Time spent advancing every running session once.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
