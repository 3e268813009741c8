// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the habit tracking server.
var (
	// Counters.
	CheckinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Total number of goal check-in toggles",
		},
		[]string{"direction"}, // complete | uncheck
	)

	XPAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Total XP granted to users",
		},
		[]string{"source"}, // checkin | achievement | meta_bonus
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Total number of badges unlocked",
		},
		[]string{"rarity"},
	)

	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level-up events",
		},
	)

	MetasCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metas_completed_total",
			Help: "Total number of long-term targets reached",
		},
	)

	TextGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "text_generations_total",
			Help: "Text-generation collaborator calls by outcome",
		},
		[]string{"kind", "outcome"}, // outcome: ok | fallback
	)

	// Histograms.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"method", "route", "status"},
	)

	AchievementScanDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "achievement_scan_duration_seconds",
			Help:    "Time taken to evaluate the full badge catalog for one user",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

// RecordCheckin records a check-in toggle.
func RecordCheckin(direction string) {
	CheckinsTotal.WithLabelValues(direction).Inc()
}

// RecordXPAwarded records granted XP.
func RecordXPAwarded(source string, xp int) {
	XPAwardedTotal.WithLabelValues(source).Add(float64(xp))
}

// RecordAchievementUnlocked records a badge unlock.
func RecordAchievementUnlocked(rarity string) {
	AchievementsUnlockedTotal.WithLabelValues(rarity).Inc()
}

// RecordLevelUp records a level-up event.
func RecordLevelUp() {
	LevelUpsTotal.Inc()
}

// RecordMetaCompleted records a completed long-term target.
func RecordMetaCompleted() {
	MetasCompletedTotal.Inc()
}

// RecordTextGeneration records a collaborator call outcome.
func RecordTextGeneration(kind, outcome string) {
	TextGenerationsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveRequestDuration observes HTTP request latency.
func ObserveRequestDuration(method, route, status string, seconds float64) {
	RequestDurationSeconds.WithLabelValues(method, route, status).Observe(seconds)
}

// ObserveAchievementScanDuration observes a full catalog evaluation.
func ObserveAchievementScanDuration(seconds float64) {
	AchievementScanDurationSeconds.Observe(seconds)
}
