package achievements

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// triggersTotal counts admission decisions by trigger and outcome.
	triggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbeans_achievement_triggers_total",
		Help: "Achievement triggers by trigger name and admission result",
	}, []string{"trigger", "result"})

	// runsTotal counts finished evaluation runs.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbeans_achievement_runs_total",
		Help: "Evaluation runs by result",
	}, []string{"result"})

	// runDuration tracks how long one sweep takes, snapshot included.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "smartbeans_achievement_run_duration_seconds",
		Help:    "Evaluation run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	// unlocksTotal counts persisted unlocks per achievement.
	unlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbeans_achievement_unlocks_total",
		Help: "Achievements unlocked by id",
	}, []string{"achievement"})

	// ruleErrorsTotal counts rules skipped because of malformed input.
	ruleErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartbeans_achievement_rule_errors_total",
		Help: "Rules skipped because they could not be evaluated",
	}, []string{"achievement"})
)

const (
	resultAdmitted = "admitted"
	resultQueued   = "queued"
	resultParked   = "parked"
	resultRejected = "rejected"
	resultOK       = "ok"
	resultAborted  = "aborted"
)
