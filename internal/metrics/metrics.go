package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostViews counts detail retrievals that bumped a post's view counter.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_post_views_total",
		Help: "Total number of counted post views",
	})

	// Votes counts ledger operations by value and outcome.
	Votes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_votes_total",
			Help: "Vote ledger operations by value and outcome",
		},
		[]string{"value", "outcome"},
	)

	// ModerationDecisions counts moderator decisions.
	ModerationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_moderation_decisions_total",
			Help: "Moderator decisions by resulting status",
		},
		[]string{"status"},
	)

	// PostsSubmitted counts created and edited posts by resulting moderation status.
	PostsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_posts_submitted_total",
			Help: "Created or edited posts by operation and resulting status",
		},
		[]string{"operation", "status"},
	)

	// ActiveSessions tracks sessions bound in the in-memory directory.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blog_sessions_active",
		Help: "Sessions currently held by the in-memory session directory",
	})
)
