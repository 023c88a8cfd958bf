// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// PostEvents counts post mutations by action (created, updated, deleted).
	PostEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_post_events_total",
		Help: "Total number of post mutations by action",
	}, []string{"action"})

	// CommentsCreated counts accepted comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_comments_created_total",
		Help: "Total number of comments created",
	})

	// AuthEvents counts registrations and logins by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_auth_events_total",
		Help: "Total number of authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// ContactMessages counts contact form deliveries by outcome.
	ContactMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_contact_messages_total",
		Help: "Total number of contact messages by outcome",
	}, []string{"outcome"})
)
