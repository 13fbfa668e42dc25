// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at init time
// via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// AccountsCreatedTotal counts successful registrations.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of accounts successfully created.",
	},
)

// AccountsDeletedTotal counts account deletions.
var AccountsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deleted_total",
		Help:      "Total number of accounts deleted.",
	},
)

// AuthzDenialsTotal counts rejected requests by denial kind.
// Label:
//   - reason: "unauthenticated" (no valid credential) or "forbidden"
//     (credential valid, rule denied)
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests denied by the authorization engine.",
	},
	[]string{"reason"},
)

// ValidationFailuresTotal counts field-level validation rejections.
// Label:
//   - field: the first violated field, or "non_field" for bare messages
var ValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of requests rejected by field validation.",
	},
	[]string{"field"},
)

// TokensIssuedTotal counts issued token pairs by grant kind.
// Label:
//   - grant: "password" (username+password) or "refresh" (rotation)
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access/refresh token pairs issued.",
	},
	[]string{"grant"},
)
