package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inboundResolutionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callgateway",
			Name:      "inbound_resolutions_total",
			Help:      "Total number of inbound call resolutions.",
		},
		[]string{"outcome"}, // "resolved", "not_found", "error"
	)

	inboundResolutionDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "callgateway",
			Name:      "inbound_resolution_duration_seconds",
			Help:      "Duration of inbound call resolution. Gates call pickup latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	toolCallsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callgateway",
			Name:      "tool_calls_total",
			Help:      "Total number of mediated tool calls.",
		},
		[]string{"tool", "outcome"}, // outcome: "ok", "unauthorized", "invalid", "upstream_error"
	)

	outboundDispatchCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callgateway",
			Name:      "outbound_dispatches_total",
			Help:      "Total number of outbound call dispatch attempts.",
		},
		[]string{"outcome"},
	)
)
