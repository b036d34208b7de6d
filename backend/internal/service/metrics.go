package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nanashi_threads_created_total",
			Help: "Threads created, by board",
		},
		[]string{"board"},
	)

	responsesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nanashi_responses_appended_total",
			Help: "Responses appended to existing threads, by board and sage",
		},
		[]string{"board", "sage"},
	)

	capacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nanashi_capacity_rejections_total",
			Help: "Appends rejected because the thread was full",
		},
	)

	threadsFilled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nanashi_threads_filled_total",
			Help: "Threads that reached the response limit",
		},
	)
)
