// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package metrics exposes the node's prometheus/client_golang gauges
// and counters, grounded on the corpus's metrics.go pattern (package-
// level vars, one init registering all of them, a Handler for
// net/http). committer/server.go already wires grpc-prometheus's
// interceptor directly onto its own registry; this package covers
// everything above the RPC transport layer: tasks, DKG epochs, and
// scheduler occupancy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksObserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randcast_tasks_observed_total",
			Help: "Total number of tasks observed by a chain's listeners, by task type",
		},
		[]string{"chain_id", "task_type"},
	)

	TasksFulfilled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randcast_tasks_fulfilled_total",
			Help: "Total number of tasks this node submitted a fulfillment transaction for",
		},
		[]string{"chain_id", "task_type"},
	)

	TasksFulfillmentFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randcast_tasks_fulfillment_failed_total",
			Help: "Total number of fulfillment transaction submissions that failed",
		},
		[]string{"chain_id", "task_type"},
	)

	PartialSignaturesProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randcast_partial_signatures_produced_total",
			Help: "Total number of partial signatures this node has produced, by group",
		},
		[]string{"chain_id", "group_index"},
	)

	PartialSignaturesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randcast_partial_signatures_rejected_total",
			Help: "Total number of inbound partial signatures this node's committer server rejected, by reason",
		},
		[]string{"chain_id", "reason"},
	)

	DKGEpoch = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "randcast_dkg_epoch",
			Help: "Current DKG epoch this node has recorded for a group",
		},
		[]string{"chain_id", "group_index"},
	)

	DKGRunsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "randcast_dkg_runs_completed_total",
			Help: "Total number of DKG runs this node completed, by outcome",
		},
		[]string{"chain_id", "outcome"},
	)

	FixedTasksRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "randcast_fixed_tasks_running",
			Help: "Number of long-lived listener/subscriber tasks currently registered with the fixed scheduler",
		},
	)

	DynamicTasksRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "randcast_dynamic_tasks_running",
			Help: "Number of in-flight dynamic worker tasks (DKG runs) the dynamic scheduler is supervising",
		},
	)

	BlockHeight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "randcast_block_height",
			Help: "Latest block height observed per chain",
		},
		[]string{"chain_id"},
	)
)

func init() {
	prometheus.MustRegister(
		TasksObserved,
		TasksFulfilled,
		TasksFulfillmentFailed,
		PartialSignaturesProduced,
		PartialSignaturesRejected,
		DKGEpoch,
		DKGRunsCompleted,
		FixedTasksRunning,
		DynamicTasksRunning,
		BlockHeight,
	)
}

// Handler serves the process's registered metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
