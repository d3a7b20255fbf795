// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("graphprobe.search")
	meter  = otel.Meter("graphprobe.search")
)

// Metrics for search operations.
var (
	searchLatency metric.Float64Histogram
	searchTotal   metric.Int64Counter
	tasksSpawned  metric.Int64Counter
	nodesClaimed  metric.Int64Counter
	pollTimeouts  metric.Int64Counter
	taskFailures  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		searchLatency, err = meter.Float64Histogram(
			"search_duration_seconds",
			metric.WithDescription("Duration of search queries by strategy and kind"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchTotal, err = meter.Int64Counter(
			"search_total",
			metric.WithDescription("Total number of search queries"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		tasksSpawned, err = meter.Int64Counter(
			"search_tasks_spawned_total",
			metric.WithDescription("Path-search tasks created, including the seed task"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesClaimed, err = meter.Int64Counter(
			"search_claims_total",
			metric.WithDescription("Successful visited-set claims during path search"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		pollTimeouts, err = meter.Int64Counter(
			"search_poll_timeouts_total",
			metric.WithDescription("Completion polls that timed out with work outstanding"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		taskFailures, err = meter.Int64Counter(
			"search_task_failures_total",
			metric.WithDescription("Pool units that completed with an error"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func queryAttrs(strategy Strategy, kind Kind) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("strategy", string(strategy)),
		attribute.String("kind", string(kind)),
	}
}

// recordSearch records latency and outcome for one query.
func recordSearch(ctx context.Context, strategy Strategy, kind Kind, duration time.Duration, found bool, err error) {
	if initMetrics() != nil {
		return
	}

	attrs := append(queryAttrs(strategy, kind),
		attribute.Bool("found", found),
		attribute.Bool("success", err == nil),
	)
	searchLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	searchTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func recordTasksSpawned(ctx context.Context, n int) {
	if n == 0 || initMetrics() != nil {
		return
	}
	tasksSpawned.Add(ctx, int64(n))
}

func recordClaims(ctx context.Context, n int) {
	if n == 0 || initMetrics() != nil {
		return
	}
	nodesClaimed.Add(ctx, int64(n))
}

func recordPollTimeout(ctx context.Context) {
	if initMetrics() != nil {
		return
	}
	pollTimeouts.Add(ctx, 1)
}

func recordTaskFailure(ctx context.Context, kind Kind) {
	if initMetrics() != nil {
		return
	}
	taskFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

// startSearchSpan creates a span for one query.
func startSearchSpan(ctx context.Context, strategy Strategy, kind Kind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "search."+string(strategy)+"."+string(kind),
		trace.WithAttributes(append(queryAttrs(strategy, kind), attrs...)...),
	)
}

// endSearchSpan records the outcome on span and ends it.
func endSearchSpan(span trace.Span, found bool, err error) {
	span.SetAttributes(attribute.Bool("search.found", found))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
