// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for graphprobe.
//
// Packages create their tracers and meters with otel.Tracer and otel.Meter at
// package level; Init installs the providers those resolve to. Until Init
// runs, or when an exporter is "none", the global no-op providers apply and
// instrumentation costs nothing.
//
// # Exporters
//
// Traces: "otlp" (gRPC), "stdout", or "none". Metrics: "prometheus" (served by
// MetricsHandler), "stdout", or "none".
//
// # Environment Variables
//
//   - OTEL_TRACES_EXPORTER: trace exporter (default: none)
//   - OTEL_METRICS_EXPORTER: metric exporter (default: prometheus)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - GRAPHPROBE_ENV: deployment environment (default: development)
//
// # Logging
//
// LoggerWithTrace adds trace_id and span_id to an slog.Logger so log lines can
// be joined with traces.
package telemetry
