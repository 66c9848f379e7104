package metrics

import (
	"log/slog"

	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/config/constants"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/base"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/datadog"
)

func LoadExporter(cfg config.Config) base.Client {
	kind := cfg.Telemetry.Metrics.Provider
	switch kind {
	case constants.Datadog:
		statsClient, err := datadog.NewClient(cfg.Telemetry.Metrics.Datadog)
		if err != nil {
			slog.Error("Metrics client error", slog.Any("err", err), slog.Any("provider", kind))
		} else {
			slog.Info("Metrics client loaded", slog.Any("provider", kind))
			return statsClient
		}
	default:
		slog.Debug("No exporter kind passed in, skipping...", slog.Any("exporterKind", kind))
	}

	return NullMetricsProvider{}
}
