package datadog

import (
	"cmp"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/stringutil"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/base"
)

const (
	// DefaultNamespace is prefixed to every metric, e.g. ingest.month.uploaded
	DefaultNamespace = "ingest."
	// DefaultAddr is where the agent listens on a single host machine.
	DefaultAddr = "127.0.0.1:8125"
)

// sampleRate sends every metric unless [rate] is a valid fraction.
func sampleRate(rate float64) float64 {
	if rate <= 0 || rate > 1 {
		return 1
	}
	return rate
}

// agentAddr prefers the standard Datadog agent env vars over the config file.
func agentAddr(cfg config.Datadog) string {
	host := os.Getenv("DD_AGENT_HOST")
	port := os.Getenv("DD_DOGSTATSD_PORT")
	if !stringutil.Empty(host, port) {
		addr := net.JoinHostPort(host, port)
		slog.Info("Overriding statsd address with env vars", slog.String("addr", addr))
		return addr
	}

	return cmp.Or(cfg.Addr, DefaultAddr)
}

func NewClient(cfg config.Datadog) (base.Client, error) {
	client, err := statsd.New(agentAddr(cfg),
		statsd.WithNamespace(cmp.Or(cfg.Namespace, DefaultNamespace)),
		statsd.WithTags(cfg.Tags),
	)
	if err != nil {
		return nil, err
	}

	return &statsClient{client: client, rate: sampleRate(cfg.SampleRate)}, nil
}

type statsClient struct {
	client *statsd.Client
	rate   float64
}

func (s *statsClient) Timing(name string, value time.Duration, tags map[string]string) {
	_ = s.client.Timing(name, value, toDatadogTags(tags), s.rate)
}

func (s *statsClient) Incr(name string, tags map[string]string) {
	_ = s.client.Incr(name, toDatadogTags(tags), s.rate)
}

func (s *statsClient) Count(name string, value int64, tags map[string]string) {
	_ = s.client.Count(name, value, toDatadogTags(tags), s.rate)
}

// Flush - jobs exit as soon as they are done, buffered metrics have to be pushed out before that.
func (s *statsClient) Flush() error {
	return s.client.Flush()
}
