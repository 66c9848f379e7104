package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jessevdk/go-flags"

	"github.com/artie-labs/ingest/lib/config"
	"github.com/artie-labs/ingest/lib/logger"
	"github.com/artie-labs/ingest/lib/redact"
	"github.com/artie-labs/ingest/lib/telemetry/metrics"
	"github.com/artie-labs/ingest/lib/telemetry/metrics/base"
	"github.com/artie-labs/ingest/processes/cloud"
	"github.com/artie-labs/ingest/processes/relational"
	"github.com/artie-labs/ingest/processes/synthetic"
)

var errCommandFailed = errors.New("command failed")

type runner struct {
	opts *config.GlobalOptions
}

// run loads settings, logging and metrics for a command, then runs [fn] until it returns or the process is signalled.
func (r runner) run(fn func(ctx context.Context, cfg config.Config, metricsClient base.Client) error) error {
	settings, err := config.LoadSettings(*r.opts)
	if err != nil {
		return err
	}

	log, loggingToSentry := logger.NewLogger(settings)
	slog.SetDefault(log)

	metricsClient := metrics.LoadExporter(settings.Config)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = fn(ctx, settings.Config, metricsClient)
	if flushErr := metricsClient.Flush(); flushErr != nil {
		slog.Warn("Failed to flush metrics", slog.Any("err", flushErr))
	}

	if err != nil {
		slog.Error("Failed to run command", slog.String("err", redact.ScrubError(err)))
	}

	if loggingToSentry {
		sentry.Flush(2 * time.Second)
	}

	if err != nil {
		return errCommandFailed
	}
	return nil
}

type syntheticCommand struct {
	runner
	OutputPath string `short:"o" long:"output" default:"output.parquet" description:"path of the parquet file to write"`
	Args       struct {
		NumRows *int `positional-arg-name:"N" description:"number of rows to generate (default: 5)"`
	} `positional-args:"yes"`
}

func (c *syntheticCommand) Execute(_ []string) error {
	numRows := synthetic.DefaultNumRows
	if c.Args.NumRows != nil {
		numRows = *c.Args.NumRows
	}

	return c.run(func(ctx context.Context, _ config.Config, _ base.Client) error {
		return synthetic.Run(ctx, synthetic.Options{NumRows: numRows, OutputPath: c.OutputPath})
	})
}

type relationalCommand struct {
	runner
	relational.Options
}

func (c *relationalCommand) Execute(_ []string) error {
	return c.run(func(ctx context.Context, cfg config.Config, metricsClient base.Client) error {
		return relational.Run(ctx, cfg, c.Options, metricsClient)
	})
}

type cloudCommand struct {
	runner
	cloud.Options
}

func (c *cloudCommand) Execute(_ []string) error {
	return c.run(func(ctx context.Context, cfg config.Config, metricsClient base.Client) error {
		result, err := cloud.Run(ctx, cfg, c.Options, metricsClient)
		if err != nil {
			return err
		}

		if len(result.Skipped) > 0 {
			slog.Info("Some months were not available at the source", slog.Any("months", result.Skipped))
		}
		return nil
	})
}

func main() {
	var opts config.GlobalOptions
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	r := runner{opts: &opts}

	commands := []struct {
		name, short, long string
		data              any
	}{
		{"synthetic", "Write a small synthetic table to parquet", "Generates N rows of (id, value = id * 10) and writes them to a parquet file.", &syntheticCommand{runner: r}},
		{"relational", "Load taxi zones and a month of trips into Postgres", "Replaces the zone lookup table and appends one month of green or yellow trip data to Postgres.", &relationalCommand{runner: r}},
		{"cloud", "Upload FHV files to an object store and load them into a warehouse", "Uploads FHV monthly files that aren't in the bucket yet and, when a table is set, loads and merges every month into the warehouse.", &cloudCommand{runner: r}},
	}
	for _, command := range commands {
		if _, err := parser.AddCommand(command.name, command.short, command.long, command.data); err != nil {
			logger.Fatal("Failed to register command", slog.String("command", command.name), slog.Any("err", err))
		}
	}

	if _, err := parser.Parse(); err != nil {
		if errors.Is(err, errCommandFailed) {
			os.Exit(1)
		}

		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			os.Exit(0)
		}

		logger.Fatal("Failed to parse args", slog.Any("err", err))
	}
}
