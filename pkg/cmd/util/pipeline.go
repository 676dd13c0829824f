package util

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/samber/lo"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/config"
	"github.com/mpapenbr/race-engineer-go/pkg/db/postgres"
	"github.com/mpapenbr/race-engineer-go/pkg/processing"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/engineer"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/lap"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
	natspub "github.com/mpapenbr/race-engineer-go/pkg/publish/nats"
	"github.com/mpapenbr/race-engineer-go/pkg/repository/sink"
	"github.com/mpapenbr/race-engineer-go/pkg/source"
)

// Pipeline bundles the processor with its optional database and NATS sinks.
type Pipeline struct {
	Processor *processing.Processor
	Nats      *natspub.Sink // nil if no nats url is configured
	Compounds *engineer.CompoundTable

	pool      *pgxpool.Pool
	conn      *nats.Conn
	telemetry *config.Telemetry
}

// NewPipeline sets up logging, telemetry and the sinks configured by the
// global flags for a recording described by meta.
func NewPipeline(ctx context.Context, meta source.Meta) (*Pipeline, error) {
	sqlLogger, err := SetupLogger()
	if err != nil {
		return nil, err
	}
	if err := WaitForServices(ctx); err != nil {
		return nil, err
	}
	ret := &Pipeline{}
	var pgTraceOption postgres.PoolConfigOption
	pgTraceOption, ret.telemetry = SetupTelemetry(ctx, sqlLogger)

	wr, err := ParseLapTime(config.WorldRecord)
	if err != nil {
		return nil, err
	}
	if wr == 0 {
		wr = meta.WorldRecordMs
	}
	car := lo.CoalesceOrEmpty(config.Car, meta.Car)
	track := lo.CoalesceOrEmpty(config.Track, meta.Track)
	state := session.NewState(
		session.WithCarTrack(car, track),
		session.WithWorldRecord(wr))

	if ret.Compounds, err = loadCompounds(); err != nil {
		return nil, err
	}
	opts := []processing.ProcessorOption{
		processing.WithSession(state),
		processing.WithAggregator(lap.NewAggregator(
			lap.WithSampleInterval(ParseDuration(config.SampleInterval, 0)))),
		processing.WithEngineer(engineer.NewEngineer(
			engineer.WithHistorySize(config.HistorySize),
			engineer.WithHoldDuration(
				ParseDuration(config.HoldDuration, engineer.DefaultHoldDuration)),
			engineer.WithCompounds(ret.Compounds))),
	}

	if config.DB != "" {
		ret.pool, err = postgres.NewPool(ctx, config.DB, pgTraceOption)
		if err != nil {
			ret.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		opts = append(opts, processing.WithSink(sink.NewSink(ret.pool)))
	}
	if config.NatsURL != "" {
		ret.conn, err = natspub.Connect(config.NatsURL)
		if err != nil {
			ret.Close()
			return nil, fmt.Errorf("nats: %w", err)
		}
		ret.Nats = natspub.NewSink(ret.conn, natspub.WithPrefix(config.NatsPrefix))
		opts = append(opts, processing.WithSink(ret.Nats))
	}
	ret.Processor = processing.NewProcessor(opts...)
	log.Info("Session started",
		log.Stringer("id", state.ID),
		log.String("car", car),
		log.String("track", track),
		log.Int32("worldRecord", wr))
	return ret, nil
}

func loadCompounds() (*engineer.CompoundTable, error) {
	if config.CompoundsFile == "" {
		return engineer.DefaultCompounds(), nil
	}
	return engineer.LoadCompoundsFile(config.CompoundsFile)
}

// Close releases all connections. It may be called more than once.
func (p *Pipeline) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			log.Warn("nats drain", log.ErrorField(err))
		}
		p.conn = nil
	}
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	if p.telemetry != nil {
		p.telemetry.Shutdown()
		p.telemetry = nil
	}
}
