// Package live replays a recording in real time and runs the live engineer.
package live

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/cmd/util"
	"github.com/mpapenbr/race-engineer-go/pkg/config"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/engineer"
	natspub "github.com/mpapenbr/race-engineer-go/pkg/publish/nats"
	"github.com/mpapenbr/race-engineer-go/pkg/source"
	"github.com/mpapenbr/race-engineer-go/pkg/utils/broadcast"
)

type recsUpdate struct {
	ts   time.Time
	recs []model.Recommendation
}

func NewLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "replays a recording in real time and reports live recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return runLive(ctx)
		},
	}
	cmd.Flags().StringVarP(&config.Input,
		"input",
		"i",
		"",
		"recording to replay (JSON lines)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().Float64Var(&config.Speed,
		"speed",
		1.0,
		"replay speed factor (0: as fast as possible)")
	cmd.Flags().StringVar(&config.WorldRecord,
		"world-record",
		"",
		"world record lap time (e.g. 1:45.200 or 1m45.2s), overrides the recording")
	return cmd
}

//nolint:funlen // by design
func runLive(ctx context.Context) error {
	r, err := source.Open(config.Input)
	if err != nil {
		return err
	}
	defer r.Close()

	p, err := util.NewPipeline(ctx, r.Meta())
	if err != nil {
		return err
	}
	defer p.Close()

	ctx = log.AddToContext(ctx, log.Default().With(
		log.Stringer("session", p.Processor.Session().ID)))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var compounds <-chan *engineer.CompoundTable
	if config.CompoundsFile != "" {
		w, err := newCompoundWatcher(config.CompoundsFile)
		if err != nil {
			return err
		}
		go w.run(ctx)
		compounds = w.Updates()
	}

	src := make(chan recsUpdate)
	bc := broadcast.NewServer(ctx, "recommendations", src,
		broadcast.WithBufferSize[recsUpdate](16))
	var wg sync.WaitGroup
	startListener := func(fn func(u recsUpdate)) {
		ch := bc.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range ch {
				fn(u)
			}
		}()
	}
	changes := newChangeLogger(log.Default().Named("engineer.advice"))
	startListener(func(u recsUpdate) { changes.update(u.recs) })
	if p.Nats != nil {
		startListener(natsPublisher(p.Nats, p.Processor.Session().ID))
	}

	proc := p.Processor
	start := time.Now()
	err = source.Replay(ctx, r, config.Speed, func(rec *source.Record) error {
		select {
		case table := <-compounds:
			proc.Engineer().SetCompounds(table)
		default:
		}
		now := rec.Time(start)
		res := proc.ProcessFrame(ctx, &rec.Physics, &rec.Graphics, now)
		select {
		case src <- recsUpdate{ts: now, recs: res.Recommendations}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
	close(src)
	wg.Wait()
	bc.Close()
	proc.Flush()
	log.Info("engineer summary", engineerSummary(proc.Engineer())...)
	if errors.Is(err, context.Canceled) {
		log.Info("live replay interrupted")
		return nil
	}
	return err
}

func engineerSummary(e *engineer.Engineer) []log.Field {
	style, d := e.Style(), e.Derived()
	return []log.Field{
		log.Float32("smoothness", style.Smoothness),
		log.Float32("aggression", style.Aggression),
		log.Float32("trailBraking", style.TrailBraking),
		log.Float32("throttleControl", style.ThrottleControl),
		log.Float32("fuelLaps", d.FuelLapsRemaining),
		log.String("predictedLap", model.FormatLapTime(d.PredictedLapTime)),
		log.Int("windowFrames", e.WindowFrames()),
	}
}

func natsPublisher(sink *natspub.Sink, id uuid.UUID) func(u recsUpdate) {
	return func(u recsUpdate) {
		if _, err := sink.PublishRecommendations(id, u.recs, u.ts); err != nil {
			log.Warn("publish recommendations", log.ErrorField(err))
		}
	}
}
