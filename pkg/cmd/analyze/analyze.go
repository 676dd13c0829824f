// Package analyze replays a recording at full speed and reports every lap.
package analyze

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/cmd/util"
	"github.com/mpapenbr/race-engineer-go/pkg/config"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
	"github.com/mpapenbr/race-engineer-go/pkg/source"
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "analyzes all laps of a recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return runAnalyze(ctx, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&config.Input,
		"input",
		"i",
		"",
		"recording to analyze (JSON lines)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&config.WorldRecord,
		"world-record",
		"",
		"world record lap time (e.g. 1:45.200 or 1m45.2s), overrides the recording")
	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer) error {
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
	rep := &reporter{out: out}
	proc := p.Processor
	start := time.Now()
	err = source.Replay(ctx, r, 0, func(rec *source.Record) error {
		res := proc.ProcessFrame(ctx, &rec.Physics, &rec.Graphics, rec.Time(start))
		if res.Lap != nil {
			rep.lap(proc.Session(), res.Lap, res.Analysis)
		}
		return nil
	})
	if err != nil {
		return err
	}
	proc.Flush()
	rep.summary(proc.Session())
	log.Debug("analyze done", log.Duration("duration", time.Since(start)))
	return nil
}

type reporter struct {
	out io.Writer
}

//nolint:whitespace // can't make both editor and linter happy
func (r *reporter) lap(
	s *session.State,
	l *model.LapData,
	analysis model.StandaloneAnalysis,
) {
	marker := ""
	if best, ok := s.BestLap(); ok && best.LapNumber == l.LapNumber {
		marker = " *"
	}
	fmt.Fprintf(r.out, "Lap %3d  %s  S1 %s  S2 %s  S3 %s  fuel %.2f  vmax %.1f%s\n",
		l.LapNumber,
		model.FormatLapTime(l.LapTimeMs),
		model.FormatLapTime(l.SectorsMs[0]),
		model.FormatLapTime(l.SectorsMs[1]),
		model.FormatLapTime(l.SectorsMs[2]),
		l.FuelUsed,
		l.MaxSpeed,
		marker)
	if analysis.IsPerfect {
		fmt.Fprintln(r.out, "         no findings")
		return
	}
	for _, a := range analysis.Advices {
		fmt.Fprintf(r.out, "         [%d] %s: %s -> %s\n",
			a.Severity, a.Zone, a.Problem, a.Solution)
	}
}

func (r *reporter) summary(s *session.State) {
	fmt.Fprintf(r.out, "%d laps", s.LapCount())
	if best, ok := s.BestLap(); ok {
		fmt.Fprintf(r.out, ", best %s (lap %d)",
			model.FormatLapTime(best.LapTimeMs), best.LapNumber)
	}
	if tb := s.TheoreticalBest(); tb > 0 {
		fmt.Fprintf(r.out, ", theoretical best %s", model.FormatLapTime(tb))
	}
	fmt.Fprintln(r.out)
}
