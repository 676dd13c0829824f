package source

import (
	"context"
	"errors"
	"io"
	"time"
)

// RecordSource is implemented by Reader.
type RecordSource interface {
	Next() (Record, error)
}

// Replay calls fn for every record of src.
// Records are paced by the difference of their timestamps divided by speed.
// speed <= 0 replays without pacing. Returns nil once src is exhausted.
func Replay(
	ctx context.Context,
	src RecordSource,
	speed float64,
	fn func(rec *Record) error,
) error {
	var (
		prevTS int64
		first  = true
		timer  *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if speed > 0 && !first && rec.TS > prevTS {
			wait := time.Duration(float64(rec.TS-prevTS) * float64(time.Millisecond) / speed)
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		prevTS = rec.TS
		if err := fn(&rec); err != nil {
			return err
		}
	}
}

// Time returns the wall clock time of r relative to start.
func (r *Record) Time(start time.Time) time.Time {
	return start.Add(time.Duration(r.TS) * time.Millisecond)
}
