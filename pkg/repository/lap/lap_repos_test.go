//nolint:funlen // ok for tests
package lap

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
	sessionrepos "github.com/mpapenbr/race-engineer-go/pkg/repository/session"
	"github.com/mpapenbr/race-engineer-go/testsupport/testdb"
)

func sampleLap(num int, timeMs int32) *model.LapData {
	return &model.LapData{
		LapNumber:   num,
		LapTimeMs:   timeMs,
		SectorsMs:   [3]int32{30000, 32000, timeMs - 62000},
		Car:         "ks_mazda_mx5_cup",
		Track:       "magione",
		MaxSpeed:    171.456,
		FuelUsed:    2.3456,
		Samples:     1000,
		TyreScore:   92.5,
		Radar:       model.RadarStats{Smoothness: 80, Aggression: 40},
		TraceBounds: model.Bounds{MinX: -100, MaxX: 100, MinZ: -50, MaxZ: 50},
		TelemetryTrace: []model.TelemetryPoint{
			{Distance: 0.1, TimeMs: 1000, Speed: 120, Gear: 4},
			{Distance: 0.2, TimeMs: 2000, Speed: 140, Gear: 5},
		},
	}
}

func newSession() *session.State {
	return session.NewState(session.WithCarTrack("ks_mazda_mx5_cup", "magione"))
}

func TestCreateAndLoad(t *testing.T) {
	pool := testdb.InitTestDb(t)
	ctx := context.Background()
	s := newSession()
	assert.NilError(t, sessionrepos.Create(ctx, pool, s))

	laps := []*model.LapData{sampleLap(2, 95000), sampleLap(1, 97000), sampleLap(3, 94000)}
	for _, l := range laps {
		assert.NilError(t, Create(ctx, pool, s.ID, l))
	}
	assert.Assert(t, Create(ctx, pool, s.ID, laps[0]) != nil, "duplicate lap must fail")

	got, err := LoadBySession(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 3)
	for i, item := range got {
		assert.Equal(t, item.LapNumber, i+1)
		assert.Equal(t, item.SessionID, s.ID)
	}
	first := got[0]
	assert.Equal(t, first.LapTimeMs, int32(97000))
	assert.Equal(t, first.SectorsMs, [3]int32{30000, 32000, 35000})
	assert.Assert(t, first.FuelUsed.Equal(decimal.RequireFromString("2.346")), first.FuelUsed)
	assert.Assert(t, first.MaxSpeed.Equal(decimal.RequireFromString("171.46")), first.MaxSpeed)
	assert.DeepEqual(t, first.Data, laps[1])
}

func TestLoadFastest(t *testing.T) {
	pool := testdb.InitTestDb(t)
	ctx := context.Background()
	s := newSession()
	assert.NilError(t, sessionrepos.Create(ctx, pool, s))
	for _, l := range []*model.LapData{
		sampleLap(1, 96000), sampleLap(2, 8000), sampleLap(3, 95500), sampleLap(4, 95500),
	} {
		assert.NilError(t, Create(ctx, pool, s.ID, l))
	}

	got, err := LoadFastest(ctx, pool, s.ID, session.MinBestLapTime)
	assert.NilError(t, err)
	assert.Equal(t, got.LapNumber, 3)

	_, err = LoadFastest(ctx, pool, s.ID, 100000)
	assert.Assert(t, errors.Is(err, pgx.ErrNoRows))
}

func TestDeleteBySession(t *testing.T) {
	pool := testdb.InitTestDb(t)
	ctx := context.Background()
	s := newSession()
	assert.NilError(t, sessionrepos.Create(ctx, pool, s))
	assert.NilError(t, Create(ctx, pool, s.ID, sampleLap(1, 96000)))
	assert.NilError(t, Create(ctx, pool, s.ID, sampleLap(2, 95000)))

	n, err := DeleteBySession(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, n, 2)
	got, err := LoadBySession(ctx, pool, s.ID)
	assert.NilError(t, err)
	assert.Equal(t, len(got), 0)
}
