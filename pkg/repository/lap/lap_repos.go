//nolint:whitespace //can't make both the linter and editor happy :(
package lap

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/repository"
)

func Create(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
	lap *model.LapData,
) error {
	_, err := conn.Exec(ctx, `
	insert into lap (
		session_id, lap_number, lap_time_ms, s1, s2, s3,
		fuel_used, max_speed, data
	) values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		sessionID, lap.LapNumber, lap.LapTimeMs,
		lap.SectorsMs[0], lap.SectorsMs[1], lap.SectorsMs[2],
		decimal.NewFromFloat32(lap.FuelUsed).Round(3),
		decimal.NewFromFloat32(lap.MaxSpeed).Round(2),
		lap,
	)
	return err
}

func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) ([]*model.DbLap, error) {
	rows, err := conn.Query(ctx,
		selector+" where session_id=$1 order by lap_number", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DbLap, 0)
	for rows.Next() {
		item := model.DbLap{}
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// LoadFastest returns the fastest lap of the session above minTime (ms).
func LoadFastest(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
	minTime int32,
) (*model.DbLap, error) {
	row := conn.QueryRow(ctx, selector+`
	where session_id=$1 and lap_time_ms > $2
	order by lap_time_ms, lap_number limit 1`, sessionID, minTime)
	item := model.DbLap{}
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// deletes all laps of a session, returns number of rows deleted.
func DeleteBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionID uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap where session_id=$1", sessionID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = `select session_id, lap_number, lap_time_ms, s1, s2, s3,
	fuel_used, max_speed, data from lap`

func scan(e *model.DbLap, row pgx.Row) error {
	e.Data = &model.LapData{}
	return row.Scan(&e.SessionID, &e.LapNumber, &e.LapTimeMs,
		&e.SectorsMs[0], &e.SectorsMs[1], &e.SectorsMs[2],
		&e.FuelUsed, &e.MaxSpeed, e.Data)
}
