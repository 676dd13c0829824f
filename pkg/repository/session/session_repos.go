//nolint:whitespace //can't make both the linter and editor happy :(
package session

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
	"github.com/mpapenbr/race-engineer-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, s *session.State) error {
	var wr *int32
	if v, ok := s.WorldRecord.Get(); ok {
		wr = &v
	}
	_, err := conn.Exec(ctx,
		"insert into session (id, car, track, world_record_ms) values ($1,$2,$3,$4)",
		s.ID, s.Car, s.Track, wr)
	return err
}

// EnsureSession creates the session row unless it already exists.
func EnsureSession(ctx context.Context, conn repository.Querier, s *session.State) error {
	_, err := LoadByID(ctx, conn, s.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Create(ctx, conn, s)
	}
	return err
}

func LoadByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (
	*model.DbSession, error,
) {
	row := conn.QueryRow(ctx, selector+" where id=$1", id)
	var item model.DbSession
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// LoadLatest returns up to limit sessions, newest first.
func LoadLatest(ctx context.Context, conn repository.Querier, limit int) (
	[]*model.DbSession, error,
) {
	rows, err := conn.Query(ctx, selector+" order by created_at desc limit $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DbSession, 0)
	for rows.Next() {
		var item model.DbSession
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// deletes the session and its laps, returns number of sessions deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from session where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// little helper
const selector = `select id, car, track, world_record_ms, created_at from session`

func scan(e *model.DbSession, row pgx.Row) error {
	return row.Scan(&e.ID, &e.Car, &e.Track, &e.WorldRecordMs, &e.CreatedAt)
}
