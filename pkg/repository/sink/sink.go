// Package sink stores completed laps in the database.
package sink

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
	laprepos "github.com/mpapenbr/race-engineer-go/pkg/repository/lap"
	sessionrepos "github.com/mpapenbr/race-engineer-go/pkg/repository/session"
)

type (
	// TxStarter is satisfied by *pgxpool.Pool and *pgx.Conn.
	TxStarter interface {
		Begin(ctx context.Context) (pgx.Tx, error)
	}
	Sink struct {
		db     TxStarter
		stored map[uuid.UUID]bool
	}
)

func NewSink(db TxStarter) *Sink {
	return &Sink{
		db:     db,
		stored: make(map[uuid.UUID]bool),
	}
}

// LapCompleted stores the lap. The session row is created with the first lap.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Sink) LapCompleted(
	ctx context.Context,
	st *session.State,
	lap *model.LapData,
	_ model.StandaloneAnalysis,
) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if !s.stored[st.ID] {
			if err := sessionrepos.EnsureSession(ctx, tx, st); err != nil {
				return err
			}
		}
		return laprepos.Create(ctx, tx, st.ID, lap)
	})
	if err != nil {
		return err
	}
	s.stored[st.ID] = true
	log.GetFromContext(ctx).Named("db").Debug("lap stored",
		log.Stringer("session", st.ID),
		log.Int("lap", lap.LapNumber))
	return nil
}
