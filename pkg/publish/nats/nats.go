// Package nats publishes lap results and live recommendations to NATS subjects.
//
// Subjects are <prefix>.<session id>.lap, .analysis and .recommendations.
package nats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
)

const DefaultPrefix = "re"

type (
	// Publisher is satisfied by *nats.Conn.
	Publisher interface {
		Publish(subj string, data []byte) error
	}
	Sink struct {
		pub      Publisher
		prefix   string
		l        *log.Logger
		lastRecs []byte
	}
	Option func(s *Sink)

	lapMessage struct {
		SessionID string         `json:"sessionId"`
		Lap       *model.LapData `json:"lap"`
	}
	analysisMessage struct {
		SessionID string                   `json:"sessionId"`
		LapNumber int                      `json:"lapNumber"`
		Analysis  model.StandaloneAnalysis `json:"analysis"`
	}
	recommendationsMessage struct {
		SessionID       string                 `json:"sessionId"`
		Timestamp       time.Time              `json:"timestamp"`
		Recommendations []model.Recommendation `json:"recommendations"`
	}
)

func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Sink) {
		s.l = l
	}
}

func NewSink(pub Publisher, opts ...Option) *Sink {
	ret := &Sink{
		pub:    pub,
		prefix: DefaultPrefix,
		l:      log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Connect opens a NATS connection which keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	l := log.Default().Named("nats")
	return nats.Connect(url,
		nats.Name("race-engineer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("disconnected", log.ErrorField(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("reconnected", log.String("url", c.ConnectedUrl()))
		}),
	)
}

func (s *Sink) Subject(id uuid.UUID, kind string) string {
	return fmt.Sprintf("%s.%s.%s", s.prefix, id, kind)
}

// LapCompleted publishes the lap record and its analysis.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Sink) LapCompleted(
	ctx context.Context,
	st *session.State,
	lap *model.LapData,
	analysis model.StandaloneAnalysis,
) error {
	if err := s.publish(s.Subject(st.ID, "lap"),
		lapMessage{SessionID: st.ID.String(), Lap: lap}); err != nil {
		return err
	}
	return s.publish(s.Subject(st.ID, "analysis"), analysisMessage{
		SessionID: st.ID.String(),
		LapNumber: lap.LapNumber,
		Analysis:  analysis,
	})
}

// PublishRecommendations publishes recs if they differ from the last published list.
// Returns true if a message was sent.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *Sink) PublishRecommendations(
	id uuid.UUID,
	recs []model.Recommendation,
	ts time.Time,
) (bool, error) {
	if recs == nil {
		recs = []model.Recommendation{}
	}
	content, err := json.Marshal(recs)
	if err != nil {
		return false, err
	}
	if s.lastRecs != nil && bytes.Equal(content, s.lastRecs) {
		return false, nil
	}
	if err := s.publish(s.Subject(id, "recommendations"), recommendationsMessage{
		SessionID:       id.String(),
		Timestamp:       ts,
		Recommendations: recs,
	}); err != nil {
		return false, err
	}
	s.lastRecs = content
	return true, nil
}

func (s *Sink) publish(subject string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := s.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	s.l.Debug("published", log.String("subject", subject), log.Int("bytes", len(data)))
	return nil
}
