package live

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

// changeLogger logs recommendations when they appear or disappear.
type changeLogger struct {
	l      *log.Logger
	active map[string]model.Recommendation
}

func newChangeLogger(l *log.Logger) *changeLogger {
	return &changeLogger{l: l, active: make(map[string]model.Recommendation)}
}

func recKey(r model.Recommendation) string {
	return string(r.Component) + "|" + r.Message
}

// update returns the number of added and removed recommendations.
func (c *changeLogger) update(recs []model.Recommendation) (added, removed int) {
	current := lo.KeyBy(recs, recKey)
	for _, r := range recs {
		k := recKey(r)
		if prev, ok := c.active[k]; ok && prev.Severity == r.Severity {
			continue
		}
		added++
		c.l.Info(r.Message,
			log.Stringer("severity", r.Severity),
			log.String("component", string(r.Component)),
			log.String("action", r.Action),
			log.Float32("confidence", r.Confidence))
	}
	for k, r := range c.active {
		if _, ok := current[k]; !ok {
			removed++
			c.l.Info("resolved",
				log.String("message", r.Message),
				log.String("component", string(r.Component)))
		}
	}
	c.active = current
	return added, removed
}
