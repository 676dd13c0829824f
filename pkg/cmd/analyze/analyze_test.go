package analyze

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
	"github.com/mpapenbr/race-engineer-go/pkg/processing/session"
)

func TestReporterLap(t *testing.T) {
	s := session.NewState()
	l := model.LapData{
		LapNumber: 1,
		LapTimeMs: 105200,
		SectorsMs: [3]int32{35000, 40100, 30100},
		FuelUsed:  2.345,
		MaxSpeed:  251.26,
	}
	s.Append(l)
	first, _ := s.LastLap()

	tests := []struct {
		name     string
		analysis model.StandaloneAnalysis
		want     string
	}{
		{
			name:     "perfect",
			analysis: model.StandaloneAnalysis{IsPerfect: true},
			want: "Lap   1  1:45.200  S1 0:35.000  S2 0:40.100  S3 0:30.100  fuel 2.35  vmax 251.3 *\n" +
				"         no findings\n",
		},
		{
			name: "advices",
			analysis: model.StandaloneAnalysis{Advices: []model.Advice{
				{Zone: "Brakes", Problem: "too hot", Solution: "open ducts", Severity: 3},
			}},
			want: "Lap   1  1:45.200  S1 0:35.000  S2 0:40.100  S3 0:30.100  fuel 2.35  vmax 251.3 *\n" +
				"         [3] Brakes: too hot -> open ducts\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := &reporter{out: &buf}
			r.lap(s, first, tt.analysis)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReporterSummary(t *testing.T) {
	s := session.NewState()
	var buf bytes.Buffer
	r := &reporter{out: &buf}
	r.summary(s)
	assert.Equal(t, "0 laps\n", buf.String())

	s.Append(model.LapData{LapNumber: 1, LapTimeMs: 110000})
	s.Append(model.LapData{LapNumber: 2, LapTimeMs: 105000})
	s.UpdateBestSectors([3]int32{35000, 40000, 30000})
	buf.Reset()
	r.summary(s)
	assert.Equal(t, "2 laps, best 1:45.000 (lap 2), theoretical best 1:45.000\n", buf.String())
}
