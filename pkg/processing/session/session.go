// Package session keeps the per-session lap history and best lap/sector state.
package session

import (
	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const (
	// sector times at or below this value are treated as garbage splits
	MinSectorTime = 1000
	// laps at or below this time (ms) never replace an existing best lap
	MinBestLapTime = 10000
)

type (
	// State is owned by exactly one connected session.
	// The lap list only grows via Append; BestSectors only decreases once
	// seeded (0 = not seeded).
	State struct {
		ID          uuid.UUID
		Car         string
		Track       string
		BestSectors [3]int32
		WorldRecord omit.Val[int32] // ms

		laps         []model.LapData
		bestLapIndex int
	}
	Option func(s *State)
)

func WithID(id uuid.UUID) Option {
	return func(s *State) {
		s.ID = id
	}
}

func WithCarTrack(car, track string) Option {
	return func(s *State) {
		s.Car = car
		s.Track = track
	}
}

func WithWorldRecord(ms int32) Option {
	return func(s *State) {
		if ms > 0 {
			s.WorldRecord = omit.From(ms)
		}
	}
}

func NewState(opts ...Option) *State {
	ret := &State{
		laps:         make([]model.LapData, 0),
		bestLapIndex: -1,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.ID == uuid.Nil {
		ret.ID = uuid.Must(uuid.NewV4())
	}
	return ret
}

func (s *State) LapCount() int {
	return len(s.laps)
}

// BestLapIndex returns the index of the best lap or -1.
// The index is checked against the current lap list.
func (s *State) BestLapIndex() int {
	if s.bestLapIndex < 0 || s.bestLapIndex >= len(s.laps) {
		return -1
	}
	return s.bestLapIndex
}

// BestLap returns the current best lap, if any.
// The record is shared with the state and must not be modified.
func (s *State) BestLap() (*model.LapData, bool) {
	idx := s.BestLapIndex()
	if idx < 0 {
		return nil, false
	}
	return &s.laps[idx], true
}

// BestLapTime returns the best lap time in ms or 0 if there is no best lap.
func (s *State) BestLapTime() int32 {
	if l, ok := s.BestLap(); ok {
		return l.LapTimeMs
	}
	return 0
}

// LastLap returns the most recently appended lap.
// The record is shared with the state and must not be modified.
func (s *State) LastLap() (*model.LapData, bool) {
	if len(s.laps) == 0 {
		return nil, false
	}
	return &s.laps[len(s.laps)-1], true
}

// TheoreticalBest returns the sum of the best sectors, 0 until all three are seeded.
func (s *State) TheoreticalBest() int32 {
	var sum int32
	for _, v := range s.BestSectors {
		if v <= 0 {
			return 0
		}
		sum += v
	}
	return sum
}

// UpdateBestSectors takes over each sector that is longer than MinSectorTime
// and faster than the current best.
func (s *State) UpdateBestSectors(sectors [3]int32) {
	for i, v := range sectors {
		if v <= MinSectorTime {
			continue
		}
		if s.BestSectors[i] == 0 || v < s.BestSectors[i] {
			s.BestSectors[i] = v
		}
	}
}

// Append adds the lap and updates the best lap index.
// A lap becomes the best lap if there is none yet or if it is faster than
// the current best and longer than MinBestLapTime.
func (s *State) Append(lap model.LapData) {
	s.laps = append(s.laps, lap)
	idx := len(s.laps) - 1
	best, ok := s.BestLap()
	if !ok {
		s.bestLapIndex = idx
		return
	}
	if lap.LapTimeMs < best.LapTimeMs && lap.LapTimeMs > MinBestLapTime {
		s.bestLapIndex = idx
	}
}
