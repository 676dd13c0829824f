package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// DbSession is a stored session.
type DbSession struct {
	ID            uuid.UUID
	Car           string
	Track         string
	WorldRecordMs *int32
	CreatedAt     time.Time
}

// DbLap is a stored lap. The summary columns are kept next to the full record.
type DbLap struct {
	SessionID uuid.UUID
	LapNumber int
	LapTimeMs int32
	SectorsMs [3]int32
	FuelUsed  decimal.Decimal // l
	MaxSpeed  decimal.Decimal // km/h
	Data      *LapData
}
