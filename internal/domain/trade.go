package domain

import "time"

// CloseReason indicates why a leg was realized.
type CloseReason string

const (
	CloseReasonReversal   CloseReason = "REVERSAL"    // opposite signal closed and re-opened
	CloseReasonSessionEnd CloseReason = "SESSION_END" // flat close at shutdown
)

// Trade records one realized leg: entry to exit, with the profit it
// contributed to the session.
type Trade struct {
	ID          int64       // assigned by the repository
	Symbol      string      // trading symbol
	Side        Side        // direction of the closed leg
	EntryPrice  float64     // price the leg was opened at
	ExitPrice   float64     // price the leg was realized at
	Lots        int         // lot multiplier applied to the price move
	PNL         float64     // realized profit or loss
	EntryTime   time.Time   // when the leg was opened
	ExitTime    time.Time   // when the leg was realized
	CloseReason CloseReason // why the leg was realized
}
