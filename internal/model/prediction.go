package model

import "time"

// Verdict classifies a player's expected price movement.
type Verdict string

const (
	VerdictRise   Verdict = "rise"
	VerdictFall   Verdict = "fall"
	VerdictWatch  Verdict = "watch"
	VerdictStable Verdict = "stable"
)

// Confidence is the coarse likelihood bucket attached to a verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Prediction is one player's classified forecast. Ephemeral: recomputed on
// every read, persisted only inside a dated PredictionSnapshot.
type Prediction struct {
	ID             int        `json:"id"`
	Name           string     `json:"web_name"`
	Price          int        `json:"now_cost"`
	Ownership      float64    `json:"ownership"`
	RawNet         int        `json:"raw_net_transfers"`
	EffectiveNet   int        `json:"effective_net_transfers"`
	PredictedPrice int        `json:"predicted_price"`
	Verdict        Verdict    `json:"prediction"`
	Likelihood     int        `json:"likelihood"`
	Confidence     Confidence `json:"confidence"`
	Threshold      int        `json:"threshold"`
}

// PredictionMeta describes how and when a prediction set was generated.
type PredictionMeta struct {
	GeneratedAt     time.Time  `json:"generated_at"`
	LastDataUpdate  *time.Time `json:"last_data_update"`
	DiscountApplied float64    `json:"discount_applied"`
	Event           int        `json:"gameweek"`
	IsDouble        bool       `json:"is_dgw"`
}

// PredictionSet is the full forecast exposed on the read path.
type PredictionSet struct {
	Risers    []Prediction   `json:"risers"`
	Fallers   []Prediction   `json:"fallers"`
	Watchlist []Prediction   `json:"watchlist"`
	Meta      PredictionMeta `json:"metadata"`
}

// PredictionSnapshot is a prediction set frozen for one calendar date so the
// verification loop can score it the next day.
type PredictionSnapshot struct {
	Date       string       `json:"captured_date"`
	CapturedAt time.Time    `json:"captured_at"`
	Risers     []Prediction `json:"risers"`
	Fallers    []Prediction `json:"fallers"`
	Watchlist  []Prediction `json:"watchlist"`
}

// AccuracyBucket holds running correct/total counts and the derived
// percentage for one prediction direction.
type AccuracyBucket struct {
	Correct  int `json:"correct"`
	Total    int `json:"total"`
	Accuracy int `json:"accuracy"`
}

// AccuracyCount is the per-day correct/total pair kept in history entries.
type AccuracyCount struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AccuracyEntry records one verified date.
type AccuracyEntry struct {
	Date    string        `json:"date"`
	Risers  AccuracyCount `json:"risers"`
	Fallers AccuracyCount `json:"fallers"`
	Overall AccuracyCount `json:"overall"`
}

// AccuracyLedger is the running scorecard owned by the verification loop.
// History is bounded FIFO; the oldest entry drops first.
type AccuracyLedger struct {
	Overall AccuracyBucket  `json:"overall"`
	Risers  AccuracyBucket  `json:"risers"`
	Fallers AccuracyBucket  `json:"fallers"`
	History []AccuracyEntry `json:"history"`
}

// NewAccuracyLedger returns an empty scorecard.
func NewAccuracyLedger() *AccuracyLedger {
	return &AccuracyLedger{History: []AccuracyEntry{}}
}

// VerifyResult reports one verification run. Verified is false when there was
// no prediction snapshot to score, so callers can tell "nothing to verify"
// apart from "verified with zero correct".
type VerifyResult struct {
	Verified bool          `json:"verified"`
	Reason   string        `json:"reason,omitempty"`
	Date     string        `json:"date,omitempty"`
	Risers   AccuracyCount `json:"risers"`
	Fallers  AccuracyCount `json:"fallers"`
	Overall  AccuracyCount `json:"overall"`
}
