package engine

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/transferwatch/internal/config"
	"github.com/sells-group/transferwatch/internal/model"
)

// Calibration holds the forecast constants. These are calibration parameters
// tuned against observed price-change behavior, not derived quantities.
type Calibration struct {
	// NoiseFloor suppresses any verdict when |effective net| is below it.
	NoiseFloor int
	// RiseTiers are the successive rise thresholds: index 0 applies to a
	// player with no price changes yet this gameweek, index 1 after one,
	// the last tier after two or more.
	RiseTiers []int
	// FallBase is the (negative) fall threshold at pivot ownership.
	FallBase int
	// FallOwnershipPivot is the ownership percentage at which FallBase
	// applies unscaled. Higher ownership scales the threshold up
	// proportionally; lower ownership never scales it down.
	FallOwnershipPivot float64
	// DiscountNormal and DiscountDouble damp raw net transfers before
	// thresholding. Double gameweeks roughly double transfer volume without
	// doubling the price-change probability, so they discount harder.
	DiscountNormal float64
	DiscountDouble float64
}

// CalibrationFromConfig maps tracker configuration onto a Calibration.
func CalibrationFromConfig(cfg config.TrackerConfig) Calibration {
	return Calibration{
		NoiseFloor:         cfg.NoiseFloor,
		RiseTiers:          cfg.RiseTiers,
		FallBase:           cfg.FallBase,
		FallOwnershipPivot: cfg.FallOwnershipPivot,
		DiscountNormal:     cfg.DiscountNormal,
		DiscountDouble:     cfg.DiscountDouble,
	}
}

// Outcome is the numeric result of classifying one player.
type Outcome struct {
	Verdict      model.Verdict
	Likelihood   int
	Confidence   model.Confidence
	Threshold    int
	EffectiveNet int
}

// Discount applies the gameweek discount factor to a raw net transfer count.
func (c Calibration) Discount(rawNet int, isDouble bool) int {
	factor := c.DiscountNormal
	if isDouble {
		factor = c.DiscountDouble
	}
	return int(math.Round(float64(rawNet) * factor))
}

// riseThreshold picks the tier matching how many price changes the player has
// already had this gameweek. Each successive rise demands more volume.
func (c Calibration) riseThreshold(priceChanges int) int {
	idx := priceChanges
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.RiseTiers) {
		idx = len(c.RiseTiers) - 1
	}
	return c.RiseTiers[idx]
}

// fallThreshold scales the base fall threshold by ownership: a fixed outflow
// is a smaller share of a widely-held player's base, so falling takes
// proportionally more. The factor is floored at 1 to avoid degenerate
// thresholds at near-zero ownership.
func (c Calibration) fallThreshold(ownershipPct float64) int {
	factor := ownershipPct / c.FallOwnershipPivot
	if factor < 1 {
		factor = 1
	}
	return int(math.Round(float64(c.FallBase) * factor))
}

// Classify converts one player's accumulated daily net activity into a
// verdict with a clamped likelihood score. Purely numeric; every read is a
// fresh classification with no hysteresis.
func Classify(dailyNet int, ownershipPct float64, isDouble bool, priceChanges int, cal Calibration) Outcome {
	effective := cal.Discount(dailyNet, isDouble)

	out := Outcome{
		Verdict:      model.VerdictStable,
		Confidence:   model.ConfidenceLow,
		EffectiveNet: effective,
	}

	if effective > -cal.NoiseFloor && effective < cal.NoiseFloor {
		return out
	}

	var likelihood float64
	if effective > 0 {
		out.Threshold = cal.riseThreshold(priceChanges)
		likelihood = float64(effective) / float64(out.Threshold) * 100
		out.Verdict, out.Confidence = band(likelihood, model.VerdictRise)
	} else {
		out.Threshold = cal.fallThreshold(ownershipPct)
		likelihood = float64(effective) / float64(out.Threshold) * 100
		out.Verdict, out.Confidence = band(likelihood, model.VerdictFall)
	}

	out.Likelihood = int(math.Round(math.Min(100, math.Max(0, likelihood))))
	return out
}

// band maps a raw likelihood onto the verdict/confidence tiers.
func band(likelihood float64, direction model.Verdict) (model.Verdict, model.Confidence) {
	switch {
	case likelihood >= 100:
		return direction, model.ConfidenceHigh
	case likelihood >= 80:
		return direction, model.ConfidenceMedium
	case likelihood >= 60:
		return model.VerdictWatch, model.ConfidenceLow
	default:
		return model.VerdictStable, model.ConfidenceLow
	}
}

// BuildPredictionSet classifies every ledger entry with activity and groups
// the results. gw may be nil when no gameweek info has been synced yet; the
// normal discount applies.
func BuildPredictionSet(ledger *model.DailyLedger, gw *model.GameweekInfo, event int, cal Calibration, now time.Time) *model.PredictionSet {
	isDouble := gw != nil && gw.IsDouble

	discount := cal.DiscountNormal
	if isDouble {
		discount = cal.DiscountDouble
	}

	set := &model.PredictionSet{
		Risers:    []model.Prediction{},
		Fallers:   []model.Prediction{},
		Watchlist: []model.Prediction{},
		Meta: model.PredictionMeta{
			GeneratedAt:     now,
			DiscountApplied: discount,
			Event:           event,
			IsDouble:        isDouble,
		},
	}
	if ledger == nil {
		return set
	}
	set.Meta.LastDataUpdate = ledger.LastUpdated

	for _, entry := range ledger.Players {
		if entry.DailyNet == 0 {
			continue
		}

		out := Classify(entry.DailyNet, entry.Ownership, isDouble, entry.PriceChangesEvent, cal)
		if out.Verdict == model.VerdictStable {
			continue
		}

		p := model.Prediction{
			ID:           entry.ID,
			Name:         entry.Name,
			Price:        entry.Price,
			Ownership:    entry.Ownership,
			RawNet:       entry.DailyNet,
			EffectiveNet: out.EffectiveNet,
			Verdict:      out.Verdict,
			Likelihood:   out.Likelihood,
			Confidence:   out.Confidence,
			Threshold:    out.Threshold,
		}
		switch out.Verdict {
		case model.VerdictRise:
			p.PredictedPrice = entry.Price + 1
			set.Risers = append(set.Risers, p)
		case model.VerdictFall:
			p.PredictedPrice = entry.Price - 1
			set.Fallers = append(set.Fallers, p)
		default:
			p.PredictedPrice = entry.Price
			set.Watchlist = append(set.Watchlist, p)
		}
	}

	byLikelihood := func(ps []model.Prediction) {
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].Likelihood != ps[j].Likelihood {
				return ps[i].Likelihood > ps[j].Likelihood
			}
			return abs(ps[i].EffectiveNet) > abs(ps[j].EffectiveNet)
		})
	}
	byLikelihood(set.Risers)
	byLikelihood(set.Fallers)
	sort.Slice(set.Watchlist, func(i, j int) bool {
		return abs(set.Watchlist[i].EffectiveNet) > abs(set.Watchlist[j].EffectiveNet)
	})

	return set
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
