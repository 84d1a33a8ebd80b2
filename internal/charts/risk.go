package charts

import (
	"time"

	"climagraph/internal/series"
)

// RiskBand classifies the condensation margin of a record.
type RiskBand string

const (
	BandCritical RiskBand = "critical" // temperature at or below dew point
	BandAtRisk   RiskBand = "at_risk"  // within the margin threshold above dew point
	BandSafe     RiskBand = "safe"
)

// riskMarginC is the margin in °C above the dew point under which a record
// is classified at-risk.
const riskMarginC = 3.0

// RiskPoint is one record's condensation margin and band.
type RiskPoint struct {
	At     time.Time
	Margin float64
	Band   RiskBand
}

// DewPointRisk computes the temperature minus dew point margin per record,
// with its band classification, so a renderer can color-code. Records without
// a dew point are skipped.
func DewPointRisk(s *series.Series) []RiskPoint {
	out := make([]RiskPoint, 0, len(s.Records))
	for _, r := range s.Records {
		if r.DewPoint == nil {
			continue
		}
		margin := r.Temperature - *r.DewPoint
		out = append(out, RiskPoint{At: r.At, Margin: margin, Band: ClassifyMargin(margin)})
	}
	return out
}

// ClassifyMargin maps a condensation margin onto its risk band.
func ClassifyMargin(margin float64) RiskBand {
	switch {
	case margin <= 0:
		return BandCritical
	case margin <= riskMarginC:
		return BandAtRisk
	default:
		return BandSafe
	}
}
