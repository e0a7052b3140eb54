package backtest

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/yourusername/dinger/internal/models"
)

// TierMetrics summarizes accuracy within one tier.
type TierMetrics struct {
	Count          int     `json:"count"`
	Hits           int     `json:"hits"`
	HitRate        float64 `json:"hit_rate"`
	AvgProbability float64 `json:"avg_probability"`
}

// CalibrationBucket compares predicted probability with observed HR rate over
// one probability band.
type CalibrationBucket struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Count         int     `json:"count"`
	PredictedMean float64 `json:"predicted_mean"`
	ObservedRate  float64 `json:"observed_rate"`
}

// Metrics represents backtest performance metrics.
type Metrics struct {
	StartDate        time.Time              `json:"start_date"`
	EndDate          time.Time              `json:"end_date"`
	TotalPredictions int                    `json:"total_predictions"`
	Settled          int                    `json:"settled"`
	OverallHitRate   float64                `json:"overall_hit_rate"`
	BrierScore       float64                `json:"brier_score"`
	LogLoss          float64                `json:"log_loss"`
	AUC              float64                `json:"auc"`
	PerTier          map[string]TierMetrics `json:"per_tier"`
	Calibration      []CalibrationBucket    `json:"calibration"`
}

// ToJSON exports metrics to indented JSON.
func (m Metrics) ToJSON() string {
	data, _ := json.MarshalIndent(m, "", "  ")
	return string(data)
}

// CalculateMetrics evaluates settled predictions. Unsettled rows count toward
// TotalPredictions but contribute to no accuracy statistic. Deterministic:
// the same records always produce identical metrics.
func CalculateMetrics(recs []*models.PredictionRecord, cfg Config) Metrics {
	m := Metrics{
		StartDate:   cfg.StartDate,
		EndDate:     cfg.EndDate,
		PerTier:     map[string]TierMetrics{},
		Calibration: make([]CalibrationBucket, cfg.Buckets),
	}
	m.TotalPredictions = len(recs)

	var settled []*models.PredictionRecord
	for _, r := range recs {
		if r.HitHR != nil {
			settled = append(settled, r)
		}
	}
	m.Settled = len(settled)
	if m.Settled == 0 {
		return m
	}

	var hits int
	var brierSum, logLossSum float64
	tierProbSums := map[string]float64{}

	for _, r := range settled {
		outcome := 0.0
		if *r.HitHR {
			outcome = 1.0
			hits++
		}

		diff := r.Probability - outcome
		brierSum += diff * diff
		logLossSum += -(outcome*math.Log(clampProb(r.Probability)) +
			(1-outcome)*math.Log(1-clampProb(r.Probability)))

		tier := string(r.Tier)
		tm := m.PerTier[tier]
		tm.Count++
		if outcome == 1 {
			tm.Hits++
		}
		m.PerTier[tier] = tm
		tierProbSums[tier] += r.Probability
	}

	for tier, tm := range m.PerTier {
		tm.HitRate = float64(tm.Hits) / float64(tm.Count)
		tm.AvgProbability = tierProbSums[tier] / float64(tm.Count)
		m.PerTier[tier] = tm
	}

	n := float64(m.Settled)
	m.OverallHitRate = float64(hits) / n
	m.BrierScore = brierSum / n
	m.LogLoss = logLossSum / n
	m.AUC = calculateAUC(settled)
	m.Calibration = calibrationBuckets(settled, cfg.Buckets)

	return m
}

// calculateAUC computes the area under the ROC curve by the rank-sum method,
// with midrank handling for tied probabilities.
func calculateAUC(recs []*models.PredictionRecord) float64 {
	sorted := append([]*models.PredictionRecord{}, recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability < sorted[j].Probability
	})

	var positives, negatives, rankSum float64
	i := 0
	for i < len(sorted) {
		j := i
		for j < len(sorted) && sorted[j].Probability == sorted[i].Probability {
			j++
		}
		// Midrank for the tie group [i, j).
		midrank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if *sorted[k].HitHR {
				rankSum += midrank
				positives++
			} else {
				negatives++
			}
		}
		i = j
	}

	if positives == 0 || negatives == 0 {
		return 0.5
	}
	return (rankSum - positives*(positives+1)/2) / (positives * negatives)
}

func calibrationBuckets(recs []*models.PredictionRecord, buckets int) []CalibrationBucket {
	out := make([]CalibrationBucket, buckets)
	width := 1.0 / float64(buckets)
	for i := range out {
		out[i].Lower = float64(i) * width
		out[i].Upper = float64(i+1) * width
	}

	sums := make([]float64, buckets)
	hits := make([]int, buckets)
	for _, r := range recs {
		idx := int(r.Probability / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		out[idx].Count++
		sums[idx] += r.Probability
		if *r.HitHR {
			hits[idx]++
		}
	}

	for i := range out {
		if out[i].Count == 0 {
			continue
		}
		out[i].PredictedMean = sums[i] / float64(out[i].Count)
		out[i].ObservedRate = float64(hits[i]) / float64(out[i].Count)
	}
	return out
}

func clampProb(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
