package models

import "time"

// BatterProfile is a rolling statistical snapshot for a batter over a
// trailing window ending the day before the game. Metric fields are pointers
// because the upstream feeds routinely omit them; the scoring engine
// substitutes league-average defaults for nil fields and flags the result.
type BatterProfile struct {
	BatterID       int                `json:"batter_id"`
	WindowStart    time.Time          `json:"window_start"`
	WindowEnd      time.Time          `json:"window_end"`
	ISO            *float64           `json:"iso"`
	BarrelPct      *float64           `json:"barrel_pct"`
	ExpectedHR     *float64           `json:"xhr"`
	AvgExitVelo    *float64           `json:"avg_exit_velo"`
	AvgLaunchAngle *float64           `json:"avg_launch_angle"`
	FlyBallPct     *float64           `json:"fly_ball_pct"`
	PullPct        *float64           `json:"pull_pct"`
	XSLG           *float64           `json:"xslg"`
	Last7ISO       *float64           `json:"last_7_iso"`
	HRsLast10      *float64           `json:"hrs_last_10"`
	Stands         string             `json:"stands"` // "L" or "R"
	ISOByPitch     map[string]float64 `json:"iso_by_pitch,omitempty"`
}

// PitcherProfile captures the HR-vulnerability picture for a starting
// pitcher. Same missing-data policy as BatterProfile.
type PitcherProfile struct {
	PitcherID      int                `json:"pitcher_id"`
	WindowStart    time.Time          `json:"window_start"`
	WindowEnd      time.Time          `json:"window_end"`
	HRPer9         *float64           `json:"hr_per_9"`
	BarrelPctAllowed *float64         `json:"barrel_pct_allowed"`
	HardContactPct *float64           `json:"hard_contact_pct"`
	XFIP           *float64           `json:"xfip"`
	AvgInnings     *float64           `json:"avg_innings"`
	BullpenHRPer9  *float64           `json:"bullpen_hr_per_9"`
	Throws         string             `json:"throws"` // "L" or "R"
	PitchMix       map[string]float64 `json:"pitch_mix,omitempty"` // pitch type -> usage fraction
}

// IsEmpty reports whether no batter metrics were sourced at all, in which
// case scoring runs entirely on defaults.
func (b *BatterProfile) IsEmpty() bool {
	return b.ISO == nil && b.BarrelPct == nil && b.ExpectedHR == nil &&
		b.AvgExitVelo == nil && b.Last7ISO == nil && len(b.ISOByPitch) == 0
}

// IsEmpty reports whether no pitcher metrics were sourced at all.
func (p *PitcherProfile) IsEmpty() bool {
	return p.HRPer9 == nil && p.BarrelPctAllowed == nil && p.XFIP == nil && len(p.PitchMix) == 0
}

// Float64Ptr is a small helper for building profiles by hand (tests, default
// substitution).
func Float64Ptr(v float64) *float64 { return &v }
