package model

// TieBreak selects which candidate wins when several share the best score.
type TieBreak string

const (
	TieBreakFirst         TieBreak = "first"         // First maximum in enumeration order
	TieBreakLexicographic TieBreak = "lexicographic" // Smallest (x, y, rotation) among maxima
)

// Settings holds the placement engine tunables.
type Settings struct {
	// Along-wall sampling step is min(WallSampleStep, wallLength/WallSamplesPerWall),
	// never below MinWallSampleStep.
	WallSampleStep     float64 `json:"wall_sample_step" yaml:"wall_sample_step"`
	WallSamplesPerWall float64 `json:"wall_samples_per_wall" yaml:"wall_samples_per_wall"`
	MinWallSampleStep  float64 `json:"min_wall_sample_step" yaml:"min_wall_sample_step"`
	// Interior grid spacing.
	GridStep float64 `json:"grid_step" yaml:"grid_step"`

	// A wall closer than TouchTolerance counts as touched and is worth WallWeight.
	TouchTolerance float64 `json:"touch_tolerance" yaml:"touch_tolerance"`
	WallWeight     float64 `json:"wall_weight" yaml:"wall_weight"`

	// Clearances
	OutwardDoorClearance float64 `json:"outward_door_clearance" yaml:"outward_door_clearance"`
	FridgeClearance      float64 `json:"fridge_clearance" yaml:"fridge_clearance"` // Multiple of fridge width
	BufferQuadSegments   int     `json:"buffer_quad_segments" yaml:"buffer_quad_segments"`

	TieBreak TieBreak `json:"tie_break" yaml:"tie_break"`
	// Scoring goroutines per item; 1 is sequential.
	Workers int `json:"workers" yaml:"workers"`
}

func DefaultSettings() Settings {
	return Settings{
		WallSampleStep:       100,
		WallSamplesPerWall:   20,
		MinWallSampleStep:    1,
		GridStep:             200,
		TouchTolerance:       10,
		WallWeight:           10000,
		OutwardDoorClearance: 100,
		FridgeClearance:      1.0,
		BufferQuadSegments:   16,
		TieBreak:             TieBreakFirst,
		Workers:              1,
	}
}

// Normalize replaces zero or invalid values with their defaults.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.WallSampleStep <= 0 {
		s.WallSampleStep = d.WallSampleStep
	}
	if s.WallSamplesPerWall <= 0 {
		s.WallSamplesPerWall = d.WallSamplesPerWall
	}
	if s.MinWallSampleStep <= 0 {
		s.MinWallSampleStep = d.MinWallSampleStep
	}
	if s.GridStep <= 0 {
		s.GridStep = d.GridStep
	}
	if s.TouchTolerance <= 0 {
		s.TouchTolerance = d.TouchTolerance
	}
	if s.WallWeight <= 0 {
		s.WallWeight = d.WallWeight
	}
	if s.OutwardDoorClearance < 0 {
		s.OutwardDoorClearance = d.OutwardDoorClearance
	}
	if s.FridgeClearance < 0 {
		s.FridgeClearance = d.FridgeClearance
	}
	if s.BufferQuadSegments <= 0 {
		s.BufferQuadSegments = d.BufferQuadSegments
	}
	if s.TieBreak != TieBreakFirst && s.TieBreak != TieBreakLexicographic {
		s.TieBreak = d.TieBreak
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s
}
