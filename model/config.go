package model

// LayoutConfig holds the geometry parameters for tree layout.
// All values are positive pixel-equivalent units; they affect coordinates
// only, never grouping logic.
type LayoutConfig struct {
	NodeWidth         float64 `json:"node_width"`
	NodeHeight        float64 `json:"node_height"`
	HorizontalSpacing float64 `json:"horizontal_spacing"`
	// VerticalSpacing is reserved for the rendering layer; position
	// calculation separates generations by NodeHeight plus LevelSpacing.
	VerticalSpacing float64 `json:"vertical_spacing"`
	LevelSpacing    float64 `json:"level_spacing"`
}

// DefaultLayoutConfig returns the standard tree geometry
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NodeWidth:         160,
		NodeHeight:        95,
		HorizontalSpacing: 100,
		VerticalSpacing:   30,
		LevelSpacing:      200,
	}
}

// DedupeConfig holds the duplicate detection parameters
type DedupeConfig struct {
	// Threshold is the minimum similarity score for two persons to be
	// considered duplicates, in [0, 1].
	Threshold float64 `json:"threshold"`

	// Component weights of the similarity score
	NameWeight float64 `json:"name_weight"`
	DOBWeight  float64 `json:"dob_weight"`
	IDWeight   float64 `json:"id_weight"`
}

// DefaultDedupeConfig returns the standard duplicate detection parameters
func DefaultDedupeConfig() DedupeConfig {
	return DedupeConfig{
		Threshold:  0.75,
		NameWeight: 0.6,
		DOBWeight:  0.3,
		IDWeight:   0.1,
	}
}
