// Package feature implements the derivation chain that turns raw weather
// observations into model-ready feature rows: field normalization, time,
// temperature, air-quality and region derivers, the comfort score, and the
// assembler that joins category streams into a feature matrix.
package feature

// Config carries every threshold and lookup table the derivers consult.
// The source data pipeline this replaces had several slightly divergent
// copies of these values; keeping them injectable makes the divergence an
// explicit, overridable parameter instead of scattered literals.
type Config struct {
	// CoolingThresholdC marks the temperature above which cooling_needed is
	// set. 25 is canonical; one upstream variant used 28.
	CoolingThresholdC float64 `yaml:"coolingThresholdC"`
	// HeatingThresholdC marks the temperature below which heating_needed is set.
	HeatingThresholdC float64 `yaml:"heatingThresholdC"`
	// MaskThreshold is the PM10 level above which mask_needed is set.
	MaskThreshold float64 `yaml:"maskThreshold"`
	// OutdoorThreshold is the PM10 level up to which outdoor_activity_ok holds.
	OutdoorThreshold float64 `yaml:"outdoorThreshold"`
	// NullTempScore is the temperature sub-score used by the comfort
	// calculator when the temperature is null. 50 is canonical; one upstream
	// variant used 100.
	NullTempScore float64 `yaml:"nullTempScore"`
	// NullPM10Score is the air-quality sub-score used when PM10 is null.
	NullPM10Score float64 `yaml:"nullPM10Score"`

	MorningRushHours []int `yaml:"morningRushHours"`
	EveningRushHours []int `yaml:"eveningRushHours"`

	// MetroStations and CoastalStations are allow-lists of station ids.
	MetroStations   []string `yaml:"metroStations"`
	CoastalStations []string `yaml:"coastalStations"`
	// DigitRegions maps the first digit of a station id to a region name.
	// Ids that are empty or do not start with a mapped digit become "unknown".
	DigitRegions map[string]string `yaml:"digitRegions"`
}

// DefaultConfig returns the canonical thresholds and lookup tables.
func DefaultConfig() Config {
	return Config{
		CoolingThresholdC: 25,
		HeatingThresholdC: 10,
		MaskThreshold:     50,
		OutdoorThreshold:  80,
		NullTempScore:     50,
		NullPM10Score:     50,
		MorningRushHours:  []int{7, 8, 9},
		EveningRushHours:  []int{18, 19, 20},
		MetroStations: []string{
			"100", "101", "102", "104", "105", "108", "112", "119", "129", "133",
		},
		CoastalStations: []string{
			"102", "104", "115", "130", "131", "152", "156", "159", "168",
		},
		DigitRegions: map[string]string{
			"1": "central",
			"2": "southern",
			"3": "eastern",
			"4": "western",
		},
	}
}

func intSet(hours []int) map[int]struct{} {
	set := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		set[h] = struct{}{}
	}
	return set
}

func stringSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
