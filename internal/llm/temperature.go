package llm

// Temperature policy: the heavy roast runs hotter than the light one, and the
// utility calls run cooler still. Fixed on purpose, not user-configurable.
const (
	HeavyRoastTemperature  float32 = 0.8
	LightRoastTemperature  float32 = 0.6
	QuickScoreTemperature  float32 = 0.3
	ImprovementTemperature float32 = 0.5

	// AnalysisMaxTokens bounds a full roast; the utility calls fit in less.
	AnalysisMaxTokens   = 2048
	QuickScoreMaxTokens = 512
)

// TemperatureFor returns the creativity setting for a roast tone.
func TemperatureFor(tone Tone) float32 {
	if tone == ToneHeavy {
		return HeavyRoastTemperature
	}
	return LightRoastTemperature
}
