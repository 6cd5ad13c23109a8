package voice

import (
	"strings"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

// Fixed voice set. Picked per-persona by SelectVoice when the agent carries
// no explicit voice reference.
const (
	VoiceMaleYoungDynamic   = "gs0tAILXbY5DNrJrsM6F"
	VoiceMaleYoungRealistic = "qNc8cbRJLnPqGTjuVcKa"
	VoiceMaleMatureDeep     = "UgBBYS2sOqTuMpoF3BR0"
	VoiceMaleYoungEnergetic = "zT03pEAEi0VHKciJODfn"
	VoiceFemaleYoungDynamic = "TojRWZatQyy9dujEdiQ1"
)

var seniorTitleKeywords = []string{"senior", "manager", "directeur"}

// SelectVoice resolves the voice for a persona: the explicit reference when
// set, otherwise a decision table keyed on difficulty and job-title
// seniority keywords.
func SelectVoice(agent *domain.Agent) string {
	if agent.VoiceID != "" {
		return agent.VoiceID
	}

	title := strings.ToLower(agent.JobTitle)

	isSenior := agent.Difficulty == domain.DifficultyHard
	for _, kw := range seniorTitleKeywords {
		if strings.Contains(title, kw) {
			isSenior = true
		}
	}
	isJunior := agent.Difficulty == domain.DifficultyEasy || strings.Contains(title, "junior")

	switch {
	case isSenior:
		return VoiceMaleMatureDeep
	case isJunior:
		return VoiceMaleYoungEnergetic
	default:
		return VoiceMaleYoungDynamic
	}
}
