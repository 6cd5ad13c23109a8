package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCompletionStructured(t *testing.T) {
	completion := `{
		"note": 82,
		"points_forts": ["Bonne accroche", "Questions pertinentes"],
		"axes_amelioration": ["Conclure plus tôt"],
		"moments_cles": ["Objection sur le prix"],
		"suggestions": ["Préparer une réponse tarifaire"],
		"analyse_complete": "Un appel solide dans l'ensemble."
	}`

	fb := ParseCompletion(completion)

	assert.Equal(t, 82, fb.Score)
	assert.Equal(t, []string{"Bonne accroche", "Questions pertinentes"}, fb.Strengths)
	assert.Equal(t, []string{"Conclure plus tôt"}, fb.Improvements)
	assert.Equal(t, []string{"Objection sur le prix"}, fb.KeyMoments)
	assert.Equal(t, []string{"Préparer une réponse tarifaire"}, fb.Suggestions)
	assert.Equal(t, "Un appel solide dans l'ensemble.", fb.Analysis)
}

func TestParseCompletionFencedJSON(t *testing.T) {
	completion := "```json\n{\"note\": 64, \"points_forts\": [], \"axes_amelioration\": [], \"moments_cles\": [], \"suggestions\": [], \"analyse_complete\": \"ok\"}\n```"

	fb := ParseCompletion(completion)

	assert.Equal(t, 64, fb.Score)
	assert.Equal(t, "ok", fb.Analysis)
}

func TestParseCompletionClampsScore(t *testing.T) {
	fb := ParseCompletion(`{"note": 140, "analyse_complete": "x"}`)
	assert.Equal(t, 100, fb.Score)

	fb = ParseCompletion(`{"note": -3, "analyse_complete": "x"}`)
	assert.Equal(t, 0, fb.Score)
}

func TestParseCompletionProseFallsBackToScrape(t *testing.T) {
	completion := "Voici mon analyse.\nNote globale : 68/100.\nBeaucoup de points positifs."

	fb := ParseCompletion(completion)

	assert.Equal(t, 68, fb.Score)
	assert.Equal(t, completion, fb.Analysis)
	assert.Equal(t, []string{"Analyse générée avec succès"}, fb.Strengths)
	assert.Equal(t, []string{"Continuez à pratiquer"}, fb.Improvements)
}

func TestParseCompletionKeepsFullTextWhenAnalysisMissing(t *testing.T) {
	completion := `{"note": 50, "points_forts": ["a"]}`

	fb := ParseCompletion(completion)

	assert.Equal(t, 50, fb.Score)
	assert.Equal(t, completion, fb.Analysis)
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "note keyword", text: "Note: 82", want: 82},
		{name: "score keyword", text: "Le score final est 47 sur 100", want: 47},
		{name: "case insensitive", text: "NOTE - 91", want: 91},
		{name: "no keyword", text: "Très bon appel, 95 sur 100", want: defaultScore},
		{name: "no number", text: "Aucune note ici", want: defaultScore},
		{name: "empty", text: "", want: defaultScore},
		{name: "clamped", text: "note: 250", want: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractScore(tc.text))
		})
	}
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFence("  {\"a\":1}  "))
	assert.Equal(t, "pas de fence", StripFence("pas de fence"))
}
