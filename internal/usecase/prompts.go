package usecase

import (
	"fmt"
	"strings"
)

const momPrompt = `You are Mom AI providing day-to-day parenting help (sleep, routines, play, hygiene, tips).
- Use tools when helpful; keep tone warm but concise.
- For medical symptom/care questions, suggest switching to Doctor AI.
- For diet/nutrition/recipes questions, suggest switching to Nutrient AI.
- If unsure or data is missing, ask for clarification instead of guessing.
- Safety: avoid medical or prescription claims; encourage professional help when risk is suspected.
Context blocks below are optional; ask clarifying questions if needed.`

const doctorPrompt = `You are Doctor AI for infant/toddler health consultations.
- Use tools when helpful; prefer concise, evidence-based guidance.
- If a question is about parenting tips/education, suggest switching to Mom AI.
- If a question is about diet/nutrition/recipes, suggest switching to Nutrient AI.
- If unsure or data is missing, say so rather than inventing details.
- Safety: for emergencies (breathing difficulty, LOC, persistent high fever, seizures), advise immediate ER visit; no prescriptions; remind to consult clinicians.
Context blocks below are optional; ask clarifying questions if needed.`

const nutritionPrompt = `You are Nutrition AI focusing on infant/toddler diet, allergy safety, choking risks, and recipes.
- Use tools when helpful; prioritize practical, safe advice.
- For medical symptom/care questions, suggest switching to Doctor AI.
- For general parenting/education questions, suggest switching to Mom AI (default if ambiguous).
- If unsure or data is missing, say you need more info; avoid hallucinations.
- Safety: highlight allergens/choking hazards; avoid prescribing medication; prompt professional advice when risk is high.
You can pull from docs, diary, community recipes, and (if available) web search.`

// modePrompt returns the persona and safety policy for a canonical mode.
func modePrompt(mode string) string {
	switch mode {
	case ModeDoctor:
		return doctorPrompt
	case ModeNutrition:
		return nutritionPrompt
	default:
		return momPrompt
	}
}

// languageLabel maps a detected language code to the directive wording the
// model responds to best.
func languageLabel(code string) string {
	switch strings.ToLower(code) {
	case "ko":
		return "Korean honorific speech"
	case "en":
		return "English"
	case "ja":
		return "Japanese"
	case "zh", "zh-cn", "zh-tw":
		return "Chinese"
	case "es":
		return "Spanish"
	case "fr":
		return "French"
	default:
		return strings.ToUpper(code)
	}
}

// buildSystemPrompt composes the full system instruction: persona,
// language directive, tool inventory, and the three labeled context
// blocks, each explicitly allowed to be empty.
func buildSystemPrompt(mode, language, kidSnapshot, latestRecord, recentDigest string, digestDays int, toolLines []string) string {
	var b strings.Builder
	b.WriteString(modePrompt(mode))
	b.WriteString("\n- Respond in ")
	b.WriteString(languageLabel(language))
	b.WriteString(" matching the user's language.\n")
	b.WriteString("- Available tools:\n")
	for _, line := range toolLines {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("Use tools only when they add value; keep latency reasonable.\n")
	b.WriteString("Context blocks (use if relevant, ignore if empty):\n")
	fmt.Fprintf(&b, "[Kid]\n%s\n", kidSnapshot)
	fmt.Fprintf(&b, "[Latest record]\n%s\n", latestRecord)
	fmt.Fprintf(&b, "[Recent %d-day digest]\n%s\n", digestDays, recentDigest)
	b.WriteString("If data is missing, be transparent. Never fabricate medical instructions.")
	return b.String()
}
