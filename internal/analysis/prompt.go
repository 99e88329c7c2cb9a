package analysis

import (
	"fmt"
	"strings"
)

const analysisTemplate = `Analyze the word or phrase "%[1]s" with a focus on American English (AmE) and return a JSON array of objects, one object per part of speech. Each object must follow this structure exactly:
{
  "word": "string",
  "syllables": "the word split into syllables with middle dots (e.g. ser·en·dip·i·ty)",
  "us_pron": "IPA string wrapped in slashes, e.g. /ˌserənˈdɪpəti/",
  "uk_pron": "IPA string wrapped in slashes",
  "word_form": "abbreviated part of speech (n., vt., vi., adj., adv., prep., conj.)",
  "frequency": "CEFR level: A1, A2, B1, B2, C1 or C2",
  "definitions": [[image_friendly, "english definition", "%[2]s definition"]],
  "synonyms": ["string"],
  "notes": ["string"],
  "examples": {
    "word or phrase": [["english sentence", "%[2]s translation"]]
  },
  "image_keywords": ["short English search keywords for a picture of this word"]
}
Strict Rules:
1. AMERICAN ENGLISH: All definitions and examples must prioritize AmE usage and spelling.
2. BRITISH ENGLISH: If there is a British variant (spelling or different word), add it to "notes" as "BrE: [word]".
3. FREQUENCY: Assign a CEFR level (A1-C2) to each word form to indicate its commonality.
4. WORD FORM: Use ONLY concise abbreviations (n., vt., vi., adj., adv., prep., conj.).
5. DEFINITIONS: Every definition is an array of exactly 3 elements. The first element is a JSON boolean (true or false, not a string) telling whether the sense is concrete and can be shown in a picture; abstract senses are false.
6. TRANSLATIONS: Translate into %[2]s; the english and translated text must match one to one.
7. EXAMPLES: Mark the phrase in each sentence as **phrase** and give at most 2 sentences per key.
8. NO MARKDOWN: Respond ONLY with raw JSON, without code fences or commentary.`

const imageTemplate = `Create a simple, clear illustration that shows the meaning of the English word "%s" as in: %s.
Square composition, plain light background, a single central subject, flat illustration style.
Do not include any text, letters, numbers or captions in the image.`

// AnalysisPrompt renders the instruction sent for a word
func AnalysisPrompt(word, translationLanguage string) string {
	if translationLanguage == "" {
		translationLanguage = DefaultTranslationLanguage
	}
	return fmt.Sprintf(analysisTemplate, strings.TrimSpace(word), translationLanguage)
}

// ImagePrompt renders the instruction sent to the image model
func ImagePrompt(word, definition string) string {
	return fmt.Sprintf(imageTemplate, strings.TrimSpace(word), strings.TrimSpace(definition))
}
