package card

// Field names of the "AI Word (R)" note model
const (
	FieldWord        = "Word"
	FieldSyllables   = "Syllables"
	FieldUSPron      = "US Pronunciation"
	FieldUKPron      = "UK Pronunciation"
	FieldUSAudio     = "US Audio"
	FieldUKAudio     = "UK Audio"
	FieldWordForm    = "Word Form"
	FieldFrequency   = "Frequency"
	FieldDefinitions = "Definitions"
	FieldSynonyms    = "Synonyms"
	FieldExamples    = "Examples"
	FieldImages      = "Images"
	FieldNotes       = "Notes"
	FieldUserNotes   = "User Notes"
)

// AudioVariant maps a TTS language code to the field holding its recording
type AudioVariant struct {
	Kind         string // Used in the media file name
	LanguageCode string
	Field        string
}

// DefaultAudioVariants are the US and UK pronunciations
var DefaultAudioVariants = []AudioVariant{
	{Kind: "us", LanguageCode: "en-US", Field: FieldUSAudio},
	{Kind: "uk", LanguageCode: "en-GB", Field: FieldUKAudio},
}
