package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"codeberg.org/snonux/ankismart/internal/analysis"
	"codeberg.org/snonux/ankismart/internal/ankiconnect"
	"codeberg.org/snonux/ankismart/internal/audio"
)

// StoredNote is a note held by MockBridge
type StoredNote struct {
	ID     int64
	Deck   string
	Model  string
	Fields map[string]string
	Tags   []string
}

// FieldWrite records the field map of one add or update
type FieldWrite struct {
	Op     string // "add", "updateNoteFields" or "updateNote"
	NoteID int64
	Fields map[string]string
	Tags   []string
}

// MockBridge is an in-memory AnkiConnect bridge
type MockBridge struct {
	Notes  map[int64]*StoredNote
	Media  map[string][]byte
	Errors map[string]error // Keyed by action name
	Calls  []string
	Writes []FieldWrite
	Models map[string]*ankiconnect.NoteModel
	Decks  []string
	Closed bool
	nextID int64
}

// NewMockBridge creates an empty bridge
func NewMockBridge() *MockBridge {
	return &MockBridge{
		Notes:  make(map[int64]*StoredNote),
		Media:  make(map[string][]byte),
		Errors: make(map[string]error),
		Models: make(map[string]*ankiconnect.NoteModel),
		nextID: 1000,
	}
}

// Seed stores a note and returns its id
func (m *MockBridge) Seed(deck string, fields map[string]string) int64 {
	m.nextID++
	m.Notes[m.nextID] = &StoredNote{ID: m.nextID, Deck: deck, Fields: copyFields(fields)}
	return m.nextID
}

func (m *MockBridge) call(action, detail string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("%s %s", action, detail))
	return m.Errors[action]
}

// FindNotes understands queries of the form deck:"D" "Word:W"
func (m *MockBridge) FindNotes(_ context.Context, query string) ([]int64, error) {
	if err := m.call("findNotes", query); err != nil {
		return nil, err
	}

	var ids []int64
	for id, n := range m.Notes {
		word := strings.ReplaceAll(n.Fields["Word"], `"`, `\"`)
		if query == fmt.Sprintf(`deck:"%s" "Word:%s"`, n.Deck, word) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// NotesInfo returns the stored notes for ids
func (m *MockBridge) NotesInfo(_ context.Context, ids []int64) ([]ankiconnect.NoteInfo, error) {
	if err := m.call("notesInfo", fmt.Sprint(ids)); err != nil {
		return nil, err
	}

	var infos []ankiconnect.NoteInfo
	for _, id := range ids {
		n, ok := m.Notes[id]
		if !ok {
			continue
		}
		info := ankiconnect.NoteInfo{NoteID: id, ModelName: n.Model, Tags: n.Tags, Fields: map[string]ankiconnect.FieldValue{}}
		for k, v := range n.Fields {
			info.Fields[k] = ankiconnect.FieldValue{Value: v}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// AddNote stores a new note
func (m *MockBridge) AddNote(_ context.Context, deck, model string, fields map[string]string, tags []string) (int64, error) {
	if err := m.call("addNote", fields["Word"]); err != nil {
		return 0, err
	}

	m.nextID++
	m.Notes[m.nextID] = &StoredNote{ID: m.nextID, Deck: deck, Model: model, Fields: copyFields(fields), Tags: tags}
	m.Writes = append(m.Writes, FieldWrite{Op: "add", NoteID: m.nextID, Fields: copyFields(fields), Tags: tags})
	return m.nextID, nil
}

// UpdateNoteFields overwrites the given fields of a note
func (m *MockBridge) UpdateNoteFields(_ context.Context, id int64, fields map[string]string) error {
	if err := m.call("updateNoteFields", fmt.Sprint(id)); err != nil {
		return err
	}
	return m.update("updateNoteFields", id, fields, nil)
}

// UpdateNote overwrites the given fields and the tags of a note
func (m *MockBridge) UpdateNote(_ context.Context, id int64, fields map[string]string, tags []string) error {
	if err := m.call("updateNote", fmt.Sprint(id)); err != nil {
		return err
	}
	return m.update("updateNote", id, fields, tags)
}

func (m *MockBridge) update(op string, id int64, fields map[string]string, tags []string) error {
	n, ok := m.Notes[id]
	if !ok {
		return &ankiconnect.BridgeError{Action: op, Message: "Note was not found: " + fmt.Sprint(id)}
	}
	for k, v := range fields {
		n.Fields[k] = v
	}
	if tags != nil {
		n.Tags = tags
	}
	m.Writes = append(m.Writes, FieldWrite{Op: op, NoteID: id, Fields: copyFields(fields), Tags: tags})
	return nil
}

// StoreMediaFile keeps the data under filename and returns the filename
func (m *MockBridge) StoreMediaFile(_ context.Context, filename string, data []byte) (string, error) {
	if err := m.call("storeMediaFile", filename); err != nil {
		return "", err
	}
	m.Media[filename] = data
	return filename, nil
}

// LastWrite returns the most recent add or update
func (m *MockBridge) LastWrite() (FieldWrite, bool) {
	if len(m.Writes) == 0 {
		return FieldWrite{}, false
	}
	return m.Writes[len(m.Writes)-1], true
}

// ModelNames lists the stored note models
func (m *MockBridge) ModelNames(context.Context) ([]string, error) {
	if err := m.call("modelNames", ""); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.Models))
	for name := range m.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeckNames lists the decks
func (m *MockBridge) DeckNames(context.Context) ([]string, error) {
	if err := m.call("deckNames", ""); err != nil {
		return nil, err
	}
	return m.Decks, nil
}

// FindModel returns a stored model or ankiconnect.ErrModelNotFound
func (m *MockBridge) FindModel(_ context.Context, name string) (*ankiconnect.NoteModel, error) {
	if err := m.call("findModelsByName", name); err != nil {
		return nil, err
	}
	model, ok := m.Models[name]
	if !ok {
		return nil, ankiconnect.ErrModelNotFound
	}
	return model, nil
}

// CreateModel stores a model, failing with a conflict when it exists
func (m *MockBridge) CreateModel(_ context.Context, spec ankiconnect.ModelSpec) (*ankiconnect.NoteModel, error) {
	if err := m.call("createModel", spec.Name); err != nil {
		return nil, err
	}
	if _, ok := m.Models[spec.Name]; ok {
		return nil, &ankiconnect.ModelConflictError{Name: spec.Name,
			Err: &ankiconnect.BridgeError{Action: "createModel", Message: "Model name already exists"}}
	}

	model := &ankiconnect.NoteModel{Name: spec.Name, Templates: spec.Templates, CSS: spec.CSS}
	for i, f := range spec.Fields {
		model.Fields = append(model.Fields, ankiconnect.ModelField{Name: f, Ord: i})
	}
	m.Models[spec.Name] = model
	return model, nil
}

// UpdateModelTemplates replaces the templates of a model
func (m *MockBridge) UpdateModelTemplates(_ context.Context, name string, templates []ankiconnect.Template) error {
	if err := m.call("updateModelTemplates", name); err != nil {
		return err
	}
	if model, ok := m.Models[name]; ok {
		model.Templates = templates
	}
	return nil
}

// UpdateModelStyling replaces the css of a model
func (m *MockBridge) UpdateModelStyling(_ context.Context, name, css string) error {
	if err := m.call("updateModelStyling", name); err != nil {
		return err
	}
	if model, ok := m.Models[name]; ok {
		model.CSS = css
	}
	return nil
}

// Close marks the bridge closed
func (m *MockBridge) Close() {
	m.Closed = true
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// MockAnalyzer returns canned word senses per word
type MockAnalyzer struct {
	Senses map[string][]analysis.WordSense
	Errors map[string]error
	Calls  []string
}

// Analyze returns the canned senses for word, or a single default sense
func (m *MockAnalyzer) Analyze(_ context.Context, word string) ([]analysis.WordSense, error) {
	m.Calls = append(m.Calls, word)

	if err, ok := m.Errors[word]; ok {
		return nil, err
	}
	if senses, ok := m.Senses[word]; ok {
		return senses, nil
	}
	return []analysis.WordSense{Sense(word, "n.")}, nil
}

// MockSynthesizer returns fixed audio per language code
type MockSynthesizer struct {
	Errors map[string]error // Keyed by language code
	Calls  []string
}

// Synthesize returns "audio:<text>:<language>"
func (m *MockSynthesizer) Synthesize(_ context.Context, text, languageCode string, _ audio.VoiceSelection) ([]byte, string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("%s %s", languageCode, text))

	if err, ok := m.Errors[languageCode]; ok {
		return nil, "", err
	}
	return []byte("audio:" + text + ":" + languageCode), languageCode + "-Mock-A", nil
}

// Name returns the provider name
func (m *MockSynthesizer) Name() string {
	return "mock"
}

// MockImageGenerator draws fake images per definition
type MockImageGenerator struct {
	Errors map[string]error // Keyed by definition
	Calls  []string
}

// GenerateWordImage returns "image:<definition>"
func (m *MockImageGenerator) GenerateWordImage(_ context.Context, word, definition string) ([]byte, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("%s: %s", word, definition))

	if err, ok := m.Errors[definition]; ok {
		return nil, err
	}
	return []byte("image:" + definition), nil
}
