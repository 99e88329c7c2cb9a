package ankiconnect

import (
	"context"
	"encoding/base64"
	"fmt"
)

// FieldValue is one field of an existing note
type FieldValue struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteInfo is the notesInfo view of a note
type NoteInfo struct {
	NoteID    int64                 `json:"noteId"`
	ModelName string                `json:"modelName"`
	Tags      []string              `json:"tags"`
	Fields    map[string]FieldValue `json:"fields"`
}

// Field returns the value of the named field, or "" when the note lacks it
func (n NoteInfo) Field(name string) string {
	return n.Fields[name].Value
}

type note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Options   noteOptions       `json:"options"`
}

type noteOptions struct {
	AllowDuplicate bool   `json:"allowDuplicate"`
	DuplicateScope string `json:"duplicateScope"`
}

type noteUpdate struct {
	ID     int64             `json:"id"`
	Fields map[string]string `json:"fields"`
	Tags   []string          `json:"tags,omitempty"`
}

// AddNote creates a note and returns its id. Duplicates within the deck are
// rejected by Anki.
func (c *Client) AddNote(ctx context.Context, deck, model string, fields map[string]string, tags []string) (int64, error) {
	if tags == nil {
		tags = []string{}
	}

	params := map[string]any{
		"note": note{
			DeckName:  deck,
			ModelName: model,
			Fields:    fields,
			Tags:      tags,
			Options: noteOptions{
				AllowDuplicate: false,
				DuplicateScope: "deck",
			},
		},
	}

	var id *int64
	if err := c.invoke(ctx, "addNote", params, &id); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, &ProtocolError{Action: "addNote", Reason: "no note id returned"}
	}
	return *id, nil
}

// UpdateNoteFields replaces the given fields of a note; fields absent from
// the map are left untouched
func (c *Client) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	params := map[string]any{
		"note": noteUpdate{ID: id, Fields: fields},
	}
	return c.invoke(ctx, "updateNoteFields", params, nil)
}

// UpdateNote replaces fields and tags of a note
func (c *Client) UpdateNote(ctx context.Context, id int64, fields map[string]string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	params := map[string]any{
		"note": noteUpdate{ID: id, Fields: fields, Tags: tags},
	}
	return c.invoke(ctx, "updateNote", params, nil)
}

// FindNotes runs an Anki search query and returns the matching note ids
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "findNotes", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches fields and tags for the given notes
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]NoteInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var infos []NoteInfo
	if err := c.invoke(ctx, "notesInfo", map[string]any{"notes": ids}, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// StoreMediaFile uploads data into the collection's media folder and
// returns the file name Anki stored it under
func (c *Client) StoreMediaFile(ctx context.Context, filename string, data []byte) (string, error) {
	params := map[string]any{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	}

	var stored string
	if err := c.invoke(ctx, "storeMediaFile", params, &stored); err != nil {
		return "", err
	}
	if stored == "" {
		return "", fmt.Errorf("storeMediaFile returned no file name for %s", filename)
	}
	return stored, nil
}

// DeckNames lists all decks
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}
