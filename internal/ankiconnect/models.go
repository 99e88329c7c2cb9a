package ankiconnect

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ModelField describes one field of a note model
type ModelField struct {
	Name        string `json:"name"`
	Ord         int    `json:"ord"`
	Font        string `json:"font"`
	Size        int    `json:"size"`
	Description string `json:"description"`
}

// Template is one card template of a note model
type Template struct {
	Name  string `json:"name"`
	Front string `json:"qfmt"`
	Back  string `json:"afmt"`
}

// NoteModel is the findModelsByName view of a note model
type NoteModel struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Fields    []ModelField `json:"flds"`
	Templates []Template   `json:"tmpls"`
	CSS       string       `json:"css"`
}

// FieldNames returns the field names in order
func (m *NoteModel) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// ModelSpec is what CreateModel needs to build a note model
type ModelSpec struct {
	Name      string
	Fields    []string
	Templates []Template
	CSS       string
}

type cardTemplate struct {
	Name  string `json:"Name"`
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// ModelNames lists the names of all note models
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "modelNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// FindModel returns the named note model or ErrModelNotFound
func (c *Client) FindModel(ctx context.Context, name string) (*NoteModel, error) {
	var models []NoteModel
	err := c.invoke(ctx, "findModelsByName", map[string]any{"modelNames": []string{name}}, &models)

	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) && strings.Contains(strings.ToLower(bridgeErr.Message), "not found") {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	switch len(models) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	case 1:
		return &models[0], nil
	default:
		return nil, fmt.Errorf("%d note models named %q", len(models), name)
	}
}

// CreateModel creates a note model. A name that is already taken yields
// a *ModelConflictError.
func (c *Client) CreateModel(ctx context.Context, spec ModelSpec) (*NoteModel, error) {
	templates := make([]cardTemplate, len(spec.Templates))
	for i, t := range spec.Templates {
		templates[i] = cardTemplate{Name: t.Name, Front: t.Front, Back: t.Back}
	}

	params := map[string]any{
		"modelName":     spec.Name,
		"inOrderFields": spec.Fields,
		"css":           spec.CSS,
		"isCloze":       false,
		"cardTemplates": templates,
	}

	var model NoteModel
	err := c.invoke(ctx, "createModel", params, &model)

	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) && isNameTaken(bridgeErr.Message) {
		return nil, &ModelConflictError{Name: spec.Name, Err: bridgeErr}
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// UpdateModelTemplates replaces the front and back of the given templates
func (c *Client) UpdateModelTemplates(ctx context.Context, name string, templates []Template) error {
	byName := make(map[string]map[string]string, len(templates))
	for _, t := range templates {
		byName[t.Name] = map[string]string{"Front": t.Front, "Back": t.Back}
	}

	params := map[string]any{
		"model": map[string]any{
			"name":      name,
			"templates": byName,
		},
	}
	return c.invoke(ctx, "updateModelTemplates", params, nil)
}

// UpdateModelStyling replaces the stylesheet of a note model
func (c *Client) UpdateModelStyling(ctx context.Context, name, css string) error {
	params := map[string]any{
		"model": map[string]any{
			"name": name,
			"css":  css,
		},
	}
	return c.invoke(ctx, "updateModelStyling", params, nil)
}
