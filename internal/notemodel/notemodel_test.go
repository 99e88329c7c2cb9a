package notemodel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/ankismart/internal/ankiconnect"
)

type fakeBridge struct {
	model        *ankiconnect.NoteModel
	createErr    error
	appearOnFind bool // the model shows up after a failed create

	created   []ankiconnect.ModelSpec
	templates []ankiconnect.Template
	css       string
}

func (f *fakeBridge) FindModel(_ context.Context, name string) (*ankiconnect.NoteModel, error) {
	if f.model == nil {
		return nil, fmt.Errorf("%w: %s", ankiconnect.ErrModelNotFound, name)
	}
	return f.model, nil
}

func (f *fakeBridge) CreateModel(_ context.Context, spec ankiconnect.ModelSpec) (*ankiconnect.NoteModel, error) {
	f.created = append(f.created, spec)
	if f.createErr != nil {
		if f.appearOnFind {
			f.model = &ankiconnect.NoteModel{Name: spec.Name, Fields: []ankiconnect.ModelField{{Name: "Word"}}}
		}
		return nil, f.createErr
	}
	return &ankiconnect.NoteModel{Name: spec.Name}, nil
}

func (f *fakeBridge) UpdateModelTemplates(_ context.Context, _ string, templates []ankiconnect.Template) error {
	f.templates = templates
	return nil
}

func (f *fakeBridge) UpdateModelStyling(_ context.Context, _ string, css string) error {
	f.css = css
	return nil
}

func TestDefault(t *testing.T) {
	def := Default("")

	assert.Equal(t, "AI Word (R)", def.Name)
	assert.Contains(t, def.Fields, "Word")
	assert.Contains(t, def.Fields, "User Notes")
	assert.Len(t, def.Templates, 2)
	assert.NotEmpty(t, def.CSS)
	assert.Contains(t, def.CSS, ".user-notes")
	assert.NoError(t, def.Validate())

	assert.Equal(t, "Custom", Default("Custom").Name)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not toml", "name = "},
		{"no fields", `name = "x"
[[templates]]
name = "t"`},
		{"duplicate field", `name = "x"
fields = ["Word", "Word"]
css = ".card {}"
[[templates]]
name = "t"`},
		{"no css", `name = "x"
fields = ["Word"]
[[templates]]
name = "t"`},
		{"css inside a template table", `name = "x"
fields = ["Word"]
[[templates]]
name = "t"
css = ".card {}"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSync_CreatesMissingModel(t *testing.T) {
	bridge := &fakeBridge{}
	def := Default("")

	result, err := Sync(context.Background(), bridge, def)
	require.NoError(t, err)

	assert.True(t, result.Created)
	require.Len(t, bridge.created, 1)
	assert.Equal(t, def.Fields, bridge.created[0].Fields)
	assert.Contains(t, bridge.created[0].CSS, ".card")
	assert.Nil(t, bridge.templates)
}

func TestSync_UpdatesExistingModel(t *testing.T) {
	bridge := &fakeBridge{model: &ankiconnect.NoteModel{
		Name:   "AI Word (R)",
		Fields: []ankiconnect.ModelField{{Name: "Word"}, {Name: "Definitions"}},
	}}
	def := Default("")

	result, err := Sync(context.Background(), bridge, def)
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Empty(t, bridge.created)
	assert.Len(t, bridge.templates, 2)
	assert.Equal(t, def.CSS, bridge.css)
	assert.Contains(t, bridge.css, ".card")
	assert.Contains(t, result.MissingFields, "User Notes")
	assert.NotContains(t, result.MissingFields, "Word")
}

func TestSync_ConflictFallsThroughToUpdate(t *testing.T) {
	bridge := &fakeBridge{
		createErr: &ankiconnect.ModelConflictError{
			Name: "AI Word (R)",
			Err:  &ankiconnect.BridgeError{Action: "createModel", Message: "Model name already exists"},
		},
		appearOnFind: true,
	}

	result, err := Sync(context.Background(), bridge, Default(""))
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Len(t, bridge.templates, 2)
}

func TestSync_CreateFailure(t *testing.T) {
	bridge := &fakeBridge{createErr: errors.New("collection is not available")}

	_, err := Sync(context.Background(), bridge, Default(""))
	assert.ErrorContains(t, err, "collection is not available")
}
