// Package notemodel holds the note model ankismart writes cards into and
// keeps the installed copy in Anki up to date.
package notemodel

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"

	"codeberg.org/snonux/ankismart/internal/ankiconnect"
)

//go:embed ai_word.toml
var aiWordTOML []byte

// Template is one card template of the definition
type Template struct {
	Name  string `toml:"name"`
	Front string `toml:"front"`
	Back  string `toml:"back"`
}

// Definition is a note model as ankismart wants it installed
type Definition struct {
	Name      string     `toml:"name"`
	Fields    []string   `toml:"fields"`
	Templates []Template `toml:"templates"`
	CSS       string     `toml:"css"`
}

// Validate checks the definition can be installed
func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Fields, validation.Required, validation.By(uniqueNames)),
		validation.Field(&d.Templates, validation.Required),
		validation.Field(&d.CSS, validation.Required),
	)
}

func uniqueNames(value any) error {
	names, _ := value.([]string)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return errors.New("field names must not be empty")
		}
		if seen[n] {
			return fmt.Errorf("duplicate field %q", n)
		}
		seen[n] = true
	}
	return nil
}

// Load parses a TOML note model definition
func Load(data []byte) (Definition, error) {
	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("failed to parse note model: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("invalid note model %q: %w", def.Name, err)
	}
	return def, nil
}

// Default returns the built-in "AI Word (R)" definition, renamed to name
// when name is non-empty
func Default(name string) Definition {
	def, err := Load(aiWordTOML)
	if err != nil {
		panic(err)
	}
	if name != "" {
		def.Name = name
	}
	return def
}

// Bridge is the subset of the AnkiConnect client Sync needs
type Bridge interface {
	FindModel(ctx context.Context, name string) (*ankiconnect.NoteModel, error)
	CreateModel(ctx context.Context, spec ankiconnect.ModelSpec) (*ankiconnect.NoteModel, error)
	UpdateModelTemplates(ctx context.Context, name string, templates []ankiconnect.Template) error
	UpdateModelStyling(ctx context.Context, name, css string) error
}

// SyncResult reports what Sync did
type SyncResult struct {
	Created       bool
	MissingFields []string // defined here but absent from the installed model
}

// Sync creates the model in Anki or refreshes its templates and styling.
// Installed fields are never removed; fields missing from the installed
// model are reported so the user can add them in Anki.
func Sync(ctx context.Context, bridge Bridge, def Definition) (SyncResult, error) {
	if err := def.Validate(); err != nil {
		return SyncResult{}, err
	}

	installed, err := bridge.FindModel(ctx, def.Name)
	if errors.Is(err, ankiconnect.ErrModelNotFound) {
		created, createErr := create(ctx, bridge, def)
		if createErr == nil {
			return created, nil
		}

		var conflict *ankiconnect.ModelConflictError
		if !errors.As(createErr, &conflict) {
			return SyncResult{}, createErr
		}

		slog.Info("note model appeared concurrently, updating instead", slog.String("model", def.Name))
		installed, err = bridge.FindModel(ctx, def.Name)
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to look up note model %q: %w", def.Name, err)
	}

	if err := bridge.UpdateModelTemplates(ctx, def.Name, templates(def)); err != nil {
		return SyncResult{}, fmt.Errorf("failed to update templates of %q: %w", def.Name, err)
	}
	if err := bridge.UpdateModelStyling(ctx, def.Name, def.CSS); err != nil {
		return SyncResult{}, fmt.Errorf("failed to update styling of %q: %w", def.Name, err)
	}

	result := SyncResult{}
	have := installed.FieldNames()
	for _, f := range def.Fields {
		if !slices.Contains(have, f) {
			result.MissingFields = append(result.MissingFields, f)
		}
	}
	return result, nil
}

func create(ctx context.Context, bridge Bridge, def Definition) (SyncResult, error) {
	_, err := bridge.CreateModel(ctx, ankiconnect.ModelSpec{
		Name:      def.Name,
		Fields:    def.Fields,
		Templates: templates(def),
		CSS:       def.CSS,
	})
	if err != nil {
		return SyncResult{}, err
	}
	return SyncResult{Created: true}, nil
}

func templates(def Definition) []ankiconnect.Template {
	out := make([]ankiconnect.Template, len(def.Templates))
	for i, t := range def.Templates {
		out[i] = ankiconnect.Template{Name: t.Name, Front: t.Front, Back: t.Back}
	}
	return out
}
