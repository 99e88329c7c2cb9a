package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/snonux/ankismart/internal/card"
)

var _ card.Progress = (*Printer)(nil)

func TestPrinterProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Start("apple")
	p.Item(2, 5)
	p.Step(card.StateDeduping, "no existing card found")
	p.Warn(card.StateFetchingImages, "image 2: download failed")
	p.Finish("apple", card.Result{NoteID: 42}, nil)
	p.Finish("apple", card.Result{NoteID: 42, Updated: true}, nil)
	p.Finish("pear", card.Result{}, errors.New("bridge down"))

	out := buf.String()
	assert.Contains(t, out, "Generating card for:")
	assert.Contains(t, out, "[2/5]")
	assert.Contains(t, out, "deduping:")
	assert.Contains(t, out, "no existing card found")
	assert.Contains(t, out, "image 2: download failed")
	assert.Contains(t, out, "Created!")
	assert.Contains(t, out, "Updated!")
	assert.Contains(t, out, "bridge down")
}

func TestPrinterSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Summary([]card.BatchEntry{
		{Word: "alpha", NoteID: 1},
		{Word: "beta", Err: errors.New("invalid analysis")},
		{Word: "gamma", NoteID: 3, Updated: true},
	})

	out := buf.String()
	for _, s := range []string{"alpha", "beta", "gamma", "invalid analysis", "Created:", "Updated:", "Failed:"} {
		assert.Contains(t, out, s)
	}
}
