package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/ankismart/internal/analysis"
)

// Sense builds a complete word sense with two image-friendly definitions
func Sense(word, wordForm string) analysis.WordSense {
	return analysis.WordSense{
		Word:      word,
		Syllables: word,
		USPron:    "/" + word + "/",
		UKPron:    "/" + word + "/",
		WordForm:  wordForm,
		Frequency: "B1",
		Definitions: []analysis.Definition{
			{ImageFriendly: true, English: "first meaning of " + word, Translation: "释义一"},
			{ImageFriendly: false, English: "abstract meaning of " + word, Translation: "释义二"},
			{ImageFriendly: true, English: "second meaning of " + word, Translation: "释义三"},
		},
		Synonyms: []string{"alpha", "beta"},
		Notes:    []string{"BrE: " + word},
		Examples: []analysis.ExampleGroup{
			{Phrase: word, Pairs: []analysis.ExamplePair{{English: "A " + word + " here.", Translation: "这里"}}},
		},
		ImageKeywords: []string{word},
	}
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateWordFile writes lines to words.txt in a temporary directory
func CreateWordFile(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "words.txt")
	CreateTestFile(t, path, []byte(strings.Join(lines, "\n")+"\n"))
	return path
}

// CaptureOutput captures stdout during test execution
func CaptureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	f()

	w.Close()
	os.Stdout = old
	return string(<-done)
}
