// Package batch reads word lists for batch card generation.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadWordFile reads one word or phrase per line from filename
func ReadWordFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file %s: %w", filename, err)
	}
	return words, nil
}

// ReadWords returns the trimmed non-empty lines of r. Lines starting with
// '#' are comments. Duplicates are kept in order.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
