// Package processor wires the resolved settings into the AnkiConnect
// bridge, the AI, speech and image clients and the card generator, and
// runs the command modes: single word, batch, word file, interactive
// prompting and note type management.
package processor
