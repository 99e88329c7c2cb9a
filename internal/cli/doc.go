// Package cli provides command-line interface setup and configuration
// for the ankismart application. It handles flag parsing, command
// creation, configuration management using cobra and viper, and the
// logging setup.
package cli
