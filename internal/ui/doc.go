// Package ui renders human-readable command lifecycle messages for console
// logging sessions.
package ui
