// Package main provides the entry point for the csv2spotify application.
//
// csv2spotify reads a track spreadsheet as CSV, resolves each row to a
// Spotify track, and publishes the result to two Spotify playlists with
// different per-artist caps.
package main

import cmd "github.com/upstreamhub/csv2spotify/cmd/csv2spotify"

// main is the entry point of the csv2spotify application.
// It delegates execution to the cmd package which handles all
// command-line interface functionality.
func main() {
	cmd.Execute()
}
