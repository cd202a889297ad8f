// Package main generates architecture diagrams for the csv2spotify
// application using the go-diagrams library. The diagrams are written as
// Graphviz dot files under the go-diagrams output directory.
package main

import (
	"log"

	"github.com/blushft/go-diagrams/diagram"
	"github.com/blushft/go-diagrams/nodes/apps"
	"github.com/blushft/go-diagrams/nodes/generic"
	"github.com/blushft/go-diagrams/nodes/programming"
)

func main() {
	generateArchitectureDiagram()
	generateComponentDiagram()
}

// generateArchitectureDiagram renders the high-level data flow from the CSV
// source through the application to the Spotify playlists.
func generateArchitectureDiagram() {
	d, err := diagram.New(
		diagram.Filename("architecture"),
		diagram.Label("csv2spotify Architecture"),
		diagram.Direction("LR"),
	)
	if err != nil {
		log.Fatal(err)
	}

	csvSource := generic.Storage.Storage(diagram.NodeLabel("CSV Track List"))
	app := programming.Language.Go(diagram.NodeLabel("csv2spotify"))
	spotifyAPI := apps.Network.Internet(diagram.NodeLabel("Spotify Web API"))
	playlistOne := generic.Storage.Storage(diagram.NodeLabel("Playlist One (3 per artist)"))
	playlistTwo := generic.Storage.Storage(diagram.NodeLabel("Playlist Two (1 per artist)"))

	d.Connect(csvSource, app, diagram.Forward())
	d.Connect(app, spotifyAPI, diagram.Bidirectional())
	d.Connect(spotifyAPI, playlistOne, diagram.Forward())
	d.Connect(spotifyAPI, playlistTwo, diagram.Forward())

	if err := d.Render(); err != nil {
		log.Fatal(err)
	}
}

// generateComponentDiagram renders the internal pipeline stages.
func generateComponentDiagram() {
	d, err := diagram.New(
		diagram.Filename("components"),
		diagram.Label("csv2spotify Components"),
		diagram.Direction("LR"),
	)
	if err != nil {
		log.Fatal(err)
	}

	source := programming.Language.Go(diagram.NodeLabel("csvsource"))
	resolver := programming.Language.Go(diagram.NodeLabel("resolve"))
	partitioner := programming.Language.Go(diagram.NodeLabel("partition"))
	publisher := programming.Language.Go(diagram.NodeLabel("publish"))
	authProvider := programming.Language.Go(diagram.NodeLabel("auth"))
	client := programming.Language.Go(diagram.NodeLabel("spotify client"))

	d.Connect(source, resolver, diagram.Forward())
	d.Connect(resolver, partitioner, diagram.Forward())
	d.Connect(partitioner, publisher, diagram.Forward())
	d.Connect(authProvider, client, diagram.Forward())
	d.Connect(resolver, client, diagram.Forward())
	d.Connect(publisher, client, diagram.Forward())

	if err := d.Render(); err != nil {
		log.Fatal(err)
	}
}
