// Package pkg provides the core libraries for keeping an org chart diagram
// and its data in sync.
//
// # Overview
//
// An org chart is a flat array of records. Each record has a key and may
// name the key of the record it reports to. The pkg directory is organized
// into these areas:
//
//  1. [chart] - Records, keys, the key-to-position index, and change batches
//  2. [store] - The authoritative state: collection, selection, and reconciler
//  3. [bridge] - Connects the store to a diagram surface in both directions
//  4. [diagram] - An in-process diagram engine implementing the surface
//  5. [inspector] - The side panel: field lists, edits, and fuzzy search
//  6. [io], [config], [render] - Datasets, templates, and image output
//  7. [cache], [observability], [errors], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// Every change flows through the store:
//
//	diagram edit ──batch──▶ store.Apply ──snapshot (skip)──▶ diagram (no redraw)
//	diagram click ─event──▶ store.Select ─snapshot────────▶ side panel
//	side panel ───edit───▶ store.EditField ─snapshot──────▶ diagram (on commit)
//
// # Quick Start
//
// Load a dataset, mount a diagram on a store, and edit it:
//
//	import (
//	    "github.com/matzehuels/orgchart/pkg/bridge"
//	    "github.com/matzehuels/orgchart/pkg/chart"
//	    "github.com/matzehuels/orgchart/pkg/diagram"
//	    orgio "github.com/matzehuels/orgchart/pkg/io"
//	    "github.com/matzehuels/orgchart/pkg/store"
//	)
//
//	records, _ := orgio.ImportFile("un.json", orgio.DefaultProperties())
//	st, _ := store.New(records)
//	eng := diagram.New()
//	br := bridge.New(st, eng, nil)
//	br.Mount()
//	defer br.Unmount()
//
//	eng.Select(chart.IntKey(1))
//	br.OnFieldEdit("title", "Deputy Secretary-General", true)
//
// [chart]: github.com/matzehuels/orgchart/pkg/chart
// [store]: github.com/matzehuels/orgchart/pkg/store
// [bridge]: github.com/matzehuels/orgchart/pkg/bridge
// [diagram]: github.com/matzehuels/orgchart/pkg/diagram
// [inspector]: github.com/matzehuels/orgchart/pkg/inspector
// [io]: github.com/matzehuels/orgchart/pkg/io
// [config]: github.com/matzehuels/orgchart/pkg/config
// [render]: github.com/matzehuels/orgchart/pkg/render
// [cache]: github.com/matzehuels/orgchart/pkg/cache
// [observability]: github.com/matzehuels/orgchart/pkg/observability
// [errors]: github.com/matzehuels/orgchart/pkg/errors
// [buildinfo]: github.com/matzehuels/orgchart/pkg/buildinfo
package pkg
