// Package config manages the level directory for Void Grid.
//
// The config package handles:
//   - Loading level documents from JSON and YAML files
//   - Level validation through the level package
//   - Default level selection
//   - Level discovery, listing and saving
//
// A level ID is its file name without extension. "switch_room" resolves to
// switch_room.json, switch_room.yaml or switch_room.yml, in that order.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	lvl, err := manager.LoadLevel("switch_room")
//	id, def := manager.GetDefault()
//	infos, err := manager.ListLevels()
package config
