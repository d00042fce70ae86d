// Package engine provides the core turn-based simulation for the Void Grid puzzle.
//
// The engine package implements the game mechanics including:
//   - Row-major grid addressing and edge checks
//   - A closed catalog of tiles (holes, walls, glass, bombs, switches, copy pads, pickups)
//   - A closed catalog of entities (the player, enemies, pushable statues and managers)
//   - A world index keeping cells, entity ids and name lookups consistent under mutation
//   - The turn engine: priority scheduling, deferred moves and pushes, collision passes
//
// Core Types:
//
// Engine owns the board and runs turns. Tile and Entity are sealed interfaces;
// every variant lives in this package. Entities never hold references to each
// other, only IDs resolved through the engine on demand.
//
// Usage:
//
//	eng, err := engine.New(width, tiles, entities, engine.DefaultManagers())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := eng.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	ended, err := eng.Play(engine.ChoiceRight)
//	snapshot := eng.Snapshot()
//
// Turn Rules:
//
// Each call to Play builds a schedule of (entity, priority) pairs, runs every
// group of equal priority, then resolves the moves and pushes requested by that
// group before the next group runs. The simulation ends when the player dies
// (Lost) or reaches open stairs (Won).
package engine
