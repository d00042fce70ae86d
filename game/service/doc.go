// Package service provides the business logic layer for Void Grid.
//
// The service package implements:
//   - Multi-session game management
//   - Level loading through a LevelManager
//   - Turn processing, single and bulk
//   - Turn history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelManager loads, lists and stores level documents.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. Each session owns its own engine plus the log of choices
// played since the last reset. Because the engine is deterministic the log
// is all that persistence needs: RestoreSession replays it on a fresh
// engine.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := config.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	info, err := gameService.CreateSession(ctx, "switch_room")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Play(ctx, info.ID, "right", false)
//
// Sessions are identified by 4-character IDs.
package service
