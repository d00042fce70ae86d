package level

import (
	"strings"

	"github.com/wricardo/voidgrid/game/engine"
)

// Codes used in level rows
const (
	HoleCode = "_"
	NoEntity = "."
)

// TileCode maps a level code to a tile constructor
type TileCode struct {
	Code  string `json:"code"`
	Tile  string `json:"tile"`
	Label string `json:"label"`
	build func() engine.Tile
}

// New returns a fresh tile for the code
func (c TileCode) New() engine.Tile { return c.build() }

// EntityCode maps a level code to an entity constructor.
// Facing is set for codes that only differ by their initial direction.
type EntityCode struct {
	Code   string           `json:"code"`
	Entity string           `json:"entity"`
	Label  string           `json:"label"`
	Facing engine.Direction `json:"facing,omitempty"`
	build  func() engine.Entity
}

// New returns a fresh entity for the code
func (c EntityCode) New() engine.Entity { return c.build() }

// ManagerCode maps a manager name used in level files to its constructor
type ManagerCode struct {
	Name    string `json:"name"`
	Manager string `json:"manager"`
	build   func() engine.Entity
}

// New returns a fresh manager
func (c ManagerCode) New() engine.Entity { return c.build() }

var tileCodes = []TileCode{
	{Code: "W", Tile: engine.TileWall, Label: "wall", build: engine.NewWall},
	{Code: ".", Tile: engine.TileNormal, Label: "floor", build: engine.NewNormal},
	{Code: "E", Tile: engine.TileStairs, Label: "stairs", build: engine.NewStairs},
	{Code: HoleCode, Tile: engine.TileEmpty, Label: "hole", build: engine.NewEmpty},
	{Code: "G", Tile: engine.TileGlass, Label: "glass", build: engine.NewGlass},
	{Code: "Gd", Tile: engine.TileDamagedGlass, Label: "damaged glass", build: engine.NewDamagedGlass},
	{Code: "B", Tile: engine.TileBomb, Label: "bomb", build: engine.NewBomb},
	{Code: "Be", Tile: engine.TileExplo, Label: "armed bomb", build: engine.NewExplo},
	{Code: "S", Tile: engine.TileSwitch, Label: "switch", build: engine.NewSwitch},
	{Code: "C", Tile: engine.TileCopy, Label: "copy pad", build: engine.NewCopy},
	{Code: "Wh", Tile: engine.TileWhite, Label: "white", build: engine.NewWhite},
	{Code: "Vr", Tile: engine.TileRod, Label: "void rod", build: engine.NewRod},
	{Code: "Vs", Tile: engine.TileSword, Label: "void sword", build: engine.NewSword},
	{Code: "Vw", Tile: engine.TileWings, Label: "void wings", build: engine.NewWings},
}

func entity[T engine.Entity](f func() T) func() engine.Entity {
	return func() engine.Entity { return f() }
}

var entityCodes = []EntityCode{
	{Code: "P", Entity: engine.EntityPlayer, Label: "player", build: entity(engine.NewPlayer)},
	{Code: "R", Entity: engine.EntityRock, Label: "rock", build: entity(engine.NewRock)},
	{Code: "Ll", Entity: engine.EntityLeech, Label: "leech (left)", Facing: engine.Left,
		build: func() engine.Entity { return engine.NewLeech(false) }},
	{Code: "Lr", Entity: engine.EntityLeech, Label: "leech (right)", Facing: engine.Right,
		build: func() engine.Entity { return engine.NewLeech(true) }},
	{Code: "Mu", Entity: engine.EntityMaggot, Label: "maggot (up)", Facing: engine.Up,
		build: func() engine.Entity { return engine.NewMaggot(false) }},
	{Code: "Md", Entity: engine.EntityMaggot, Label: "maggot (down)", Facing: engine.Down,
		build: func() engine.Entity { return engine.NewMaggot(true) }},
	{Code: "E", Entity: engine.EntityLazyEye, Label: "lazy eye", build: entity(engine.NewLazyEye)},
	{Code: "S", Entity: engine.EntitySmile, Label: "smile", build: entity(engine.NewSmile)},
	{Code: "B", Entity: engine.EntityBeaver, Label: "beaver", build: entity(engine.NewBeaver)},
	{Code: "M", Entity: engine.EntityMimic, Label: "mimic",
		build: func() engine.Entity { return engine.NewMimic(false, false) }},
	{Code: "Mv", Entity: engine.EntityMimicV, Label: "mimic (mirrors left/right)",
		build: func() engine.Entity { return engine.NewMimic(true, false) }},
	{Code: "Mh", Entity: engine.EntityMimicH, Label: "mimic (mirrors up/down)",
		build: func() engine.Entity { return engine.NewMimic(false, true) }},
	{Code: "Mvh", Entity: engine.EntityMimicVH, Label: "mimic (mirrors both)",
		build: func() engine.Entity { return engine.NewMimic(true, true) }},
	{Code: "Lo", Entity: engine.EntityLover, Label: "lover", build: entity(engine.NewLover)},
	{Code: "Sl", Entity: engine.EntitySlower, Label: "slower", build: entity(engine.NewSlower)},
	{Code: "Gr", Entity: engine.EntityGreeder, Label: "greeder", build: entity(engine.NewGreeder)},
	{Code: "Ki", Entity: engine.EntityKiller, Label: "killer", build: entity(engine.NewKiller)},
	{Code: "Wa", Entity: engine.EntityWatcher, Label: "watcher", build: entity(engine.NewWatcher)},
	{Code: "Vo", Entity: engine.EntityVoider, Label: "voider", build: entity(engine.NewVoider)},
	{Code: "Sm", Entity: engine.EntitySmiler, Label: "smiler", build: entity(engine.NewSmiler)},
	{Code: "At", Entity: engine.EntityAtoner, Label: "atoner", build: entity(engine.NewAtoner)},
}

var managerCodes = []ManagerCode{
	{Name: "killer", Manager: engine.ManagerKiller, build: entity(engine.NewKillerManager)},
	{Name: "stairs", Manager: engine.ManagerStairs, build: entity(engine.NewStairsManager)},
	{Name: "watcher", Manager: engine.ManagerWatcher, build: entity(engine.NewWatcherManager)},
	{Name: "copy", Manager: engine.ManagerCopy, build: entity(engine.NewCopyManager)},
}

// TileCodes lists every tile code in catalog order
func TileCodes() []TileCode {
	return append([]TileCode(nil), tileCodes...)
}

// EntityCodes lists every entity code in catalog order
func EntityCodes() []EntityCode {
	return append([]EntityCode(nil), entityCodes...)
}

// ManagerCodes lists every manager name in the order managers are registered
func ManagerCodes() []ManagerCode {
	return append([]ManagerCode(nil), managerCodes...)
}

// DefaultManagers is the manager list used when a level does not name any
func DefaultManagers() []string {
	names := make([]string, len(managerCodes))
	for i, m := range managerCodes {
		names[i] = m.Name
	}
	return names
}

// normalizeTileCode folds the hole aliases onto HoleCode. A blank cell
// (" " in the original editor format) is a hole.
func normalizeTileCode(code string) string {
	if strings.TrimSpace(code) == "" {
		return HoleCode
	}
	return strings.TrimSpace(code)
}

// LookupTile finds the tile code; blank codes are holes
func LookupTile(code string) (TileCode, bool) {
	code = normalizeTileCode(code)
	for _, c := range tileCodes {
		if c.Code == code {
			return c, true
		}
	}
	return TileCode{}, false
}

// LookupEntity finds the entity code. NoEntity is not a code.
func LookupEntity(code string) (EntityCode, bool) {
	code = strings.TrimSpace(code)
	for _, c := range entityCodes {
		if c.Code == code {
			return c, true
		}
	}
	return EntityCode{}, false
}

// LookupManager finds a manager by its level-file name
func LookupManager(name string) (ManagerCode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range managerCodes {
		if c.Name == name {
			return c, true
		}
	}
	return ManagerCode{}, false
}

func tileCodeFor(name string) (string, bool) {
	for _, c := range tileCodes {
		if c.Tile == name {
			return c.Code, true
		}
	}
	return "", false
}

func entityCodeFor(name string, facing engine.Direction) (string, bool) {
	for _, c := range entityCodes {
		if c.Entity != name {
			continue
		}
		if c.Facing == "" || c.Facing == facing {
			return c.Code, true
		}
	}
	return "", false
}

func managerNameFor(manager string) (string, bool) {
	for _, c := range managerCodes {
		if c.Manager == manager {
			return c.Name, true
		}
	}
	return "", false
}
