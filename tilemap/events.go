package tilemap

// Events fired by a TileLayer on its emitter. Tile-scoped events carry
// a TileEvent (or TileErrorEvent) payload; loading and load carry nil.
const (
	// EventLoading fires when the layer starts a batch of tile loads.
	EventLoading = "loading"
	// EventLoad fires when every requested tile has finished, whether
	// it loaded or failed.
	EventLoad = "load"
	// EventTileLoadStart fires as each tile load is kicked off.
	EventTileLoadStart = "tileloadstart"
	// EventTileLoad fires when a tile loads successfully.
	EventTileLoad = "tileload"
	// EventTileError fires when a tile load fails. The tile stays in
	// the grid as an empty cell.
	EventTileError = "tileerror"
	// EventTileUnload fires when a tile is pruned from the grid.
	EventTileUnload = "tileunload"
	// EventTileAbort fires when a pending load is cancelled before it
	// finished, typically because the zoom changed.
	EventTileAbort = "tileabort"
)

// TileEvent is the payload of tile-scoped events.
type TileEvent struct {
	Coords  TileCoord
	Element Element
}

// TileErrorEvent is the payload of EventTileError.
type TileErrorEvent struct {
	Coords  TileCoord
	Element Element
	Err     error
}
