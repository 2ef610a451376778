package tilemap

import (
	"context"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// addTile registers a tile and kicks off its load. The source sees
// wrapped coordinates; the grid keys the tile by its unwrapped ones.
func (l *TileLayer) addTile(coords TileCoord) {
	level := l.levels[coords.Z]
	if level == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	tile := &Tile{
		Coords:  coords,
		Pos:     l.tilePos(coords, level),
		Current: true,
		cancel:  cancel,
	}
	l.tiles[coords.Key()] = tile
	level.count++

	tile.Element = l.source.CreateTile(ctx, l.wrapCoord(coords), l.completionFunc(coords))
	l.events.Fire(EventTileLoadStart, TileEvent{Coords: coords, Element: tile.Element})
}

// tileReady finalizes a load. Failed tiles stay in the grid as loaded
// empty cells so the slot is not refetched every update. A later
// completion for the same tile (an error fallback) runs the whole path
// again.
func (l *TileLayer) tileReady(now time.Time, coords TileCoord, err error, el Element) {
	key := coords.Key()
	tile := l.tiles[key]
	if tile == nil || tile.Element != el {
		// The tile was pruned or replaced while this load was in flight.
		return
	}

	if err != nil {
		log.Errorf("failed to load tile %s: %v", key, err)
		l.events.Fire(EventTileError, TileErrorEvent{Coords: coords, Element: el, Err: err})
	}

	tile.LoadedAt = now
	if l.fadeEnabled() {
		tile.Opacity = 0
		l.fadeActive = true
	} else {
		tile.Opacity = 1
		tile.Active = true
		l.prune()
	}

	if err == nil {
		l.events.Fire(EventTileLoad, TileEvent{Coords: coords, Element: el})
	}

	if l.loading && l.noTilesToLoad() {
		l.loading = false
		l.events.Fire(EventLoad, nil)
		if !l.fadeEnabled() {
			l.prunePending = true
		}
	}
}

// fadePass ramps freshly loaded tiles toward full opacity. Tiles that
// finish fading become active stand-ins and trigger a prune, unless a
// zoom animation asked pruning to hold off.
func (l *TileLayer) fadePass(now time.Time) {
	if l.mv == nil {
		l.fadeActive = false
		return
	}
	nextFrame := false
	willPrune := false
	for _, tile := range l.tiles {
		if !tile.Current || !tile.Loaded() {
			continue
		}
		fade := math.Min(1, float64(now.Sub(tile.LoadedAt))/float64(fadeDuration))
		tile.Opacity = fade
		if fade < 1 {
			nextFrame = true
			continue
		}
		if !tile.Active {
			tile.Active = true
			willPrune = true
		}
	}
	if willPrune && !l.noPrune {
		l.prune()
	}
	l.fadeActive = nextFrame
}

func (l *TileLayer) noTilesToLoad() bool {
	for _, tile := range l.tiles {
		if !tile.Loaded() {
			return false
		}
	}
	return true
}

// removeTile drops a tile from the grid, cancelling its load if one is
// still running.
func (l *TileLayer) removeTile(key string) {
	tile := l.tiles[key]
	if tile == nil {
		return
	}
	if tile.cancel != nil {
		tile.cancel()
	}
	delete(l.tiles, key)
	if level := l.levels[tile.Coords.Z]; level != nil {
		level.count--
	}
	l.events.Fire(EventTileUnload, TileEvent{Coords: tile.Coords, Element: tile.Element})
	l.source.Dispose(tile.Element)
}

func (l *TileLayer) removeAllTiles() {
	for key := range l.tiles {
		l.removeTile(key)
	}
}

// abortLoading cancels every unfinished load outside the active tile
// zoom. Finished tiles stay behind as stand-ins for the new level.
func (l *TileLayer) abortLoading() {
	for key, tile := range l.tiles {
		if l.hasTileZoom && tile.Coords.Z == l.tileZoom {
			continue
		}
		if tile.cancel != nil {
			tile.cancel()
		}
		if tile.Loaded() {
			continue
		}
		delete(l.tiles, key)
		if level := l.levels[tile.Coords.Z]; level != nil {
			level.count--
		}
		l.events.Fire(EventTileAbort, TileEvent{Coords: tile.Coords, Element: tile.Element})
		l.source.Dispose(tile.Element)
	}
}

// invalidateAll tears the grid down to nothing.
func (l *TileLayer) invalidateAll() {
	l.removeAllTiles()
	l.levels = make(map[int]*Level)
	l.tileZoom = 0
	l.hasTileZoom = false
	l.globalRange = nil
	l.wrapX = nil
	l.wrapY = nil
	l.loading = false
	l.noPrune = false
	l.fadeActive = false
	l.prunePending = false
	l.updatePending = false
	l.throttle.Cancel()
}
