package tilemap

import (
	"math"
	"sort"

	"github.com/OpticalFlyer/atlas/geo"
)

// setView retargets the grid at the given view. noPrune keeps stale
// tiles around (mid-animation), noUpdate skips the rebuild unless the
// integer tile zoom actually changed and UpdateWhenZooming wants
// continuous rebuilds.
func (l *TileLayer) setView(center geo.LatLng, zoom float64, noPrune, noUpdate bool) {
	tileZoom := int(math.Round(zoom))
	valid := tileZoom >= l.opts.MinZoom && tileZoom <= l.opts.MaxZoom
	if valid {
		tileZoom = l.clampNative(tileZoom)
	} else {
		tileZoom = 0
	}

	changed := l.opts.UpdateWhenZooming &&
		(valid != l.hasTileZoom || (valid && tileZoom != l.tileZoom))
	if !noUpdate || changed {
		l.tileZoom = tileZoom
		l.hasTileZoom = valid
		l.abortLoading()
		l.updateLevels()
		l.resetGrid()
		if valid {
			l.update(center)
		}
		if !noPrune {
			l.prune()
		}
		l.noPrune = noPrune
	}
}

// updateLevels drops empty stale levels, restacks the rest and makes
// sure a level exists for the active tile zoom.
func (l *TileLayer) updateLevels() {
	if !l.hasTileZoom {
		return
	}
	zoom := l.tileZoom
	for z, level := range l.levels {
		if level.count > 0 || z == zoom {
			level.ZIndex = l.opts.MaxZoom - absInt(z-zoom)
		} else {
			delete(l.levels, z)
		}
	}

	if l.levels[zoom] == nil {
		level := &Level{Zoom: zoom, ZIndex: l.opts.MaxZoom}
		_, mapZoom := l.mv.View()
		topLeft := l.mv.Unproject(l.mv.PixelOrigin(), mapZoom)
		level.Origin = l.mv.Project(topLeft, float64(zoom)).Round()
		l.levels[zoom] = level
	}
}

// resetGrid recomputes the world tile range and the wrap intervals for
// the active tile zoom.
func (l *TileLayer) resetGrid() {
	l.globalRange = nil
	l.wrapX = nil
	l.wrapY = nil
	if !l.hasTileZoom {
		return
	}

	crs := l.mv.CRS()
	tileSize := l.tileSizePt()
	tileZoom := float64(l.tileZoom)

	if bounds := crs.ProjectedBounds(tileZoom); bounds.IsValid() {
		if r, err := PixelBoundsToTileRange(bounds, tileSize); err == nil {
			l.globalRange = &r
		}
	}
	if crs.WrapLng != nil && !l.opts.NoWrap {
		lo := math.Floor(l.mv.Project(geo.LatLng{Lng: crs.WrapLng[0]}, tileZoom).X / tileSize.X)
		hi := math.Ceil(l.mv.Project(geo.LatLng{Lng: crs.WrapLng[1]}, tileZoom).X / tileSize.X)
		l.wrapX = &[2]int{int(lo), int(hi)}
	}
	if crs.WrapLat != nil && !l.opts.NoWrap {
		lo := math.Floor(l.mv.Project(geo.LatLng{Lat: crs.WrapLat[0]}, tileZoom).Y / tileSize.Y)
		hi := math.Ceil(l.mv.Project(geo.LatLng{Lat: crs.WrapLat[1]}, tileZoom).Y / tileSize.Y)
		l.wrapY = &[2]int{int(lo), int(hi)}
	}
}

// tiledPixelBounds returns the viewport rectangle in the tile zoom's
// pixel space. Mid zoom-animation it covers the larger of the current
// and target zooms so tiles preload for where the view is heading.
func (l *TileLayer) tiledPixelBounds(center geo.LatLng) geo.Bounds {
	_, mapZoom := l.mv.View()
	if target, animating := l.mv.AnimatingZoom(); animating {
		mapZoom = math.Max(target, mapZoom)
	}
	scale := l.mv.ZoomScale(mapZoom, float64(l.tileZoom))
	pixelCenter := l.mv.Project(center, float64(l.tileZoom)).Floor()
	half := l.mv.Size().DivBy(scale * 2)
	return geo.NewBounds(pixelCenter.Sub(half), pixelCenter.Add(half))
}

// update reconciles the grid against the view centered at center:
// tiles outside the kept area go stale, missing tiles queue up nearest
// the center first. A zoom too far from the grid's own restarts
// through setView instead.
func (l *TileLayer) update(center geo.LatLng) {
	if l.mv == nil || !l.mv.Loaded() || !l.hasTileZoom {
		return
	}
	_, mapZoom := l.mv.View()
	zoom := l.clampNativeF(mapZoom)

	pixelBounds := l.tiledPixelBounds(center)
	tileRange, err := PixelBoundsToTileRange(pixelBounds, l.tileSizePt())
	if err != nil {
		l.updateErr = err
		return
	}
	tileCenter := tileRange.Center()
	keepRange := tileRange.Expand(l.opts.KeepBuffer)

	for _, tile := range l.tiles {
		c := tile.Coords
		if c.Z != l.tileZoom || !keepRange.Contains(c.X, c.Y) {
			tile.Current = false
		}
	}

	// A zoom gap beyond the threshold means the whole grid is wrong;
	// let setView rebuild it instead of loading a band of levels.
	if math.Abs(zoom-float64(l.tileZoom)) > float64(l.opts.ZoomResetThreshold) {
		l.setView(center, mapZoom, false, false)
		return
	}

	var queue []TileCoord
	for j := tileRange.MinY; j <= tileRange.MaxY; j++ {
		for i := tileRange.MinX; i <= tileRange.MaxX; i++ {
			coords := TileCoord{X: i, Y: j, Z: l.tileZoom}
			if !l.isValidTile(coords) {
				continue
			}
			if tile := l.tiles[coords.Key()]; tile != nil {
				tile.Current = true
				continue
			}
			queue = append(queue, coords)
		}
	}

	sort.Slice(queue, func(a, b int) bool {
		pa := geo.Pt(float64(queue[a].X), float64(queue[a].Y))
		pb := geo.Pt(float64(queue[b].X), float64(queue[b].Y))
		return pa.DistanceTo(tileCenter) < pb.DistanceTo(tileCenter)
	})

	if len(queue) > 0 {
		if !l.loading {
			l.loading = true
			l.events.Fire(EventLoading, nil)
		}
		for _, coords := range queue {
			l.addTile(coords)
		}
	}
}

// isValidTile reports whether a tile exists on the grid: inside the
// world range on axes that do not wrap, and intersecting the layer's
// Bounds when one is set.
func (l *TileLayer) isValidTile(c TileCoord) bool {
	crs := l.mv.CRS()
	if !crs.Infinite && l.globalRange != nil {
		gr := *l.globalRange
		if (crs.WrapLng == nil && (c.X < gr.MinX || c.X > gr.MaxX)) ||
			(crs.WrapLat == nil && (c.Y < gr.MinY || c.Y > gr.MaxY)) {
			return false
		}
	}
	if l.opts.Bounds == nil {
		return true
	}
	return l.opts.Bounds.Overlaps(l.tileBounds(c))
}

// tileBounds returns the geographical rectangle a tile covers, wrapped
// home unless the layer opts out of wrapping.
func (l *TileLayer) tileBounds(c TileCoord) geo.LatLngBounds {
	size := l.tileSizePt()
	nwPoint := geo.Pt(float64(c.X)*size.X, float64(c.Y)*size.Y)
	sePoint := nwPoint.Add(size)
	nw := l.mv.Unproject(nwPoint, float64(c.Z))
	se := l.mv.Unproject(sePoint, float64(c.Z))
	bounds := geo.NewLatLngBounds(nw, se)
	if !l.opts.NoWrap {
		bounds = l.mv.CRS().WrapLatLngBounds(bounds)
	}
	return bounds
}

// wrapCoord maps a tile coordinate into the world's single copy, so a
// wrapped pan keeps requesting real tiles.
func (l *TileLayer) wrapCoord(c TileCoord) TileCoord {
	if l.wrapX != nil {
		c.X = wrapInt(c.X, l.wrapX[0], l.wrapX[1])
	}
	if l.wrapY != nil {
		c.Y = wrapInt(c.Y, l.wrapY[0], l.wrapY[1])
	}
	return c
}

func (l *TileLayer) tilePos(c TileCoord, level *Level) geo.Point {
	size := l.tileSizePt()
	return geo.Pt(float64(c.X)*size.X, float64(c.Y)*size.Y).Sub(level.Origin)
}
