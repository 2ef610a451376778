package tilemap

// prune removes tiles that are neither current nor standing in for a
// current tile that has not finished loading. Stand-ins are searched
// up to five ancestor levels and two descendant levels away.
func (l *TileLayer) prune() {
	if l.mv == nil || !l.mv.Loaded() {
		return
	}
	_, zoom := l.mv.View()
	if zoom > float64(l.opts.MaxZoom) || zoom < float64(l.opts.MinZoom) {
		l.removeAllTiles()
		return
	}

	for _, tile := range l.tiles {
		tile.retain = tile.Current
	}
	for _, tile := range l.tiles {
		if tile.Current && !tile.Active {
			c := tile.Coords
			if !l.retainParent(c.X, c.Y, c.Z, c.Z-retainParentDepth) {
				l.retainChildren(c.X, c.Y, c.Z, c.Z+retainChildDepth)
			}
		}
	}
	for key, tile := range l.tiles {
		if !tile.retain {
			l.removeTile(key)
		}
	}
}

// retainParent walks up the pyramid keeping the nearest loaded
// ancestor of the tile at x, y, z. It reports whether it found one
// that is fully faded in. The shift floors the halving for negative
// coordinates too.
func (l *TileLayer) retainParent(x, y, z, minZoom int) bool {
	x2, y2, z2 := x>>1, y>>1, z-1
	if tile := l.tiles[TileCoord{X: x2, Y: y2, Z: z2}.Key()]; tile != nil {
		if tile.Active {
			tile.retain = true
			return true
		}
		if tile.Loaded() {
			tile.retain = true
		}
	}
	if z2 > minZoom {
		return l.retainParent(x2, y2, z2, minZoom)
	}
	return false
}

// retainChildren keeps the loaded descendants of the tile at x, y, z,
// recursing past missing children down to maxZoom. A fully faded
// child stops the descent under it.
func (l *TileLayer) retainChildren(x, y, z, maxZoom int) {
	for i := 2 * x; i < 2*x+2; i++ {
		for j := 2 * y; j < 2*y+2; j++ {
			if tile := l.tiles[TileCoord{X: i, Y: j, Z: z + 1}.Key()]; tile != nil {
				if tile.Active {
					tile.retain = true
					continue
				}
				if tile.Loaded() {
					tile.retain = true
				}
			}
			if z+1 < maxZoom {
				l.retainChildren(i, j, z+1, maxZoom)
			}
		}
	}
}
