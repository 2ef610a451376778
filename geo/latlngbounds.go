package geo

// LatLngBounds is a rectangle in geographic space, described by its
// south-west and north-east corners. The zero value is empty.
type LatLngBounds struct {
	sw LatLng
	ne LatLng

	set bool
}

// NewLatLngBounds returns the smallest rectangle containing both
// corners. The corners may be given in any order.
func NewLatLngBounds(corner1, corner2 LatLng) LatLngBounds {
	var b LatLngBounds
	b = b.Extend(corner1)
	b = b.Extend(corner2)
	return b
}

// Extend returns the bounds grown to contain ll.
func (b LatLngBounds) Extend(ll LatLng) LatLngBounds {
	if !b.set {
		return LatLngBounds{sw: ll, ne: ll, set: true}
	}
	if ll.Lat < b.sw.Lat {
		b.sw.Lat = ll.Lat
	}
	if ll.Lat > b.ne.Lat {
		b.ne.Lat = ll.Lat
	}
	if ll.Lng < b.sw.Lng {
		b.sw.Lng = ll.Lng
	}
	if ll.Lng > b.ne.Lng {
		b.ne.Lng = ll.Lng
	}
	return b
}

// IsValid reports whether the bounds contain at least one position.
func (b LatLngBounds) IsValid() bool {
	return b.set
}

// SouthWest returns the south-west corner.
func (b LatLngBounds) SouthWest() LatLng {
	return b.sw
}

// NorthEast returns the north-east corner.
func (b LatLngBounds) NorthEast() LatLng {
	return b.ne
}

// NorthWest returns the north-west corner.
func (b LatLngBounds) NorthWest() LatLng {
	return LatLng{Lat: b.ne.Lat, Lng: b.sw.Lng}
}

// SouthEast returns the south-east corner.
func (b LatLngBounds) SouthEast() LatLng {
	return LatLng{Lat: b.sw.Lat, Lng: b.ne.Lng}
}

// South returns the southern latitude edge.
func (b LatLngBounds) South() float64 { return b.sw.Lat }

// North returns the northern latitude edge.
func (b LatLngBounds) North() float64 { return b.ne.Lat }

// West returns the western longitude edge.
func (b LatLngBounds) West() float64 { return b.sw.Lng }

// East returns the eastern longitude edge.
func (b LatLngBounds) East() float64 { return b.ne.Lng }

// Center returns the midpoint of the rectangle.
func (b LatLngBounds) Center() LatLng {
	return LatLng{
		Lat: (b.sw.Lat + b.ne.Lat) / 2,
		Lng: (b.sw.Lng + b.ne.Lng) / 2,
	}
}

// Contains reports whether ll lies inside the rectangle, edges
// included.
func (b LatLngBounds) Contains(ll LatLng) bool {
	return ll.Lat >= b.sw.Lat && ll.Lat <= b.ne.Lat &&
		ll.Lng >= b.sw.Lng && ll.Lng <= b.ne.Lng
}

// ContainsBounds reports whether other lies entirely inside b.
func (b LatLngBounds) ContainsBounds(other LatLngBounds) bool {
	return b.Contains(other.sw) && b.Contains(other.ne)
}

// Overlaps reports whether the rectangles share interior area.
func (b LatLngBounds) Overlaps(other LatLngBounds) bool {
	return other.ne.Lat > b.sw.Lat && other.sw.Lat < b.ne.Lat &&
		other.ne.Lng > b.sw.Lng && other.sw.Lng < b.ne.Lng
}

// Pad returns the bounds grown by ratio of its own size on every side.
func (b LatLngBounds) Pad(ratio float64) LatLngBounds {
	latBuffer := (b.ne.Lat - b.sw.Lat) * ratio
	lngBuffer := (b.ne.Lng - b.sw.Lng) * ratio
	return LatLngBounds{
		sw:  LatLng{Lat: b.sw.Lat - latBuffer, Lng: b.sw.Lng - lngBuffer},
		ne:  LatLng{Lat: b.ne.Lat + latBuffer, Lng: b.ne.Lng + lngBuffer},
		set: b.set,
	}
}
