package mapview

import "github.com/OpticalFlyer/atlas/geo"

// Event names fired on the map's emitter.
const (
	// EventMoveStart fires once when the view begins changing.
	EventMoveStart = "movestart"
	// EventMove fires on every change of center or zoom.
	EventMove = "move"
	// EventMoveEnd fires when the view comes to rest.
	EventMoveEnd = "moveend"
	// EventZoomStart fires when an animated zoom begins.
	EventZoomStart = "zoomstart"
	// EventZoom fires on every zoom level change, including the
	// fractional steps of an animation.
	EventZoom = "zoom"
	// EventZoomEnd fires when the zoom level settles.
	EventZoomEnd = "zoomend"
	// EventViewReset fires on discrete view jumps such as SetView.
	EventViewReset = "viewreset"
	// EventResize fires when the viewport size changes.
	EventResize = "resize"
	// EventLoad fires once, when the first view is established.
	EventLoad = "load"
	// EventLayerAdd and EventLayerRemove track the layer registry.
	EventLayerAdd    = "layeradd"
	EventLayerRemove = "layerremove"
)

// ViewEvent is the payload of view change events.
type ViewEvent struct {
	Center geo.LatLng
	Zoom   float64
}

// ResizeEvent is the payload of EventResize.
type ResizeEvent struct {
	Old geo.Point
	New geo.Point
}

// LayerEvent is the payload of EventLayerAdd and EventLayerRemove.
type LayerEvent struct {
	ID    string
	Layer Layer
}
