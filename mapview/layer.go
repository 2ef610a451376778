package mapview

import (
	"errors"
	"time"

	"github.com/teris-io/shortid"
)

// ErrLayerNotFound reports a layer handle unknown to the map.
var ErrLayerNotFound = errors.New("mapview: layer not found")

// Layer is the contract between the map and anything rendered on it.
// The map calls the hooks from its own goroutine; implementations must
// not block. Embed BaseLayer to pick up no-op defaults and override
// only the hooks you need.
type Layer interface {
	// OnAdd runs when the layer joins the map, OnRemove when it
	// leaves.
	OnAdd(m *Map)
	OnRemove(m *Map)

	// OnViewReset runs whenever the zoom level changes or the view
	// jumps discretely. animating is true for the fractional steps of
	// a continuous zoom gesture or animation.
	OnViewReset(animating bool)

	// OnZoomAnim announces the target of a starting zoom animation so
	// layers can prepare content for the destination view.
	OnZoomAnim(target ViewEvent)

	// OnMove runs on every incremental view change; OnMoveEnd runs
	// when the view settles.
	OnMove()
	OnMoveEnd()

	// Tick advances the layer by one frame. Errors abort the frame
	// and surface from Map.Tick.
	Tick(now time.Time) error
}

// BaseLayer provides no-op implementations of every Layer hook.
type BaseLayer struct{}

func (BaseLayer) OnAdd(*Map)           {}
func (BaseLayer) OnRemove(*Map)        {}
func (BaseLayer) OnViewReset(bool)     {}
func (BaseLayer) OnZoomAnim(ViewEvent) {}
func (BaseLayer) OnMove()              {}
func (BaseLayer) OnMoveEnd()           {}
func (BaseLayer) Tick(time.Time) error { return nil }

type layerEntry struct {
	id    string
	layer Layer
}

// AddLayer registers a layer and returns its opaque handle. Adding a
// layer twice returns the existing handle.
func (m *Map) AddLayer(l Layer) (string, error) {
	for _, e := range m.layers {
		if e.layer == l {
			return e.id, nil
		}
	}

	id, err := shortid.Generate()
	if err != nil {
		return "", err
	}

	m.layers = append(m.layers, layerEntry{id: id, layer: l})
	l.OnAdd(m)
	m.events.Fire(EventLayerAdd, LayerEvent{ID: id, Layer: l})
	return id, nil
}

// RemoveLayer detaches the layer with the given handle.
func (m *Map) RemoveLayer(id string) error {
	for i, e := range m.layers {
		if e.id == id {
			m.layers = append(m.layers[:i:i], m.layers[i+1:]...)
			e.layer.OnRemove(m)
			m.events.Fire(EventLayerRemove, LayerEvent{ID: id, Layer: e.layer})
			return nil
		}
	}
	return ErrLayerNotFound
}

// HasLayer reports whether the handle refers to a registered layer.
func (m *Map) HasLayer(id string) bool {
	for _, e := range m.layers {
		if e.id == id {
			return true
		}
	}
	return false
}

// LayerByID returns the layer registered under the handle.
func (m *Map) LayerByID(id string) (Layer, error) {
	for _, e := range m.layers {
		if e.id == id {
			return e.layer, nil
		}
	}
	return nil, ErrLayerNotFound
}

// EachLayer visits the registered layers in draw order.
func (m *Map) EachLayer(fn func(id string, l Layer)) {
	for _, e := range m.snapshotLayers() {
		fn(e.id, e.layer)
	}
}

func (m *Map) snapshotLayers() []layerEntry {
	snapshot := make([]layerEntry, len(m.layers))
	copy(snapshot, m.layers)
	return snapshot
}
