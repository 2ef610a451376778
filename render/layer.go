package render

import (
	"github.com/OpticalFlyer/atlas/tilemap"
)

// NewTileLayer builds an image-backed tile layer from a URL template.
//
// With Retina set the options are normalized so the map keeps its
// apparent scale: double-density tiles cover half the ground, so the
// layer renders them into half-size slots one zoom level up.
func NewTileLayer(srcOpts SourceOptions, layerOpts tilemap.Options) (*tilemap.TileLayer, *ImageSource, error) {
	if srcOpts.MaxZoom == 0 {
		srcOpts.MaxZoom = layerOpts.MaxZoom
	}
	if srcOpts.Retina && layerOpts.MaxZoom > 0 {
		layerOpts.TileSize /= 2
		if srcOpts.ZoomReverse {
			srcOpts.ZoomOffset--
			layerOpts.MinZoom = min(layerOpts.MaxZoom, layerOpts.MinZoom+1)
		} else {
			srcOpts.ZoomOffset++
			layerOpts.MaxZoom = max(layerOpts.MinZoom, layerOpts.MaxZoom-1)
		}
		layerOpts.MinZoom = max(layerOpts.MinZoom, 0)
	}

	src, err := NewImageSource(srcOpts)
	if err != nil {
		return nil, nil, err
	}
	l, err := tilemap.New(src, layerOpts)
	if err != nil {
		return nil, nil, err
	}
	return l, src, nil
}
