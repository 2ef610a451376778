package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/shiena/ansicolor"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/layer"
	"github.com/OpticalFlyer/atlas/mapview"
	"github.com/OpticalFlyer/atlas/render"
	"github.com/OpticalFlyer/atlas/tilemap"
	"github.com/OpticalFlyer/atlas/ui"
)

const (
	arrowPanStep  = 5.0
	wheelCooldown = 0.1 // seconds between wheel zoom steps
)

var (
	hf bool
	cf string
)

func init() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.StringVar(&cf, "c", "atlas.toml", "set config `file`")
	flag.Usage = usage

	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	log.SetOutput(ansicolor.NewAnsiColorWriter(os.Stdout))
	log.SetLevel(log.DebugLevel)
}

func usage() {
	fmt.Fprintf(os.Stderr, `atlas version: atlas/v0.1.0
Usage: atlas [-h] [-c filename]
`)
	flag.PrintDefaults()
}

func initConf(cfgFile string) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		log.Warnf("config file(%s) not exist", cfgFile)
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Warnf("read config file(%s) error, details: %s", viper.ConfigFileUsed(), err)
	}
	viper.SetDefault("log.level", "debug")
	viper.SetDefault("window.width", 800)
	viper.SetDefault("window.height", 600)
	viper.SetDefault("window.title", "Atlas")
	viper.SetDefault("view.lat", 39.8333)
	viper.SetDefault("view.lng", -98.5833)
	viper.SetDefault("view.zoom", 4)
	viper.SetDefault("view.fade", true)
	viper.SetDefault("basemap.url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("basemap.attribution", "© OpenStreetMap contributors")
	viper.SetDefault("basemap.maxzoom", 19)
	viper.SetDefault("basemap.keepbuffer", 2)

	if lv, err := log.ParseLevel(viper.GetString("log.level")); err != nil {
		log.Warnf("bad log.level %q, keeping debug", viper.GetString("log.level"))
	} else {
		log.SetLevel(lv)
	}
}

// Atlas implements ebiten.Game.
type Atlas struct {
	mv      *mapview.Map
	tiles   *tilemap.TileLayer
	vectors *layer.VectorLayer
	ui      *ui.Controller

	tileLayerID   string
	vectorLayerID string

	debugMode bool

	// Mouse panning state
	isDragging bool
	lastMouseX int
	lastMouseY int

	keyPanning   bool
	lastZoomTime float64

	// Touch state for multi-touch interactions
	touchActive bool
	lastTouchX  map[ebiten.TouchID]float64
	lastTouchY  map[ebiten.TouchID]float64
}

func (a *Atlas) Update() error {
	if err := a.ui.Update(); err != nil {
		return err
	}

	mouseX, mouseY := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	uiHasPointer := a.ui.HandleInput(float64(mouseX), float64(mouseY), pressed)

	// Map gestures stand down while the pointer belongs to the UI.
	if !a.ui.IsInteractingWithUI() && !uiHasPointer {
		if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
			a.debugMode = !a.debugMode
		}

		if inpututil.IsKeyJustPressed(ebiten.KeyEqual) ||
			inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
			_ = a.mv.ZoomIn()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyMinus) ||
			inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
			_ = a.mv.ZoomOut()
		}

		a.handleWheelZoom()
		a.handleKeyboardPan()
		a.handleMousePan()
		a.handleTouchEvents()
	}

	return a.mv.Tick(time.Now())
}

func (a *Atlas) handleWheelZoom() {
	currentTime := float64(time.Now().UnixNano()) / 1e9
	_, wheelY := ebiten.Wheel()
	if wheelY == 0 || (currentTime-a.lastZoomTime) <= wheelCooldown {
		return
	}

	zoom, err := a.mv.Zoom()
	if err != nil {
		return
	}
	delta := a.mv.Options().ZoomDelta
	if wheelY < 0 {
		delta = -delta
	}
	x, y := ebiten.CursorPosition()
	anchor := geo.Pt(float64(x), float64(y))
	_ = a.mv.AnimateZoom(zoom+delta, &anchor)
	a.lastZoomTime = currentTime
}

func (a *Atlas) handleKeyboardPan() {
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dx -= arrowPanStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		dx += arrowPanStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		dy -= arrowPanStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		dy += arrowPanStep
	}

	if dx != 0 || dy != 0 {
		a.keyPanning = true
		_ = a.mv.PanBy(geo.Pt(dx, dy))
	} else if a.keyPanning {
		a.keyPanning = false
		a.mv.EndMove()
	}
}

func (a *Atlas) handleMousePan() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		a.isDragging = true
		a.lastMouseX, a.lastMouseY = ebiten.CursorPosition()
	} else if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if a.isDragging {
			a.isDragging = false
			a.mv.EndMove()
		}
	}

	if !a.isDragging {
		return
	}

	currentX, currentY := ebiten.CursorPosition()
	dx := float64(currentX - a.lastMouseX)
	dy := float64(currentY - a.lastMouseY)

	// Dragging carries the world with the cursor, so the view moves the
	// opposite way.
	if dx != 0 || dy != 0 {
		_ = a.mv.PanBy(geo.Pt(-dx, -dy))
	}

	a.lastMouseX = currentX
	a.lastMouseY = currentY
}

func (a *Atlas) Draw(screen *ebiten.Image) {
	if a.tileLayerID != "" {
		render.DrawTileLayer(screen, a.tiles)
		if a.debugMode {
			render.DrawTileDebug(screen, a.tiles)
		}
	}
	if a.vectorLayerID != "" {
		render.DrawVectorLayer(screen, a.vectors)
	}

	a.ui.Draw(screen)

	if a.debugMode {
		a.ui.ShowDebugInfo(screen)
		a.drawDebugOverlay(screen)
	}
}

func (a *Atlas) drawDebugOverlay(screen *ebiten.Image) {
	redColor := color.RGBA{R: 255, A: 255}
	strokeWidth := float32(1.0)

	size := a.mv.Size()
	centerX := float32(size.X / 2)
	centerY := float32(size.Y / 2)
	crosshairSize := float32(10.0)

	vector.StrokeLine(screen,
		centerX-crosshairSize, centerY,
		centerX+crosshairSize, centerY,
		strokeWidth, redColor, false)
	vector.StrokeLine(screen,
		centerX, centerY-crosshairSize,
		centerX, centerY+crosshairSize,
		strokeWidth, redColor, false)

	center, zoom := a.mv.View()
	debugText := fmt.Sprintf("\nLat: %.4f\nLng: %.4f\nZoom: %.2f\nTiles: %d",
		center.Lat, center.Lng, zoom, a.tiles.TileCount())
	if r, ok := a.tiles.VisibleRange(); ok {
		debugText += fmt.Sprintf("\nRange: %d,%d - %d,%d", r.MinX, r.MinY, r.MaxX, r.MaxY)
	}
	ebitenutil.DebugPrint(screen, debugText)
}

func (a *Atlas) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.mv.SetSize(outsideWidth, outsideHeight)
	a.ui.UpdateWindowSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// toggleLayer removes the layer when id holds a handle and re-adds it
// otherwise.
func (a *Atlas) toggleLayer(id *string, l mapview.Layer) {
	if *id != "" {
		if err := a.mv.RemoveLayer(*id); err != nil {
			log.Errorf("remove layer: %v", err)
			return
		}
		*id = ""
		return
	}
	newID, err := a.mv.AddLayer(l)
	if err != nil {
		log.Errorf("add layer: %v", err)
		return
	}
	*id = newID
}

func main() {
	flag.Parse()
	if hf {
		flag.Usage()
		return
	}

	if cf == "" {
		cf = "atlas.toml"
	}
	initConf(cf)

	width := viper.GetInt("window.width")
	height := viper.GetInt("window.height")

	mapOpts := mapview.DefaultOptions(width, height)
	mapOpts.MaxZoom = viper.GetFloat64("basemap.maxzoom")
	mapOpts.FadeAnimation = viper.GetBool("view.fade")
	mv, err := mapview.New(mapOpts)
	if err != nil {
		log.Fatal(err)
	}

	layerOpts := tilemap.DefaultOptions()
	layerOpts.MaxZoom = viper.GetInt("basemap.maxzoom")
	layerOpts.KeepBuffer = viper.GetInt("basemap.keepbuffer")
	layerOpts.Attribution = viper.GetString("basemap.attribution")
	tiles, _, err := render.NewTileLayer(render.SourceOptions{
		URL:          viper.GetString("basemap.url"),
		Subdomains:   viper.GetString("basemap.subdomains"),
		ErrorTileURL: viper.GetString("basemap.errortileurl"),
		TMS:          viper.GetBool("basemap.tms"),
		Retina:       viper.GetBool("basemap.retina"),
	}, layerOpts)
	if err != nil {
		log.Fatal(err)
	}

	vectors := layer.NewVectorLayer()
	if shpPath := viper.GetString("overlay.shapefile"); shpPath != "" {
		overlays, err := layer.LoadShapefile(shpPath, layer.DefaultStyle())
		if err != nil {
			log.Warnf("load overlay %s: %v", shpPath, err)
		} else {
			vectors.Add(overlays...)
			vectors.SetAttribution(viper.GetString("overlay.attribution"))
			log.Infof("loaded %d overlays from %s", len(overlays), shpPath)
		}
	}

	app := &Atlas{
		mv:           mv,
		tiles:        tiles,
		vectors:      vectors,
		lastZoomTime: float64(time.Now().UnixNano()) / 1e9,
	}

	if app.tileLayerID, err = mv.AddLayer(tiles); err != nil {
		log.Fatal(err)
	}
	if app.vectorLayerID, err = mv.AddLayer(vectors); err != nil {
		log.Fatal(err)
	}

	uiController := ui.NewController()
	uiController.AddControl(ui.NewZoomControl(mv))
	uiController.AddControl(ui.NewScaleControl(mv))
	uiController.AddControl(ui.NewAttributionControl(mv))

	layersPanel := ui.NewPanel(float64(width)-220, 40, 180, 120, "Layers")
	layersPanel.AddChild(ui.NewButton(10, 30, 160, 26, "Toggle Basemap", func() {
		app.toggleLayer(&app.tileLayerID, tiles)
	}))
	layersPanel.AddChild(ui.NewButton(10, 66, 160, 26, "Toggle Overlay", func() {
		app.toggleLayer(&app.vectorLayerID, vectors)
	}))
	uiController.AddPanel(layersPanel)
	app.ui = uiController

	if err := mv.SetView(geo.LatLng{
		Lat: viper.GetFloat64("view.lat"),
		Lng: viper.GetFloat64("view.lng"),
	}, viper.GetFloat64("view.zoom")); err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle(viper.GetString("window.title"))
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
