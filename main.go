package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type appConfig struct {
	audioPath   string
	fftSize     int
	history     int
	grid        int
	initialMode string
	dragEnabled bool
}

type App struct {
	cfg      appConfig
	view     *VisualizationView
	analyser *Analyser
	source   AudioSource
	drag     *DragRotator
	snapshot []byte
	cursorX  float64
	cursorY  float64
	running  bool
}

func (app *App) Init() error {
	analyser, err := NewAnalyser(app.cfg.fftSize)
	if err != nil {
		return err
	}
	app.analyser = analyser
	app.snapshot = make([]byte, analyser.BinCount())

	caps := HasVertexTextureFetch()
	logger.Info("GPU capabilities", "vertexTextureFetch", caps)
	view, err := NewVisualizationView(ViewConfig{
		VertexTextureFetch: caps,
		HistoryDepth:       app.cfg.history,
		GridCols:           app.cfg.grid,
		GridRows:           app.cfg.grid,
	}, nil)
	if err != nil {
		return err
	}
	texture, err := CreateDataTexture()
	if err != nil {
		return err
	}
	if err := view.InitGraphics(texture); err != nil {
		view.Close()
		return err
	}
	app.view = view
	if app.cfg.initialMode != "" {
		mode, err := parseRenderMode(app.cfg.initialMode)
		if err != nil {
			return err
		}
		view.SetMode(mode)
	}
	logger.Info("render mode", "mode", view.Mode())

	app.drag = NewDragRotator(view.Camera(), 0.5)
	app.drag.SetEnabled(app.cfg.dragEnabled)

	if app.cfg.audioPath != "" {
		source, err := NewFileSource(app.cfg.audioPath, analyser)
		if err != nil {
			return err
		}
		app.source = source
	} else {
		logger.Info("no audio file given, using synthetic source")
		app.source = NewSyntheticSource(analyser)
	}
	if err := app.source.Start(); err != nil {
		return err
	}

	gl.ClearColor(0, 0, 0, 1)
	app.running = true
	return nil
}

func (app *App) IsRunning() bool {
	return app.running
}

func (app *App) OnKey(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape, glfw.KeyQ:
		app.running = false
	case glfw.Key1:
		app.setMode(ModeFrequency)
	case glfw.Key2:
		app.setMode(ModeWaveform)
	case glfw.Key3:
		app.setMode(ModeSonogram)
	case glfw.Key4:
		app.setMode(ModeSonogram3D)
	}
}

func (app *App) setMode(requested RenderMode) {
	app.view.SetMode(requested)
	logger.Info("render mode", "requested", requested, "active", app.view.Mode())
}

func (app *App) OnMouseButton(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		app.drag.Begin(app.cursorX, app.cursorY)
	case glfw.Release:
		app.drag.End()
	}
}

func (app *App) OnCursorPos(x, y float64) {
	app.cursorX = x
	app.cursorY = y
	app.drag.Move(x, y)
}

func (app *App) OnFramebufferSize(width, height int) {
	logger.Debug("OnFramebufferSize", "width", width, "height", height)
	app.view.SetViewport(width, height)
}

func (app *App) Render() error {
	var err error
	if app.view.Mode().UsesWaveform() {
		err = app.analyser.WaveformSnapshot(app.snapshot)
	} else {
		err = app.analyser.FrequencySnapshot(app.snapshot)
	}
	if err != nil {
		// no fresh snapshot this tick; redraw the buffer as-is
		logger.Debug("snapshot unavailable", "error", err)
		return app.view.RenderFrame(nil)
	}
	return app.view.RenderFrame(app.snapshot)
}

func (app *App) Close() error {
	if app.source != nil {
		app.source.Close()
	}
	if app.view != nil {
		app.view.Close()
	}
	return nil
}

func parseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "frequency":
		return ModeFrequency, nil
	case "waveform":
		return ModeWaveform, nil
	case "sonogram":
		return ModeSonogram, nil
	case "sonogram3d":
		return ModeSonogram3D, nil
	default:
		return 0, fmt.Errorf("invalid render mode: %s", s)
	}
}

func main() {
	var (
		logLevel = flag.String("log-level", "info", "log level (debug|info|warn|error)")
		fftSize  = flag.Int("fft-size", 2048, "FFT size; snapshot width is half of this")
		history  = flag.Int("history", 256, "number of snapshot rows kept in the ring buffer")
		grid     = flag.Int("grid", 256, "heightfield grid resolution per side")
		mode     = flag.String("mode", "", "initial render mode (frequency|waveform|sonogram|sonogram3d)")
		drag     = flag.Bool("drag", false, "enable drag-to-rotate camera input")
	)
	flag.Parse()

	if err := InitLogger(*logLevel); err != nil {
		log.Fatalf("%v\n", err)
	}

	cfg := appConfig{
		audioPath:   flag.Arg(0),
		fftSize:     *fftSize,
		history:     *history,
		grid:        *grid,
		initialMode: *mode,
		dragEnabled: *drag,
	}
	title := "waterfall"
	if cfg.audioPath != "" {
		title = fmt.Sprintf("waterfall : %s", filepath.Base(cfg.audioPath))
	}
	if err := WithGL(title, 1024, 768, &App{cfg: cfg}); err != nil {
		log.Fatalf("%v\n", err)
	}
}
