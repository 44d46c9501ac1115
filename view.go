package main

import (
	"fmt"
	"math"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

type RenderMode int

const (
	ModeFrequency RenderMode = iota
	ModeWaveform
	ModeSonogram
	ModeSonogram3D
)

func (m RenderMode) String() string {
	switch m {
	case ModeFrequency:
		return "frequency"
	case ModeWaveform:
		return "waveform"
	case ModeSonogram:
		return "sonogram"
	case ModeSonogram3D:
		return "sonogram3d"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

// Accumulates reports whether the mode scrolls a time history through
// the ring buffer (as opposed to redrawing a single snapshot row).
func (m RenderMode) Accumulates() bool {
	return m == ModeSonogram || m == ModeSonogram3D
}

// UsesWaveform reports whether the mode consumes time-domain
// snapshots instead of frequency magnitudes.
func (m RenderMode) UsesWaveform() bool {
	return m == ModeWaveform
}

// FrameState is the per-frame outcome of ingestion: which mode drew,
// whether the cursor advanced, and the offsets handed to the shaders.
type FrameState struct {
	Mode          RenderMode
	Accumulated   bool
	YOffset       float32
	VertexYOffset float32
}

// discretizeOffset snaps a normalized row offset down to the nearest
// 1/(rows-1) grid step, keeping the per-vertex height sample in phase
// with the per-pixel color sample. The small bias absorbs float error
// for offsets that already sit on a grid step.
func discretizeOffset(offset float32, rows int) float32 {
	steps := float64(rows - 1)
	return float32(math.Floor(float64(offset)*steps+1e-4) / steps)
}

// ViewConfig carries the construction-time knobs of the view. Zero
// values fall back to the defaults used by the original hardware
// profile.
type ViewConfig struct {
	VertexTextureFetch bool
	HistoryDepth       int
	GridCols           int
	GridRows           int
	WorldSize          float32
	VerticalScale      float32
	Foreground         [4]float32
	Background         [4]float32
}

func (cfg *ViewConfig) applyDefaults() {
	if cfg.HistoryDepth == 0 {
		cfg.HistoryDepth = 256
	}
	if cfg.GridCols == 0 {
		cfg.GridCols = 256
	}
	if cfg.GridRows == 0 {
		cfg.GridRows = 256
	}
	if cfg.WorldSize == 0 {
		cfg.WorldSize = 10
	}
	if cfg.VerticalScale == 0 {
		cfg.VerticalScale = 3
	}
	if cfg.Foreground == ([4]float32{}) {
		cfg.Foreground = [4]float32{0.32, 0.86, 0.54, 1}
	}
	if cfg.Background == ([4]float32{}) {
		cfg.Background = [4]float32{0.05, 0.05, 0.1, 1}
	}
}

const (
	fieldOfViewDeg = 55
	nearPlane      = 1
	farPlane       = 100
	cameraDistance = 9
)

// VisualizationView owns the ring buffer, the meshes, the per-mode
// shader pipelines and the camera for their whole lifetime. All GPU
// state is touched only from the frame tick; there is exactly one
// logical thread of control per frame.
type VisualizationView struct {
	cfg    ViewConfig
	mode   RenderMode
	ring   *FrequencyRingBuffer
	quad   *Mesh
	field  *Mesh
	camera *OrbitCamera

	// working matrices, reset to identity at the start of every
	// frame before composition; never carried across frames
	projection *Matrix4
	view       *Matrix4
	wvp        *Matrix4

	texture   *DataTexture
	quadGeom  *Geometry
	fieldGeom *Geometry
	pipelines map[RenderMode]*Pipeline
	warned    map[RenderMode]bool

	width  int
	height int
}

// NewVisualizationView builds the CPU-side state: ring buffer, mesh
// geometry and camera. GPU resources are attached by InitGraphics
// once a context exists; tests run against this half alone with a
// nil uploader.
func NewVisualizationView(cfg ViewConfig, uploader rowUploader) (*VisualizationView, error) {
	cfg.applyDefaults()
	field, err := NewHeightfieldMesh(cfg.GridCols, cfg.GridRows, cfg.WorldSize)
	if err != nil {
		return nil, err
	}
	camera := NewOrbitCamera(0, -55)
	camera.SetTranslation(0, -2, 0)
	v := &VisualizationView{
		cfg:        cfg,
		ring:       NewFrequencyRingBuffer(cfg.HistoryDepth, uploader),
		quad:       NewQuadMesh(),
		field:      field,
		camera:     camera,
		projection: NewMatrix4(),
		view:       NewMatrix4(),
		wvp:        NewMatrix4(),
		warned:     make(map[RenderMode]bool),
	}
	v.mode = ModeFrequency
	if cfg.VertexTextureFetch {
		v.mode = ModeSonogram3D
	}
	return v, nil
}

// InitGraphics compiles the mode pipelines and uploads the static
// geometry. Pipeline failures are not fatal: the affected mode
// degrades to a skipped draw. Resource allocation failures are.
func (v *VisualizationView) InitGraphics(texture *DataTexture) error {
	v.texture = texture
	if texture != nil {
		v.ring.uploader = texture
	}
	quadGeom, err := UploadGeometry(v.quad)
	if err != nil {
		return fmt.Errorf("quad geometry: %w", err)
	}
	fieldGeom, err := UploadGeometry(v.field)
	if err != nil {
		quadGeom.Close()
		return fmt.Errorf("heightfield geometry: %w", err)
	}
	v.quadGeom = quadGeom
	v.fieldGeom = fieldGeom

	v.pipelines = make(map[RenderMode]*Pipeline)
	sources := []struct {
		mode          RenderMode
		vertex        string
		fragment      string
		vertexSampler bool
	}{
		{ModeFrequency, commonVertexShader, frequencyFragmentShader, false},
		{ModeWaveform, commonVertexShader, waveformFragmentShader, false},
		{ModeSonogram, commonVertexShader, sonogramFragmentShader, false},
		{ModeSonogram3D, sonogram3DVertexShader, sonogram3DFragmentShader, true},
	}
	for _, src := range sources {
		if src.mode == ModeSonogram3D && !v.cfg.VertexTextureFetch {
			continue
		}
		p, err := CreatePipeline(src.vertex, src.fragment, src.vertexSampler)
		if err != nil {
			logger.Error("pipeline unavailable", "mode", src.mode, "error", err)
			continue
		}
		v.pipelines[src.mode] = p
	}
	return nil
}

func (v *VisualizationView) Camera() *OrbitCamera { return v.camera }

func (v *VisualizationView) RingBuffer() *FrequencyRingBuffer { return v.ring }

func (v *VisualizationView) Mode() RenderMode { return v.mode }

// SetMode adopts the requested mode, except that Sonogram3D without
// vertex texture fetch silently resolves to Frequency. This is a
// defined capability downgrade, not an error.
func (v *VisualizationView) SetMode(requested RenderMode) {
	if requested == ModeSonogram3D && !v.cfg.VertexTextureFetch {
		logger.Debug("vertex texture fetch unavailable, falling back", "requested", requested)
		requested = ModeFrequency
	}
	v.mode = requested
}

// SetViewport records the drawable size; only the projection aspect
// ratio depends on it, so resizes never reallocate core buffers.
func (v *VisualizationView) SetViewport(width, height int) {
	v.width = width
	v.height = height
}

// Ingest writes one snapshot into the ring buffer according to the
// active mode and reports the frame state the draw will use. A nil
// snapshot redraws the existing buffer contents unchanged.
func (v *VisualizationView) Ingest(snapshot []byte) (FrameState, error) {
	accumulate := v.mode.Accumulates()
	if snapshot != nil {
		if err := v.ring.EnsureCapacity(len(snapshot)); err != nil {
			return FrameState{}, err
		}
		if err := v.ring.Write(snapshot, accumulate); err != nil {
			return FrameState{}, err
		}
	}
	offset := v.ring.NormalizedOffset()
	return FrameState{
		Mode:          v.mode,
		Accumulated:   accumulate && snapshot != nil,
		YOffset:       offset,
		VertexYOffset: discretizeOffset(offset, v.ring.Height()),
	}, nil
}

// RenderFrame runs the full per-frame procedure: ingest, uniform
// setup, draw. A mode whose pipeline failed to build skips its draw,
// logged once; the render loop itself never aborts.
func (v *VisualizationView) RenderFrame(snapshot []byte) error {
	st, err := v.Ingest(snapshot)
	if err != nil {
		return err
	}
	v.draw(st)
	return nil
}

func (v *VisualizationView) draw(st FrameState) {
	p := v.pipelines[st.Mode]
	if p == nil {
		if !v.warned[st.Mode] {
			logger.Warn("no usable pipeline, skipping draws", "mode", st.Mode)
			v.warned[st.Mode] = true
		}
		return
	}
	p.program.Use()
	v.texture.BindUnit(0)
	gl.Uniform1i(p.frequencyData, 0)
	gl.Uniform4f(p.foregroundColor, v.cfg.Foreground[0], v.cfg.Foreground[1], v.cfg.Foreground[2], v.cfg.Foreground[3])
	gl.Uniform4f(p.backgroundColor, v.cfg.Background[0], v.cfg.Background[1], v.cfg.Background[2], v.cfg.Background[3])
	gl.Uniform1f(p.yoffset, st.YOffset)

	if st.Mode == ModeSonogram3D {
		gl.Uniform1i(p.vertexFrequencyData, 0)
		gl.Uniform1f(p.vertexYOffset, st.VertexYOffset)
		gl.Uniform1f(p.verticalScale, v.cfg.VerticalScale)
		v.composeWorldViewProjection()
		gl.UniformMatrix4fv(p.worldViewProjection, 1, false, &v.wvp[0])
		v.fieldGeom.Draw(p)
		return
	}
	v.wvp.LoadIdentity()
	gl.UniformMatrix4fv(p.worldViewProjection, 1, false, &v.wvp[0])
	v.quadGeom.Draw(p)
}

// composeWorldViewProjection rebuilds projection, view and model from
// scratch and leaves the product in v.wvp. The working matrices are
// reset to identity first; reusing them as accumulators across frames
// would compound transforms silently.
func (v *VisualizationView) composeWorldViewProjection() {
	aspect := float32(1)
	if v.height > 0 {
		aspect = float32(v.width) / float32(v.height)
	}
	v.projection.LoadIdentity().Perspective(fieldOfViewDeg, aspect, nearPlane, farPlane)
	v.view.LoadIdentity().Translate(0, 0, -cameraDistance)
	model := v.camera.BuildModelTransform()
	v.wvp.LoadIdentity().
		Multiply(model).
		Multiply(v.view).
		Multiply(v.projection)
}

// Close releases every GPU resource the view owns.
func (v *VisualizationView) Close() error {
	for _, p := range v.pipelines {
		p.Close()
	}
	if v.quadGeom != nil {
		v.quadGeom.Close()
	}
	if v.fieldGeom != nil {
		v.fieldGeom.Close()
	}
	if v.texture != nil {
		v.texture.Close()
	}
	return nil
}
