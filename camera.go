package main

const (
	minPitchDeg = -90
	maxPitchDeg = 90
)

// OrbitCamera holds two externally driven rotation angles, a fixed
// roll and a translation offset. It keeps no animation state; the
// model transform is recomposed from scratch on every call so angle
// updates can never accumulate drift.
type OrbitCamera struct {
	yaw   float32
	pitch float32
	roll  float32
	tx    float32
	ty    float32
	tz    float32
}

func NewOrbitCamera(yaw, pitch float32) *OrbitCamera {
	c := &OrbitCamera{}
	c.SetAngles(yaw, pitch)
	return c
}

func (c *OrbitCamera) Angles() (yaw, pitch float32) {
	return c.yaw, c.pitch
}

// SetAngles updates yaw and pitch. Pitch is clamped to [-90, 90] so
// the orbit can never flip over the pole, regardless of which input
// collaborator drives it.
func (c *OrbitCamera) SetAngles(yaw, pitch float32) {
	if pitch < minPitchDeg {
		pitch = minPitchDeg
	}
	if pitch > maxPitchDeg {
		pitch = maxPitchDeg
	}
	c.yaw = yaw
	c.pitch = pitch
}

func (c *OrbitCamera) SetTranslation(tx, ty, tz float32) {
	c.tx, c.ty, c.tz = tx, ty, tz
}

// BuildModelTransform composes pitch about X, then yaw about Y, then
// roll about Z, then the translation. The order is fixed; changing it
// changes the visual frame.
func (c *OrbitCamera) BuildModelTransform() *Matrix4 {
	return NewMatrix4().
		Rotate(c.pitch, 1, 0, 0).
		Rotate(c.yaw, 0, 1, 0).
		Rotate(c.roll, 0, 0, 1).
		Translate(c.tx, c.ty, c.tz)
}

// DragRotator translates pointer drag deltas into camera angle
// updates. It stays inert until explicitly enabled; mode keys work
// the same whether or not a pointer is wired up.
type DragRotator struct {
	camera      *OrbitCamera
	sensitivity float32
	enabled     bool
	dragging    bool
	lastX       float64
	lastY       float64
}

func NewDragRotator(camera *OrbitCamera, sensitivity float32) *DragRotator {
	return &DragRotator{camera: camera, sensitivity: sensitivity}
}

func (d *DragRotator) SetEnabled(enabled bool) {
	d.enabled = enabled
	if !enabled {
		d.dragging = false
	}
}

func (d *DragRotator) Begin(x, y float64) {
	if !d.enabled {
		return
	}
	d.dragging = true
	d.lastX = x
	d.lastY = y
}

func (d *DragRotator) Move(x, y float64) {
	if !d.enabled || !d.dragging {
		return
	}
	dx := float32(x-d.lastX) * d.sensitivity
	dy := float32(y-d.lastY) * d.sensitivity
	d.lastX = x
	d.lastY = y
	yaw, pitch := d.camera.Angles()
	d.camera.SetAngles(yaw+dx, pitch+dy)
}

func (d *DragRotator) End() {
	d.dragging = false
}
