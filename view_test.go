package main

import (
	"bytes"
	"testing"
)

func newTestView(t *testing.T, vertexTextureFetch bool) *VisualizationView {
	t.Helper()
	v, err := NewVisualizationView(ViewConfig{
		VertexTextureFetch: vertexTextureFetch,
		HistoryDepth:       8,
		GridCols:           4,
		GridRows:           4,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestInitialModeFollowsCapability(t *testing.T) {
	if mode := newTestView(t, true).Mode(); mode != ModeSonogram3D {
		t.Fatalf("capable device: got %v, want %v", mode, ModeSonogram3D)
	}
	if mode := newTestView(t, false).Mode(); mode != ModeFrequency {
		t.Fatalf("limited device: got %v, want %v", mode, ModeFrequency)
	}
}

func TestSetModeCapabilityDowngrade(t *testing.T) {
	v := newTestView(t, false)
	v.SetMode(ModeSonogram)
	if v.Mode() != ModeSonogram {
		t.Fatalf("2D sonogram rejected: %v", v.Mode())
	}
	v.SetMode(ModeSonogram3D)
	if v.Mode() != ModeFrequency {
		t.Fatalf("3D without vertex texture fetch: got %v, want %v", v.Mode(), ModeFrequency)
	}

	capable := newTestView(t, true)
	capable.SetMode(ModeSonogram3D)
	if capable.Mode() != ModeSonogram3D {
		t.Fatalf("3D with vertex texture fetch: got %v", capable.Mode())
	}
}

func TestIngestInstantaneousModePinsRowZero(t *testing.T) {
	v := newTestView(t, false)
	snapshot := snapshotFilled(16, 128)
	for i := 0; i < 3; i++ {
		st, err := v.Ingest(snapshot)
		if err != nil {
			t.Fatal(err)
		}
		if st.Mode != ModeFrequency || st.Accumulated {
			t.Fatalf("frame state: %+v", st)
		}
		if st.YOffset != 0 || st.VertexYOffset != 0 {
			t.Fatalf("instantaneous mode offset drifted: %+v", st)
		}
	}
	if !bytes.Equal(v.RingBuffer().Row(0), snapshot) {
		t.Fatalf("row 0: got %v", v.RingBuffer().Row(0))
	}
}

func TestIngestAccumulatingModeAdvances(t *testing.T) {
	v := newTestView(t, false)
	v.SetMode(ModeSonogram)
	for i := 1; i <= 3; i++ {
		st, err := v.Ingest(snapshotFilled(16, byte(i)))
		if err != nil {
			t.Fatal(err)
		}
		if !st.Accumulated {
			t.Fatalf("write %d not accumulated", i)
		}
		if want := float32(i) / 7; st.YOffset != want {
			t.Fatalf("write %d offset: got %v, want %v", i, st.YOffset, want)
		}
		if st.VertexYOffset != st.YOffset {
			t.Fatalf("write %d vertex offset %v off the row grid (yoffset %v)",
				i, st.VertexYOffset, st.YOffset)
		}
	}
	if !bytes.Equal(v.RingBuffer().Row(2), snapshotFilled(16, 3)) {
		t.Fatalf("row 2: got %v", v.RingBuffer().Row(2))
	}
}

func TestIngestModeSwitchResetsCursor(t *testing.T) {
	v := newTestView(t, false)
	v.SetMode(ModeSonogram)
	for i := 0; i < 3; i++ {
		if _, err := v.Ingest(snapshotFilled(16, byte(i))); err != nil {
			t.Fatal(err)
		}
	}
	v.SetMode(ModeFrequency)
	st, err := v.Ingest(snapshotFilled(16, 200))
	if err != nil {
		t.Fatal(err)
	}
	if st.YOffset != 0 {
		t.Fatalf("offset after switch to instantaneous mode: %v", st.YOffset)
	}
	if v.RingBuffer().Cursor() != 0 {
		t.Fatalf("cursor after switch: %d", v.RingBuffer().Cursor())
	}
}

func TestIngestNilSnapshotKeepsState(t *testing.T) {
	v := newTestView(t, false)
	v.SetMode(ModeSonogram)
	if _, err := v.Ingest(snapshotFilled(16, 1)); err != nil {
		t.Fatal(err)
	}
	before := v.RingBuffer().Cursor()
	st, err := v.Ingest(nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Accumulated {
		t.Fatal("nil snapshot reported as accumulated")
	}
	if v.RingBuffer().Cursor() != before {
		t.Fatalf("nil snapshot moved the cursor: %d -> %d", before, v.RingBuffer().Cursor())
	}
}

func TestIngestSnapshotWidthChangeReallocates(t *testing.T) {
	v := newTestView(t, false)
	if _, err := v.Ingest(snapshotFilled(16, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Ingest(snapshotFilled(32, 2)); err != nil {
		t.Fatal(err)
	}
	if v.RingBuffer().Width() != 32 {
		t.Fatalf("width after change: got %d, want 32", v.RingBuffer().Width())
	}
}

func TestDiscretizeOffset(t *testing.T) {
	// offsets already on a row step pass through unchanged
	for _, k := range []int{0, 1, 7, 100, 254, 255} {
		offset := float32(k) / 255
		if got := discretizeOffset(offset, 256); got != offset {
			t.Fatalf("on-grid offset %d/255: got %v, want %v", k, got, offset)
		}
	}
	// offsets between steps snap down to the previous row
	if got, want := discretizeOffset(1.6/7, 8), float32(1)/7; got != want {
		t.Fatalf("mid-step offset: got %v, want %v", got, want)
	}
	if got := discretizeOffset(0.05, 8); got != 0 {
		t.Fatalf("sub-step offset: got %v, want 0", got)
	}
}

func TestViewConfigDefaults(t *testing.T) {
	var cfg ViewConfig
	cfg.applyDefaults()
	if cfg.HistoryDepth != 256 || cfg.GridCols != 256 || cfg.GridRows != 256 {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.WorldSize != 10 || cfg.VerticalScale != 3 {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Foreground == ([4]float32{}) || cfg.Background == ([4]float32{}) {
		t.Fatalf("colors left at zero: %+v", cfg)
	}
}

func TestRenderModeProperties(t *testing.T) {
	cases := []struct {
		mode        RenderMode
		accumulates bool
		waveform    bool
		name        string
	}{
		{ModeFrequency, false, false, "frequency"},
		{ModeWaveform, false, true, "waveform"},
		{ModeSonogram, true, false, "sonogram"},
		{ModeSonogram3D, true, false, "sonogram3d"},
	}
	for _, c := range cases {
		if c.mode.Accumulates() != c.accumulates {
			t.Errorf("%v Accumulates: got %v", c.mode, c.mode.Accumulates())
		}
		if c.mode.UsesWaveform() != c.waveform {
			t.Errorf("%v UsesWaveform: got %v", c.mode, c.mode.UsesWaveform())
		}
		if c.mode.String() != c.name {
			t.Errorf("%v String: got %q, want %q", int(c.mode), c.mode.String(), c.name)
		}
	}
}
