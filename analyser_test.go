package main

import (
	"math"
	"testing"
)

func TestNewAnalyserValidatesFFTSize(t *testing.T) {
	for _, size := range []int{0, -1, 16, 31, 48, 1000} {
		if _, err := NewAnalyser(size); err == nil {
			t.Errorf("size %d accepted", size)
		}
	}
	for _, size := range []int{32, 256, 2048} {
		a, err := NewAnalyser(size)
		if err != nil {
			t.Fatalf("size %d rejected: %v", size, err)
		}
		if a.BinCount() != size/2 {
			t.Fatalf("size %d bin count: got %d, want %d", size, a.BinCount(), size/2)
		}
	}
}

func TestSnapshotLengthValidation(t *testing.T) {
	a, err := NewAnalyser(64)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.FrequencySnapshot(make([]byte, 16)); err == nil {
		t.Fatal("short frequency snapshot accepted")
	}
	if err := a.WaveformSnapshot(make([]byte, 64)); err == nil {
		t.Fatal("long waveform snapshot accepted")
	}
}

func TestWaveformSnapshotMapping(t *testing.T) {
	a, err := NewAnalyser(32)
	if err != nil {
		t.Fatal(err)
	}
	// fill the ring so the last binCount samples are known values
	pad := make([]float64, 16)
	a.Feed(pad)
	recent := []float64{0, 0.5, -0.5, 1, -1, 0.25, -0.25, 2, -2, 0, 0, 0, 0, 0, 0, 0}
	a.Feed(recent)

	dst := make([]byte, a.BinCount())
	if err := a.WaveformSnapshot(dst); err != nil {
		t.Fatal(err)
	}
	want := []byte{128, 192, 64, 255, 0, 160, 96, 255, 0, 128, 128, 128, 128, 128, 128, 128}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("sample %d: got %d, want %d (full: %v)", i, dst[i], want[i], dst)
		}
	}
}

func TestFrequencySnapshotSilenceIsZero(t *testing.T) {
	a, err := NewAnalyser(256)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, a.BinCount())
	if err := a.FrequencySnapshot(dst); err != nil {
		t.Fatal(err)
	}
	for i, b := range dst {
		if b != 0 {
			t.Fatalf("bin %d of silence: got %d, want 0", i, b)
		}
	}
}

func TestFrequencySnapshotLocatesSine(t *testing.T) {
	const (
		fftSize = 1024
		bin     = 64
	)
	a, err := NewAnalyser(fftSize)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]float64, fftSize)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*float64(bin)*float64(i)/fftSize)
	}
	a.Feed(samples)

	// repeated snapshots converge the temporal smoothing on the
	// steady-state magnitude
	dst := make([]byte, a.BinCount())
	for i := 0; i < 40; i++ {
		if err := a.FrequencySnapshot(dst); err != nil {
			t.Fatal(err)
		}
	}
	peak := 0
	for i, b := range dst {
		if b > dst[peak] {
			peak = i
		}
	}
	if peak < bin-1 || peak > bin+1 {
		t.Fatalf("peak at bin %d, want near %d", peak, bin)
	}
	if dst[peak] < 200 {
		t.Fatalf("peak magnitude %d too low", dst[peak])
	}
	if far := dst[bin+200]; far >= dst[peak] {
		t.Fatalf("distant bin %d not below peak %d", far, dst[peak])
	}
}

func TestFeedWrapsRing(t *testing.T) {
	a, err := NewAnalyser(32)
	if err != nil {
		t.Fatal(err)
	}
	// feed more than fftSize samples; only the most recent survive
	first := make([]float64, 32)
	for i := range first {
		first[i] = 1
	}
	a.Feed(first)
	second := make([]float64, 32)
	for i := range second {
		second[i] = -1
	}
	a.Feed(second)

	dst := make([]byte, a.BinCount())
	if err := a.WaveformSnapshot(dst); err != nil {
		t.Fatal(err)
	}
	for i, b := range dst {
		if b != 0 {
			t.Fatalf("sample %d: got %d, want 0 after overwrite", i, b)
		}
	}
}
