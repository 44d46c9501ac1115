package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

const (
	analysisSampleRate = 44100

	defaultSmoothing = 0.8
	minDecibels      = -100.0
	maxDecibels      = -30.0
)

// Analyser turns the raw sample stream into the fixed-length byte
// snapshots the view ingests: frequency magnitudes mapped from a
// decibel range into [0,255], or raw time-domain bytes. The audio
// collaborator feeds samples from its own goroutine; snapshot calls
// happen on the frame tick, so the sample ring is the one place a
// lock is needed.
type Analyser struct {
	mu       sync.Mutex
	fftSize  int
	binCount int

	samples []float64
	pos     int

	window   []float64
	buf      []complex128
	smoothed []float64
}

// NewAnalyser creates an analyser for a power-of-two FFT size. The
// snapshot length (bin count) is half the FFT size.
func NewAnalyser(fftSize int) (*Analyser, error) {
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("analyser: fft size %d is not a power of two >= 32", fftSize)
	}
	a := &Analyser{
		fftSize:  fftSize,
		binCount: fftSize / 2,
		samples:  make([]float64, fftSize),
		window:   make([]float64, fftSize),
		buf:      make([]complex128, fftSize),
		smoothed: make([]float64, fftSize/2),
	}
	// Blackman window, the standard choice for spectral display
	n := float64(fftSize)
	for i := range a.window {
		x := float64(i) / n
		a.window[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	}
	return a, nil
}

func (a *Analyser) BinCount() int { return a.binCount }

// Feed appends mono samples to the analysis ring. Called from the
// audio collaborator's goroutine.
func (a *Analyser) Feed(samples []float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.samples[a.pos] = s
		a.pos = (a.pos + 1) % a.fftSize
	}
	a.mu.Unlock()
}

// snapshotSamples copies the last fftSize samples in chronological
// order.
func (a *Analyser) snapshotSamples(dst []float64) {
	a.mu.Lock()
	start := a.pos
	for i := range dst {
		dst[i] = a.samples[(start+i)%a.fftSize]
	}
	a.mu.Unlock()
}

// FrequencySnapshot fills dst (len = bin count) with smoothed
// magnitudes mapped from [minDecibels, maxDecibels] to [0, 255].
func (a *Analyser) FrequencySnapshot(dst []byte) error {
	if len(dst) != a.binCount {
		return fmt.Errorf("analyser: snapshot length %d, want %d", len(dst), a.binCount)
	}
	timeData := make([]float64, a.fftSize)
	a.snapshotSamples(timeData)
	for i, s := range timeData {
		a.buf[i] = complex(s*a.window[i], 0)
	}
	spectrum := fft.FFT(a.buf)
	norm := 2.0 / float64(a.fftSize)
	dbRange := maxDecibels - minDecibels
	for i := 0; i < a.binCount; i++ {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		mag := math.Sqrt(re*re+im*im) * norm
		a.smoothed[i] = defaultSmoothing*a.smoothed[i] + (1-defaultSmoothing)*mag
		db := -math.MaxFloat64
		if a.smoothed[i] > 0 {
			db = 20 * math.Log10(a.smoothed[i])
		}
		scaled := 255 * (db - minDecibels) / dbRange
		if scaled < 0 {
			scaled = 0
		}
		if scaled > 255 {
			scaled = 255
		}
		dst[i] = byte(scaled)
	}
	return nil
}

// WaveformSnapshot fills dst (len = bin count) with the most recent
// time-domain samples mapped to unsigned bytes centered on 128.
func (a *Analyser) WaveformSnapshot(dst []byte) error {
	if len(dst) != a.binCount {
		return fmt.Errorf("analyser: snapshot length %d, want %d", len(dst), a.binCount)
	}
	timeData := make([]float64, a.fftSize)
	a.snapshotSamples(timeData)
	recent := timeData[a.fftSize-a.binCount:]
	for i, s := range recent {
		scaled := 128*s + 128
		if scaled < 0 {
			scaled = 0
		}
		if scaled > 255 {
			scaled = 255
		}
		dst[i] = byte(scaled)
	}
	return nil
}
