package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dh1tw/gosamplerate"
	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// AudioSource drives the analyser with samples. The frame loop only
// ever talks to the Analyser; sources run on their own goroutines.
type AudioSource interface {
	Start() error
	Close() error
}

// pcmStream is decoded 16-bit little-endian interleaved PCM.
type pcmStream struct {
	reader     io.Reader
	sampleRate int
	channels   int
}

func decodeFile(path string) (*pcmStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		return &pcmStream{reader: dec, sampleRate: dec.SampleRate(), channels: 2}, nil
	case ".wav":
		defer f.Close()
		return decodeWAV(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

// decodeWAV loads the whole file and converts it to 16-bit PCM.
// Visualization inputs are songs, not archives; holding one decoded
// track in memory keeps the seek/convert bookkeeping out of the hot
// path.
func decodeWAV(f *os.File) (*pcmStream, error) {
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("decode wav: missing format")
	}
	shift := int(dec.BitDepth) - 16
	out := make([]byte, len(buf.Data)*2)
	for i, v := range buf.Data {
		if shift > 0 {
			v >>= shift
		} else if shift < 0 {
			v <<= -shift
		}
		if v > math.MaxInt16 {
			v = math.MaxInt16
		}
		if v < math.MinInt16 {
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return &pcmStream{
		reader:     bytes.NewReader(out),
		sampleRate: buf.Format.SampleRate,
		channels:   buf.Format.NumChannels,
	}, nil
}

// analyserTap sits between the decoder and the player, mixing the
// bytes that flow past down to mono, converting them to the analysis
// rate and feeding the analyser. Playback stays bit-exact; only the
// copy is resampled.
type analyserTap struct {
	reader   io.Reader
	analyser *Analyser
	channels int
	src      gosamplerate.Src
	resample bool
	ratio    float64
	rem      []byte
}

func newAnalyserTap(reader io.Reader, analyser *Analyser, channels, sampleRate int) (*analyserTap, error) {
	t := &analyserTap{
		reader:   reader,
		analyser: analyser,
		channels: channels,
	}
	if sampleRate != analysisSampleRate {
		ratio := float64(analysisSampleRate) / float64(sampleRate)
		if !gosamplerate.IsValidRatio(ratio) {
			return nil, fmt.Errorf("audio: unsupported rate %d", sampleRate)
		}
		src, err := gosamplerate.New(gosamplerate.SRC_SINC_FASTEST, 1, 8192)
		if err != nil {
			return nil, fmt.Errorf("audio: %w", err)
		}
		t.src = src
		t.resample = true
		t.ratio = ratio
	}
	return t, nil
}

func (t *analyserTap) Read(p []byte) (int, error) {
	n, err := t.reader.Read(p)
	if n > 0 {
		t.tap(p[:n])
	}
	return n, err
}

func (t *analyserTap) tap(b []byte) {
	data := b
	if len(t.rem) > 0 {
		data = append(t.rem, b...)
	}
	frameSize := 2 * t.channels
	frames := len(data) / frameSize
	t.rem = append([]byte(nil), data[frames*frameSize:]...)
	if frames == 0 {
		return
	}
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < t.channels; ch++ {
			sum += int(int16(binary.LittleEndian.Uint16(data[(i*t.channels+ch)*2:])))
		}
		mono[i] = float32(sum) / float32(t.channels) / 32768
	}
	if t.resample {
		out, err := t.src.Process(mono, t.ratio, false)
		if err != nil {
			return
		}
		mono = out
	}
	feed := make([]float64, len(mono))
	for i, v := range mono {
		feed[i] = float64(v)
	}
	t.analyser.Feed(feed)
}

func (t *analyserTap) close() {
	if t.resample {
		gosamplerate.Delete(t.src)
	}
}

// FileSource plays an audio file through oto while the tap keeps the
// analyser supplied.
type FileSource struct {
	tap    *analyserTap
	ctx    *oto.Context
	player *oto.Player
}

func NewFileSource(path string, analyser *Analyser) (*FileSource, error) {
	stream, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	tap, err := newAnalyserTap(stream.reader, analyser, stream.channels, stream.sampleRate)
	if err != nil {
		return nil, err
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   stream.sampleRate,
		ChannelCount: stream.channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		tap.close()
		return nil, fmt.Errorf("audio output: %w", err)
	}
	<-ready
	return &FileSource{
		tap:    tap,
		ctx:    ctx,
		player: ctx.NewPlayer(tap),
	}, nil
}

func (s *FileSource) Start() error {
	s.player.Play()
	return nil
}

func (s *FileSource) Close() error {
	err := s.player.Close()
	s.tap.close()
	return err
}

// SyntheticSource generates a slowly sweeping tone stack so the
// visualizer can run with no input file or audio device at all.
type SyntheticSource struct {
	analyser *Analyser
	done     chan struct{}
}

func NewSyntheticSource(analyser *Analyser) *SyntheticSource {
	return &SyntheticSource{
		analyser: analyser,
		done:     make(chan struct{}),
	}
}

func (s *SyntheticSource) Start() error {
	const blockFrames = 441 // 10ms at the analysis rate
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		phase := 0.0
		sweep := 0.0
		block := make([]float64, blockFrames)
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
			sweep += 0.01
			base := 220 + 200*math.Sin(sweep)
			for i := range block {
				phase += base / analysisSampleRate
				block[i] = 0.5*math.Sin(2*math.Pi*phase) +
					0.25*math.Sin(4*math.Pi*phase) +
					0.125*math.Sin(6*math.Pi*phase)
			}
			s.analyser.Feed(block)
		}
	}()
	return nil
}

func (s *SyntheticSource) Close() error {
	close(s.done)
	return nil
}
