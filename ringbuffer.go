package main

import "fmt"

// rowUploader mirrors ring buffer rows into GPU storage. The GL
// implementation lives in gl.go; a nil uploader keeps the buffer
// CPU-only, which is how the tests run without a context.
type rowUploader interface {
	Allocate(width, height int) error
	UploadRow(row int, data []byte)
}

// FrequencyRingBuffer keeps the last H snapshots in a fixed-size 2D
// texture, written in wrap-around fashion. Each row is one snapshot;
// the write cursor advances only for time-accumulating modes and is
// pinned at row 0 otherwise.
type FrequencyRingBuffer struct {
	uploader rowUploader
	rows     [][]byte
	width    int
	height   int
	cursor   int
}

func NewFrequencyRingBuffer(height int, uploader rowUploader) *FrequencyRingBuffer {
	return &FrequencyRingBuffer{
		uploader: uploader,
		height:   height,
	}
}

// EnsureCapacity reallocates backing storage for binCount-wide
// snapshots, discarding old contents. It is a no-op when the width is
// unchanged so steady-state frames cause no texture churn.
func (rb *FrequencyRingBuffer) EnsureCapacity(binCount int) error {
	if binCount <= 0 {
		return fmt.Errorf("ring buffer: invalid bin count %d", binCount)
	}
	if binCount == rb.width {
		return nil
	}
	rows := make([][]byte, rb.height)
	for i := range rows {
		rows[i] = make([]byte, binCount)
	}
	if rb.uploader != nil {
		if err := rb.uploader.Allocate(binCount, rb.height); err != nil {
			return fmt.Errorf("ring buffer: %w", err)
		}
	}
	rb.rows = rows
	rb.width = binCount
	rb.cursor = 0
	return nil
}

// Write stores one snapshot. With accumulate set it lands at the
// cursor row and the cursor advances mod H; without it the snapshot
// is pinned to row 0 and the cursor resets, so instantaneous modes
// never show stale rows at the wrap boundary. A snapshot whose length
// does not match the allocated width is a caller bug and fails fast.
func (rb *FrequencyRingBuffer) Write(snapshot []byte, accumulate bool) error {
	if len(snapshot) != rb.width {
		return fmt.Errorf("ring buffer: snapshot length %d does not match width %d", len(snapshot), rb.width)
	}
	row := rb.cursor
	if !accumulate {
		row = 0
		rb.cursor = 0
	}
	copy(rb.rows[row], snapshot)
	if rb.uploader != nil {
		rb.uploader.UploadRow(row, rb.rows[row])
	}
	if accumulate {
		rb.cursor = (rb.cursor + 1) % rb.height
	}
	return nil
}

// NormalizedOffset reports the cursor position as cursor/(H-1), the
// form the shaders consume to locate the most recent row without
// integer indexing.
func (rb *FrequencyRingBuffer) NormalizedOffset() float32 {
	return float32(rb.cursor) / float32(rb.height-1)
}

func (rb *FrequencyRingBuffer) Cursor() int { return rb.cursor }
func (rb *FrequencyRingBuffer) Width() int  { return rb.width }
func (rb *FrequencyRingBuffer) Height() int { return rb.height }

// Row exposes the CPU mirror of one texture row.
func (rb *FrequencyRingBuffer) Row(i int) []byte {
	return rb.rows[i]
}
