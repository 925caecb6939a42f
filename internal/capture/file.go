package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// FileDevice replays a pre-recorded WAV file as if it had been captured.
type FileDevice struct {
	Path string
}

// NewFileDevice creates a FileDevice reading path on every Open.
func NewFileDevice(path string) *FileDevice {
	return &FileDevice{Path: path}
}

func (d *FileDevice) Open(ctx context.Context, f Format) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !IsWAV(data) {
		return nil, fmt.Errorf("%w: %s is not a WAV file", ErrUnavailable, d.Path)
	}
	return &bufferStream{data: data}, nil
}

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

type bufferStream struct {
	mu      sync.Mutex
	data    []byte
	stopped bool
}

func (s *bufferStream) Stop() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, errors.New("capture already stopped")
	}
	s.stopped = true
	return s.data, nil
}

func (s *bufferStream) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.data = nil
}
