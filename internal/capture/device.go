// Package capture acquires microphone audio for voice answers.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means no capture device could be opened.
	ErrUnavailable = errors.New("capture device unavailable")

	// ErrPermissionDenied means the OS refused access to the device.
	ErrPermissionDenied = errors.New("capture device permission denied")
)

// Format describes the PCM stream requested from a device.
type Format struct {
	SampleRate int
	Channels   int
}

// VoiceFormat is mono 16 kHz, the format transcription expects.
var VoiceFormat = Format{SampleRate: 16000, Channels: 1}

// Device opens audio streams.
type Device interface {
	// Open starts capturing. The context bounds acquisition only; the
	// returned stream runs until Stop or Abort.
	Open(ctx context.Context, f Format) (Stream, error)
}

// Stream is an open capture.
type Stream interface {
	// Stop ends the capture and returns the recorded audio as WAV bytes.
	Stop() ([]byte, error)

	// Abort ends the capture and discards the audio. Safe to call more
	// than once and after Stop.
	Abort()
}
