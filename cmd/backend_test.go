package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
	"github.com/abhisek/intervue/internal/config"
)

func TestNewDevice(t *testing.T) {
	cfg := config.DefaultConfig()

	_, ok := newDevice(cfg, "").(*capture.ExecDevice)
	assert.True(t, ok, "no audio file records with ffmpeg")

	d, ok := newDevice(cfg, "answer.wav").(*capture.FileDevice)
	require.True(t, ok)
	assert.Equal(t, "answer.wav", d.Path)

	cfg.Capture.AudioFile = "from-config.wav"
	d, ok = newDevice(cfg, "").(*capture.FileDevice)
	require.True(t, ok)
	assert.Equal(t, "from-config.wav", d.Path)
}

func TestNewBackend_Remote(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeRemote

	b, err := newBackend(context.Background(), cfg, nil)
	require.NoError(t, err)
	_, ok := b.(*api.Client)
	assert.True(t, ok)
}

func TestNewBackend_UnknownMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mode = "carrier-pigeon"

	_, err := newBackend(context.Background(), cfg, nil)
	assert.Error(t, err)
}
