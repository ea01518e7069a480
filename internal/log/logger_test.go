package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	SetDebug(false)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	Info("opened %s", "obs.fits")
	assert.Contains(t, buf.String(), "opened obs.fits")
	assert.Contains(t, buf.String(), "info")

	SetDebug(true)
	Debugf("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
	SetDebug(false)
}

func TestMessageWithArgs(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Warn("mapped mode disabled", "BZERO/BSCALE/BLANK")
	assert.Contains(t, buf.String(), "mapped mode disabled: BZERO/BSCALE/BLANK")

	buf.Reset()
	Error("open failed", assert.AnError)
	assert.Contains(t, buf.String(), "open failed")
}
