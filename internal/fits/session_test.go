package fits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitsview/internal/fits/fitstest"
)

func scaledFixture(t *testing.T) string {
	t.Helper()
	return fitstest.New().
		Header(fitstest.PrimaryHeader(16, []int{2, 1},
			fitstest.Card{Name: "BZERO", Value: 32768.0},
		)...).
		Data(fitstest.Int16BE(0, 1)).
		WriteTemp(t)
}

func TestSessionDegradesOnce(t *testing.T) {
	path := scaledFixture(t)

	var notices []string
	s := NewSession(true)
	s.Notify = func(title, msg string) { notices = append(notices, title) }

	f, err := s.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, f.Mapped)
	assert.False(t, s.Mapped())
	assert.Equal(t, []string{"Mapped mode disabled"}, notices)

	// Later opens inherit the degraded mode and do not notify again
	f2, err := s.Open(path)
	require.NoError(t, err)
	defer f2.Close()
	assert.False(t, f2.Mapped)
	assert.Len(t, notices, 1)
}

func TestSessionKeepsMappedModeWhenClean(t *testing.T) {
	path := fitstest.New().
		Header(fitstest.PrimaryHeader(-32, []int{2, 1})...).
		Data(fitstest.Float32BE(1, 2)).
		WriteTemp(t)

	s := NewSession(true)
	f, err := s.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, f.Mapped)
	assert.True(t, s.Mapped())
}

func TestSessionUnmappedNeverDegrades(t *testing.T) {
	s := NewSession(false)
	f, err := s.Open(scaledFixture(t))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, s.Mapped())
}

func TestSessionPropagatesOtherErrors(t *testing.T) {
	s := NewSession(true)
	_, err := s.Open("/no/such/file.fits")
	assert.Error(t, err)
	assert.True(t, s.Mapped(), "unrelated errors must not degrade the session")
}
