package fits

import (
	"fitsview/internal/errors"
	"fitsview/internal/log"
)

// Session carries the file-access mode shared by every open in one viewer
// run. When a mapped open fails on the scaling-header conflict the session
// retries fully loaded, notifies once, and keeps the degraded mode for all
// later opens.
type Session struct {
	mapped   bool
	notified bool

	// Notify, when set, receives the one-time degrade notification so the
	// front end can surface it to the user.
	Notify func(title, message string)
}

// NewSession returns a session with the given initial access mode.
func NewSession(mapped bool) *Session {
	return &Session{mapped: mapped}
}

// Mapped reports the current access mode.
func (s *Session) Mapped() bool {
	return s.mapped
}

// Open opens path under the session's access mode, degrading from mapped to
// fully-loaded access exactly once per conflict.
func (s *Session) Open(path string) (*File, error) {
	f, err := Open(path, Options{Mapped: s.mapped})
	if err == nil || !s.mapped || !errors.IsScaledMapping(err) {
		return f, err
	}

	s.mapped = false
	log.Warnf("disabling mapped access for this session: %v", err)
	if s.Notify != nil && !s.notified {
		s.notified = true
		s.Notify("Mapped mode disabled",
			"BZERO/BSCALE/BLANK headers detected. Opened without memory mapping.")
	}

	return Open(path, Options{Mapped: false})
}
