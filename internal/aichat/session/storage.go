package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	fileExt     = ".json"
	minPrefix   = 4
	latestAlias = "latest"
)

// ErrNotFound is returned when no saved session matches an ID or prefix
var ErrNotFound = errors.New("session not found")

// AmbiguousIDError is returned when multiple sessions match a prefix
type AmbiguousIDError struct {
	Prefix  string
	Matches []Session
}

func (e *AmbiguousIDError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous session ID %q, %d sessions match:", e.Prefix, len(e.Matches))
	for _, match := range e.Matches {
		fmt.Fprintf(&b, "\n- %s (%s, %s, %d messages)",
			match.GetShortID(),
			match.Mode,
			match.CreatedAt.Format("2006-01-02"),
			match.MessageCount())
	}
	return b.String()
}

// DefaultDir returns where sessions live when history_dir is not configured:
// a history directory next to the config file in use, or
// ~/.config/aichat/history without one.
func DefaultDir() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		dir, err := filepath.Abs(filepath.Dir(configFile))
		if err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
		return filepath.Join(dir, "history"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "aichat", "history"), nil
}

// Store keeps one JSON file per session, named after the full session ID.
// Saving is best effort from the caller's point of view: a failed save never
// affects the conversation that is being held.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore returns a store rooted at dir. The directory is created on the
// first save. A nil logger disables logging.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory the store writes to
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Save writes the session. The file is replaced atomically so that an
// interrupted save never leaves a truncated session behind.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+sess.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(sess.ID)); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	s.logger.Debug("Session saved",
		zap.String("session", sess.GetShortID()),
		zap.Int("messages", sess.MessageCount()),
	)
	return nil
}

// Load reads a session by its full ID
func (s *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session file %s is corrupted: %w", id, err)
	}
	return &sess, nil
}

// Delete removes a session by its full ID
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all readable sessions, most recently updated first.
// Unreadable files are skipped. A missing directory holds no sessions.
func (s *Store) List() ([]Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var sessions []Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}

		sess, err := s.Load(strings.TrimSuffix(name, fileExt))
		if err != nil {
			s.logger.Warn("Skipping unreadable session", zap.String("file", name), zap.Error(err))
			continue
		}
		sessions = append(sessions, *sess)
	}

	slices.SortFunc(sessions, func(a, b Session) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return sessions, nil
}

// Find resolves a session reference: a full UUID, an ID prefix of at least
// four characters, or "latest" for the most recently updated session.
// A prefix matching several sessions yields an *AmbiguousIDError.
func (s *Store) Find(ref string) (*Session, error) {
	if ref == latestAlias {
		return s.Latest()
	}
	if len(ref) < minPrefix {
		return nil, fmt.Errorf("session ID prefix must be at least %d characters (got %d)", minPrefix, len(ref))
	}

	sessions, err := s.List()
	if err != nil {
		return nil, err
	}

	var matches []Session
	for _, sess := range sessions {
		if sess.ID == ref {
			return &sess, nil
		}
		if strings.HasPrefix(sess.ID, ref) {
			matches = append(matches, sess)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, &AmbiguousIDError{Prefix: ref, Matches: matches}
	}
}

// Latest returns the most recently updated session
func (s *Store) Latest() (*Session, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: no saved sessions", ErrNotFound)
	}
	return &sessions[0], nil
}
