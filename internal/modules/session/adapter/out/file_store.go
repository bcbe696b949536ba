package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"airpulse/internal/modules/session/domain"
	sessionout "airpulse/internal/modules/session/port/out"
	apperrors "airpulse/internal/platform/errors"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// FileStore keeps the session as a flat key-value JSON object. The user
// value is itself a JSON string.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) sessionout.Store {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	record, err := encodeRecord(session)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create session temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (domain.Session, error) {
	s.mu.Lock()
	payload, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Session{}, apperrors.ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}
	record := map[string]string{}
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return decodeRecord(record[keyToken], record[keyUser])
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func encodeRecord(session domain.Session) (map[string]string, error) {
	record := map[string]string{keyToken: session.Token}
	if session.User != nil {
		raw, err := json.Marshal(session.User)
		if err != nil {
			return nil, fmt.Errorf("marshal user: %w", err)
		}
		record[keyUser] = string(raw)
	}
	return record, nil
}

// decodeRecord tolerates an unreadable user value: the token alone is a
// usable session.
func decodeRecord(token, user string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, apperrors.ErrNoSession
	}
	session := domain.Session{Token: token}
	if user != "" {
		u := domain.User{}
		if err := json.Unmarshal([]byte(user), &u); err == nil {
			session.User = &u
		}
	}
	return session, nil
}
