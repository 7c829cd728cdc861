package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"cinecity-client/internal/model"

	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"
)

// Persisted keys
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// CookieName is the gateway cookie holding the browser session
const CookieName = "cinecity_session"

const cookieMaxAge = 86400 * 7

// Store persists the three session keys
type Store interface {
	Load() (model.Credential, error)
	Save(cred model.Credential) error
	Clear() error
}

// ================== 内存 ==================

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu   sync.Mutex
	cred model.Credential
}

// NewMemoryStore creates a store pre-filled with cred
func NewMemoryStore(cred model.Credential) *MemoryStore {
	return &MemoryStore{cred: cred}
}

func (s *MemoryStore) Load() (model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, nil
}

func (s *MemoryStore) Save(cred model.Credential) error {
	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.cred = model.Credential{}
	s.mu.Unlock()
	return nil
}

// ================== 文件 ==================

type fileRecord struct {
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *model.User `json:"user,omitempty"`
}

// FileStore keeps the session in a JSON file readable only by the owner
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (model.Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Credential{}, nil
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Credential{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return model.Credential{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		User:         rec.User,
	}, nil
}

func (s *FileStore) Save(cred model.Credential) error {
	data, err := json.Marshal(fileRecord{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		User:         cred.User,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ================== Cookie ==================

// CookieStore keeps the session in the gateway's encrypted cookie.
// It is bound to one request/response pair.
type CookieStore struct {
	codec sessions.Store
	r     *http.Request
	w     http.ResponseWriter
}

// NewCookieCodec builds the gorilla cookie store shared by all requests
func NewCookieCodec(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewCookieStore binds codec to the current request
func NewCookieStore(codec sessions.Store, r *http.Request, w http.ResponseWriter) *CookieStore {
	return &CookieStore{codec: codec, r: r, w: w}
}

func (s *CookieStore) session() (*sessions.Session, error) {
	// 解码失败时 gorilla 仍返回新 session
	sess, err := s.codec.Get(s.r, CookieName)
	if sess == nil {
		return nil, err
	}
	return sess, nil
}

func (s *CookieStore) Load() (model.Credential, error) {
	sess, err := s.session()
	if err != nil {
		return model.Credential{}, err
	}

	var cred model.Credential
	cred.AccessToken, _ = sess.Values[KeyAccessToken].(string)
	cred.RefreshToken, _ = sess.Values[KeyRefreshToken].(string)
	if raw, ok := sess.Values[KeyUser].(string); ok && raw != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			cred.User = &u
		}
	}
	return cred, nil
}

func (s *CookieStore) Save(cred model.Credential) error {
	sess, err := s.session()
	if err != nil {
		return err
	}

	if sess.Options != nil && sess.Options.MaxAge < 0 {
		sess.Options.MaxAge = cookieMaxAge
	}
	sess.Values[KeyAccessToken] = cred.AccessToken
	sess.Values[KeyRefreshToken] = cred.RefreshToken
	delete(sess.Values, KeyUser)
	if cred.User != nil {
		raw, err := json.Marshal(cred.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		sess.Values[KeyUser] = string(raw)
	}
	return sess.Save(s.r, s.w)
}

func (s *CookieStore) Clear() error {
	sess, err := s.session()
	if err != nil {
		return err
	}

	delete(sess.Values, KeyAccessToken)
	delete(sess.Values, KeyRefreshToken)
	delete(sess.Values, KeyUser)
	if sess.Options != nil {
		sess.Options.MaxAge = -1
	}
	return sess.Save(s.r, s.w)
}
