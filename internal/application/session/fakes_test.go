package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/streamview/auth-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type auditLog struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *auditLog) record(action string, fields map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *auditLog) has(action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.action == action {
			return true
		}
	}
	return false
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	setErr        error
	rotateErr     error
	clearErr      error

	// record calls
	getByIDCalls   int
	getByEmailCalls int
	setCalls       int
	rotateCalls    int
	clearCalls     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) add(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) stored(id string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	return u, ok
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getByEmailCalls++
	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getByIDCalls++
	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.RefreshToken = token
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rotateCalls++
	if f.rotateErr != nil {
		return f.rotateErr
	}
	u, ok := f.byID[userID]
	if !ok || u.RefreshToken != oldToken {
		return domain.ErrRefreshTokenInvalid()
	}
	u.RefreshToken = newToken
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	u, ok := f.byID[userID]
	if !ok || u.RefreshToken != token {
		return nil
	}
	u.RefreshToken = ""
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeSigner hands out sequenced tokens and remembers the claims behind
// each one, so verification works without real crypto.
type fakeSigner struct {
	mu  sync.Mutex
	seq int

	access  map[string]TokenClaims
	refresh map[string]TokenClaims

	signAccessErr  error
	signRefreshErr error

	verifyAccessFn  func(token string) (TokenClaims, error)
	verifyRefreshFn func(token string) (TokenClaims, error)
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{
		access:  map[string]TokenClaims{},
		refresh: map[string]TokenClaims{},
	}
}

func (s *fakeSigner) SignAccessToken(userID, email, role string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signAccessErr != nil {
		return "", s.signAccessErr
	}
	s.seq++
	tok := fmt.Sprintf("at%d(%s)", s.seq, userID)
	s.access[tok] = TokenClaims{UserID: userID, Email: email, Role: role, Exp: time.Now().Add(ttl)}
	return tok, nil
}

func (s *fakeSigner) SignRefreshToken(userID, email, role string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signRefreshErr != nil {
		return "", s.signRefreshErr
	}
	s.seq++
	tok := fmt.Sprintf("rt%d(%s)", s.seq, userID)
	s.refresh[tok] = TokenClaims{UserID: userID, Email: email, Role: role, Exp: time.Now().Add(ttl)}
	return tok, nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	if s.verifyAccessFn != nil {
		return s.verifyAccessFn(token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.access[token]; ok {
		return c, nil
	}
	return TokenClaims{}, domain.ErrTokenInvalid()
}

func (s *fakeSigner) VerifyRefreshToken(token string) (TokenClaims, error) {
	if s.verifyRefreshFn != nil {
		return s.verifyRefreshFn(token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.refresh[token]; ok {
		return c, nil
	}
	return TokenClaims{}, domain.ErrTokenInvalid()
}

type fakePublisher struct {
	mu     sync.Mutex
	events []UserRegisteredEvent
	pubErr error
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pubErr != nil {
		return p.pubErr
	}
	p.events = append(p.events, evt)
	return nil
}

/*
Shared service constructor
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeSigner, *fakePublisher, *auditLog) {
	t.Helper()

	users := newFakeUserRepo()
	hasher := &fakeHasher{}
	signer := newFakeSigner()
	pub := &fakePublisher{}
	audit := &auditLog{}

	svc := NewService(users, hasher, signer, pub, Config{}).WithAudit(audit.record)
	return svc, users, hasher, signer, pub, audit
}
