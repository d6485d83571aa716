package repomanager

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/labscribe/internal/common"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/records"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/users"
)

type memoryState struct {
	users    map[string]models.User
	emails   map[string]string
	tokens   map[string]models.RefreshToken
	records  []models.LabRecord
	profiles map[string]models.Profile
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:    map[string]models.User{},
		emails:   map[string]string{},
		tokens:   map[string]models.RefreshToken{},
		profiles: map[string]models.Profile{},
	}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		users:    maps.Clone(s.users),
		emails:   maps.Clone(s.emails),
		tokens:   maps.Clone(s.tokens),
		records:  slices.Clone(s.records),
		profiles: maps.Clone(s.profiles),
	}
}

// MemoryRepositoryManager keeps everything in process memory. A transaction
// works on a clone of the state that replaces the live state on commit, so
// a failed fn leaves nothing behind. Transactions are serialized.
type MemoryRepositoryManager struct {
	mu    sync.Mutex
	state *memoryState
	now   func() time.Time
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{state: newMemoryState(), now: time.Now}
}

// memoryRepositories runs each repository call through view, which decides
// whether the call locks the live state or touches a transaction's clone.
type memoryRepositories struct {
	view func(func(*memoryState) error) error
	now  func() time.Time
}

func (m *MemoryRepositoryManager) live() memoryRepositories {
	return memoryRepositories{
		view: func(fn func(*memoryState) error) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			return fn(m.state)
		},
		now: m.now,
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository                 { return m.live().Users() }
func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.live().RefreshTokens() }
func (m *MemoryRepositoryManager) Records() records.Repository             { return m.live().Records() }
func (m *MemoryRepositoryManager) Profiles() profiles.Repository           { return m.live().Profiles() }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *MemoryRepositoryManager) Close() error                        { return nil }

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	tx := memoryRepositories{
		view: func(f func(*memoryState) error) error { return f(work) },
		now:  m.now,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (r memoryRepositories) Users() users.Repository                 { return memoryUsers(r) }
func (r memoryRepositories) RefreshTokens() refreshtokens.Repository { return memoryTokens(r) }
func (r memoryRepositories) Records() records.Repository             { return memoryRecords(r) }
func (r memoryRepositories) Profiles() profiles.Repository           { return memoryProfiles(r) }

type memoryUsers memoryRepositories

func (r memoryUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	err := r.view(func(s *memoryState) error {
		key := strings.ToLower(user.Email)
		if _, taken := s.emails[key]; taken {
			return common.ErrAlreadyExists
		}
		user.ID = uuid.NewString()
		user.CreatedAt = r.now()
		s.users[user.ID] = *user
		s.emails[key] = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.view(func(s *memoryState) error {
		id, ok := s.emails[strings.ToLower(email)]
		if !ok {
			return common.ErrNotFound
		}
		u := s.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.view(func(s *memoryState) error {
		u, ok := s.users[id]
		if !ok {
			return common.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

type memoryTokens memoryRepositories

func (r memoryTokens) Create(_ context.Context, userID, tokenHash string, expires time.Time) error {
	return r.view(func(s *memoryState) error {
		if _, ok := s.users[userID]; !ok {
			return common.ErrNotFound
		}
		s.tokens[tokenHash] = models.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    userID,
			TokenHash: tokenHash,
			Expires:   expires,
			CreatedAt: r.now(),
		}
		return nil
	})
}

func (r memoryTokens) Find(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	var out *models.RefreshToken
	err := r.view(func(s *memoryState) error {
		t, ok := s.tokens[tokenHash]
		if !ok {
			return common.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r memoryTokens) Consume(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	var out *models.RefreshToken
	err := r.view(func(s *memoryState) error {
		t, ok := s.tokens[tokenHash]
		if !ok {
			return common.ErrNotFound
		}
		delete(s.tokens, tokenHash)
		out = &t
		return nil
	})
	return out, err
}

func (r memoryTokens) Delete(_ context.Context, tokenHash string) error {
	return r.view(func(s *memoryState) error {
		delete(s.tokens, tokenHash)
		return nil
	})
}

type memoryRecords memoryRepositories

func (r memoryRecords) List(_ context.Context, userID string) ([]models.LabRecord, error) {
	out := []models.LabRecord{}
	err := r.view(func(s *memoryState) error {
		for i := len(s.records) - 1; i >= 0; i-- {
			if s.records[i].UserID == userID {
				out = append(out, s.records[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b models.LabRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r memoryRecords) Create(_ context.Context, rec *models.LabRecord) (*models.LabRecord, error) {
	err := r.view(func(s *memoryState) error {
		if _, ok := s.users[rec.UserID]; !ok {
			return common.ErrNotFound
		}
		if slices.ContainsFunc(s.records, func(x models.LabRecord) bool { return x.ID == rec.ID }) {
			return common.ErrAlreadyExists
		}
		rec.CreatedAt = r.now()
		s.records = append(s.records, *rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r memoryRecords) Delete(_ context.Context, userID, id string) error {
	return r.view(func(s *memoryState) error {
		i := slices.IndexFunc(s.records, func(x models.LabRecord) bool {
			return x.ID == id && x.UserID == userID
		})
		if i < 0 {
			return common.ErrNotFound
		}
		s.records = slices.Delete(s.records, i, i+1)
		return nil
	})
}

type memoryProfiles memoryRepositories

func (r memoryProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	var out *models.Profile
	err := r.view(func(s *memoryState) error {
		p, ok := s.profiles[userID]
		if !ok {
			return common.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memoryProfiles) Upsert(_ context.Context, p *models.Profile) error {
	return r.view(func(s *memoryState) error {
		if _, ok := s.users[p.UserID]; !ok {
			return common.ErrNotFound
		}
		stored := *p
		stored.UpdatedAt = r.now()
		s.profiles[p.UserID] = stored
		return nil
	})
}
