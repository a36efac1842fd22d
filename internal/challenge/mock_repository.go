package challenge

import (
	"context"
	"sort"
	"sync"
	"time"

	"challengebot/internal/common"
)

// MockRepository is an in-memory Repository. A single mutex serializes
// every operation, which gives the same per-row atomicity as the database.
type MockRepository struct {
	mu         sync.Mutex
	users      map[int64]*User
	challenges []*Challenge
	nextID     uint

	// Error injection for tests.
	GetError    error
	UpdateError error
	ResetErrors []error
	ListError   error
}

// NewMockRepository creates a new in-memory repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:  make(map[int64]*User),
		nextID: 1,
	}
}

func copyUser(u *User) *User {
	c := *u
	c.ChallengeStartDate = copyTime(u.ChallengeStartDate)
	c.LastSubmissionDate = copyTime(u.LastSubmissionDate)
	c.LastReminderTime = copyTime(u.LastReminderTime)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyChallenge(c *Challenge) *Challenge {
	v := *c
	return &v
}

func (m *MockRepository) CreateUserIfAbsent(ctx context.Context, user *User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.ID]; exists {
		return false, nil
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = copyUser(user)
	return true, nil
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, userNotFound(id)
	}
	return copyUser(u), nil
}

func (m *MockRepository) UpdateUser(ctx context.Context, id int64, fn func(*User) error) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, userNotFound(id)
	}

	working := copyUser(u)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now()
	m.users[id] = copyUser(working)
	return working, nil
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]*User, error) {
	return m.list(func(*User) bool { return true })
}

func (m *MockRepository) ListActiveUsers(ctx context.Context) ([]*User, error) {
	return m.list(func(u *User) bool { return u.Status == common.UserStatusActive })
}

func (m *MockRepository) list(keep func(*User) bool) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListError != nil {
		return nil, m.ListError
	}
	users := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		if keep(u) {
			users = append(users, copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockRepository) ResetUsersForChallenge(ctx context.Context, start time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.ResetErrors) > 0 {
		err := m.ResetErrors[0]
		m.ResetErrors = m.ResetErrors[1:]
		return 0, err
	}
	for _, u := range m.users {
		u.ChallengeStartDate = copyTime(&start)
		u.CurrentDay = 1
		u.ReminderCount = 0
		u.LastSubmissionDate = nil
		u.LastReminderTime = nil
	}
	return int64(len(m.users)), nil
}

func (m *MockRepository) ClearSubmissions(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, u := range m.users {
		if u.LastSubmissionDate != nil && common.Date(*u.LastSubmissionDate).Before(common.Date(before)) {
			u.LastSubmissionDate = nil
			n++
		}
	}
	return n, nil
}

func (m *MockRepository) GetActiveChallenge(ctx context.Context) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}
	if c := m.active(); c != nil {
		return copyChallenge(c), nil
	}
	return nil, nil
}

func (m *MockRepository) active() *Challenge {
	for i := len(m.challenges) - 1; i >= 0; i-- {
		if m.challenges[i].IsActive {
			return m.challenges[i]
		}
	}
	return nil
}

func (m *MockRepository) AnyChallengeExists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.challenges) > 0, nil
}

func (m *MockRepository) ReplaceActiveChallenge(ctx context.Context, c *Challenge) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deactivated int64
	for _, existing := range m.challenges {
		if existing.IsActive {
			existing.IsActive = false
			deactivated++
		}
	}

	c.ID = m.nextID
	m.nextID++
	c.IsActive = true
	c.CreatedAt = time.Now()
	m.challenges = append(m.challenges, copyChallenge(c))
	return deactivated, nil
}

func (m *MockRepository) UpdateActiveChallengeTask(ctx context.Context, task string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.active()
	if c == nil {
		return nil, ErrNoActiveChallenge
	}
	c.TaskDescription = task
	return copyChallenge(c), nil
}

func (m *MockRepository) IncrementChallengeDay(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.active()
	if c == nil {
		return 0, nil
	}
	c.CurrentDay++
	return 1, nil
}

// Challenges returns every stored challenge generation, oldest first.
func (m *MockRepository) Challenges() []*Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Challenge, len(m.challenges))
	for i, c := range m.challenges {
		out[i] = copyChallenge(c)
	}
	return out
}

// PutUser stores u as-is, replacing any existing row.
func (m *MockRepository) PutUser(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = copyUser(u)
}
