package users

import (
	"context"
	"sort"
	"strings"
	"sync"
)

var _ usersRepo = (*repoMock)(nil)

type repoMock struct {
	// user ID to account
	Accounts map[string]Account
	mutex    sync.Mutex
}

func NewRepoMock() *repoMock {
	return &repoMock{
		Accounts: map[string]Account{},
	}
}

func (r *repoMock) Create(_ context.Context, account Account) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, a := range r.Accounts {
		if a.Username == account.Username {
			return ErrUserExists
		}
	}
	r.Accounts[account.ID] = account
	return nil
}

func (r *repoMock) Get(_ context.Context, id string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.Accounts[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := account.User
	return &user, nil
}

func (r *repoMock) GetByUsername(_ context.Context, username string) (*Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, a := range r.Accounts {
		if a.Username == username {
			account := a
			return &account, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) Search(_ context.Context, query string) ([]User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	found := make([]User, 0)
	for _, a := range r.Accounts {
		if strings.Contains(strings.ToLower(a.Username), strings.ToLower(query)) {
			found = append(found, a.User)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].Username < found[j].Username
	})
	return found, nil
}

func (r *repoMock) Leaderboard(_ context.Context, limit int) ([]User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	leaderboard := make([]User, 0)
	for _, a := range r.Accounts {
		leaderboard = append(leaderboard, a.User)
	}
	sort.Slice(leaderboard, func(i, j int) bool {
		return leaderboard[i].TotalExercises > leaderboard[j].TotalExercises
	})
	if len(leaderboard) > limit {
		leaderboard = leaderboard[:limit]
	}
	return leaderboard, nil
}
