package fakeuserrepo

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/go-college-portal/internal/utils"
	"github.com/jrsteele09/go-college-portal/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[int64]*users.User
	emailIds map[string]int64 // lower-cased email to user id
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[int64]*users.User),
		emailIds: make(map[string]int64),
		nextID:   1,
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == 0 {
		user.ID = ur.nextID
	}
	if user.ID >= ur.nextID {
		ur.nextID = user.ID + 1
	}
	ur.users[user.ID] = user
	ur.emailIds[strings.ToLower(user.Email)] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := strings.ToLower(email)
	userID, ok := ur.emailIds[key]
	if !ok {
		return errors.New("not found")
	}
	delete(ur.emailIds, key)
	delete(ur.users, userID)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, errors.New("not found")
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

// List filters by role when role is non-empty and returns the page plus the total match count
func (ur *FakeUserRepo) List(role users.RoleType, offset, limit int) ([]*users.User, int, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0)
	for _, v := range ur.users {
		if role != "" && !v.HasRole(role) {
			continue
		}
		userList = append(userList, v)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	total := len(userList)
	if offset >= total {
		return []*users.User{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return userList[offset:end], total, nil
}

func (ur *FakeUserRepo) SetActive(email string, active bool) error {
	user, err := ur.GetByEmail(email)
	if err != nil {
		return err
	}
	ur.lock.Lock()
	user.IsActive = utils.Ptr(active)
	ur.lock.Unlock()
	return nil
}

func (ur *FakeUserRepo) SetVerified(email string, verified bool) error {
	user, err := ur.GetByEmail(email)
	if err != nil {
		return err
	}
	ur.lock.Lock()
	user.IsVerified = utils.Ptr(verified)
	ur.lock.Unlock()
	return nil
}
