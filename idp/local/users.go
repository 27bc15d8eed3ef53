package local

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
	"github.com/jrsteele09/skillup-auth/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id           string
	email        string
	passwordHash string
	fullName     string
	createdAt    time.Time
}

func (u *user) toIdentity() *idp.User {
	return &idp.User{
		ID:        u.id,
		Email:     u.email,
		FullName:  utils.NonEmptyPtr(u.fullName),
		CreatedAt: u.createdAt,
	}
}

type userRepo struct {
	users    map[string]*user
	emailIDs map[string]string // email to user id
	lock     sync.RWMutex
}

func newUserRepo() *userRepo {
	return &userRepo{
		users:    make(map[string]*user),
		emailIDs: make(map[string]string),
	}
}

func (r *userRepo) insert(u *user) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.emailIDs[u.email]; ok {
		return errors.ErrUserAlreadyExists
	}
	if u.id == "" {
		u.id = uuid.New().String()
	}
	r.users[u.id] = u
	r.emailIDs[u.email] = u.id
	return nil
}

func (r *userRepo) getByEmail(email string) (*user, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIDs[email]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *userRepo) getByID(id string) (*user, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
