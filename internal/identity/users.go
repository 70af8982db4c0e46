package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const usersKey = "gymtracker||users"

// Account is a stored user. The email is the lookup key.
type Account struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserStore interface {
	// Create stores the account, ErrEmailInUse if the email is taken.
	Create(ctx context.Context, account Account) error
	// Get returns ErrUserNotFound for unknown emails.
	Get(ctx context.Context, email string) (Account, error)
}

// RedisUserStore keeps all accounts in one hash, email -> account json.
type RedisUserStore struct {
	redisClient *redis.Client
}

func NewRedisUserStore(redisClient *redis.Client) *RedisUserStore {
	return &RedisUserStore{
		redisClient: redisClient,
	}
}

func (s *RedisUserStore) Create(ctx context.Context, account Account) error {
	accountJson, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}

	created, err := s.redisClient.HSetNX(ctx, usersKey, account.Email, accountJson).Result()
	if err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	if !created {
		return ErrEmailInUse
	}
	return nil
}

func (s *RedisUserStore) Get(ctx context.Context, email string) (Account, error) {
	accountJson, err := s.redisClient.HGet(ctx, usersKey, email).Result()
	if errors.Is(err, redis.Nil) {
		return Account{}, ErrUserNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(accountJson), &account); err != nil {
		return Account{}, fmt.Errorf("unmarshal account: %w", err)
	}
	return account, nil
}

// MemoryUserStore is used with the in-memory backend.
type MemoryUserStore struct {
	mutex    sync.Mutex
	accounts map[string]Account
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		accounts: make(map[string]Account),
	}
}

func (s *MemoryUserStore) Create(_ context.Context, account Account) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.accounts[account.Email]; ok {
		return ErrEmailInUse
	}
	s.accounts[account.Email] = account
	return nil
}

func (s *MemoryUserStore) Get(_ context.Context, email string) (Account, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	account, ok := s.accounts[email]
	if !ok {
		return Account{}, ErrUserNotFound
	}
	return account, nil
}
