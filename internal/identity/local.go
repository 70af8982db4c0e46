package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Local is a Provider backed by a UserStore, passwords are bcrypt hashed.
// Signing up signs the new user in.
type Local struct {
	users    UserStore
	hashCost int
	newID    func() string
	now      func() time.Time

	mutex          sync.Mutex
	current        *Identity
	seq            uint64
	listeners      map[int]func(*Identity)
	nextListenerID int

	// held while listeners run, transitions are delivered one at a time
	deliverMutex sync.Mutex
}

var _ Provider = (*Local)(nil)

func NewLocal(users UserStore, hashCost int) *Local {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &Local{
		users:     users,
		hashCost:  hashCost,
		newID:     uuid.NewString,
		now:       time.Now,
		listeners: make(map[int]func(*Identity)),
	}
}

func (l *Local) SignUp(ctx context.Context, email, password string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if len(password) < MinPasswordLength {
		return Identity{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.hashCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		UserID:       l.newID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    l.now().UTC(),
	}
	if err := l.users.Create(ctx, account); err != nil {
		return Identity{}, err
	}

	log.Infof("identity: new account [%s]", account.UserID)
	id := Identity{UserID: account.UserID, Email: account.Email}
	l.setCurrent(&id)
	return id, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return ErrInvalidCredential
	}

	account, err := l.users.Get(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidCredential
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredential
	}

	l.setCurrent(&Identity{UserID: account.UserID, Email: account.Email})
	return nil
}

func (l *Local) SignOut(_ context.Context) error {
	l.setCurrent(nil)
	return nil
}

// Current returns the signed in identity, nil when signed out.
func (l *Local) Current() *Identity {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.current == nil {
		return nil
	}
	c := *l.current
	return &c
}

func (l *Local) OnIdentityChange(listener func(*Identity)) (cancel func()) {
	l.mutex.Lock()
	id := l.nextListenerID
	l.nextListenerID++
	l.listeners[id] = listener
	l.mutex.Unlock()

	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		delete(l.listeners, id)
	}
}

// setCurrent fires the listeners, outside the state lock, only if the signed
// in user actually changed. Listeners must not sign in or out themselves.
// A transition that got overtaken by a newer one before its delivery started
// is dropped, so the last delivered identity always matches Current.
func (l *Local) setCurrent(id *Identity) {
	l.mutex.Lock()
	if sameUser(l.current, id) {
		l.mutex.Unlock()
		return
	}
	l.current = id
	l.seq++
	seq := l.seq
	l.mutex.Unlock()

	l.deliverMutex.Lock()
	defer l.deliverMutex.Unlock()

	l.mutex.Lock()
	if seq != l.seq {
		l.mutex.Unlock()
		log.Debugf("identity: transition %d overtaken, not delivered", seq)
		return
	}
	listeners := make([]func(*Identity), 0, len(l.listeners))
	for _, listener := range l.listeners {
		listeners = append(listeners, listener)
	}
	l.mutex.Unlock()

	for _, listener := range listeners {
		if id == nil {
			listener(nil)
			continue
		}
		c := *id
		listener(&c)
	}
}

func sameUser(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UserID == b.UserID
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
