package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type changes struct {
	mutex sync.Mutex
	seen  []*Identity
}

func (c *changes) listener(id *Identity) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.seen = append(c.seen, id)
}

func (c *changes) all() []*Identity {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]*Identity(nil), c.seen...)
}

func newTestLocal() *Local {
	return NewLocal(NewMemoryUserStore(), bcrypt.MinCost)
}

func TestLocal_SignUpSignsIn(t *testing.T) {
	provider := newTestLocal()
	seen := &changes{}
	provider.OnIdentityChange(seen.listener)

	email := gofakeit.Email()
	id, err := provider.SignUp(context.Background(), "  "+strings.ToUpper(email)+" ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID)
	assert.Equal(t, strings.ToLower(email), id.Email)

	require.Len(t, seen.all(), 1)
	assert.Equal(t, id, *seen.all()[0])
	assert.Equal(t, &id, provider.Current())
}

func TestLocal_SignUpErrors(t *testing.T) {
	provider := newTestLocal()
	ctx := context.Background()
	email := gofakeit.Email()

	_, err := provider.SignUp(ctx, email, "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = provider.SignUp(ctx, "not an email", "123456")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = provider.SignUp(ctx, email, "123456")
	require.NoError(t, err)
	_, err = provider.SignUp(ctx, email, "654321")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestLocal_SignInAndOut(t *testing.T) {
	provider := newTestLocal()
	ctx := context.Background()
	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 10)

	created, err := provider.SignUp(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))
	assert.Nil(t, provider.Current())

	seen := &changes{}
	cancel := provider.OnIdentityChange(seen.listener)

	assert.ErrorIs(t, provider.SignIn(ctx, email, "wrong-password"), ErrInvalidCredential)
	assert.ErrorIs(t, provider.SignIn(ctx, gofakeit.Email(), password), ErrInvalidCredential)
	assert.ErrorIs(t, provider.SignIn(ctx, "bad", password), ErrInvalidCredential)
	assert.Empty(t, seen.all())

	require.NoError(t, provider.SignIn(ctx, email, password))
	// same user again is not a transition
	require.NoError(t, provider.SignIn(ctx, email, password))
	require.NoError(t, provider.SignOut(ctx))
	require.NoError(t, provider.SignOut(ctx))

	all := seen.all()
	require.Len(t, all, 2)
	assert.Equal(t, created.UserID, all[0].UserID)
	assert.Nil(t, all[1])

	cancel()
	require.NoError(t, provider.SignIn(ctx, email, password))
	assert.Len(t, seen.all(), 2)
}

// blockingChanges holds the first delivery until released.
type blockingChanges struct {
	changes
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingChanges() *blockingChanges {
	return &blockingChanges{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingChanges) listener(id *Identity) {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	b.changes.listener(id)
}

func (b *blockingChanges) last() *Identity {
	all := b.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func signedUpAndOut(t *testing.T, provider *Local, password string) Identity {
	t.Helper()
	ctx := context.Background()
	id, err := provider.SignUp(ctx, gofakeit.Email(), password)
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))
	return id
}

func TestLocal_SignOutDuringSignInDelivery(t *testing.T) {
	provider := newTestLocal()
	ctx := context.Background()
	a := signedUpAndOut(t, provider, "secret1")

	seen := newBlockingChanges()
	provider.OnIdentityChange(seen.listener)

	signedIn := make(chan error, 1)
	go func() { signedIn <- provider.SignIn(ctx, a.Email, "secret1") }()
	<-seen.entered

	signedOut := make(chan error, 1)
	go func() { signedOut <- provider.SignOut(ctx) }()
	require.Eventually(t, func() bool {
		return provider.Current() == nil
	}, time.Second, time.Millisecond)

	close(seen.release)
	require.NoError(t, <-signedIn)
	require.NoError(t, <-signedOut)

	all := seen.all()
	require.Len(t, all, 2)
	assert.Equal(t, a.UserID, all[0].UserID)
	assert.Nil(t, all[1])
	assert.Nil(t, provider.Current())
}

func TestLocal_OvertakenTransitionNotDelivered(t *testing.T) {
	provider := newTestLocal()
	ctx := context.Background()
	a := signedUpAndOut(t, provider, "secret1")
	b := signedUpAndOut(t, provider, "secret2")

	seen := newBlockingChanges()
	provider.OnIdentityChange(seen.listener)

	signedInA := make(chan error, 1)
	go func() { signedInA <- provider.SignIn(ctx, a.Email, "secret1") }()
	<-seen.entered

	signedOut := make(chan error, 1)
	go func() { signedOut <- provider.SignOut(ctx) }()
	require.Eventually(t, func() bool {
		return provider.Current() == nil
	}, time.Second, time.Millisecond)

	signedInB := make(chan error, 1)
	go func() { signedInB <- provider.SignIn(ctx, b.Email, "secret2") }()
	require.Eventually(t, func() bool {
		current := provider.Current()
		return current != nil && current.UserID == b.UserID
	}, time.Second, time.Millisecond)

	close(seen.release)
	require.NoError(t, <-signedInA)
	require.NoError(t, <-signedOut)
	require.NoError(t, <-signedInB)

	// the sign out was overtaken by B before anyone saw it
	all := seen.all()
	require.Len(t, all, 2)
	assert.Equal(t, a.UserID, all[0].UserID)
	assert.Equal(t, b.UserID, seen.last().UserID)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Invalid email or password.", Message(ErrInvalidCredential))
	assert.Equal(t, "This email is already in use.", Message(ErrEmailInUse))
	assert.Equal(t, "Password must have at least 6 characters.", Message(ErrWeakPassword))
	assert.Equal(t, "Something went wrong. Check your connection and try again.", Message(errors.New("timeout")))
}
