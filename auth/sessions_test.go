package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeFinder struct {
	users map[string]models.User
	err   error
}

func (f *fakeFinder) FindByID(_ context.Context, id string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return u, nil
}

type harness struct {
	mr       *miniredis.Miniredis
	issuer   *Issuer
	sessions *SessionManager
	finder   *fakeFinder
	user     models.User
}

func newHarness(t *testing.T, mutate ...func(*config.Tokens)) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	issuer := newTestIssuer(t, mutate...)
	user := models.User{ID: bson.NewObjectID(), Name: "Ada", Email: "ada@example.com", Role: models.RoleUser}
	finder := &fakeFinder{users: map[string]models.User{user.ID.Hex(): user}}
	cache := session.NewRedisCache(rdb, "", 7*24*time.Hour)

	return &harness{
		mr:       mr,
		issuer:   issuer,
		sessions: NewSessionManager(issuer, cache, finder),
		finder:   finder,
		user:     user,
	}
}

func TestRefresh_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)

	h.mr.FastForward(6 * 24 * time.Hour)

	id, newPair, err := h.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, h.user.ID, id.User.ID)
	assert.Equal(t, newPair.AccessToken, id.AccessToken)

	sub, err := h.issuer.ParseAccess(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, h.user.ID.Hex(), sub)

	sub, err = h.issuer.ParseRefresh(newPair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, h.user.ID.Hex(), sub)

	assert.Equal(t, 7*24*time.Hour, h.mr.TTL(h.user.ID.Hex()), "snapshot ttl re-armed")
}

func TestRefresh_OldTokenStillValid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_Missing(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.sessions.Refresh(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.MissingCredential))
}

func TestRefresh_ExpiredToken(t *testing.T) {
	h := newHarness(t, func(c *config.Tokens) { c.RefreshTTL = -time.Second })
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.InvalidCredential))
}

func TestRefresh_SnapshotGone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)
	h.mr.Del(h.user.ID.Hex())

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.SessionExpired))
}

func TestRefresh_SnapshotExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)
	h.mr.FastForward(7*24*time.Hour + time.Second)

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.SessionExpired))
}

func TestRefresh_AfterRevoke(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)
	require.NoError(t, h.sessions.Revoke(ctx, h.user.ID.Hex()))

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.SessionExpired))
}

func TestRefresh_CacheDown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)
	h.mr.Close()

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}

func TestRefresh_Concurrent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = h.sessions.Refresh(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

// logoutDuringRefresh deletes the snapshot right after it is read, as a
// concurrent logout would.
type logoutDuringRefresh struct {
	*session.RedisCache
}

func (c logoutDuringRefresh) Get(ctx context.Context, userID string) (models.User, error) {
	user, err := c.RedisCache.Get(ctx, userID)
	if err == nil {
		err = c.RedisCache.Delete(ctx, userID)
	}
	return user, err
}

func TestRefresh_RevokedMidway(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: h.mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := logoutDuringRefresh{session.NewRedisCache(rdb, "", 7*24*time.Hour)}
	sessions := NewSessionManager(h.issuer, cache, h.finder)

	pair, err := sessions.Establish(ctx, h.user)
	require.NoError(t, err)

	_, _, err = sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.SessionExpired))
	assert.False(t, h.mr.Exists(h.user.ID.Hex()), "revoked session must stay gone")
}

func TestRefresh_CanceledCaller(t *testing.T) {
	h := newHarness(t)

	pair, err := h.sessions.Establish(context.Background(), h.user)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, newPair, err := h.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
}

func TestSync_DoesNotResurrectSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)
	require.NoError(t, h.sessions.Revoke(ctx, h.user.ID.Hex()))

	h.user.Name = "Ada Lovelace"
	require.NoError(t, h.sessions.Sync(ctx, h.user))

	_, _, err = h.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.SessionExpired))
}

func TestSync_UpdatesLiveSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)

	h.user.Courses = []models.CourseRef{{CourseID: "course-1"}}
	require.NoError(t, h.sessions.Sync(ctx, h.user))

	id, _, err := h.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, id.User.HasCourse("course-1"))
}

func TestResolve_FromCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.sessions.Establish(ctx, h.user)
	require.NoError(t, err)
	h.finder.err = errors.New("store must not be hit")

	id, err := h.sessions.Resolve(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, h.user.Email, id.User.Email)
}

func TestResolve_FallsBackToStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pair, err := h.issuer.IssuePair(h.user.ID.Hex())
	require.NoError(t, err)

	id, err := h.sessions.Resolve(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, h.user.ID, id.User.ID)
}

func TestResolve_Failures(t *testing.T) {
	h := newHarness(t, func(c *config.Tokens) { c.AccessTTL = -time.Second })
	ctx := context.Background()

	expired, err := h.issuer.IssuePair(h.user.ID.Hex())
	require.NoError(t, err)

	cases := map[string]string{
		"empty":     "",
		"malformed": "abc",
		"expired":   expired.AccessToken,
		"refresh":   expired.RefreshToken,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.sessions.Resolve(ctx, token)
			assert.True(t, apperr.Is(err, apperr.Unauthenticated))
		})
	}
}

func TestResolve_UnknownUser(t *testing.T) {
	h := newHarness(t)

	pair, err := h.issuer.IssuePair(bson.NewObjectID().Hex())
	require.NoError(t, err)

	_, err = h.sessions.Resolve(context.Background(), pair.AccessToken)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestResolve_StoreDown(t *testing.T) {
	h := newHarness(t)
	h.finder.err = errors.New("mongo down")

	pair, err := h.issuer.IssuePair(h.user.ID.Hex())
	require.NoError(t, err)

	_, err = h.sessions.Resolve(context.Background(), pair.AccessToken)
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{AccessToken: "tok"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok", id.AccessToken)
}
