package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/mail"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/session"
	"github.com/princinho/elearnbackend/testutil"
	"github.com/princinho/elearnbackend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fixture struct {
	mr       *miniredis.Miniredis
	issuer   *auth.Issuer
	sessions *auth.SessionManager
	users    *testutil.UserStore
	mailer   *testutil.Mailer
	images   *testutil.Images
	social   *fakeSocial
	svc      *UserService
}

type fakeSocial struct {
	profile auth.SocialProfile
	err     error
}

func (f *fakeSocial) Verify(context.Context, string) (auth.SocialProfile, error) {
	return f.profile, f.err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, rdb := testutil.NewRedis(t)

	issuer, err := auth.NewIssuer(config.Tokens{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationSecret: "activation-secret",
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       72 * time.Hour,
		ActivationTTL:    5 * time.Minute,
		SessionTTL:       7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	f := &fixture{
		mr:     mr,
		issuer: issuer,
		users:  testutil.NewUserStore(),
		mailer: &testutil.Mailer{},
		images: &testutil.Images{},
		social: &fakeSocial{},
	}
	f.sessions = auth.NewSessionManager(issuer, session.NewRedisCache(rdb, "", 7*24*time.Hour), f.users)
	f.svc = NewUserService(f.users, issuer, f.sessions, f.mailer, f.images, f.social, logging.Nop())
	return f
}

// register runs registration and activation and returns the stored user.
func (f *fixture) register(t *testing.T, name, email, password string) models.User {
	t.Helper()
	ctx := context.Background()
	token, err := f.svc.Register(ctx, dto.RegistrationDTO{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	user, err := f.svc.Activate(ctx, dto.ActivationDTO{ActivationToken: token, ActivationCode: f.mailer.ActivationCode()})
	require.NoError(t, err)
	return user
}

func TestRegisterActivateLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svc.Register(ctx, dto.RegistrationDTO{Name: "Ada", Email: "Ada@Example.com", Password: "analytical"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, 0, f.users.Len(), "nothing stored before activation")

	msg := f.mailer.Last()
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, mail.ActivationTemplate, msg.Template)

	claims, err := f.issuer.ParseActivation(token)
	require.NoError(t, err)
	assert.NotEqual(t, "analytical", claims.User.PasswordHash, "token must carry a hash")
	assert.NoError(t, utils.CheckPassword(claims.User.PasswordHash, "analytical"))

	user, err := f.svc.Activate(ctx, dto.ActivationDTO{ActivationToken: token, ActivationCode: f.mailer.ActivationCode()})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsVerified)
	assert.Equal(t, 1, f.users.Len())

	loggedIn, pair, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "analytical"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, f.mr.Exists(user.ID.Hex()), "login writes the snapshot")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]dto.RegistrationDTO{
		"no name":        {Email: "ada@example.com", Password: "secret1"},
		"bad email":      {Name: "Ada", Email: "ada@", Password: "secret1"},
		"short password": {Name: "Ada", Email: "ada@example.com", Password: "123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, in)
			assert.True(t, apperr.Is(err, apperr.Invalid))
		})
	}
	assert.Empty(t, f.mailer.Sent)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "secret1")

	_, err := f.svc.Register(context.Background(), dto.RegistrationDTO{Name: "Other", Email: "ada@example.com", Password: "secret2"})
	assert.True(t, apperr.Is(err, apperr.DuplicateEmail))
}

func TestRegister_MailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.Err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), dto.RegistrationDTO{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}

func TestActivate_CodeMismatchCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svc.Register(ctx, dto.RegistrationDTO{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	wrong := "0000"
	if f.mailer.ActivationCode() == wrong {
		wrong = "0001"
	}
	_, err = f.svc.Activate(ctx, dto.ActivationDTO{ActivationToken: token, ActivationCode: wrong})
	assert.True(t, apperr.Is(err, apperr.CodeMismatch))
	assert.Equal(t, 0, f.users.Len())
}

func TestActivate_InvalidToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Activate(context.Background(), dto.ActivationDTO{ActivationToken: "garbage", ActivationCode: "1234"})
	assert.True(t, apperr.Is(err, apperr.InvalidCredential))
}

func TestActivate_EmailTakenMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.svc.Register(ctx, dto.RegistrationDTO{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	code := f.mailer.ActivationCode()

	f.register(t, "Ada Twin", "ada@example.com", "secret2")

	_, err = f.svc.Activate(ctx, dto.ActivationDTO{ActivationToken: token, ActivationCode: code})
	assert.True(t, apperr.Is(err, apperr.DuplicateEmail))
	assert.Equal(t, 1, f.users.Len())
}

func TestLogin_BadCredentialsLookTheSame(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "secret1")
	ctx := context.Background()

	_, _, errUnknown := f.svc.Login(ctx, dto.LoginDTO{Email: "nobody@example.com", Password: "secret1"})
	_, _, errWrong := f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "nope"})

	assert.True(t, apperr.Is(errUnknown, apperr.InvalidCredential))
	assert.True(t, apperr.Is(errWrong, apperr.InvalidCredential))
	assert.Equal(t, apperr.Message(errUnknown), apperr.Message(errWrong))

	_, _, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com"})
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestLogin_CacheDown(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "secret1")
	f.mr.Close()

	_, _, err := f.svc.Login(context.Background(), dto.LoginDTO{Email: "ada@example.com", Password: "secret1"})
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}

func TestLogoutThenRefreshFails(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ada", "ada@example.com", "secret1")
	ctx := context.Background()

	_, pair, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, user.ID.Hex()))

	_, _, err = f.sessions.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.Is(err, apperr.SessionExpired))
}

func TestSocialAuth_CreatesThenReuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.social.profile = auth.SocialProfile{Email: "grace@example.com", Name: "Grace", Picture: "https://lh3.example.com/p.png"}

	first, pair, err := f.svc.SocialAuth(ctx, "id-token")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.True(t, first.IsVerified)
	assert.Empty(t, first.PasswordHash)
	require.NotNil(t, first.Avatar)
	assert.Equal(t, "https://lh3.example.com/p.png", first.Avatar.URL)

	second, _, err := f.svc.SocialAuth(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.users.Len())

	_, _, err = f.svc.Login(ctx, dto.LoginDTO{Email: "grace@example.com", Password: "anything"})
	assert.True(t, apperr.Is(err, apperr.InvalidCredential), "social accounts have no password")
}

func TestSocialAuth_RejectedToken(t *testing.T) {
	f := newFixture(t)
	f.social.err = apperr.New(apperr.InvalidCredential, "Identity token is not valid")

	_, _, err := f.svc.SocialAuth(context.Background(), "bad")
	assert.True(t, apperr.Is(err, apperr.InvalidCredential))
}

func TestUpdateInfo_RewritesLiveSnapshot(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ada", "ada@example.com", "secret1")
	ctx := context.Background()

	_, pair, err := f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateInfo(ctx, user.ID.Hex(), dto.UpdateUserInfoDTO{Name: "Ada Lovelace"})
	require.NoError(t, err)

	id, _, err := f.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", id.User.Name)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ada", "ada@example.com", "secret1")
	ctx := context.Background()

	_, err := f.svc.UpdatePassword(ctx, user.ID.Hex(), dto.UpdatePasswordDTO{OldPassword: "wrong", NewPassword: "secret2"})
	assert.True(t, apperr.Is(err, apperr.InvalidCredential))

	_, err = f.svc.UpdatePassword(ctx, user.ID.Hex(), dto.UpdatePasswordDTO{OldPassword: "secret1", NewPassword: "secret2"})
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "secret1"})
	assert.True(t, apperr.Is(err, apperr.InvalidCredential))
	_, _, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "secret2"})
	assert.NoError(t, err)
}

func TestUpdatePassword_SocialAccount(t *testing.T) {
	f := newFixture(t)
	f.social.profile = auth.SocialProfile{Email: "grace@example.com", Name: "Grace"}
	user, _, err := f.svc.SocialAuth(context.Background(), "tok")
	require.NoError(t, err)

	_, err = f.svc.UpdatePassword(context.Background(), user.ID.Hex(), dto.UpdatePasswordDTO{OldPassword: "x", NewPassword: "secret2"})
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestUpdateAvatar_ReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ada", "ada@example.com", "secret1")
	ctx := context.Background()

	first, err := f.svc.UpdateAvatar(ctx, user.ID.Hex(), dto.UpdateAvatarDTO{Avatar: pngDataURI})
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)

	second, err := f.svc.UpdateAvatar(ctx, user.ID.Hex(), dto.UpdateAvatarDTO{Avatar: pngDataURI})
	require.NoError(t, err)
	assert.NotEqual(t, first.Avatar.PublicID, second.Avatar.PublicID)
	assert.Equal(t, []string{first.Avatar.PublicID}, f.images.Deleted)

	_, err = f.svc.UpdateAvatar(ctx, user.ID.Hex(), dto.UpdateAvatarDTO{Avatar: "not-an-image"})
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestUpdateRoleAndDelete(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ada", "ada@example.com", "secret1")
	ctx := context.Background()

	updated, err := f.svc.UpdateRole(ctx, dto.UpdateRoleDTO{Email: "ada@example.com", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = f.svc.UpdateRole(ctx, dto.UpdateRoleDTO{Email: "ada@example.com", Role: "root"})
	assert.True(t, apperr.Is(err, apperr.Invalid))

	_, err = f.svc.UpdateRole(ctx, dto.UpdateRoleDTO{Email: "ghost@example.com", Role: "user"})
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, _, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, user.ID.Hex()))
	assert.False(t, f.mr.Exists(user.ID.Hex()), "delete drops the snapshot")
	assert.True(t, apperr.Is(f.svc.Delete(ctx, user.ID.Hex()), apperr.NotFound))
}
