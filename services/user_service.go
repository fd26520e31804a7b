package services

import (
	"context"
	"errors"
	"strings"

	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/mail"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/utils"
)

const (
	avatarFolder   = "avatars"
	minPasswordLen = 6
)

type UserService struct {
	users    UserStore
	issuer   *auth.Issuer
	sessions Sessions
	mailer   Mailer
	images   ImageStore
	social   SocialVerifier
	log      logging.Logger
}

// NewUserService wires the account operations. images and social may be nil
// when object storage or social sign-in are not configured.
func NewUserService(
	users UserStore,
	issuer *auth.Issuer,
	sessions Sessions,
	mailer Mailer,
	images ImageStore,
	social SocialVerifier,
	log logging.Logger,
) *UserService {
	return &UserService{
		users:    users,
		issuer:   issuer,
		sessions: sessions,
		mailer:   mailer,
		images:   images,
		social:   social,
		log:      log,
	}
}

// Register validates the new account, mails an activation code and returns
// the activation token. Nothing is persisted until activation.
func (s *UserService) Register(ctx context.Context, in dto.RegistrationDTO) (string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" {
		return "", apperr.New(apperr.Invalid, "Please enter your name")
	}
	if !models.ValidEmail(email) {
		return "", apperr.New(apperr.Invalid, "Please enter a valid email")
	}
	if len(in.Password) < minPasswordLen {
		return "", apperr.New(apperr.Invalid, "Password must be at least 6 characters")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", storeErr(err, "User not found")
	}
	if exists {
		return "", apperr.New(apperr.DuplicateEmail, "Email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "could not hash password", err)
	}

	ticket, err := s.issuer.NewActivation(models.PendingUser{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "could not create activation token", err)
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:       email,
		Subject:  "Activate your account",
		Template: mail.ActivationTemplate,
		Data:     mail.ActivationData{Name: name, ActivationCode: ticket.Code},
	})
	if err != nil {
		return "", apperr.Upstream("Could not send activation email", err)
	}

	s.log.Info(ctx, "activation mail sent", "email", email)
	return ticket.Token, nil
}

// Activate creates the user if the code matches the one inside the token.
func (s *UserService) Activate(ctx context.Context, in dto.ActivationDTO) (models.User, error) {
	claims, err := s.issuer.ParseActivation(in.ActivationToken)
	if err != nil {
		return models.User{}, err
	}
	if strings.TrimSpace(in.ActivationCode) != claims.ActivationCode {
		return models.User{}, apperr.New(apperr.CodeMismatch, "Invalid activation code")
	}

	exists, err := s.users.ExistsByEmail(ctx, claims.User.Email)
	if err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	if exists {
		return models.User{}, apperr.New(apperr.DuplicateEmail, "Email already exists")
	}

	user := models.User{
		Name:         claims.User.Name,
		Email:        claims.User.Email,
		PasswordHash: claims.User.PasswordHash,
		Role:         models.RoleUser,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return models.User{}, apperr.Wrap(apperr.DuplicateEmail, "Email already exists", err)
		}
		return models.User{}, storeErr(err, "User not found")
	}

	s.log.Info(ctx, "user activated", "user_id", user.ID.Hex())
	return user, nil
}

// Login checks the password and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, in dto.LoginDTO) (models.User, auth.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return models.User{}, auth.TokenPair{}, apperr.New(apperr.Invalid, "Please enter email and password")
	}

	badCredentials := apperr.New(apperr.InvalidCredential, "Invalid email or password")

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.User{}, auth.TokenPair{}, badCredentials
		}
		return models.User{}, auth.TokenPair{}, storeErr(err, "User not found")
	}
	if user.PasswordHash == "" || utils.CheckPassword(user.PasswordHash, in.Password) != nil {
		return models.User{}, auth.TokenPair{}, badCredentials
	}

	pair, err := s.sessions.Establish(ctx, user)
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// SocialAuth signs in with a verified identity provider token, creating the
// account on first use.
func (s *UserService) SocialAuth(ctx context.Context, rawIDToken string) (models.User, auth.TokenPair, error) {
	if s.social == nil {
		return models.User{}, auth.TokenPair{}, apperr.New(apperr.UpstreamFailure, "Social sign-in is not configured")
	}
	profile, err := s.social.Verify(ctx, rawIDToken)
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}

	user, err := s.users.FindByEmail(ctx, profile.Email)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound):
		user = models.User{
			Name:       profile.Name,
			Email:      profile.Email,
			Role:       models.RoleUser,
			IsVerified: true,
		}
		if profile.Picture != "" {
			user.Avatar = &models.Image{URL: profile.Picture}
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return models.User{}, auth.TokenPair{}, storeErr(err, "User not found")
		}
		s.log.Info(ctx, "user created from social sign-in", "user_id", user.ID.Hex())
	default:
		return models.User{}, auth.TokenPair{}, storeErr(err, "User not found")
	}

	pair, err := s.sessions.Establish(ctx, user)
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.Revoke(ctx, userID)
}

// save persists user, then refreshes its session snapshot if one is live.
func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.users.Save(ctx, user); err != nil {
		return storeErr(err, "User not found")
	}
	return s.sessions.Sync(ctx, *user)
}

func (s *UserService) load(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	return user, nil
}

func (s *UserService) UpdateInfo(ctx context.Context, userID string, in dto.UpdateUserInfoDTO) (models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.User{}, apperr.New(apperr.Invalid, "Please enter your name")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	user.Name = name
	if err := s.save(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID string, in dto.UpdatePasswordDTO) (models.User, error) {
	if in.OldPassword == "" || in.NewPassword == "" {
		return models.User{}, apperr.New(apperr.Invalid, "Please enter old and new password")
	}
	if len(in.NewPassword) < minPasswordLen {
		return models.User{}, apperr.New(apperr.Invalid, "Password must be at least 6 characters")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if user.PasswordHash == "" {
		return models.User{}, apperr.New(apperr.Invalid, "This account signs in with a social provider")
	}
	if utils.CheckPassword(user.PasswordHash, in.OldPassword) != nil {
		return models.User{}, apperr.New(apperr.InvalidCredential, "Invalid old password")
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "could not hash password", err)
	}
	user.PasswordHash = hash
	if err := s.save(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateAvatar replaces the user's avatar in object storage.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, in dto.UpdateAvatarDTO) (models.User, error) {
	if s.images == nil {
		return models.User{}, apperr.New(apperr.UpstreamFailure, "Image storage is not configured")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	img, err := s.images.UploadImage(ctx, avatarFolder, in.Avatar)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidImage) {
			return models.User{}, apperr.Wrap(apperr.Invalid, "Avatar must be a base64 encoded image", err)
		}
		return models.User{}, apperr.Upstream("Could not upload avatar", err)
	}

	previous := user.Avatar
	user.Avatar = &img
	if err := s.save(ctx, &user); err != nil {
		return models.User{}, err
	}

	if previous != nil && previous.PublicID != "" {
		if err := s.images.DeleteImage(ctx, previous.PublicID); err != nil {
			s.log.Warn(ctx, "old avatar not deleted", "public_id", previous.PublicID, "err", err)
		}
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return users, nil
}

func (s *UserService) UpdateRole(ctx context.Context, in dto.UpdateRoleDTO) (models.User, error) {
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return models.User{}, apperr.New(apperr.Invalid, "Role must be user or admin")
	}
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	user.Role = role
	if err := s.save(ctx, &user); err != nil {
		return models.User{}, err
	}
	s.log.Info(ctx, "user role updated", "user_id", user.ID.Hex(), "role", role)
	return user, nil
}

// Delete removes the user and ends its session.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return storeErr(err, "User not found")
	}
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user_id", userID)
	return nil
}
