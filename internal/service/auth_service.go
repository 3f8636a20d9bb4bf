package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"glamgo/internal/auth"
	"glamgo/internal/model"
	"glamgo/internal/repository"
	"glamgo/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	minPasswordLength = 8

	// MaxProfilePhotoBytes bounds an uploaded profile photo.
	MaxProfilePhotoBytes = 5 << 20
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9\s\-\+\(\)]+$`)

	photoExtensions = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
	}

	errGoogleDisabled   = model.NewValidationError("Google sign-in is not configured")
	errGoogleRejected   = model.NewDomainError(model.KindUnauthorised, model.ErrCodeUnauthorised, "Google sign-in failed")
	errGoogleUnverified = model.NewDomainError(model.KindUnauthorised, model.ErrCodeUnauthorised, "Your Google account email is not verified")
	errAccountDisabled  = model.NewDomainError(model.KindForbidden, model.ErrCodeForbidden, "This account has been disabled")
)

// TokenIssuer signs access tokens for users.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	hasher   PasswordHasher
	google   auth.GoogleVerifier
	photos   storage.ObjectStore
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service. google may be nil, in which
// case Google sign-in is rejected.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	google auth.GoogleVerifier,
	photos storage.ObjectStore,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		google:   google,
		photos:   photos,
		logger:   logger.With().Str("service", "auth").Logger(),
		now:      time.Now,
	}
}

// Register creates a customer password account and signs the user in.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.NewValidationError("Registration details are required")
	}

	email := normaliseEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	switch {
	case !emailPattern.MatchString(email):
		return nil, model.NewValidationError("Please enter a valid email address")
	case len(req.Password) < minPasswordLength:
		return nil, model.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	case name == "":
		return nil, model.NewValidationError("Name is required")
	case !phonePattern.MatchString(phone) || !validPhoneDigits(phone):
		return nil, model.NewValidationError("Please enter a valid phone number")
	case req.Role != "" && req.Role != model.RoleCustomer:
		s.logger.Warn().Str("email", email).Str("role", string(req.Role)).Msg("registration requested a staff role")
		return nil, model.NewValidationError("Invalid role")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if model.IsKind(err, model.KindValidation) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Warn().Str("email", email).Msg("registration with existing email")
			return nil, model.ErrEmailTaken
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.respond(user)
}

// Login signs in with e-mail and password.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.ErrInvalidCredentials
	}

	email := normaliseEmail(req.Email)
	if !emailPattern.MatchString(email) {
		return nil, model.NewValidationError("Please enter a valid email address")
	}
	if req.Password == "" {
		return nil, model.NewValidationError("Password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if user == nil || !s.hasher.Matches(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("email", email).Msg("invalid credentials")
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, errAccountDisabled
	}

	if err := s.touchLogin(ctx, user); err != nil {
		return nil, err
	}

	return s.respond(user)
}

// GoogleSignIn verifies a Google ID token, creating the account on first use.
func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*model.AuthResponse, error) {
	if s.google == nil {
		return nil, errGoogleDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, model.NewValidationError("ID token is required")
	}

	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("google id token rejected")
		return nil, errGoogleRejected
	}

	email := normaliseEmail(profile.Email)
	if !profile.EmailVerified {
		s.logger.Warn().Str("email", email).Msg("google sign-in with unverified email")
		return nil, errGoogleUnverified
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if user == nil {
		user, err = s.createGoogleUser(ctx, email, profile)
		if err != nil {
			return nil, err
		}
	} else {
		if !user.IsActive {
			return nil, errAccountDisabled
		}
		if err := s.touchLogin(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.respond(user)
}

func (s *authService) createGoogleUser(ctx context.Context, email string, profile *auth.GoogleProfile) (*model.User, error) {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	now := s.now()
	user := &model.User{
		ID:              uuid.New(),
		Email:           email,
		Name:            name,
		Role:            model.RoleCustomer,
		IsEmailVerified: profile.EmailVerified,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     &now,
	}
	if profile.Picture != "" {
		picture := profile.Picture
		user.ProfilePhotoURL = &picture
	}

	err := s.userRepo.Create(ctx, user)
	if errors.Is(err, model.ErrEmailTaken) {
		// A concurrent first sign-in created the account.
		existing, getErr := s.userRepo.GetByEmail(ctx, email)
		if getErr != nil || existing == nil {
			return nil, fmt.Errorf("failed to sign in: %w", errors.Join(err, getErr))
		}
		return existing, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create google user")
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user created from google sign-in")
	return user, nil
}

// Me retrieves the caller's account.
func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, model.ErrUnauthorised
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the name and phone that are provided.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return user, nil
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, model.NewValidationError("Name cannot be empty")
		}
		user.Name = name
	}

	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != "" && !phonePattern.MatchString(phone) {
			return nil, model.NewValidationError("Please enter a valid phone number")
		}
		user.Phone = phone
	}

	if err := s.userRepo.UpdateProfile(ctx, user.ID, user.Name, user.Phone); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user.UpdatedAt = s.now()
	s.logger.Info().Str("user_id", userID).Msg("profile updated")
	return user, nil
}

// UploadProfilePhoto stores an image and records its URL on the account.
func (s *authService) UploadProfilePhoto(ctx context.Context, userID, contentType string, body []byte) (*model.User, error) {
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, model.NewValidationError("Profile photo must be a JPEG, PNG or WebP image")
	}
	if len(body) == 0 {
		return nil, model.NewValidationError("Profile photo is empty")
	}
	if len(body) > MaxProfilePhotoBytes {
		return nil, model.NewValidationError("Profile photo must be 5 MB or smaller")
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile-photos/%s/%s.%s", user.ID, uuid.New(), ext)
	url, err := s.photos.Put(ctx, key, contentType, body)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to store profile photo")
		return nil, fmt.Errorf("failed to upload profile photo: %w", err)
	}

	if err := s.userRepo.UpdatePhotoURL(ctx, user.ID, url); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to save profile photo URL")
		return nil, fmt.Errorf("failed to upload profile photo: %w", err)
	}

	user.ProfilePhotoURL = &url
	user.UpdatedAt = s.now()
	s.logger.Info().Str("user_id", userID).Str("url", url).Msg("profile photo updated")
	return user, nil
}

func (s *authService) touchLogin(ctx context.Context, user *model.User) error {
	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to record sign-in")
		return fmt.Errorf("failed to sign in: %w", err)
	}
	user.LastLoginAt = &now
	return nil
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: *user}, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validPhoneDigits reports whether phone holds 10 or 11 digits.
func validPhoneDigits(phone string) bool {
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits == 10 || digits == 11
}
