package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"glamgo/internal/auth"
	"glamgo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authMocks struct {
	users  *MockUserRepository
	tokens *MockTokenIssuer
	hasher *MockPasswordHasher
	google *MockGoogleVerifier
	photos *MockObjectStore
}

func newAuthMocks() *authMocks {
	return &authMocks{
		users:  new(MockUserRepository),
		tokens: new(MockTokenIssuer),
		hasher: new(MockPasswordHasher),
		google: new(MockGoogleVerifier),
		photos: new(MockObjectStore),
	}
}

var signedInAt = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func (m *authMocks) service() *authService {
	s := NewAuthService(m.users, m.tokens, m.hasher, m.google, m.photos, zerolog.Nop()).(*authService)
	s.now = func() time.Time { return signedInAt }
	return s
}

func (m *authMocks) assertExpectations(t *testing.T) {
	m.users.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
	m.hasher.AssertExpectations(t)
	m.google.AssertExpectations(t)
	m.photos.AssertExpectations(t)
}

func validRegistration() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:    "  Dana@Example.com ",
		Password: "s3cretpass",
		Name:     " Dana Scully ",
		Phone:    "(512) 555-0100",
	}
}

func existingUser() *model.User {
	return &model.User{
		ID:           uuid.New(),
		Email:        "dana@example.com",
		PasswordHash: "hashed",
		Name:         "Dana Scully",
		Phone:        "5125550100",
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	m := newAuthMocks()

	m.hasher.On("Hash", "s3cretpass").Return("hashed", nil)
	m.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "dana@example.com" &&
			u.Name == "Dana Scully" &&
			u.Phone == "(512) 555-0100" &&
			u.PasswordHash == "hashed" &&
			u.Role == model.RoleCustomer &&
			u.IsActive &&
			u.LastLoginAt != nil && u.LastLoginAt.Equal(signedInAt)
	})).Return(nil)
	m.tokens.On("Issue", mock.AnythingOfType("*model.User")).Return("signed.jwt.token", nil)

	resp, err := m.service().Register(ctx, validRegistration())

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.Equal(t, "dana@example.com", resp.User.Email)
	assert.NotEqual(t, uuid.Nil, resp.User.ID)
	m.assertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *model.RegisterRequest)
		errorMsg string
	}{
		{
			name:     "Invalid email",
			mutate:   func(r *model.RegisterRequest) { r.Email = "dana.example.com" },
			errorMsg: "Please enter a valid email address",
		},
		{
			name:     "Short password",
			mutate:   func(r *model.RegisterRequest) { r.Password = "short" },
			errorMsg: "Password must be at least 8 characters",
		},
		{
			name:     "Blank name",
			mutate:   func(r *model.RegisterRequest) { r.Name = "   " },
			errorMsg: "Name is required",
		},
		{
			name:     "Phone with letters",
			mutate:   func(r *model.RegisterRequest) { r.Phone = "555-CALL-NOW" },
			errorMsg: "Please enter a valid phone number",
		},
		{
			name:     "Phone too short",
			mutate:   func(r *model.RegisterRequest) { r.Phone = "555-0100" },
			errorMsg: "Please enter a valid phone number",
		},
		{
			name:     "Missing phone",
			mutate:   func(r *model.RegisterRequest) { r.Phone = "" },
			errorMsg: "Please enter a valid phone number",
		},
		{
			name:     "Admin self-registration",
			mutate:   func(r *model.RegisterRequest) { r.Role = model.RoleAdmin },
			errorMsg: "Invalid role",
		},
		{
			name:     "Driver self-registration",
			mutate:   func(r *model.RegisterRequest) { r.Role = model.RoleDriver },
			errorMsg: "Invalid role",
		},
		{
			name:     "Vendor self-registration",
			mutate:   func(r *model.RegisterRequest) { r.Role = model.RoleVendor },
			errorMsg: "Invalid role",
		},
		{
			name:     "Unknown role",
			mutate:   func(r *model.RegisterRequest) { r.Role = "wizard" },
			errorMsg: "Invalid role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			req := validRegistration()
			tt.mutate(req)

			resp, err := m.service().Register(context.Background(), req)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, model.IsKind(err, model.KindValidation))
			assert.Contains(t, err.Error(), tt.errorMsg)
			m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_ExplicitCustomerRole(t *testing.T) {
	ctx := context.Background()
	m := newAuthMocks()
	req := validRegistration()
	req.Role = model.RoleCustomer

	m.hasher.On("Hash", req.Password).Return("hashed", nil)
	m.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleCustomer
	})).Return(nil)
	m.tokens.On("Issue", mock.Anything).Return("token", nil)

	resp, err := m.service().Register(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
	m.assertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := newAuthMocks()

	m.hasher.On("Hash", mock.Anything).Return("hashed", nil)
	m.users.On("Create", ctx, mock.Anything).Return(model.ErrEmailTaken)

	_, err := m.service().Register(ctx, validRegistration())

	assert.ErrorIs(t, err, model.ErrEmailTaken)
	assert.True(t, model.IsKind(err, model.KindConflict))
	m.tokens.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		req          *model.LoginRequest
		setupMocks   func(m *authMocks, user *model.User)
		expectedKind model.ErrorKind
		expectError  bool
	}{
		{
			name: "Success",
			req:  &model.LoginRequest{Email: "DANA@example.com", Password: "s3cretpass"},
			setupMocks: func(m *authMocks, user *model.User) {
				m.users.On("GetByEmail", ctx, "dana@example.com").Return(user, nil)
				m.hasher.On("Matches", "hashed", "s3cretpass").Return(true)
				m.users.On("TouchLastLogin", ctx, user.ID, signedInAt).Return(nil)
				m.tokens.On("Issue", user).Return("token", nil)
			},
		},
		{
			name:         "Invalid email",
			req:          &model.LoginRequest{Email: "dana", Password: "s3cretpass"},
			setupMocks:   func(m *authMocks, user *model.User) {},
			expectError:  true,
			expectedKind: model.KindValidation,
		},
		{
			name:         "Missing password",
			req:          &model.LoginRequest{Email: "dana@example.com"},
			setupMocks:   func(m *authMocks, user *model.User) {},
			expectError:  true,
			expectedKind: model.KindValidation,
		},
		{
			name: "Unknown email",
			req:  &model.LoginRequest{Email: "nobody@example.com", Password: "s3cretpass"},
			setupMocks: func(m *authMocks, user *model.User) {
				m.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)
			},
			expectError:  true,
			expectedKind: model.KindUnauthorised,
		},
		{
			name: "Wrong password",
			req:  &model.LoginRequest{Email: "dana@example.com", Password: "wrongpass"},
			setupMocks: func(m *authMocks, user *model.User) {
				m.users.On("GetByEmail", ctx, "dana@example.com").Return(user, nil)
				m.hasher.On("Matches", "hashed", "wrongpass").Return(false)
			},
			expectError:  true,
			expectedKind: model.KindUnauthorised,
		},
		{
			name: "Disabled account",
			req:  &model.LoginRequest{Email: "dana@example.com", Password: "s3cretpass"},
			setupMocks: func(m *authMocks, user *model.User) {
				user.IsActive = false
				m.users.On("GetByEmail", ctx, "dana@example.com").Return(user, nil)
				m.hasher.On("Matches", "hashed", "s3cretpass").Return(true)
			},
			expectError:  true,
			expectedKind: model.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			user := existingUser()
			tt.setupMocks(m, user)

			resp, err := m.service().Login(ctx, tt.req)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, resp)
				assert.True(t, model.IsKind(err, tt.expectedKind), "unexpected error: %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "token", resp.Token)
				require.NotNil(t, resp.User.LastLoginAt)
				assert.Equal(t, signedInAt, *resp.User.LastLoginAt)
			}
			m.assertExpectations(t)
		})
	}
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled without verifier", func(t *testing.T) {
		m := newAuthMocks()
		s := NewAuthService(m.users, m.tokens, m.hasher, nil, m.photos, zerolog.Nop())

		_, err := s.GoogleSignIn(ctx, "id-token")

		assert.True(t, model.IsKind(err, model.KindValidation))
		assert.Contains(t, err.Error(), "Google sign-in is not configured")
	})

	t.Run("Blank token", func(t *testing.T) {
		m := newAuthMocks()

		_, err := m.service().GoogleSignIn(ctx, "  ")

		assert.True(t, model.IsKind(err, model.KindValidation))
		m.google.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Rejected token", func(t *testing.T) {
		m := newAuthMocks()
		m.google.On("Verify", ctx, "forged").Return(nil, errors.New("signature mismatch"))

		_, err := m.service().GoogleSignIn(ctx, "forged")

		assert.True(t, model.IsKind(err, model.KindUnauthorised))
		assert.NotContains(t, err.Error(), "signature mismatch")
	})

	t.Run("First sign-in creates customer", func(t *testing.T) {
		m := newAuthMocks()
		m.google.On("Verify", ctx, "id-token").Return(&auth.GoogleProfile{
			Subject: "1234", Email: "Fox@Example.com", EmailVerified: true,
			Picture: "https://lh3.googleusercontent.com/fox.png",
		}, nil)
		m.users.On("GetByEmail", ctx, "fox@example.com").Return(nil, nil)
		m.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "fox@example.com" &&
				u.Name == "fox" &&
				u.Role == model.RoleCustomer &&
				u.IsEmailVerified &&
				u.PasswordHash == "" &&
				u.ProfilePhotoURL != nil && *u.ProfilePhotoURL == "https://lh3.googleusercontent.com/fox.png"
		})).Return(nil)
		m.tokens.On("Issue", mock.Anything).Return("token", nil)

		resp, err := m.service().GoogleSignIn(ctx, "id-token")

		require.NoError(t, err)
		assert.Equal(t, "fox@example.com", resp.User.Email)
		m.assertExpectations(t)
	})

	t.Run("Concurrent first sign-in reuses account", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		m.google.On("Verify", ctx, "id-token").Return(&auth.GoogleProfile{Email: user.Email, EmailVerified: true, Name: user.Name}, nil)
		m.users.On("GetByEmail", ctx, user.Email).Return(nil, nil).Once()
		m.users.On("Create", ctx, mock.Anything).Return(model.ErrEmailTaken)
		m.users.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
		m.tokens.On("Issue", user).Return("token", nil)

		resp, err := m.service().GoogleSignIn(ctx, "id-token")

		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		m.assertExpectations(t)
	})

	t.Run("Existing account signs in", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		m.google.On("Verify", ctx, "id-token").Return(&auth.GoogleProfile{Email: user.Email, EmailVerified: true}, nil)
		m.users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		m.users.On("TouchLastLogin", ctx, user.ID, signedInAt).Return(nil)
		m.tokens.On("Issue", user).Return("token", nil)

		resp, err := m.service().GoogleSignIn(ctx, "id-token")

		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("Disabled account", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		user.IsActive = false
		m.google.On("Verify", ctx, "id-token").Return(&auth.GoogleProfile{Email: user.Email, EmailVerified: true}, nil)
		m.users.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, err := m.service().GoogleSignIn(ctx, "id-token")

		assert.True(t, model.IsKind(err, model.KindForbidden))
	})

	t.Run("Unverified email cannot reach an existing account", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		m.google.On("Verify", ctx, "id-token").Return(&auth.GoogleProfile{Email: user.Email, EmailVerified: false}, nil)

		resp, err := m.service().GoogleSignIn(ctx, "id-token")

		assert.Nil(t, resp)
		assert.True(t, model.IsKind(err, model.KindUnauthorised))
		assert.Contains(t, err.Error(), "not verified")
		m.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		m.users.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything, mock.Anything)
		m.tokens.AssertNotCalled(t, "Issue", mock.Anything)
	})

	t.Run("Unverified email does not create an account", func(t *testing.T) {
		m := newAuthMocks()
		m.google.On("Verify", ctx, "id-token").Return(&auth.GoogleProfile{Email: "new@example.com"}, nil)

		_, err := m.service().GoogleSignIn(ctx, "id-token")

		assert.ErrorIs(t, err, errGoogleUnverified)
		m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		m.users.On("GetByID", ctx, user.ID).Return(user, nil)

		got, err := m.service().Me(ctx, user.ID.String())

		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("Deleted account", func(t *testing.T) {
		m := newAuthMocks()
		id := uuid.New()
		m.users.On("GetByID", ctx, id).Return(nil, nil)

		_, err := m.service().Me(ctx, id.String())

		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("Malformed subject", func(t *testing.T) {
		m := newAuthMocks()

		_, err := m.service().Me(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, model.ErrUnauthorised)
		m.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		req         *model.UpdateProfileRequest
		expectName  string
		expectPhone string
		errorMsg    string
	}{
		{
			name:        "Name only",
			req:         &model.UpdateProfileRequest{Name: strPtr(" Dana K. Scully ")},
			expectName:  "Dana K. Scully",
			expectPhone: "5125550100",
		},
		{
			name:        "Clear phone",
			req:         &model.UpdateProfileRequest{Phone: strPtr("")},
			expectName:  "Dana Scully",
			expectPhone: "",
		},
		{
			name:     "Blank name",
			req:      &model.UpdateProfileRequest{Name: strPtr(" ")},
			errorMsg: "Name cannot be empty",
		},
		{
			name:     "Invalid phone",
			req:      &model.UpdateProfileRequest{Phone: strPtr("call me")},
			errorMsg: "Please enter a valid phone number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			user := existingUser()
			m.users.On("GetByID", ctx, user.ID).Return(user, nil)
			if tt.errorMsg == "" {
				m.users.On("UpdateProfile", ctx, user.ID, tt.expectName, tt.expectPhone).Return(nil)
			}

			got, err := m.service().UpdateProfile(ctx, user.ID.String(), tt.req)

			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				m.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectName, got.Name)
			assert.Equal(t, tt.expectPhone, got.Phone)
			m.assertExpectations(t)
		})
	}
}

func TestAuthService_UploadProfilePhoto(t *testing.T) {
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\nfake")

	t.Run("Stores photo and records URL", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		prefix := "profile-photos/" + user.ID.String() + "/"
		url := "https://cdn.glamgo.example/" + prefix + "photo.png"

		m.users.On("GetByID", ctx, user.ID).Return(user, nil)
		m.photos.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".png")
		}), "image/png", png).Return(url, nil)
		m.users.On("UpdatePhotoURL", ctx, user.ID, url).Return(nil)

		got, err := m.service().UploadProfilePhoto(ctx, user.ID.String(), "image/png", png)

		require.NoError(t, err)
		require.NotNil(t, got.ProfilePhotoURL)
		assert.Equal(t, url, *got.ProfilePhotoURL)
		m.assertExpectations(t)
	})

	t.Run("Storage failure", func(t *testing.T) {
		m := newAuthMocks()
		user := existingUser()
		m.users.On("GetByID", ctx, user.ID).Return(user, nil)
		m.photos.On("Put", ctx, mock.Anything, "image/jpeg", png).Return("", errors.New("bucket unavailable"))

		_, err := m.service().UploadProfilePhoto(ctx, user.ID.String(), "image/jpeg", png)

		require.Error(t, err)
		m.users.AssertNotCalled(t, "UpdatePhotoURL", mock.Anything, mock.Anything, mock.Anything)
	})

	rejected := []struct {
		name        string
		contentType string
		body        []byte
		errorMsg    string
	}{
		{name: "Unsupported type", contentType: "image/gif", body: png, errorMsg: "JPEG, PNG or WebP"},
		{name: "Empty body", contentType: "image/png", body: nil, errorMsg: "Profile photo is empty"},
		{name: "Too large", contentType: "image/webp", body: bytes.Repeat([]byte{1}, MaxProfilePhotoBytes+1), errorMsg: "5 MB or smaller"},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()

			_, err := m.service().UploadProfilePhoto(ctx, uuid.NewString(), tt.contentType, tt.body)

			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindValidation))
			assert.Contains(t, err.Error(), tt.errorMsg)
			m.photos.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
