package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"phonebook/internal/auth"
	"phonebook/internal/model"
)

const testSecret = "test-secret"

type stubUserRepo struct {
	user *model.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (s *stubUserRepo) Save(ctx context.Context, user *model.User) error   { return nil }
func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}
func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRepo) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubUserRepo) UpdateSessionToken(ctx context.Context, id uuid.UUID, token *string) error {
	return nil
}
func (s *stubUserRepo) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	return nil
}
func (s *stubUserRepo) MarkVerified(ctx context.Context, id uuid.UUID, token string) error {
	return nil
}
func (s *stubUserRepo) UpdateAvatarRef(ctx context.Context, id uuid.UUID, ref string) error {
	return nil
}

type stubTokenStore struct {
	blacklisted map[string]bool
}

func (s *stubTokenStore) BlacklistSessionToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if s.blacklisted == nil {
		s.blacklisted = make(map[string]bool)
	}
	s.blacklisted[tokenID] = true
	return nil
}

func (s *stubTokenStore) IsSessionTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	return s.blacklisted[tokenID], nil
}

func gatewayRequest(t *testing.T, repo *stubUserRepo, store *stubTokenStore, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	g := e.Group("/api", JWT(testSecret), SessionGuard(repo, store))
	g.GET("/current", func(c echo.Context) error {
		user := CurrentAccount(c)
		require.NotNil(t, user)
		return c.JSON(http.StatusOK, map[string]string{"email": user.Email})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/current", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionGuard(t *testing.T) {
	accountID := uuid.New()
	jwtService := auth.NewJWTService(testSecret, time.Hour)

	token, err := jwtService.Issue(accountID)
	require.NoError(t, err)

	liveUser := func(stored string) *model.User {
		return &model.User{ID: accountID, Email: "a@x.com", SessionToken: &stored}
	}

	t.Run("live session resolves", func(t *testing.T) {
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(token)}, &stubTokenStore{}, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "a@x.com")
	})

	t.Run("missing header", func(t *testing.T) {
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(token)}, &stubTokenStore{}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(token)}, &stubTokenStore{}, "Basic "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(token)}, &stubTokenStore{}, "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := auth.NewJWTService(testSecret, -time.Minute).Issue(accountID)
		require.NoError(t, err)
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(expired)}, &stubTokenStore{}, "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("forged signature", func(t *testing.T) {
		forged, err := auth.NewJWTService("other-secret", time.Hour).Issue(accountID)
		require.NoError(t, err)
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(forged)}, &stubTokenStore{}, "Bearer "+forged)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("account missing", func(t *testing.T) {
		rec := gatewayRequest(t, &stubUserRepo{}, &stubTokenStore{}, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token cleared by logout", func(t *testing.T) {
		user := &model.User{ID: accountID, Email: "a@x.com", SessionToken: nil}
		rec := gatewayRequest(t, &stubUserRepo{user: user}, &stubTokenStore{}, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token replaced by newer login", func(t *testing.T) {
		newer, err := jwtService.Issue(accountID)
		require.NoError(t, err)
		// The store holds the newer token; the older one must die.
		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(newer)}, &stubTokenStore{}, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = gatewayRequest(t, &stubUserRepo{user: liveUser(newer)}, &stubTokenStore{}, "Bearer "+newer)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blacklisted token id", func(t *testing.T) {
		claims, err := jwtService.Validate(token)
		require.NoError(t, err)

		store := &stubTokenStore{}
		require.NoError(t, store.BlacklistSessionToken(context.Background(), claims.ID, time.Hour))

		rec := gatewayRequest(t, &stubUserRepo{user: liveUser(token)}, store, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("failure body is uniform", func(t *testing.T) {
		missingHeader := gatewayRequest(t, &stubUserRepo{user: liveUser(token)}, &stubTokenStore{}, "")
		staleToken := gatewayRequest(t, &stubUserRepo{user: liveUser("other")}, &stubTokenStore{}, "Bearer "+token)
		assert.Equal(t, missingHeader.Body.String(), staleToken.Body.String())
	})
}
