package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudapratama/go-auth-api/internal/application"
	"github.com/yudapratama/go-auth-api/internal/domain/entity"
	handlers "github.com/yudapratama/go-auth-api/internal/interface/http"
	"github.com/yudapratama/go-auth-api/internal/router"
	"github.com/yudapratama/go-auth-api/internal/router/modules"
	"github.com/yudapratama/go-auth-api/pkg/apperrors"
	"github.com/yudapratama/go-auth-api/pkg/helpers"
	"github.com/yudapratama/go-auth-api/pkg/validation"
)

type memRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	nextID int
}

func newMemRepo() *memRepo { return &memRepo{users: make(map[string]*entity.User)} }

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *memRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperrors.Duplicate("User with this email already exists")
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.Email = strings.ToLower(u.Email)
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *memRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.Database(errors.New("not found"))
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	html []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, _, _, _, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.html = append(m.html, html)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string            `json:"message"`
		Type    string            `json:"type"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testEnv struct {
	engine *gin.Engine
	repo   *memRepo
	mail   *fakeMailer
}

var initOnce sync.Once

func newTestEnv() *testEnv {
	initOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})
	repo := newMemRepo()
	mail := &fakeMailer{}
	jwt := helpers.NewJWTManager("handlersecret", time.Hour)
	svc := application.NewService(repo, jwt, application.NewOTPManager(repo, 10*time.Minute), mail, nil, nil, "TestApp", true)
	h := handlers.NewAuthHandler(svc, nil, false)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Add(modules.NewAuthModule(h, repo, jwt))
	reg.RegisterAll()
	return &testEnv{engine: engine, repo: repo, mail: mail}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func signUpBody(email string) gin.H {
	return gin.H{
		"email":         email,
		"password":      "secret123",
		"first_name":    "John",
		"last_name":     "Doe",
		"date_of_birth": "1990-01-01",
	}
}

// signUp registers a user and returns the issued token.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/signup", "", signUpBody(email))
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestSignUp(t *testing.T) {
	env := newTestEnv()

	w, body := env.do(t, http.MethodPost, "/api/signup", "", signUpBody("John@Example.com"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "User registered successfully", body.Message)

	var data struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "john@example.com", data.User["email"])
	assert.Equal(t, "John", data.User["first_name"])
	assert.Equal(t, "1990-01-01", data.User["date_of_birth"])
	assert.NotEmpty(t, data.Token)
	for _, k := range []string{"password", "password_hash", "password_change_otp"} {
		_, leaked := data.User[k]
		assert.False(t, leaked, "secret field %s leaked", k)
	}
}

func TestSignUp_Validation(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name  string
		patch func(gin.H)
		field string
	}{
		{"bad email", func(b gin.H) { b["email"] = "not-an-email" }, "email"},
		{"short password", func(b gin.H) { b["password"] = "abc" }, "password"},
		{"short first name", func(b gin.H) { b["first_name"] = "J" }, "first_name"},
		{"future dob", func(b gin.H) { b["date_of_birth"] = "2050-01-01" }, "date_of_birth"},
		{"impossible dob", func(b gin.H) { b["date_of_birth"] = "1990-02-30" }, "date_of_birth"},
		{"missing email", func(b gin.H) { delete(b, "email") }, "email"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := signUpBody("john@example.com")
			c.patch(body)
			w, env2 := env.do(t, http.MethodPost, "/api/signup", "", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env2.Error)
			assert.Equal(t, "ValidationError", env2.Error.Type)
			assert.Contains(t, env2.Error.Details, c.field)
		})
	}
}

func TestSignUp_Duplicate(t *testing.T) {
	env := newTestEnv()
	env.signUp(t, "john@example.com")

	w, body := env.do(t, http.MethodPost, "/api/signup", "", signUpBody("JOHN@example.com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "DuplicateError", body.Error.Type)
	assert.Equal(t, "User with this email already exists", body.Error.Message)
}

func TestSignIn(t *testing.T) {
	env := newTestEnv()
	env.signUp(t, "john@example.com")

	w, body := env.do(t, http.MethodPost, "/api/signin", "", gin.H{
		"email": "john@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "Login successful", body.Message)

	w, body = env.do(t, http.MethodPost, "/api/signin", "", gin.H{
		"email": "john@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "AuthenticationError", body.Error.Type)
	assert.Equal(t, "Invalid email or password", body.Error.Message)
}

func TestProfile(t *testing.T) {
	env := newTestEnv()
	token := env.signUp(t, "john@example.com")

	t.Run("requires token", func(t *testing.T) {
		w, body := env.do(t, http.MethodGet, "/api/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, "AuthenticationError", body.Error.Type)
	})

	t.Run("read", func(t *testing.T) {
		w, body := env.do(t, http.MethodGet, "/api/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var data struct {
			User map[string]any `json:"user"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, "john@example.com", data.User["email"])
	})

	t.Run("sparse update", func(t *testing.T) {
		w, body := env.do(t, http.MethodPut, "/api/profile", token, gin.H{"first_name": "Jane"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Profile updated successfully", body.Message)
		var data struct {
			User map[string]any `json:"user"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, "Jane", data.User["first_name"])
		assert.Equal(t, "Doe", data.User["last_name"])
	})

	t.Run("rejects future dob", func(t *testing.T) {
		w, body := env.do(t, http.MethodPut, "/api/profile", token, gin.H{"date_of_birth": "2050-01-01"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, "ValidationError", body.Error.Type)
	})
}

func TestPasswordChangeFlow(t *testing.T) {
	env := newTestEnv()
	token := env.signUp(t, "john@example.com")

	w, body := env.do(t, http.MethodPost, "/api/request-password-change-otp", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OTP sent to your email for password change", body.Message)
	require.Len(t, env.mail.html, 1)

	// read the issued code back out of the store
	u, err := env.repo.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.PasswordChangeOTP)
	code := *u.PasswordChangeOTP
	assert.Contains(t, env.mail.html[0], code)

	t.Run("malformed otp", func(t *testing.T) {
		w, body := env.do(t, http.MethodPost, "/api/change-password-with-otp", token, gin.H{
			"otp": "12ab56", "new_password": "newsecret456",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, "ValidationError", body.Error.Type)
	})

	t.Run("wrong otp", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "000001"
		}
		w, body := env.do(t, http.MethodPost, "/api/change-password-with-otp", token, gin.H{
			"otp": wrong, "new_password": "newsecret456",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, body.Error)
		assert.Equal(t, "Invalid or expired OTP", body.Error.Message)
	})

	t.Run("change and re-login", func(t *testing.T) {
		w, body := env.do(t, http.MethodPost, "/api/change-password-with-otp", token, gin.H{
			"otp": code, "new_password": "newsecret456",
		})
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		assert.Equal(t, "Password changed successfully", body.Message)

		w, _ = env.do(t, http.MethodPost, "/api/signin", "", gin.H{
			"email": "john@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "old password must stop working")

		w, _ = env.do(t, http.MethodPost, "/api/signin", "", gin.H{
			"email": "john@example.com", "password": "newsecret456",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPasswordChangeFlow_MailFailure(t *testing.T) {
	env := newTestEnv()
	token := env.signUp(t, "john@example.com")
	env.mail.err = errors.New("mailgun unreachable")

	w, body := env.do(t, http.MethodPost, "/api/request-password-change-otp", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "EmailError", body.Error.Type)
	assert.Equal(t, "Failed to send OTP email. Please try again.", body.Error.Message)
}

func TestLogout(t *testing.T) {
	env := newTestEnv()
	token := env.signUp(t, "john@example.com")

	w, body := env.do(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "Logged out successfully", body.Message)

	// stateless tokens stay valid after logout; the client just drops them
	w, _ = env.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, body.Error)
}

func TestMe(t *testing.T) {
	env := newTestEnv()

	w, body := env.do(t, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anon struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &anon))
	assert.False(t, anon.Authenticated)

	token := env.signUp(t, "john@example.com")
	w, body = env.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var authed struct {
		Authenticated bool           `json:"authenticated"`
		User          map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &authed))
	assert.True(t, authed.Authenticated)
	assert.Equal(t, "john@example.com", authed.User["email"])

	w, body = env.do(t, http.MethodGet, "/api/me", "garbage-token", nil)
	require.Equal(t, http.StatusOK, w.Code, "optional auth never rejects")
	require.NoError(t, json.Unmarshal(body.Data, &anon))
	assert.False(t, anon.Authenticated)
}
