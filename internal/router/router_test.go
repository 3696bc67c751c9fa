package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drivelane-dev/drivelane/internal/auth"
	"github.com/drivelane-dev/drivelane/internal/handlers"
	"github.com/drivelane-dev/drivelane/internal/middleware"
	"github.com/drivelane-dev/drivelane/internal/models"
	"github.com/drivelane-dev/drivelane/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.DriverLicenseApplication{}))

	users := store.NewUserStore(conn)
	applications := store.NewApplicationStore(conn)
	tokens := auth.NewTokenService("test-secret", 30*time.Minute)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(Deps{
		Auth:           handlers.NewAuthHandler(users, tokens, hasher, log),
		Users:          handlers.NewUserHandler(users, hasher, log),
		Applications:   handlers.NewApplicationHandler(applications, log),
		RequireAuth:    middleware.RequireAuth(tokens, users),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

func do(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func register(t *testing.T, r *gin.Engine, username, email, password string) {
	t.Helper()

	w := do(r, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()

	w := do(r, http.MethodPost, "/api/token", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	require.Equal(t, "bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func applicationBody() gin.H {
	return gin.H{
		"last_name":     "Tremblay",
		"first_name":    "Alice",
		"birth_date":    "02/11/1990",
		"sex":           "F",
		"height":        172.5,
		"street_number": "42",
		"street_name":   "Rue Principale",
		"city":          "Gatineau",
		"province":      "QC",
		"postal_code":   "J8X 3X5",
	}
}

func TestRegister(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")

	// Same email, different case: exactly one account survives.
	w := do(r, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice2",
		"email":    "Alice@Example.com",
		"password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, password := range []string{"short1A", "nouppercase1!", "NOLOWERCASE1!", "NoDigitsHere!"} {
		w := do(r, http.MethodPost, "/api/register", "", gin.H{
			"email":    "bob@example.com",
			"password": password,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "password %q", password)
	}

	w = do(r, http.MethodPost, "/api/register", "", gin.H{
		"email":    "not-an-email",
		"password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRegister_LongPassword(t *testing.T) {
	r := newTestApp(t)

	// 100 characters is policy-valid even though it exceeds bcrypt's
	// 72-byte input limit.
	password := "Aa1" + strings.Repeat("x", 97)

	register(t, r, "alice", "alice@example.com", password)
	login(t, r, "alice", password)
}

func TestRegister_DefaultUsername(t *testing.T) {
	r := newTestApp(t)

	w := do(r, http.MethodPost, "/api/register", "", gin.H{
		"email":    "carol@example.com",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "carol", user["username"])
}

func TestToken(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")

	login(t, r, "alice", "Passw0rd!")

	w := do(r, http.MethodPost, "/api/token", "", gin.H{
		"username": "nobody",
		"password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/token", "", gin.H{
		"username": "alice",
		"password": "WrongPassw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationLifecycle(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")
	token := login(t, r, "alice", "Passw0rd!")

	// Unauthenticated requests never reach the handler.
	w := do(r, http.MethodPost, "/api/driver_license/", "", applicationBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/driver_license/", token, applicationBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode(t, w)
	assert.Equal(t, "in_progress", created["status"])
	assert.Equal(t, "Tremblay", created["last_name"])
	id := int(created["id"].(float64))
	ownerID := int(created["owner_id"].(float64))

	w = do(r, http.MethodGet, "/api/driver_license/my", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.EqualValues(t, id, list[0]["id"])
	assert.EqualValues(t, ownerID, list[0]["owner_id"])

	w = do(r, http.MethodGet, fmt.Sprintf("/api/driver_license/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, fmt.Sprintf("/api/driver_license/%d", id), token, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	updated := decode(t, w)
	assert.Equal(t, "approved", updated["status"])
	assert.Equal(t, created["birth_date"], updated["birth_date"])
	assert.Equal(t, created["height"], updated["height"])
	assert.Equal(t, created["postal_code"], updated["postal_code"])

	w = do(r, http.MethodDelete, fmt.Sprintf("/api/driver_license/%d", id), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/api/driver_license/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationValidation(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")
	token := login(t, r, "alice", "Passw0rd!")

	invalid := applicationBody()
	invalid["sex"] = "Q"
	w := do(r, http.MethodPost, "/api/driver_license/", token, invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	invalid = applicationBody()
	invalid["birth_date"] = "1990-11-02"
	w = do(r, http.MethodPost, "/api/driver_license/", token, invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	invalid = applicationBody()
	delete(invalid, "city")
	w = do(r, http.MethodPost, "/api/driver_license/", token, invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestApplicationOwnership(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")
	register(t, r, "mallory", "mallory@example.com", "Passw0rd!")

	aliceToken := login(t, r, "alice", "Passw0rd!")
	malloryToken := login(t, r, "mallory", "Passw0rd!")

	w := do(r, http.MethodPost, "/api/driver_license/", aliceToken, applicationBody())
	require.Equal(t, http.StatusCreated, w.Code)
	id := int(decode(t, w)["id"].(float64))

	path := fmt.Sprintf("/api/driver_license/%d", id)

	// Someone else's record is indistinguishable from a missing one.
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, path, malloryToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, path, malloryToken, gin.H{"status": "approved"}).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, path, malloryToken, nil).Code)

	w = do(r, http.MethodGet, "/api/driver_license/my", malloryToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	// Alice's record is untouched.
	w = do(r, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "in_progress", decode(t, w)["status"])
}

func TestUserSelfService(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")
	register(t, r, "bob", "bob@example.com", "Passw0rd!")

	token := login(t, r, "alice", "Passw0rd!")

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/users/me", "", nil).Code)

	w := do(r, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])

	// Changing the email requires the current password.
	w = do(r, http.MethodPut, "/api/users/me", token, gin.H{"email": "alice2@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Taking bob's email is a conflict.
	w = do(r, http.MethodPut, "/api/users/me", token, gin.H{
		"email":            "bob@example.com",
		"current_password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Username bounds are enforced.
	w = do(r, http.MethodPut, "/api/users/me", token, gin.H{"username": strings.Repeat("a", 51)})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Password change requires the current password.
	w = do(r, http.MethodPut, "/api/users/me", token, gin.H{
		"current_password": "WrongPassw0rd",
		"new_password":     "NewPassw0rd1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPut, "/api/users/me", token, gin.H{
		"current_password": "Passw0rd!",
		"new_password":     "NewPassw0rd1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	login(t, r, "alice", "NewPassw0rd1")
}

func TestDeleteAccount(t *testing.T) {
	r := newTestApp(t)

	register(t, r, "alice", "alice@example.com", "Passw0rd!")
	token := login(t, r, "alice", "Passw0rd!")

	w := do(r, http.MethodPost, "/api/driver_license/", token, applicationBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodDelete, "/api/users/me", token, gin.H{"password": "WrongPassw0rd"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodDelete, "/api/users/me", token, gin.H{"password": "Passw0rd!"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The token now points at a deleted account.
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/users/me", token, nil).Code)

	w = do(r, http.MethodPost, "/api/token", "", gin.H{
		"username": "alice",
		"password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The email is free again after the account is gone.
	register(t, r, "alice", "alice@example.com", "Passw0rd!")
}

func TestHealth(t *testing.T) {
	r := newTestApp(t)

	w := do(r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
