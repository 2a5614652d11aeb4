package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
)

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FreelancerProfile{}))

	h := &AuthHandler{DB: db, JWTSecret: "test-secret", Expires: 60}

	app := fiber.New()
	app.Post("/api/auth/register", h.Register)
	app.Post("/api/auth/login", h.Login)
	app.Post("/api/auth/logout", h.Logout)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "fm_token" {
			return c
		}
	}
	return nil
}

func TestRegisterFreelancerCreatesProfile(t *testing.T) {
	app, db := setupAuthApp(t)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"name":     "Dev One",
		"email":    "dev@test.dev",
		"password": "secret1",
		"role":     "freelancer",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var u models.User
	require.NoError(t, db.First(&u, "email = ?", "dev@test.dev").Error)
	assert.Equal(t, models.RoleFreelancer, u.Role)
	// password never stored in the clear
	assert.NotEqual(t, "secret1", u.Password)

	var profile models.FreelancerProfile
	assert.NoError(t, db.First(&profile, "user_id = ?", u.ID).Error)
}

func TestRegisterClientHasNoProfile(t *testing.T) {
	app, db := setupAuthApp(t)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"name":     "Client One",
		"email":    "client@test.dev",
		"password": "secret1",
		"role":     "client",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var count int64
	db.Model(&models.FreelancerProfile{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupAuthApp(t)

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/register", fiber.Map{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("admin not self served", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/register", fiber.Map{
			"name":     "Boss",
			"email":    "boss@test.dev",
			"password": "secret1",
			"role":     "admin",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := fiber.Map{
			"name":     "Dup",
			"email":    "dup@test.dev",
			"password": "secret1",
			"role":     "client",
		}
		resp := postJSON(t, app, "/api/auth/register", body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, app, "/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"name":     "Dev One",
		"email":    "dev@test.dev",
		"password": "secret1",
		"role":     "freelancer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("valid credentials", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", fiber.Map{
			"email":    "dev@test.dev",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotNil(t, sessionCookie(resp))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", fiber.Map{
			"email":    "dev@test.dev",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", fiber.Map{
			"email":    "ghost@test.dev",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	app, _ := setupAuthApp(t)

	resp := postJSON(t, app, "/api/auth/logout", fiber.Map{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// session cookie comes back emptied
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}
