package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uav-planner/db"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *AuthHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := db.NewMemoryUserStore()
	if err := db.SeedAdmin(context.Background(), users, "admin123"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	h := NewAuthHandler(users, "test-secret", time.Hour, discardLogger())

	r := gin.New()
	r.POST("/api/login", h.Login)
	r.POST("/api/register", h.Register)
	protected := r.Group("/api", h.AuthMiddleware())
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	return r, h
}

func TestLoginAndAccessProtectedRoute(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/login", `{"username":"admin","password":"admin123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"username":"admin"}` {
		t.Fatalf("whoami: status %d body %s", w.Code, w.Body.String())
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	r, _ := newAuthRouter(t)
	for _, body := range []string{
		`{"username":"admin","password":"nope"}`,
		`{"username":"ghost","password":"admin123"}`,
	} {
		if w := doJSON(r, http.MethodPost, "/api/login", body); w.Code != http.StatusUnauthorized {
			t.Errorf("body %s: status = %d, want 401", body, w.Code)
		}
	}
	if w := doJSON(r, http.MethodPost, "/api/login", `{"username":"admin"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing password: status = %d, want 400", w.Code)
	}
}

func TestRegister(t *testing.T) {
	r, _ := newAuthRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/register", `{"username":"pilot","password":"short"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("short password: status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/register", `{"username":"pilot","password":"secret1"}`); w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPost, "/api/register", `{"username":"pilot","password":"secret2"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/login", `{"username":"pilot","password":"secret1"}`); w.Code != http.StatusOK {
		t.Fatalf("login after register: status = %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	r, _ := newAuthRouter(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Username: "admin"})
	foreignToken, _ := foreign.SignedString([]byte("other-secret"))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, _ := expired.SignedString([]byte("test-secret"))

	for name, header := range map[string]string{
		"missing":        "",
		"garbage":        "Bearer not-a-token",
		"foreign secret": "Bearer " + foreignToken,
		"expired":        "Bearer " + expiredToken,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}
}
