package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/bookmarks/pkg/bookmarks/database"
	"github.com/mikepea/bookmarks/pkg/bookmarks/models"
	"github.com/mikepea/bookmarks/pkg/bookmarks/store"
	"gorm.io/gorm"
)

const testSecret = "test-secret-at-least-16-bytes"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(testSecret, 15*time.Minute, 24*time.Hour)
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(NewService(store.NewUserStore(db), newTestIssuer()))
	auth := r.Group("/auth")
	handler.RegisterRoutes(auth)
	return r
}

func doJSON(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func registerAndLogin(t *testing.T, router *gin.Engine) LoginResponse {
	resp := doJSON(router, "POST", "/auth/register", RegisterRequest{
		Username: "tester",
		Email:    "test@example.com",
		Password: "password123",
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("Register failed: %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "POST", "/auth/login", LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Login failed: %d %s", resp.Code, resp.Body.String())
	}
	var response LoginResponse
	json.Unmarshal(resp.Body.Bytes(), &response)
	return response
}

func errorMessage(resp *httptest.ResponseRecorder) string {
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	return body["error"]
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == password {
		t.Error("Hash should not equal plain password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword should return true for correct password")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword should return false for incorrect password")
	}

	again, _ := HashPassword(password)
	if again == hash {
		t.Error("Hashes of the same password should be salted differently")
	}
}

func TestJWTToken(t *testing.T) {
	issuer := newTestIssuer()
	token, err := issuer.GenerateAccessToken(1)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := issuer.ValidateToken(token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	userID, err := claims.UserID()
	if err != nil || userID != 1 {
		t.Errorf("Expected UserID 1, got %d (%v)", userID, err)
	}

	if claims.Type != TokenTypeAccess {
		t.Errorf("Expected access token type, got %s", claims.Type)
	}
}

func TestTokenClassesAreDistinct(t *testing.T) {
	issuer := newTestIssuer()
	access, _ := issuer.GenerateAccessToken(1)
	refresh, _ := issuer.GenerateRefreshToken(1)

	if _, err := issuer.ValidateToken(access, TokenTypeRefresh); err != ErrWrongTokenType {
		t.Errorf("Expected ErrWrongTokenType for access as refresh, got %v", err)
	}
	if _, err := issuer.ValidateToken(refresh, TokenTypeAccess); err != ErrWrongTokenType {
		t.Errorf("Expected ErrWrongTokenType for refresh as access, got %v", err)
	}
	if _, err := issuer.ValidateToken(refresh, TokenTypeRefresh); err != nil {
		t.Errorf("Expected refresh token to validate, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	issuer := newTestIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _ := issuer.GenerateAccessToken(1)

	issuer.now = time.Now
	if _, err := issuer.ValidateToken(token, TokenTypeAccess); err != ErrExpiredToken {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestInvalidToken(t *testing.T) {
	issuer := newTestIssuer()
	if _, err := issuer.ValidateToken("invalid-token", TokenTypeAccess); err == nil {
		t.Error("Expected error for invalid token")
	}

	other := NewTokenIssuer("a-completely-different-secret", time.Minute, time.Hour)
	token, _ := other.GenerateAccessToken(1)
	if _, err := issuer.ValidateToken(token, TokenTypeAccess); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "POST", "/auth/register", RegisterRequest{
		Username: "tester",
		Email:    "test@example.com",
		Password: "password123",
	}, "")

	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var response RegisterResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.User.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", response.User.Email)
	}
	if strings.Contains(resp.Body.String(), "password") {
		t.Error("Response must not contain password data")
	}

	var user models.User
	db.Where("email = ?", "test@example.com").First(&user)
	if user.PasswordHash == "password123" || !CheckPassword("password123", user.PasswordHash) {
		t.Error("Expected a stored hash, not the plaintext")
	}
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	tests := []struct {
		name    string
		req     RegisterRequest
		message string
	}{
		{"short password", RegisterRequest{"tester", "t@example.com", "12345"}, "Password is too short"},
		{"short username", RegisterRequest{"ab", "t@example.com", "password123"}, "Username is too short"},
		{"multibyte password counted in characters", RegisterRequest{"tester", "t@example.com", "ééé"}, "Password is too short"},
		{"multibyte username counted in characters", RegisterRequest{"éé", "t@example.com", "password123"}, "Username is too short"},
		{"username with space", RegisterRequest{"bad name", "t@example.com", "password123"}, "Username should be alphanumeric, also no spaces"},
		{"username with symbol", RegisterRequest{"bad_name", "t@example.com", "password123"}, "Username should be alphanumeric, also no spaces"},
		{"bad email", RegisterRequest{"tester", "not-an-email", "password123"}, "Email is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(router, "POST", "/auth/register", tt.req, "")
			if resp.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.Code)
			}
			if got := errorMessage(resp); got != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, got)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	body := RegisterRequest{
		Username: "tester",
		Email:    "test@example.com",
		Password: "password123",
	}

	// First registration
	doJSON(router, "POST", "/auth/register", body, "")

	// Second registration with same email
	body.Username = "another"
	resp := doJSON(router, "POST", "/auth/register", body, "")

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
	if got := errorMessage(resp); got != "Email is taken" {
		t.Errorf("Expected 'Email is taken', got %q", got)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	doJSON(router, "POST", "/auth/register", RegisterRequest{"tester", "one@example.com", "password123"}, "")
	resp := doJSON(router, "POST", "/auth/register", RegisterRequest{"tester", "two@example.com", "password123"}, "")

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
	if got := errorMessage(resp); got != "Username is taken" {
		t.Errorf("Expected 'Username is taken', got %q", got)
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("POST", "/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	response := registerAndLogin(t, router)

	if response.Access == "" || response.Refresh == "" {
		t.Error("Expected access and refresh tokens in response")
	}
	if response.Access == response.Refresh {
		t.Error("Access and refresh tokens must differ")
	}
	if response.User.Username != "tester" {
		t.Errorf("Expected username tester, got %s", response.User.Username)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	registerAndLogin(t, router)

	wrongPassword := doJSON(router, "POST", "/auth/login", LoginRequest{
		Email:    "test@example.com",
		Password: "wrongpassword",
	}, "")
	unknownEmail := doJSON(router, "POST", "/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}, "")

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", wrongPassword.Code)
	}
	if unknownEmail.Code != wrongPassword.Code {
		t.Errorf("Status codes differ: %d vs %d", unknownEmail.Code, wrongPassword.Code)
	}
	if unknownEmail.Body.String() != wrongPassword.Body.String() {
		t.Errorf("Bodies differ: %s vs %s", unknownEmail.Body.String(), wrongPassword.Body.String())
	}
}

func TestMe(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	tokens := registerAndLogin(t, router)

	resp := doJSON(router, "GET", "/auth/me", nil, tokens.Access)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var userResponse UserResponse
	json.Unmarshal(resp.Body.Bytes(), &userResponse)

	if userResponse.Email != "test@example.com" || userResponse.Username != "tester" {
		t.Errorf("Unexpected user %+v", userResponse)
	}
}

func TestMeWithoutAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(router, "GET", "/auth/me", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}

	req, _ := http.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for non-bearer scheme, got %d", resp.Code)
	}
}

func TestMeRejectsRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	tokens := registerAndLogin(t, router)

	resp := doJSON(router, "GET", "/auth/me", nil, tokens.Refresh)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestRefresh(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	tokens := registerAndLogin(t, router)

	for i := 0; i < 2; i++ {
		resp := doJSON(router, "GET", "/auth/token/refresh", nil, tokens.Refresh)
		if resp.Code != http.StatusOK {
			t.Fatalf("Refresh %d: expected status 200, got %d: %s", i, resp.Code, resp.Body.String())
		}

		var refreshed RefreshResponse
		json.Unmarshal(resp.Body.Bytes(), &refreshed)

		me := doJSON(router, "GET", "/auth/me", nil, refreshed.Access)
		if me.Code != http.StatusOK {
			t.Errorf("Expected refreshed access token to work, got %d", me.Code)
		}
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	tokens := registerAndLogin(t, router)

	resp := doJSON(router, "GET", "/auth/token/refresh", nil, tokens.Access)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
	if got := errorMessage(resp); got != "Only refresh tokens are allowed" {
		t.Errorf("Unexpected message %q", got)
	}
}
