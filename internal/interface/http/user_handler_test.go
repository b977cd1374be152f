package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	userapp "github.com/lukian/user-api/internal/application"
	"github.com/lukian/user-api/internal/infrastructure/inmemory"
	"github.com/lukian/user-api/internal/interface/http/dto"
	"github.com/lukian/user-api/pkg/validation"
)

var initOnce sync.Once

// newTestRouter builds an engine with the same /api/users routes the
// module registers, backed by the in-memory repository.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	initOnce.Do(validation.Init)

	repo := inmemory.NewUserRepository()
	svc := userapp.NewService(repo, nil, nil, nil, "", nil, 18, 0)
	h := NewUserHandler(svc, nil)

	r := gin.New()
	users := r.Group("/api/users")
	{
		users.POST("", h.Register)
		users.GET("/search", h.SearchByBirthDateRange)
		users.GET("/search/text", h.SearchProfiles)
		users.GET("/:id", h.GetByID)
		users.PATCH("/:id", h.UpdateEmail)
		users.PUT("/:id", h.UpdateAll)
		users.DELETE("/:id", h.Delete)
	}
	return r
}

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: bad envelope %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

func registerBody(email, birthDate string) string {
	return fmt.Sprintf(`{
		"email": %q,
		"first_name": "John",
		"last_name": "Doe",
		"birth_date": %q,
		"address": "1 Main St",
		"phone_number": "123456789"
	}`, email, birthDate)
}

func registerUser(t *testing.T, r *gin.Engine, email, birthDate string) dto.UserResponse {
	t.Helper()

	rec, env := do(t, r, http.MethodPost, "/api/users", registerBody(email, birthDate))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var u dto.UserResponse
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("bad user payload: %v", err)
	}
	return u
}

func TestRegisterEndpoint(t *testing.T) {
	r := newTestRouter()

	rec, env := do(t, r, http.MethodPost, "/api/users", registerBody("john.doe@example.com", "1990-01-01"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.Success || env.Status != http.StatusCreated {
		t.Fatalf("bad envelope: %+v", env)
	}

	var u dto.UserResponse
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("bad user payload: %v", err)
	}
	if u.ID == 0 || u.Email != "john.doe@example.com" || u.BirthDate != "1990-01-01" ||
		u.FirstName != "John" || u.LastName != "Doe" {
		t.Fatalf("unexpected user payload: %+v", u)
	}
}

func TestRegisterEndpoint_ValidationErrors(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing email", `{"first_name":"John","last_name":"Doe","birth_date":"1990-01-01"}`, "email"},
		{"malformed email", registerBody("not-an-email", "1990-01-01"), "email"},
		{"missing first name", `{"email":"a@b.com","last_name":"Doe","birth_date":"1990-01-01"}`, "first_name"},
		{"bad birth date", registerBody("a@b.com", "01/01/1990"), "birth_date"},
		{"missing birth date", `{"email":"a@b.com","first_name":"John","last_name":"Doe"}`, "birth_date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, r, http.MethodPost, "/api/users", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if env.Success {
				t.Fatal("envelope must not report success")
			}
			if _, ok := env.Error[tc.field]; !ok {
				t.Fatalf("expected detail for %q, got %+v", tc.field, env.Error)
			}
		})
	}
}

func TestRegisterEndpoint_MalformedJSON(t *testing.T) {
	r := newTestRouter()

	rec, env := do(t, r, http.MethodPost, "/api/users", `{"email": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Error["payload"] == "" {
		t.Fatalf("expected payload detail, got %+v", env.Error)
	}
}

func TestRegisterEndpoint_Underage(t *testing.T) {
	r := newTestRouter()

	tooYoung := time.Now().UTC().AddDate(-17, 0, 0).Format(dto.DateLayout)
	rec, env := do(t, r, http.MethodPost, "/api/users", registerBody("kid@example.com", tooYoung))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Message != "user must be at least 18y.o. to be able to register" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	r := newTestRouter()

	registerUser(t, r, "dup@example.com", "1990-01-01")
	rec, env := do(t, r, http.MethodPost, "/api/users", registerBody("dup@example.com", "1990-01-01"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Message != "email already registered" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestGetEndpoint(t *testing.T) {
	r := newTestRouter()

	created := registerUser(t, r, "john.doe@example.com", "1990-01-01")

	rec, env := do(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var u dto.UserResponse
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("bad user payload: %v", err)
	}
	if u != created {
		t.Fatalf("payload mismatch: %+v vs %+v", u, created)
	}

	rec, _ = do(t, r, http.MethodGet, "/api/users/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rec.Code)
	}

	rec, _ = do(t, r, http.MethodGet, "/api/users/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
}

func TestPatchEndpoint(t *testing.T) {
	r := newTestRouter()

	created := registerUser(t, r, "john.doe@example.com", "1990-01-01")

	rec, env := do(t, r, http.MethodPatch, fmt.Sprintf("/api/users/%d", created.ID),
		`{"email":"renamed@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var u dto.UserResponse
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("bad user payload: %v", err)
	}
	if u.Email != "renamed@example.com" {
		t.Fatalf("email not updated: %+v", u)
	}
	if u.FirstName != created.FirstName || u.LastName != created.LastName || u.BirthDate != created.BirthDate {
		t.Fatalf("unrelated fields changed: %+v vs %+v", u, created)
	}

	rec, env = do(t, r, http.MethodPatch, fmt.Sprintf("/api/users/%d", created.ID),
		`{"email":"not-an-email"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400, got %d", rec.Code)
	}
	if _, ok := env.Error["email"]; !ok {
		t.Fatalf("expected email detail, got %+v", env.Error)
	}

	rec, _ = do(t, r, http.MethodPatch, "/api/users/999", `{"email":"x@example.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rec.Code)
	}
}

func TestPutEndpoint(t *testing.T) {
	r := newTestRouter()

	created := registerUser(t, r, "john.doe@example.com", "1990-01-01")

	body := `{
		"email": "jane.roe@example.com",
		"first_name": "Jane",
		"last_name": "Roe",
		"birth_date": "1992-07-04",
		"address": "9 Other St",
		"phone_number": "555000111"
	}`
	rec, env := do(t, r, http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var u dto.UserResponse
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("bad user payload: %v", err)
	}
	if u.ID != created.ID {
		t.Fatalf("id changed: %+v", u)
	}
	if u.Email != "jane.roe@example.com" || u.FirstName != "Jane" || u.LastName != "Roe" ||
		u.BirthDate != "1992-07-04" || u.Address != "9 Other St" || u.PhoneNumber != "555000111" {
		t.Fatalf("fields not replaced: %+v", u)
	}

	tooYoung := time.Now().UTC().AddDate(-16, 0, 0).Format(dto.DateLayout)
	rec, env = do(t, r, http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID),
		registerBody("jane.roe@example.com", tooYoung))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("underage: expected 400, got %d", rec.Code)
	}
	if env.Message != "user must be at least 18y.o. to be able to register" {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	rec, _ = do(t, r, http.MethodPut, "/api/users/999", registerBody("other@example.com", "1990-01-01"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rec.Code)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	r := newTestRouter()

	created := registerUser(t, r, "john.doe@example.com", "1990-01-01")
	path := fmt.Sprintf("/api/users/%d", created.ID)

	rec, _ := do(t, r, http.MethodDelete, path, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}

	rec, _ = do(t, r, http.MethodDelete, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}

	rec, _ = do(t, r, http.MethodGet, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	r := newTestRouter()

	registerUser(t, r, "early@example.com", "1980-01-01")
	lower := registerUser(t, r, "lower@example.com", "1985-03-10")
	upper := registerUser(t, r, "upper@example.com", "1994-10-20")
	gone := registerUser(t, r, "gone@example.com", "1991-01-01")
	if rec, _ := do(t, r, http.MethodDelete, fmt.Sprintf("/api/users/%d", gone.ID), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", rec.Code)
	}

	rec, env := do(t, r, http.MethodGet, "/api/users/search?from=1985-03-10&to=1994-10-20", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list []dto.UserResponse
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("bad list payload: %v", err)
	}
	if len(list) != 2 || list[0].ID != lower.ID || list[1].ID != upper.ID {
		t.Fatalf("unexpected results: %+v", list)
	}

	// inverted range is empty, not an error
	rec, env = do(t, r, http.MethodGet, "/api/users/search?from=1994-10-20&to=1985-03-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("inverted range: expected 200, got %d", rec.Code)
	}
	list = nil
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("bad list payload: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("inverted range must be empty, got %+v", list)
	}

	rec, env = do(t, r, http.MethodGet, "/api/users/search?from=03-10-1985&to=1994-10-20", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed from: expected 400, got %d", rec.Code)
	}
	if _, ok := env.Error["from"]; !ok {
		t.Fatalf("expected from detail, got %+v", env.Error)
	}

	rec, env = do(t, r, http.MethodGet, "/api/users/search?from=1985-03-10", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing to: expected 400, got %d", rec.Code)
	}
	if _, ok := env.Error["to"]; !ok {
		t.Fatalf("expected to detail, got %+v", env.Error)
	}
}

func TestTextSearchEndpoint(t *testing.T) {
	r := newTestRouter()

	rec, env := do(t, r, http.MethodGet, "/api/users/search/text", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing q: expected 400, got %d", rec.Code)
	}
	if _, ok := env.Error["q"]; !ok {
		t.Fatalf("expected q detail, got %+v", env.Error)
	}

	// the search index is not wired in tests, so any query is empty
	rec, env = do(t, r, http.MethodGet, "/api/users/search/text?q=john", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var hits []map[string]any
	if err := json.Unmarshal(env.Data, &hits); err != nil {
		t.Fatalf("bad hits payload: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %+v", hits)
	}
}
