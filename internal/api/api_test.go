package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mhodnik/toolbin/internal/db"
	"github.com/mhodnik/toolbin/internal/model"
)

const testJWTSecret = "test-secret"

var userCounter int

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// registerAndLogin creates a fresh account through the API and returns its
// bearer token.
func registerAndLogin(t *testing.T, server *httptest.Server) string {
	t.Helper()
	userCounter++
	email := fmt.Sprintf("user%d@example.com", userCounter)

	creds := map[string]string{"email": email, "password": "password123"}
	body, _ := json.Marshal(creds)

	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	body, _ = json.Marshal(creds)
	resp, err = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func createTool(t *testing.T, server *httptest.Server, token string, draft map[string]any) model.Tool {
	t.Helper()
	req, _ := authRequest("POST", server.URL+"/api/tool", token, draft)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create tool request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var tool model.Tool
	json.NewDecoder(resp.Body).Decode(&tool)
	return tool
}

func TestLoginEndpoint(t *testing.T) {
	server := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"email": "login@example.com", "password": "password123"})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	// Wrong password.
	body, _ = json.Marshal(map[string]string{"email": "login@example.com", "password": "wrong"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := setupTestServer(t)

	creds := map[string]string{"email": "dup@example.com", "password": "password123"}
	body, _ := json.Marshal(creds)
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	body, _ = json.Marshal(creds)
	resp, _ = http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestToolsRequireAuth(t *testing.T) {
	server := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/tool")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestToolCRUDFlow(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server)

	tool := createTool(t, server, token, map[string]any{"name": "Hammer", "quantity": 5})
	if tool.Name != "Hammer" || tool.Quantity != 5 {
		t.Errorf("unexpected tool: %+v", tool)
	}
	if tool.Description != "" || tool.Image != "" {
		t.Errorf("expected empty defaults, got %+v", tool)
	}

	// Get by ID.
	req, _ := authRequest("GET", server.URL+"/api/tool/"+tool.ID.String(), token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got model.Tool
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.ID != tool.ID {
		t.Errorf("expected id %s, got %s", tool.ID, got.ID)
	}

	// Patch only the description.
	req, _ = authRequest("PATCH", server.URL+"/api/tool/"+tool.ID.String(), token,
		map[string]any{"description": "claw hammer"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Description != "claw hammer" {
		t.Errorf("expected patched description, got %q", got.Description)
	}
	if got.Name != "Hammer" || got.Quantity != 5 {
		t.Errorf("patch touched unrelated fields: %+v", got)
	}

	// Delete, then the tool is gone.
	req, _ = authRequest("DELETE", server.URL+"/api/tool/"+tool.ID.String(), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/tool/"+tool.ID.String(), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}

	req, _ = authRequest("DELETE", server.URL+"/api/tool/"+tool.ID.String(), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", resp.StatusCode)
	}
}

func TestToolValidationErrors(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server)

	req, _ := authRequest("POST", server.URL+"/api/tool", token,
		map[string]any{"name": "", "quantity": 1})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for empty name, got %d", resp.StatusCode)
	}

	req, _ = authRequest("POST", server.URL+"/api/tool", token,
		map[string]any{"name": "Saw", "quantity": -1})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for negative quantity, got %d", resp.StatusCode)
	}
}

func TestToolOwnershipIsolation(t *testing.T) {
	server := setupTestServer(t)
	tokenA := registerAndLogin(t, server)
	tokenB := registerAndLogin(t, server)

	tool := createTool(t, server, tokenA, map[string]any{"name": "Hammer", "quantity": 1})

	// B cannot see A's tool, neither directly nor in a listing.
	req, _ := authRequest("GET", server.URL+"/api/tool/"+tool.ID.String(), tokenB, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for foreign tool, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/tool", tokenB, nil)
	resp, _ = http.DefaultClient.Do(req)
	var tools []model.Tool
	json.NewDecoder(resp.Body).Decode(&tools)
	resp.Body.Close()
	if len(tools) != 0 {
		t.Errorf("expected empty list for other user, got %d tools", len(tools))
	}
}

func TestToolSearch(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server)

	createTool(t, server, token, map[string]any{"name": "Hammer", "quantity": 1})
	createTool(t, server, token, map[string]any{"name": "Wrench", "quantity": 1})

	req, _ := authRequest("GET", server.URL+"/api/tool/search?query=Hamer", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tools []model.Tool
	json.NewDecoder(resp.Body).Decode(&tools)
	resp.Body.Close()
	if len(tools) != 1 || tools[0].Name != "Hammer" {
		t.Errorf("expected [Hammer], got %+v", tools)
	}
}

func TestToolListNameFilter(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server)

	createTool(t, server, token, map[string]any{"name": "Hammer", "quantity": 1})
	createTool(t, server, token, map[string]any{"name": "Wrench", "quantity": 1})

	req, _ := authRequest("GET", server.URL+"/api/tool?name=Hammer", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	var tools []model.Tool
	json.NewDecoder(resp.Body).Decode(&tools)
	resp.Body.Close()
	if len(tools) != 1 || tools[0].Name != "Hammer" {
		t.Errorf("expected [Hammer], got %+v", tools)
	}
}

func TestQuantityAdjustment(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server)

	tool := createTool(t, server, token, map[string]any{"name": "Hammer", "quantity": 1})
	url := server.URL + "/api/tool/" + tool.ID.String() + "/quantity"

	adjust := func(action string) model.Tool {
		t.Helper()
		req, _ := authRequest("POST", url, token, map[string]string{"action": action})
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request for %s failed: %v", action, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", action, resp.StatusCode)
		}
		var got model.Tool
		json.NewDecoder(resp.Body).Decode(&got)
		return got
	}

	if got := adjust(ActionIncrement); got.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", got.Quantity)
	}
	if got := adjust(ActionDecrement); got.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", got.Quantity)
	}
	if got := adjust(ActionDecrement); got.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", got.Quantity)
	}
	// Decrement clamps at zero, never negative.
	if got := adjust(ActionDecrement); got.Quantity != 0 {
		t.Errorf("expected quantity clamped at 0, got %d", got.Quantity)
	}

	req, _ := authRequest("POST", url, token, map[string]string{"action": "halve"})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown action, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/tool", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}
