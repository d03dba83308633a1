package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"smsbridge/internal/model"
)

func TestAuthAPI_LoginSavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "a@b.c" {
			t.Errorf("unexpected credentials %v", creds)
		}
		json.NewEncoder(w).Encode(AuthResponse{
			User:  model.User{ID: "u1", Email: "a@b.c"},
			Token: "tok-xyz",
		})
	}))
	defer srv.Close()

	sess := testSession(t, "")
	a := NewAuthAPI(testClient(t, srv.URL, sess), sess)

	resp, err := a.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != "u1" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if !sess.Authenticated() || sess.Token() != "tok-xyz" {
		t.Fatalf("expected session saved after login")
	}
}

func TestAuthAPI_LoginFailureLeavesSessionEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer srv.Close()

	sess := testSession(t, "")
	a := NewAuthAPI(testClient(t, srv.URL, sess), sess)

	_, err := a.Login(context.Background(), "a@b.c", "wrong")
	if !IsCategory(err, CategoryValidation) {
		t.Fatalf("expected validation-error, got %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("failed login must not create a session")
	}
}

func TestAuthAPI_LogoutClearsSession(t *testing.T) {
	sess := testSession(t, "tok")
	a := NewAuthAPI(testClient(t, "http://unused", sess), sess)

	if err := a.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sess.Authenticated() {
		t.Fatalf("expected session cleared after logout")
	}
}

func TestAuthAPI_ValidateKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]bool{"valid": body["apiKey"] == "good"})
	}))
	defer srv.Close()

	sess := testSession(t, "tok")
	a := NewAuthAPI(testClient(t, srv.URL, sess), sess)

	if !a.ValidateKey(context.Background(), "good") {
		t.Fatalf("expected good key to validate")
	}
	if a.ValidateKey(context.Background(), "bad") {
		t.Fatalf("expected bad key to fail validation")
	}
}
