package http

import (
	"fmt"
	"net/http"
	"testing"

	"svcdir/internal/domain"
	"svcdir/internal/service"
)

func seededAuth() *stubAuth {
	auth := newStubAuth()
	auth.add(domain.Identity{
		ID: "u1", ServiceNumber: "N/1", Username: "ada", Name: "Ada", Email: "ada@x.io",
		Phone: "08012345678", IsActive: true,
	}, "004217", "tok-1")
	return auth
}

func TestAuthHandlerIdentify_Known(t *testing.T) {
	r := setupRouter(t, seededAuth(), stubDirectory{}, nil)

	rec := performRequest(r, http.MethodPost, "/auth/identify", map[string]string{"service_number": "n/1"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["exists"] != true || body["masked_phone"] != "0801*****78" || body["service_number"] != "N/1" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestAuthHandlerIdentify_Unknown(t *testing.T) {
	r := setupRouter(t, seededAuth(), stubDirectory{}, nil)

	rec := performRequest(r, http.MethodPost, "/auth/identify", map[string]string{"service_number": "N/404"}, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["exists"] != false || body["status"] != "not found" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["masked_phone"]; ok {
		t.Fatalf("unknown identity must not expose a phone")
	}
}

func TestAuthHandlerIdentify_MissingField(t *testing.T) {
	r := setupRouter(t, seededAuth(), stubDirectory{}, nil)

	rec := performRequest(r, http.MethodPost, "/auth/identify", map[string]string{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["field"] != "service_number" {
		t.Fatalf("expected field service_number, got %v", body)
	}
}

func TestAuthHandlerVerify_Success(t *testing.T) {
	r := setupRouter(t, seededAuth(), stubDirectory{}, nil)

	rec := performRequest(r, http.MethodPost, "/auth/verify", map[string]string{"service_number": "N/1", "code": "004217"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["token"] != "tok-1" || body["id"] != "u1" || body["name"] != "Ada" || body["phone"] != "08012345678" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["profile_image_url"]; !ok {
		t.Fatalf("expected profile_image_url key even when null")
	}
	for _, forbidden := range []string{"passcode", "passcode_hash", "code"} {
		if _, ok := body[forbidden]; ok {
			t.Fatalf("response must not contain %s", forbidden)
		}
	}
}

func TestAuthHandlerVerify_RejectionsLookAlike(t *testing.T) {
	r := setupRouter(t, seededAuth(), stubDirectory{}, nil)

	wrong := performRequest(r, http.MethodPost, "/auth/verify", map[string]string{"service_number": "N/1", "code": "000000"}, "")
	unknown := performRequest(r, http.MethodPost, "/auth/verify", map[string]string{"service_number": "N/9", "code": "004217"}, "")
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("rejections differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestAuthHandlerVerify_IssuerUnavailable(t *testing.T) {
	auth := seededAuth()
	auth.issuerErr = fmt.Errorf("%w: redis down", service.ErrTokenIssuer)
	r := setupRouter(t, auth, stubDirectory{}, nil)

	rec := performRequest(r, http.MethodPost, "/auth/verify", map[string]string{"service_number": "N/1", "code": "004217"}, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["retryable"] != true {
		t.Fatalf("expected retryable flag, got %v", body)
	}
}

func TestAuthHandlerMeAndLogout(t *testing.T) {
	auth := seededAuth()
	r := setupRouter(t, auth, stubDirectory{}, nil)

	rec := performRequest(r, http.MethodGet, "/auth/me", nil, "tok-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["service_number"] != "N/1" {
		t.Fatalf("unexpected profile: %v", body)
	}

	rec = performRequest(r, http.MethodPost, "/auth/logout", nil, "tok-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != "u1" {
		t.Fatalf("expected logout for u1, got %v", auth.loggedOut)
	}

	rec = performRequest(r, http.MethodGet, "/auth/me", nil, "tok-1")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token rejected, got %d", rec.Code)
	}
}
