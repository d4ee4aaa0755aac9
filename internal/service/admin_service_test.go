package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"svcdir/internal/media"
	"svcdir/internal/repository"
)

type stubUploader struct {
	lastIdentity    string
	lastContentType string
	err             error
}

func (u *stubUploader) UploadURL(_ context.Context, identityID, contentType string) (string, string, error) {
	u.lastIdentity = identityID
	u.lastContentType = contentType
	if u.err != nil {
		return "", "", u.err
	}
	return "profile_images/" + identityID + "/k", "https://bucket.example.com/put", nil
}

func newTestAdminService(repo *mockIdentityRepo, tokens TokenRevoker, uploader *stubUploader) *AdminService {
	creds := NewCredentialService(zap.NewNop(), repo, nil, nil, "NG")
	var up media.Uploader
	if uploader != nil {
		up = uploader
	}
	return NewAdminService(zap.NewNop(), repo, repo, creds, tokens, up, "NG")
}

func TestAdminServiceCreateAndList(t *testing.T) {
	repo := newMockIdentityRepo()
	svc := newTestAdminService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateIdentityInput{ServiceNumber: "s1", Username: "b", Email: "b@x.io"})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateIdentityInput{ServiceNumber: "s2", Username: "a", Email: "a@x.io", Passcode: "123456"}); err != nil {
		t.Fatalf("create a: %v", err)
	}

	views, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(views))
	}
	if views[0].Username != "a" || views[0].Passcode != "123456" {
		t.Fatalf("unexpected first view: %+v", views[0])
	}
	if views[1].Passcode != created.Passcode {
		t.Fatalf("expected generated passcode %q, got %q", created.Passcode, views[1].Passcode)
	}
}

func TestAdminServiceList_Search(t *testing.T) {
	repo := newMockIdentityRepo()
	seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S1", Username: "ada", Email: "ada@x.io", Name: "Ada Obi"})
	seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S2", Username: "bola", Email: "bola@corp.io", Name: "Bola Ade"})
	seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S3", Username: "chi", Email: "chi@x.io", Name: "Chi Eze"})
	svc := newTestAdminService(repo, nil, nil)

	cases := []struct {
		search string
		want   []string
	}{
		{"", []string{"ada", "bola", "chi"}},
		{"  ", []string{"ada", "bola", "chi"}},
		{"ADE", []string{"bola"}},
		{"corp.io", []string{"bola"}},
		{"ad", []string{"ada", "bola"}},
		{"chi", []string{"chi"}},
		{"S1", []string{}},
		{"nobody", []string{}},
	}
	for _, tc := range cases {
		views, err := svc.List(context.Background(), tc.search)
		if err != nil {
			t.Fatalf("List(%q): %v", tc.search, err)
		}
		got := make([]string, 0, len(views))
		for _, v := range views {
			got = append(got, v.Username)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("List(%q): expected %v, got %v", tc.search, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("List(%q): expected %v, got %v", tc.search, tc.want, got)
			}
		}
	}
}

func TestAdminServiceGet(t *testing.T) {
	repo := newMockIdentityRepo()
	created := seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "N/8", Username: "ada", Email: "ada@x.io", Passcode: "818181"})
	svc := newTestAdminService(repo, nil, nil)

	view, err := svc.Get(context.Background(), " n/8 ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.ID != created.Identity.ID || view.Passcode != "818181" {
		t.Fatalf("unexpected view: %+v", view)
	}

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := NewAdminService(nil, nil, nil, nil, nil, nil, "NG").Get(context.Background(), "N/8"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAdminServiceUpdate(t *testing.T) {
	repo := newMockIdentityRepo()
	created := seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S1", Username: "a", Email: "a@x.io"})
	svc := newTestAdminService(repo, nil, nil)

	name := " Grace "
	phone := "0703 111 2222"
	email := "Grace@X.io"
	updated, err := svc.Update(context.Background(), "s1", UpdateIdentityInput{Name: &name, Phone: &phone, Email: &email})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Grace" || updated.Phone != "07031112222" || updated.Email != "grace@x.io" {
		t.Fatalf("unexpected normalization: %+v", updated)
	}

	stored, err := repo.GetByID(context.Background(), created.Identity.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if !VerifyPasscode(stored, created.Passcode) {
		t.Fatalf("profile updates must not touch the passcode")
	}
}

func TestAdminServiceUpdate_Validation(t *testing.T) {
	repo := newMockIdentityRepo()
	seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S1", Username: "a", Email: "a@x.io"})
	seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S2", Username: "b", Email: "b@x.io"})
	svc := newTestAdminService(repo, nil, nil)

	bad := "123"
	_, err := svc.Update(context.Background(), "S1", UpdateIdentityInput{Phone: &bad})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "phone" {
		t.Fatalf("expected phone validation error, got %v", err)
	}

	empty := " "
	if _, err := svc.Update(context.Background(), "S1", UpdateIdentityInput{Username: &empty}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	taken := "s2"
	_, err = svc.Update(context.Background(), "S1", UpdateIdentityInput{ServiceNumber: &taken})
	var dup *repository.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "service_number" {
		t.Fatalf("expected service_number conflict, got %v", err)
	}

	if _, err := svc.Update(context.Background(), "missing", UpdateIdentityInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminServiceDeactivateRevokesSession(t *testing.T) {
	repo := newMockIdentityRepo()
	created := seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S1", Username: "a", Email: "a@x.io"})
	tokens := NewTokenService("secret", time.Hour, NewMemoryTokenStore())
	svc := newTestAdminService(repo, tokens, nil)

	token, err := tokens.GetOrCreate(context.Background(), created.Identity)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	inactive := false
	updated, err := svc.Update(context.Background(), "S1", UpdateIdentityInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected identity inactive")
	}

	if _, err := tokens.Authenticate(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected revoked token, got %v", err)
	}
}

func TestAdminServiceResetPasscode(t *testing.T) {
	repo := newMockIdentityRepo()
	created := seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S1", Username: "a", Email: "a@x.io"})
	tokens := NewTokenService("secret", time.Hour, NewMemoryTokenStore())
	svc := newTestAdminService(repo, tokens, nil)

	token, err := tokens.GetOrCreate(context.Background(), created.Identity)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	reset, err := svc.ResetPasscode(context.Background(), "S1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}

	view, err := svc.Get(context.Background(), "S1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Passcode != reset.Passcode {
		t.Fatalf("expected vault to hold the new passcode %q, got %q", reset.Passcode, view.Passcode)
	}

	if _, err := tokens.Authenticate(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	if _, err := svc.ResetPasscode(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminServiceImageUploadURL(t *testing.T) {
	repo := newMockIdentityRepo()
	created := seedIdentity(t, repo, CreateIdentityInput{ServiceNumber: "S1", Username: "a", Email: "a@x.io"})

	if _, err := newTestAdminService(repo, nil, nil).ImageUploadURL(context.Background(), "S1", "image/png"); !errors.Is(err, ErrMediaUnavailable) {
		t.Fatalf("expected ErrMediaUnavailable, got %v", err)
	}

	uploader := &stubUploader{}
	svc := newTestAdminService(repo, nil, uploader)
	upload, err := svc.ImageUploadURL(context.Background(), "s1", "image/png")
	if err != nil {
		t.Fatalf("upload url: %v", err)
	}
	if uploader.lastIdentity != created.Identity.ID || uploader.lastContentType != "image/png" {
		t.Fatalf("unexpected uploader call: %+v", uploader)
	}
	if upload.UploadURL != "https://bucket.example.com/put" {
		t.Fatalf("unexpected upload url %q", upload.UploadURL)
	}

	if _, err := svc.ImageUploadURL(context.Background(), "missing", "image/png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	uploader.err = errors.New("presign failed")
	if _, err := svc.ImageUploadURL(context.Background(), "S1", "image/png"); err == nil {
		t.Fatalf("expected presign error")
	}
}
