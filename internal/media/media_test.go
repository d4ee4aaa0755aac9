package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURLResolver(t *testing.T) {
	r, err := NewBaseURLResolver("https://dir.example.com", "/media/")
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), "profile_images/ada.png")
	require.NoError(t, err)
	assert.Equal(t, "https://dir.example.com/media/profile_images/ada.png", got)

	got, err = r.Resolve(context.Background(), "https://cdn.example.com/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", got)

	_, err = r.Resolve(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyRef)
}

func TestNewBaseURLResolver_RequiresAbsolute(t *testing.T) {
	_, err := NewBaseURLResolver("/relative", "")
	assert.Error(t, err)
}

type mockPresigner struct {
	lastGet *s3.GetObjectInput
	lastPut *s3.PutObjectInput
	err     error
}

func (m *mockPresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	m.lastGet = in
	if m.err != nil {
		return nil, m.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://s3.example.com/" + *in.Bucket + "/" + *in.Key + "?sig=get"}, nil
}

func (m *mockPresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	m.lastPut = in
	if m.err != nil {
		return nil, m.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://s3.example.com/" + *in.Bucket + "/" + *in.Key + "?sig=put"}, nil
}

func TestS3Resolver_Resolve(t *testing.T) {
	mock := &mockPresigner{}
	r := newS3Resolver(mock, "profiles", time.Minute)

	got, err := r.Resolve(context.Background(), "/profile_images/u1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/profiles/profile_images/u1/a.png?sig=get", got)
	assert.Equal(t, "profile_images/u1/a.png", *mock.lastGet.Key)

	_, err = r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyRef)
}

func TestS3Resolver_UploadURL(t *testing.T) {
	mock := &mockPresigner{}
	r := newS3Resolver(mock, "profiles", 0)

	key, url, err := r.UploadURL(context.Background(), "u1", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "profile_images/u1/"))
	assert.Contains(t, url, key)
	assert.Equal(t, "image/png", *mock.lastPut.ContentType)
	assert.Equal(t, 15*time.Minute, r.ttl)
}

func TestS3Resolver_PresignError(t *testing.T) {
	mock := &mockPresigner{err: errors.New("no creds")}
	r := newS3Resolver(mock, "profiles", time.Minute)

	_, err := r.Resolve(context.Background(), "a.png")
	assert.Error(t, err)
	_, _, err = r.UploadURL(context.Background(), "u1", "")
	assert.Error(t, err)
}
