package media

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Resolver convierte una referencia de imagen almacenada en una URL absoluta.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Uploader emite URLs de subida para imagenes de perfil.
type Uploader interface {
	UploadURL(ctx context.Context, identityID, contentType string) (key string, uploadURL string, err error)
}

var ErrEmptyRef = errors.New("empty media reference")

// BaseURLResolver resuelve referencias relativas contra la URL publica del
// servicio (p.ej. https://host/media/<ref>).
type BaseURLResolver struct {
	base *url.URL
}

func NewBaseURLResolver(publicBaseURL, mediaPath string) (*BaseURLResolver, error) {
	base, err := url.Parse(strings.TrimSpace(publicBaseURL))
	if err != nil {
		return nil, err
	}
	if !base.IsAbs() {
		return nil, errors.New("public base url must be absolute")
	}
	if mediaPath == "" {
		mediaPath = "/media/"
	}
	return &BaseURLResolver{base: base.JoinPath(mediaPath)}, nil
}

func (r *BaseURLResolver) Resolve(_ context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyRef
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref, nil
	}
	return r.base.JoinPath(ref).String(), nil
}
