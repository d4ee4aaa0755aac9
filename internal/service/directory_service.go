package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"svcdir/internal/domain"
	"svcdir/internal/media"
)

type DirectoryReader interface {
	ListDirectory(ctx context.Context) ([]domain.Identity, error)
}

// DirectoryService lista identidades en orden de colacion.
type DirectoryService struct {
	logger     *zap.Logger
	identities DirectoryReader
	media      media.Resolver
}

func NewDirectoryService(logger *zap.Logger, identities DirectoryReader, resolver media.Resolver) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{logger: logger, identities: identities, media: resolver}
}

func (s *DirectoryService) List(ctx context.Context) ([]domain.DirectoryEntry, error) {
	if s.identities == nil {
		return nil, ErrNotConfigured
	}
	identities, err := s.identities.ListDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}

	ordered := OrderDirectory(identities)
	entries := make([]domain.DirectoryEntry, 0, len(ordered))
	for _, identity := range ordered {
		if !identity.IsActive {
			continue
		}
		entries = append(entries, domain.DirectoryEntry{
			ID:              identity.ID,
			Username:        identity.Username,
			Name:            identity.Name,
			ServiceNumber:   identity.ServiceNumber,
			Email:           identity.Email,
			Phone:           identity.Phone,
			ProfileImageRef: identity.ProfileImageRef,
			ProfileImageURL: resolveImage(ctx, s.logger, s.media, identity.ProfileImageRef),
		})
	}
	return entries, nil
}
