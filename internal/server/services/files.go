// Package services implements the file metadata and access core: the
// transactional upload pipeline, access-scoped listing with owner
// enrichment, mutations, and usage aggregation.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/filex"
	"github.com/avoronov/storebox/internal/logging"
	"github.com/avoronov/storebox/internal/server/models"
	"github.com/avoronov/storebox/internal/server/repositories/files"
	"github.com/avoronov/storebox/internal/server/repositories/users"
	"github.com/avoronov/storebox/internal/server/storage"
)

// ownerCacheSize bounds the LRU cache in front of per-record owner lookups.
const ownerCacheSize = 512

type FileService struct {
	files      files.Repository
	users      users.Repository
	store      storage.ObjectStore
	logger     logging.Logger
	ownerCache *lru.Cache[string, *models.User]
}

func NewFileService(filesRepo files.Repository, usersRepo users.Repository, store storage.ObjectStore, logger logging.Logger) (*FileService, error) {
	cache, err := lru.New[string, *models.User](ownerCacheSize)
	if err != nil {
		return nil, err
	}
	return &FileService{
		files:      filesRepo,
		users:      usersRepo,
		store:      store,
		logger:     logger.With("module", "file_service"),
		ownerCache: cache,
	}, nil
}

func requirePrincipal(p models.Principal) error {
	if p.ID == "" {
		return common.ErrUnauthorized
	}
	return nil
}

// Upload writes the blob to object storage and then creates the metadata
// record. The two writes are never both partially visible: if the record
// insert fails, the blob written first is deleted before the failure
// propagates. If that compensating delete fails too, the orphaned blob is
// logged and the error wraps both ErrCompensationFailed and the original
// upload failure.
func (s *FileService) Upload(ctx context.Context, principal models.Principal, data []byte, name string) (*models.File, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	category, extension := filex.Classify(name)

	key, err := s.store.Put(ctx, data, name)
	if err != nil {
		s.logger.Error(ctx, "blob write failed", "op", "upload", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	record := &models.File{
		Name:         name,
		Type:         category,
		Extension:    extension,
		URL:          s.store.URL(key),
		Size:         int64(len(data)),
		Owner:        principal.ID,
		AccountID:    principal.AccountID,
		Users:        []string{},
		BucketFileID: key,
	}

	created, err := s.files.Create(ctx, record)
	if err != nil {
		s.logger.Error(ctx, "file record creation failed, compensating", "op", "upload", "key", key, "error", err)
		uploadErr := fmt.Errorf("%w: %v", common.ErrUploadFailed, err)

		if delErr := s.store.Delete(ctx, key); delErr != nil {
			// Double failure: the blob is now orphaned. The original cause
			// still propagates.
			s.logger.Error(ctx, "compensating blob delete failed, blob orphaned",
				"op", "upload", "key", key, "error", delErr)
			return nil, fmt.Errorf("%w: blob %s not removed: %w", common.ErrCompensationFailed, key, uploadErr)
		}
		return nil, uploadErr
	}

	return created, nil
}

// List returns the files visible to the principal, in store order, each
// with its owner id resolved to an identity. Owner lookups fan out
// concurrently; a lookup miss or failure degrades that record to the
// UnknownOwner sentinel instead of failing the batch.
func (s *FileService) List(ctx context.Context, principal models.Principal, opts files.ListOptions) ([]*models.EnrichedFile, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrListingFailed, err)
	}

	records, err := s.files.List(ctx, principal, opts)
	if err != nil {
		s.logger.Error(ctx, "file listing failed", "op", "list", "error", err)
		// Keep the cause in the chain so callers can still match
		// ErrInvalidSortField or ErrUnauthorized from the store layer.
		return nil, fmt.Errorf("%w: %w", common.ErrListingFailed, err)
	}

	result := make([]*models.EnrichedFile, len(records))
	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		go func(i int, record *models.File) {
			defer wg.Done()
			result[i] = &models.EnrichedFile{File: *record, OwnerInfo: s.resolveOwner(ctx, record.Owner)}
		}(i, record)
	}
	wg.Wait()

	return result, nil
}

func (s *FileService) resolveOwner(ctx context.Context, ownerID string) models.OwnerInfo {
	if user, ok := s.ownerCache.Get(ownerID); ok {
		return models.OwnerInfo{FullName: user.FullName, Email: user.Email, Avatar: user.Avatar}
	}

	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "owner lookup failed", "op", "list", "owner", ownerID, "error", err)
		}
		return models.UnknownOwner
	}

	s.ownerCache.Add(ownerID, user)
	return models.OwnerInfo{FullName: user.FullName, Email: user.Email, Avatar: user.Avatar}
}

// Rename recomputes the display name as base.extension and updates only the
// name field.
func (s *FileService) Rename(ctx context.Context, principal models.Principal, fileID, baseName, extension string) (*models.File, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	name := baseName
	if extension != "" {
		name = baseName + "." + extension
	}

	updated, err := s.files.UpdateName(ctx, fileID, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "rename failed", "op", "rename", "file", fileID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrMutationFailed, err)
	}
	return updated, nil
}

// UpdateSharing replaces the grant list wholesale. An empty list revokes
// all sharing.
func (s *FileService) UpdateSharing(ctx context.Context, principal models.Principal, fileID string, emails []string) (*models.File, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	updated, err := s.files.UpdateUsers(ctx, fileID, emails)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "sharing update failed", "op", "update_sharing", "file", fileID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrMutationFailed, err)
	}
	return updated, nil
}

// Delete removes the metadata record first and the blob second. When the
// storage key is not supplied it is resolved from the record. If the
// record deletion fails the blob is left untouched and the failure
// propagates; a blob-deletion failure after that is logged but non-fatal,
// so a dangling metadata record is never exposed.
func (s *FileService) Delete(ctx context.Context, principal models.Principal, fileID, bucketFileID string) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}

	if bucketFileID == "" {
		record, err := s.files.GetByID(ctx, fileID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", common.ErrMutationFailed, err)
		}
		bucketFileID = record.BucketFileID
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		s.logger.Error(ctx, "file record deletion failed", "op", "delete", "file", fileID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrMutationFailed, err)
	}

	if err := s.store.Delete(ctx, bucketFileID); err != nil {
		s.logger.Warn(ctx, "blob deletion failed after record removal, blob orphaned",
			"op", "delete", "file", fileID, "key", bucketFileID, "error", err)
	}

	return nil
}

// Usage folds every record visible to the principal into a per-category
// report with most-recent-modification tracking. Categories without records
// stay at zero with no timestamp.
func (s *FileService) Usage(ctx context.Context, principal models.Principal) (*models.UsageReport, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrAggregationFailed, err)
	}

	records, err := s.files.List(ctx, principal, files.ListOptions{})
	if err != nil {
		s.logger.Error(ctx, "usage listing failed", "op", "usage", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrAggregationFailed, err)
	}

	report := models.NewUsageReport()
	for _, record := range records {
		report.Add(record)
	}
	return report, nil
}
