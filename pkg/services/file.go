package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeit-dev/storeit/internal/access"
	"github.com/storeit-dev/storeit/internal/blobstore"
	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/category"
	"github.com/storeit-dev/storeit/internal/database"
	"github.com/storeit-dev/storeit/internal/logging"
	"github.com/storeit-dev/storeit/pkg/mapper"
	"github.com/storeit-dev/storeit/pkg/models"
	"github.com/storeit-dev/storeit/pkg/schemas"
	"github.com/storeit-dev/storeit/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService orchestrates every file mutation. Authorization is always
// evaluated against a record loaded here, never against a caller-supplied
// snapshot.
type FileService struct {
	db        *gorm.DB
	blobs     blobstore.Store
	cache     cache.Cacher
	refresher Refresher
}

func NewFileService(db *gorm.DB, blobs blobstore.Store, cacher cache.Cacher, refresher Refresher) *FileService {
	return &FileService{db: db, blobs: blobs, cache: cacher, refresher: refresher}
}

// UploadInput carries one incoming file. Content is streamed to the blob
// store as-is.
type UploadInput struct {
	Name     string
	Size     int64
	MimeType string
	Content  io.Reader
	Path     string
}

var sortColumns = map[string]string{
	"name":      "name",
	"size":      "size",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Upload writes the blob first and then the record. When the record write
// fails the blob is deleted best-effort and the record error is returned.
func (fs *FileService) Upload(ctx context.Context, actor *types.Actor, in *UploadInput) (*schemas.FileOut, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}

	blobID := uuid.NewString()
	if err := fs.blobs.Put(ctx, blobID, in.Content, in.Size, in.MimeType); err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusBadGateway}
	}

	file := models.File{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Extension: category.Extension(in.Name),
		Type:      string(category.Get(in.Name)),
		MimeType:  in.MimeType,
		Size:      in.Size,
		OwnerID:   actor.ID,
		BlobID:    blobID,
	}

	if err := fs.db.WithContext(ctx).Create(&file).Error; err != nil {
		if cleanupErr := fs.blobs.Delete(ctx, blobID); cleanupErr != nil {
			logging.FromContext(ctx).Warn("failed to roll back blob after record create failure",
				zap.String("blobId", blobID), zap.Error(cleanupErr))
		}
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	fs.refresher.Refresh(ctx, in.Path)

	file.Owner = models.User{ID: actor.ID, Email: actor.Email, Name: actor.Name}
	return mapper.ToFileOut(&file), nil
}

// List returns the files the actor owns or is granted, with optional type,
// search, sort and limit. Failures propagate so callers can tell "no files"
// from "failed to load".
//
// When the query carries a path token the rendered listing is cached under
// the path's view generation. Refresh drops the generation key, which
// strands every listing cached under it; stranded entries age out on their
// own TTL.
func (fs *FileService) List(ctx context.Context, actor *types.Actor, query *schemas.FileQuery) (*schemas.FileList, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}
	if query.Path == "" {
		return fs.queryFiles(ctx, actor, query)
	}

	gen, err := cache.Fetch(fs.cache, cache.KeyView(query.Path), time.Hour, func() (int64, error) {
		return time.Now().UnixNano(), nil
	})
	if err != nil {
		// cache trouble never hides the listing
		logging.FromContext(ctx).Warn("listing cache unavailable",
			zap.String("path", query.Path), zap.Error(err))
		return fs.queryFiles(ctx, actor, query)
	}

	fingerprint := fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		actor.Email, query.Type, query.Search, query.Sort, query.Order, query.Limit)

	var appErr *types.AppError
	list, err := cache.Fetch(fs.cache, cache.KeyList(query.Path, gen, fingerprint), time.Minute,
		func() (schemas.FileList, error) {
			fresh, qErr := fs.queryFiles(ctx, actor, query)
			if qErr != nil {
				appErr = qErr
				return schemas.FileList{}, qErr.Error
			}
			return *fresh, nil
		})
	if appErr != nil {
		return nil, appErr
	}
	if err != nil {
		logging.FromContext(ctx).Warn("listing cache read failed",
			zap.String("path", query.Path), zap.Error(err))
		return fs.queryFiles(ctx, actor, query)
	}
	return &list, nil
}

func (fs *FileService) queryFiles(ctx context.Context, actor *types.Actor, query *schemas.FileQuery) (*schemas.FileList, *types.AppError) {
	q := fs.db.WithContext(ctx).Model(&models.File{}).
		Joins("LEFT JOIN file_grants ON file_grants.file_id = files.id AND file_grants.email = ?", actor.Email).
		Where("files.owner_id = ? OR file_grants.email = ?", actor.ID, actor.Email)

	if query.Type != "" {
		q = q.Where("files.type IN ?", strings.Split(query.Type, ","))
	}
	if query.Search != "" {
		q = q.Where("LOWER(files.name) LIKE ?", "%"+strings.ToLower(query.Search)+"%")
	}

	column, ok := sortColumns[query.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(query.Order, "asc") {
		direction = "ASC"
	}
	q = q.Order("files." + column + " " + direction)

	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var files []models.File
	if err := q.Preload("Owner").Preload("Grants").Find(&files).Error; err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	out := make([]schemas.FileOut, 0, len(files))
	for i := range files {
		out = append(out, *mapper.ToFileOut(&files[i]))
	}
	return &schemas.FileList{Files: out, Total: len(out)}, nil
}

// Get returns a single record. Details are open to anyone the listing
// already surfaced the file to.
func (fs *FileService) Get(ctx context.Context, actor *types.Actor, fileID string) (*schemas.FileOut, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}
	file, appErr := fs.load(ctx, fileID)
	if appErr != nil {
		return nil, appErr
	}
	return mapper.ToFileOut(file), nil
}

// Rename changes the display name, appending the stored extension when the
// new name does not already end with it.
func (fs *FileService) Rename(ctx context.Context, actor *types.Actor, fileID string, in *schemas.RenameFile) (*schemas.FileOut, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}

	file, appErr := fs.load(ctx, fileID)
	if appErr != nil {
		return nil, appErr
	}

	if !access.CanPerform(access.ActionRename, fileView(file), actor.Email) {
		return nil, &types.AppError{Error: ErrOnlyOwner, Code: http.StatusForbidden}
	}

	newName := in.Name
	if file.Extension != "" && !strings.HasSuffix(newName, "."+file.Extension) {
		newName += "." + file.Extension
	}

	if err := fs.db.WithContext(ctx).Model(file).Update("name", newName).Error; err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	fs.refresher.Refresh(ctx, in.Path)

	file.Name = newName
	return mapper.ToFileOut(file), nil
}

// UpdateUsers reconciles the authorized-user list. A no-op reconciliation
// returns the unchanged record without touching the store.
func (fs *FileService) UpdateUsers(ctx context.Context, actor *types.Actor, fileID string, in *schemas.UpdateFileUsers) (*schemas.FileOut, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}

	file, appErr := fs.load(ctx, fileID)
	if appErr != nil {
		return nil, appErr
	}

	mode := access.Mode(in.Mode)
	if mode == "" {
		mode = access.ModeAppend
	}

	res, err := access.Reconcile(file.UserEmails(), in.Emails, file.Owner.Email, actor.Email, mode)
	if err != nil {
		appErr := &types.AppError{Error: ErrOnlySelfRemoval, Code: http.StatusForbidden}
		if err == access.ErrNotShared {
			appErr.Error = ErrNotShared
		}
		return nil, appErr
	}

	if res.NoOp {
		return mapper.ToFileOut(file), nil
	}

	grants := make([]models.FileGrant, 0, len(res.Users))
	for _, email := range res.Users {
		grants = append(grants, models.FileGrant{FileID: file.ID, Email: email})
	}

	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", file.ID).Delete(&models.FileGrant{}).Error; err != nil {
			return err
		}
		if len(grants) == 0 {
			return nil
		}
		return tx.Create(&grants).Error
	})
	if err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	fs.refresher.Refresh(ctx, in.Path)

	file.Grants = grants
	return mapper.ToFileOut(file), nil
}

// Delete removes the record first; only a confirmed record deletion
// triggers the blob delete. A failed blob delete leaves an orphaned blob,
// which is preferred over resurrecting an unauthorized record, so it is
// logged and the delete still succeeds.
func (fs *FileService) Delete(ctx context.Context, actor *types.Actor, fileID, path string) (*schemas.Message, *types.AppError) {
	if actor == nil {
		return nil, unauthenticated()
	}

	file, appErr := fs.load(ctx, fileID)
	if appErr != nil {
		return nil, appErr
	}

	if !access.CanPerform(access.ActionDelete, fileView(file), actor.Email) {
		return nil, &types.AppError{Error: ErrOnlyOwner, Code: http.StatusForbidden}
	}

	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", file.ID).Delete(&models.FileGrant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.File{}, "id = ?", file.ID).Error
	})
	if err != nil {
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}

	if err := fs.blobs.Delete(ctx, file.BlobID); err != nil {
		logging.FromContext(ctx).Warn("record deleted but blob delete failed, blob orphaned",
			zap.String("fileId", file.ID), zap.String("blobId", file.BlobID), zap.Error(err))
	}

	fs.refresher.Refresh(ctx, path)

	return &schemas.Message{Message: "file deleted"}, nil
}

// Download streams the blob content together with the record describing it.
func (fs *FileService) Download(ctx context.Context, actor *types.Actor, fileID string) (io.ReadCloser, *schemas.FileOut, *types.AppError) {
	if actor == nil {
		return nil, nil, unauthenticated()
	}

	file, appErr := fs.load(ctx, fileID)
	if appErr != nil {
		return nil, nil, appErr
	}

	content, err := fs.blobs.Get(ctx, file.BlobID)
	if err != nil {
		return nil, nil, &types.AppError{Error: err, Code: http.StatusBadGateway}
	}

	return content, mapper.ToFileOut(file), nil
}

func (fs *FileService) load(ctx context.Context, fileID string) (*models.File, *types.AppError) {
	var file models.File
	err := fs.db.WithContext(ctx).Preload("Owner").Preload("Grants").
		Where("id = ?", fileID).First(&file).Error
	if err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, &types.AppError{Error: ErrFileNotFound, Code: http.StatusNotFound}
		}
		return nil, &types.AppError{Error: err, Code: http.StatusInternalServerError}
	}
	return &file, nil
}

func fileView(file *models.File) access.FileView {
	return access.FileView{OwnerEmail: file.Owner.Email, Users: file.UserEmails()}
}
