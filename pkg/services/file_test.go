package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/storeit-dev/storeit/internal/cache"
	"github.com/storeit-dev/storeit/internal/database"
	"github.com/storeit-dev/storeit/pkg/models"
	"github.com/storeit-dev/storeit/pkg/schemas"
	"github.com/storeit-dev/storeit/pkg/types"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
	getErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (s *fakeBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeBlobStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeRefresher struct {
	paths []string
}

func (r *fakeRefresher) Refresh(_ context.Context, path string) {
	r.paths = append(r.paths, path)
}

type FileServiceSuite struct {
	suite.Suite
	db        *gorm.DB
	blobs     *fakeBlobStore
	cacher    cache.Cacher
	refresher *fakeRefresher
	srv       *FileService

	owner  *types.Actor
	member *types.Actor
}

func (s *FileServiceSuite) SetupTest() {
	s.db = database.NewTestDatabase(s.T())
	s.blobs = newFakeBlobStore()
	s.cacher = cache.NewMemoryCache(8 * 1024 * 1024)
	s.refresher = &fakeRefresher{}
	s.srv = NewFileService(s.db, s.blobs, s.cacher, s.refresher)

	s.owner = s.createUser("owner-1", "owner@example.com", "Owner")
	s.member = s.createUser("member-1", "member@example.com", "Member")
}

func (s *FileServiceSuite) createUser(id, email, name string) *types.Actor {
	user := models.User{ID: id, Email: email, Name: name, PasswordHash: "x"}
	s.Require().NoError(s.db.Create(&user).Error)
	return &types.Actor{ID: id, Email: email, Name: name}
}

func (s *FileServiceSuite) upload(actor *types.Actor, name, content string) *schemas.FileOut {
	out, appErr := s.srv.Upload(context.Background(), actor, &UploadInput{
		Name:     name,
		Size:     int64(len(content)),
		MimeType: "application/octet-stream",
		Content:  strings.NewReader(content),
		Path:     "/files",
	})
	s.Require().Nil(appErr)
	return out
}

func (s *FileServiceSuite) share(fileID string, emails ...string) {
	for _, email := range emails {
		s.Require().NoError(s.db.Create(&models.FileGrant{FileID: fileID, Email: email}).Error)
	}
}

func (s *FileServiceSuite) TestUpload() {
	out := s.upload(s.owner, "report.pdf", "pdf-bytes")

	s.Equal("report.pdf", out.Name)
	s.Equal("pdf", out.Extension)
	s.Equal("document", out.Type)
	s.Equal(s.owner.ID, out.OwnerID)
	s.NotEmpty(out.BlobID)
	s.Equal(1, s.blobs.len())
	s.Equal([]string{"/files"}, s.refresher.paths)
}

func (s *FileServiceSuite) TestUploadBlobFailure() {
	s.blobs.putErr = errors.New("endpoint down")

	_, appErr := s.srv.Upload(context.Background(), s.owner, &UploadInput{
		Name: "a.txt", Content: strings.NewReader("x"), Path: "/files",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusBadGateway, appErr.Code)

	var count int64
	s.Require().NoError(s.db.Model(&models.File{}).Count(&count).Error)
	s.Zero(count)
	s.Empty(s.refresher.paths)
}

func (s *FileServiceSuite) TestUploadRecordFailureRollsBackBlob() {
	s.Require().NoError(s.db.Migrator().DropTable(&models.File{}))

	_, appErr := s.srv.Upload(context.Background(), s.owner, &UploadInput{
		Name: "a.txt", Content: strings.NewReader("x"), Path: "/files",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusInternalServerError, appErr.Code)
	s.Zero(s.blobs.len(), "blob must be rolled back when the record write fails")
	s.Empty(s.refresher.paths)
}

func (s *FileServiceSuite) TestUploadRecordFailureKeepsOriginalError() {
	s.Require().NoError(s.db.Migrator().DropTable(&models.File{}))
	s.blobs.delErr = errors.New("cleanup also failed")

	_, appErr := s.srv.Upload(context.Background(), s.owner, &UploadInput{
		Name: "a.txt", Content: strings.NewReader("x"), Path: "/files",
	})
	s.Require().NotNil(appErr)
	s.NotEqual(s.blobs.delErr, appErr.Error, "record error must win over cleanup error")
}

func (s *FileServiceSuite) TestListOwnerAndGrantee() {
	mine := s.upload(s.owner, "mine.txt", "a")
	shared := s.upload(s.owner, "shared.txt", "b")
	s.share(shared.ID, s.member.Email)
	other := s.createUser("other-1", "other@example.com", "Other")
	s.upload(other, "theirs.txt", "c")

	list, appErr := s.srv.List(context.Background(), s.owner, &schemas.FileQuery{})
	s.Require().Nil(appErr)
	s.Len(list.Files, 2)

	list, appErr = s.srv.List(context.Background(), s.member, &schemas.FileQuery{})
	s.Require().Nil(appErr)
	s.Require().Len(list.Files, 1)
	s.Equal(shared.ID, list.Files[0].ID)
	s.Equal(s.owner.Email, list.Files[0].OwnerEmail)
	s.Equal([]string{s.member.Email}, list.Files[0].Users)

	_ = mine
}

func (s *FileServiceSuite) TestListFilters() {
	s.upload(s.owner, "notes.txt", "a")
	s.upload(s.owner, "photo.png", "bb")
	s.upload(s.owner, "song.mp3", "ccc")

	list, appErr := s.srv.List(context.Background(), s.owner, &schemas.FileQuery{Type: "image,audio"})
	s.Require().Nil(appErr)
	s.Len(list.Files, 2)

	list, appErr = s.srv.List(context.Background(), s.owner, &schemas.FileQuery{Search: "PHO"})
	s.Require().Nil(appErr)
	s.Require().Len(list.Files, 1)
	s.Equal("photo.png", list.Files[0].Name)

	list, appErr = s.srv.List(context.Background(), s.owner, &schemas.FileQuery{Sort: "size", Order: "asc"})
	s.Require().Nil(appErr)
	s.Require().Len(list.Files, 3)
	s.Equal("notes.txt", list.Files[0].Name)
	s.Equal("song.mp3", list.Files[2].Name)

	list, appErr = s.srv.List(context.Background(), s.owner, &schemas.FileQuery{Limit: 2})
	s.Require().Nil(appErr)
	s.Len(list.Files, 2)
}

func (s *FileServiceSuite) TestListFailurePropagates() {
	s.Require().NoError(s.db.Migrator().DropTable(&models.File{}))

	list, appErr := s.srv.List(context.Background(), s.owner, &schemas.FileQuery{})
	s.Require().NotNil(appErr, "a broken store must not read as an empty listing")
	s.Nil(list)
	s.Equal(http.StatusInternalServerError, appErr.Code)

	// the cached variant propagates too
	list, appErr = s.srv.List(context.Background(), s.owner, &schemas.FileQuery{Path: "/files"})
	s.Require().NotNil(appErr)
	s.Nil(list)
	s.Equal(http.StatusInternalServerError, appErr.Code)
}

func (s *FileServiceSuite) TestListCachedViewRefresh() {
	srv := NewFileService(s.db, s.blobs, s.cacher, NewViewRefresher(s.cacher))

	file, appErr := srv.Upload(context.Background(), s.owner, &UploadInput{
		Name: "doc.txt", Size: 1, MimeType: "text/plain",
		Content: strings.NewReader("a"), Path: "/files",
	})
	s.Require().Nil(appErr)

	query := &schemas.FileQuery{Path: "/files"}
	list, appErr := srv.List(context.Background(), s.owner, query)
	s.Require().Nil(appErr)
	s.Require().Len(list.Files, 1)
	s.Equal("doc.txt", list.Files[0].Name)

	// a write that bypasses the service stays invisible until a refresh
	s.Require().NoError(s.db.Model(&models.File{}).
		Where("id = ?", file.ID).Update("name", "sneaky.txt").Error)

	list, appErr = srv.List(context.Background(), s.owner, query)
	s.Require().Nil(appErr)
	s.Require().Len(list.Files, 1)
	s.Equal("doc.txt", list.Files[0].Name, "second read must be served from the cache")

	_, appErr = srv.Rename(context.Background(), s.owner, file.ID, &schemas.RenameFile{Name: "fresh", Path: "/files"})
	s.Require().Nil(appErr)

	list, appErr = srv.List(context.Background(), s.owner, query)
	s.Require().Nil(appErr)
	s.Require().Len(list.Files, 1)
	s.Equal("fresh.txt", list.Files[0].Name, "rename must invalidate the cached listing")
}

func (s *FileServiceSuite) TestRename() {
	file := s.upload(s.owner, "draft.txt", "a")

	out, appErr := s.srv.Rename(context.Background(), s.owner, file.ID, &schemas.RenameFile{Name: "final", Path: "/files"})
	s.Require().Nil(appErr)
	s.Equal("final.txt", out.Name)

	out, appErr = s.srv.Rename(context.Background(), s.owner, file.ID, &schemas.RenameFile{Name: "done.txt", Path: "/files"})
	s.Require().Nil(appErr)
	s.Equal("done.txt", out.Name, "suffix must not be doubled")

	var stored models.File
	s.Require().NoError(s.db.First(&stored, "id = ?", file.ID).Error)
	s.Equal("done.txt", stored.Name)
}

func (s *FileServiceSuite) TestRenameOnlyOwner() {
	file := s.upload(s.owner, "draft.txt", "a")
	s.share(file.ID, s.member.Email)

	_, appErr := s.srv.Rename(context.Background(), s.member, file.ID, &schemas.RenameFile{Name: "hijacked", Path: "/files"})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusForbidden, appErr.Code)
	s.ErrorIs(appErr.Error, ErrOnlyOwner)
}

func (s *FileServiceSuite) TestRenameMissingFile() {
	_, appErr := s.srv.Rename(context.Background(), s.owner, "nope", &schemas.RenameFile{Name: "x", Path: "/files"})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *FileServiceSuite) TestShareAppend() {
	file := s.upload(s.owner, "doc.txt", "a")

	out, appErr := s.srv.UpdateUsers(context.Background(), s.owner, file.ID, &schemas.UpdateFileUsers{
		Emails: []string{s.member.Email, s.owner.Email},
		Mode:   "append",
		Path:   "/files",
	})
	s.Require().Nil(appErr)
	s.Equal([]string{s.member.Email}, out.Users, "owner email must never enter the list")
}

func (s *FileServiceSuite) TestShareNoOpSkipsWrite() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.share(file.ID, s.member.Email)
	s.refresher.paths = nil

	out, appErr := s.srv.UpdateUsers(context.Background(), s.owner, file.ID, &schemas.UpdateFileUsers{
		Emails: []string{s.member.Email},
		Mode:   "append",
		Path:   "/files",
	})
	s.Require().Nil(appErr)
	s.Equal([]string{s.member.Email}, out.Users)
	s.Empty(s.refresher.paths, "no-op reconciliation must not refresh")
}

func (s *FileServiceSuite) TestShareSelfRemoval() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.share(file.ID, s.member.Email, "third@example.com")

	out, appErr := s.srv.UpdateUsers(context.Background(), s.member, file.ID, &schemas.UpdateFileUsers{
		Emails: []string{"third@example.com"},
		Mode:   "overwrite",
		Path:   "/files",
	})
	s.Require().Nil(appErr)
	s.Equal([]string{"third@example.com"}, out.Users)

	list, appErr := s.srv.List(context.Background(), s.member, &schemas.FileQuery{})
	s.Require().Nil(appErr)
	s.Empty(list.Files, "removed member must no longer see the file")
}

func (s *FileServiceSuite) TestShareNonOwnerCannotRemoveOthers() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.share(file.ID, s.member.Email, "third@example.com")

	_, appErr := s.srv.UpdateUsers(context.Background(), s.member, file.ID, &schemas.UpdateFileUsers{
		Emails: []string{s.member.Email},
		Mode:   "overwrite",
		Path:   "/files",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusForbidden, appErr.Code)
	s.ErrorIs(appErr.Error, ErrOnlySelfRemoval)
}

func (s *FileServiceSuite) TestShareNonOwnerCannotAdd() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.share(file.ID, s.member.Email)

	_, appErr := s.srv.UpdateUsers(context.Background(), s.member, file.ID, &schemas.UpdateFileUsers{
		Emails: []string{"intruder@example.com"},
		Mode:   "append",
		Path:   "/files",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusForbidden, appErr.Code)
}

func (s *FileServiceSuite) TestShareStrangerRejected() {
	file := s.upload(s.owner, "doc.txt", "a")
	stranger := s.createUser("stranger-1", "stranger@example.com", "Stranger")

	_, appErr := s.srv.UpdateUsers(context.Background(), stranger, file.ID, &schemas.UpdateFileUsers{
		Emails: []string{"stranger@example.com"},
		Mode:   "append",
		Path:   "/files",
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusForbidden, appErr.Code)
	s.ErrorIs(appErr.Error, ErrNotShared)
}

func (s *FileServiceSuite) TestDelete() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.share(file.ID, s.member.Email)

	_, appErr := s.srv.Delete(context.Background(), s.owner, file.ID, "/files")
	s.Require().Nil(appErr)

	var count int64
	s.Require().NoError(s.db.Model(&models.File{}).Count(&count).Error)
	s.Zero(count)
	s.Require().NoError(s.db.Model(&models.FileGrant{}).Count(&count).Error)
	s.Zero(count, "grants must go with the record")
	s.Zero(s.blobs.len())
}

func (s *FileServiceSuite) TestDeleteSurvivesBlobFailure() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.blobs.delErr = errors.New("endpoint down")

	_, appErr := s.srv.Delete(context.Background(), s.owner, file.ID, "/files")
	s.Require().Nil(appErr, "orphaned blob is acceptable, resurrected record is not")

	var count int64
	s.Require().NoError(s.db.Model(&models.File{}).Count(&count).Error)
	s.Zero(count)
}

func (s *FileServiceSuite) TestDeleteOnlyOwner() {
	file := s.upload(s.owner, "doc.txt", "a")
	s.share(file.ID, s.member.Email)

	_, appErr := s.srv.Delete(context.Background(), s.member, file.ID, "/files")
	s.Require().NotNil(appErr)
	s.Equal(http.StatusForbidden, appErr.Code)

	var count int64
	s.Require().NoError(s.db.Model(&models.File{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *FileServiceSuite) TestDownload() {
	file := s.upload(s.owner, "doc.txt", "hello")

	content, out, appErr := s.srv.Download(context.Background(), s.owner, file.ID)
	s.Require().Nil(appErr)
	defer content.Close()

	data, err := io.ReadAll(content)
	s.Require().NoError(err)
	s.Equal("hello", string(data))
	s.Equal("doc.txt", out.Name)
}

func (s *FileServiceSuite) TestDownloadMissingBlob() {
	file := s.upload(s.owner, "doc.txt", "hello")
	s.blobs.getErr = errors.New("endpoint down")

	_, _, appErr := s.srv.Download(context.Background(), s.owner, file.ID)
	s.Require().NotNil(appErr)
	s.Equal(http.StatusBadGateway, appErr.Code)
}

func (s *FileServiceSuite) TestNilActor() {
	_, appErr := s.srv.List(context.Background(), nil, &schemas.FileQuery{})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusUnauthorized, appErr.Code)
}

func TestFileServiceSuite(t *testing.T) {
	suite.Run(t, new(FileServiceSuite))
}
