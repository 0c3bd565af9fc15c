package mapper

import (
	"github.com/storeit-dev/storeit/pkg/models"
	"github.com/storeit-dev/storeit/pkg/schemas"
)

func ToFileOut(file *models.File) *schemas.FileOut {
	return &schemas.FileOut{
		ID:         file.ID,
		Name:       file.Name,
		Extension:  file.Extension,
		Type:       file.Type,
		MimeType:   file.MimeType,
		Size:       file.Size,
		OwnerID:    file.OwnerID,
		OwnerEmail: file.Owner.Email,
		OwnerName:  file.Owner.Name,
		BlobID:     file.BlobID,
		Users:      file.UserEmails(),
		CreatedAt:  file.CreatedAt,
		UpdatedAt:  file.UpdatedAt,
	}
}

func ToUserOut(user *models.User) *schemas.UserOut {
	return &schemas.UserOut{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
}
