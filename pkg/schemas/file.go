package schemas

import (
	"time"
)

type FileQuery struct {
	Type   string `form:"type"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
	Limit  int    `form:"limit"`
	Path   string `form:"path"`
}

type RenameFile struct {
	Name string `json:"name" binding:"required"`
	Path string `json:"path" binding:"required"`
}

type UpdateFileUsers struct {
	Emails []string `json:"emails"`
	Mode   string   `json:"mode" binding:"omitempty,oneof=append overwrite"`
	Path   string   `json:"path" binding:"required"`
}

type FileOut struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension,omitempty"`
	Type       string    `json:"type"`
	MimeType   string    `json:"mimeType,omitempty"`
	Size       int64     `json:"size"`
	OwnerID    string    `json:"ownerId"`
	OwnerEmail string    `json:"ownerEmail"`
	OwnerName  string    `json:"ownerName,omitempty"`
	BlobID     string    `json:"blobId"`
	Users      []string  `json:"users"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type FileList struct {
	Files []FileOut `json:"files"`
	Total int       `json:"total"`
}
