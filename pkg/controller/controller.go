// Package controller holds the gin handlers. They bind input, call the
// services and translate AppErrors to HTTP; no business rules live here.
package controller

import (
	"github.com/storeit-dev/storeit/internal/config"
	"github.com/storeit-dev/storeit/pkg/services"
)

type Controller struct {
	AuthService *services.AuthService
	FileService *services.FileService

	cnf *config.ServerCmdConfig
}

func NewController(cnf *config.ServerCmdConfig, authService *services.AuthService, fileService *services.FileService) *Controller {
	return &Controller{
		AuthService: authService,
		FileService: fileService,
		cnf:         cnf,
	}
}
