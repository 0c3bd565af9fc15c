package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storeit-dev/storeit/internal/auth"
	"github.com/storeit-dev/storeit/pkg/httputil"
	"github.com/storeit-dev/storeit/pkg/schemas"
	"github.com/storeit-dev/storeit/pkg/services"
)

func (ct *Controller) UploadFile(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	header, err := c.FormFile("file")
	if err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	content, err := header.Open()
	if err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}
	defer content.Close()

	out, appErr := ct.FileService.Upload(c.Request.Context(), actor, &services.UploadInput{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
		Path:     c.PostForm("path"),
	})
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusCreated, out)
}

func (ct *Controller) ListFiles(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	var query schemas.FileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	list, appErr := ct.FileService.List(c.Request.Context(), actor, &query)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (ct *Controller) GetFile(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	out, appErr := ct.FileService.Get(c.Request.Context(), actor, c.Param("fileID"))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (ct *Controller) RenameFile(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	var req schemas.RenameFile
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	out, appErr := ct.FileService.Rename(c.Request.Context(), actor, c.Param("fileID"), &req)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (ct *Controller) UpdateFileUsers(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	var req schemas.UpdateFileUsers
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	out, appErr := ct.FileService.UpdateUsers(c.Request.Context(), actor, c.Param("fileID"), &req)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (ct *Controller) DeleteFile(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	out, appErr := ct.FileService.Delete(c.Request.Context(), actor, c.Param("fileID"), c.Query("path"))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (ct *Controller) DownloadFile(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	content, file, appErr := ct.FileService.Download(c.Request.Context(), actor, c.Param("fileID"))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, content, nil)
}
