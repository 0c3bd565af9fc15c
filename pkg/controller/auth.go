package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storeit-dev/storeit/internal/auth"
	"github.com/storeit-dev/storeit/pkg/httputil"
	"github.com/storeit-dev/storeit/pkg/schemas"
	"github.com/storeit-dev/storeit/pkg/services"
)

func (ct *Controller) Register(c *gin.Context) {
	var req schemas.Register
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	user, appErr := ct.AuthService.Register(c.Request.Context(), &req)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (ct *Controller) LogIn(c *gin.Context) {
	var req schemas.Login
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	out, appErr := ct.AuthService.LogIn(c.Request.Context(), &req)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	ct.setSessionCookie(c, out.Token, int(ct.cnf.JWT.SessionTime.Seconds()))
	c.JSON(http.StatusOK, out)
}

func (ct *Controller) Session(c *gin.Context) {
	actor, _ := auth.CurrentActor(c)

	user, appErr := ct.AuthService.Session(c.Request.Context(), actor)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (ct *Controller) Logout(c *gin.Context) {
	claims, ok := auth.Claims(c)
	if !ok {
		httputil.NewError(c, http.StatusUnauthorized, services.ErrUnauthenticated)
		return
	}

	out, appErr := ct.AuthService.Logout(c.Request.Context(), claims.Hash)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	ct.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, out)
}

func (ct *Controller) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", false, true)
}
