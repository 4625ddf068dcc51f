package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/middlewares"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(svc *services.Services) *AuthController {
	return &AuthController{Auth: svc.Auth}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"max=30"`
	Address  string `json:"address"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := ac.Auth.Register(services.RegisterInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Registration successful", dto.User(user))
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ac.Auth.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       dto.User(res.User),
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.Auth.Logout(c.Request.Context(), c.GetString(middlewares.KeyToken)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("User %d logged out", middlewares.UserID(c))
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Auth.Me(middlewares.UserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current user", dto.User(user))
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ac.Auth.ChangePassword(middlewares.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}
