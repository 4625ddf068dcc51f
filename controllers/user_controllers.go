package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(svc *services.Services) *UserController {
	return &UserController{Users: svc.Users}
}

// GET /api/user?role=&is_active=&search=
func (uc *UserController) List(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	users, total, err := uc.Users.List(services.UserFilter{
		Role:     c.Query("role"),
		IsActive: queryBool(c, "is_active"),
		Search:   c.Query("search"),
	}, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "List of users", dto.Users(users), p.Meta(total))
}

func (uc *UserController) Create(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,max=255"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"required,role"`
		Phone    string `json:"phone" binding:"max=30"`
		Address  string `json:"address"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.Users.Create(services.UserInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User created", dto.User(user))
}

func (uc *UserController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.Users.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User detail", dto.User(user))
}

func (uc *UserController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
		Email   *string `json:"email" binding:"omitempty,email"`
		Phone   *string `json:"phone" binding:"omitempty,max=30"`
		Address *string `json:"address"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.Users.Update(actor(c), id, services.UserUpdate{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated", dto.User(user))
}

func (uc *UserController) UpdateRole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required,role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.Users.UpdateRole(actor(c), id, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User role updated", dto.User(user))
}

func (uc *UserController) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.Users.SetActive(actor(c), id, *req.IsActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User status updated", dto.User(user))
}

func (uc *UserController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := uc.Users.Delete(actor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", nil)
}
