package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	userhandler "stockwise-system/internal/services/user/handler"
)

type UserHTTPHandler struct {
	users *userhandler.UserHandler
}

func NewUserHTTPHandler(users *userhandler.UserHandler) *UserHTTPHandler {
	return &UserHTTPHandler{
		users: users,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	RoleID    int32  `json:"role_id" binding:"required"`
}

func (s *UserHTTPHandler) success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *UserHTTPHandler) error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

func (s *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userhandler.ErrInvalidCredentials) {
			s.error(c, http.StatusUnauthorized, err.Error())
			return
		}
		s.error(c, http.StatusInternalServerError, "Failed to authenticate: "+err.Error())
		return
	}

	s.success(c, result)
}

func (s *UserHTTPHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.users.Register(c.Request.Context(), userhandler.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		RoleID:    req.RoleID,
	})
	if err != nil {
		if errors.Is(err, userhandler.ErrUserExists) || errors.Is(err, userhandler.ErrInvalidRole) {
			s.error(c, http.StatusBadRequest, err.Error())
			return
		}
		s.error(c, http.StatusInternalServerError, "Failed to register: "+err.Error())
		return
	}

	s.success(c, result)
}

func (s *UserHTTPHandler) GetUser(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := s.users.GetUser(c.Request.Context(), id)
	if err != nil {
		s.error(c, http.StatusNotFound, err.Error())
		return
	}

	s.success(c, user)
}

func (s *UserHTTPHandler) CreateRole(c *gin.Context) {
	var req userhandler.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	role, err := s.users.CreateRole(c.Request.Context(), req)
	if err != nil {
		s.error(c, http.StatusInternalServerError, "Failed to create role: "+err.Error())
		return
	}

	s.success(c, role)
}

func (s *UserHTTPHandler) ListRoles(c *gin.Context) {
	roles, err := s.users.ListRoles(c.Request.Context())
	if err != nil {
		s.error(c, http.StatusInternalServerError, "Failed to list roles: "+err.Error())
		return
	}

	s.success(c, roles)
}
