package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"smartstock/internal/shared/middleware"
	"smartstock/internal/shared/token"
	"smartstock/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		switch err {
		case ErrUserAlreadyExists:
			// Duplicates surface as 400 alongside other registration input
			// problems, not 409.
			response.Error(ctx, http.StatusBadRequest, "User with this email or username already exists", nil)
		case ErrInvalidRole:
			response.Error(ctx, http.StatusBadRequest, "Unknown role", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to register user", nil)
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "User registered successfully", resp)
}

func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Error(ctx, http.StatusUnauthorized, "Invalid credentials", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to login", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Login successful", resp)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	pair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case token.ErrInvalidToken, ErrUserNotFound, ErrUserInactive:
			response.Error(ctx, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to refresh token", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Token refreshed successfully", pair)
}

func (c *Controller) ValidateToken(ctx *gin.Context) {
	var req ValidateTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	user, err := c.service.ValidateToken(ctx.Request.Context(), req.Token)
	if err != nil {
		switch err {
		case token.ErrInvalidToken, ErrUserNotFound, ErrUserInactive:
			response.Error(ctx, http.StatusUnauthorized, "Invalid or expired token", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to validate token", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Token is valid", gin.H{"user": user})
}

func (c *Controller) CheckUsers(ctx *gin.Context) {
	resp, err := c.service.CheckUsers(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to check users", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "User count retrieved", resp)
}

func (c *Controller) Logout(ctx *gin.Context) {
	var req LogoutRequest
	_ = ctx.ShouldBindJSON(&req) // Optional body

	// The raw access token travels alongside the trust headers so logout
	// can deny its jti.
	accessToken := ""
	if parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		accessToken = parts[1]
	}

	if err := c.service.Logout(ctx.Request.Context(), accessToken, req.RefreshToken); err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to logout", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Logged out successfully", nil)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	if userID == "" {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	err := c.service.ChangePassword(ctx.Request.Context(), userID, &req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Error(ctx, http.StatusUnauthorized, "Current password is incorrect", nil)
		case ErrUserNotFound:
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to change password", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Password changed successfully", nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	if userID == "" {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	user, err := c.service.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to load profile", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "User data retrieved successfully", user)
}

func (c *Controller) ListUsers(ctx *gin.Context) {
	list, err := c.service.ListUsers(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list users", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Users retrieved successfully", list)
}

func (c *Controller) GetUser(ctx *gin.Context) {
	user, err := c.service.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to load user", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "User retrieved successfully", user)
}

func (c *Controller) UpdateUserRole(ctx *gin.Context) {
	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.ValidationError(ctx, err)
		return
	}

	user, err := c.service.UpdateUserRole(ctx.Request.Context(), ctx.Param("id"), req.Role)
	if err != nil {
		switch err {
		case ErrInvalidRole:
			response.Error(ctx, http.StatusBadRequest, "Unknown role", nil)
		case ErrUserNotFound:
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to update role", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Role updated successfully", user)
}

func (c *Controller) DeactivateUser(ctx *gin.Context) {
	err := c.service.DeactivateUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch err {
		case ErrUserNotFound:
			response.Error(ctx, http.StatusNotFound, "User not found", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to deactivate user", nil)
		}
		return
	}

	response.Success(ctx, http.StatusOK, "User deactivated successfully", nil)
}
