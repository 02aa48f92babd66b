package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/domain"
)

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

type registerRequest struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Address         string `json:"address" form:"address"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type profileRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Address  string `json:"address" form:"address"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}

	user, err := h.users.Register(c.Request.Context(), domain.Registration{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
	})
	h.metrics.RecordRegistration(err == nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User Created", "user": userToResponse(*user)})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid login payload")
		return
	}

	user, token, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	h.metrics.RecordLogin(err == nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in", "user": userToResponse(*user)})
}

// logout only drops the cookie; the token itself stays valid until it expires.
func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) profile(c *gin.Context) {
	userID, _ := UserIDFromContext(c)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locals": locals("Profile", "User Profile"),
		"user":   userToResponse(*user),
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid profile payload")
		return
	}

	userID, _ := UserIDFromContext(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, domain.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locals":  locals("Profile", "User Profile"),
		"message": "Profile updated",
		"user":    userToResponse(*user),
	})
}

func (h *Handler) deleteProfile(c *gin.Context) {
	userID, _ := UserIDFromContext(c)
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   user.Address,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
