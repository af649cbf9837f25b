package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/suPer8Hu/client-portal/internal/auth"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/models"
	"gorm.io/gorm"
)

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r registerReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(8, 128)),
		validation.Field(&r.Name, validation.RuneLength(0, 255)),
	)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if !bindJSON(c, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		common.Fail(c, http.StatusBadRequest, 40002, err.Error())
		return
	}

	var cnt int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).Where("email = ?", req.Email).Count(&cnt).Error; err != nil {
		_ = c.Error(err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to check email")
		return
	}
	if cnt > 0 {
		common.Fail(c, http.StatusConflict, 40900, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}
	user := models.User{Email: req.Email, Name: strings.TrimSpace(req.Name), PasswordHash: hash}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Fail(c, http.StatusConflict, 40900, "email already registered")
			return
		}
		_ = c.Error(err)
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}
	h.respondWithToken(c, &user)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 40002, "email and password required")
		return
	}

	var user models.User
	err := h.DB.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.Error(err)
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid email or password")
		return
	}

	now := time.Now()
	if err := h.DB.WithContext(c.Request.Context()).Model(&user).Update("last_login", now).Error; err != nil {
		h.Log.Warn("last login update failed", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now
	h.respondWithToken(c, &user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *models.User) {
	token, err := auth.SignJWT(user.ID, user.Role, h.Cfg.JWTSecret, h.Cfg.JWTTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token, "user": user})
}

func (h *Handler) Me(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, "id = ?", s.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		_ = c.Error(err)
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	hasProfile, err := h.Profiles.Repo().ExistsForUser(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"user": user, "onboardingCompleted": hasProfile})
}
