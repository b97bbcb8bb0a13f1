package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aqilnadzmi/library-duty-api/internal/auth"
	"github.com/aqilnadzmi/library-duty-api/internal/config"
	"github.com/aqilnadzmi/library-duty-api/internal/domain/account"
	"github.com/aqilnadzmi/library-duty-api/internal/http/middlewares"
	"github.com/aqilnadzmi/library-duty-api/internal/notifications"
	"github.com/aqilnadzmi/library-duty-api/internal/observability"
	"github.com/aqilnadzmi/library-duty-api/internal/security"
)

// AccountStore is what the auth handlers need from the data layer. Kept as
// an interface so tests can fake it without a database.
type AccountStore interface {
	Create(ctx context.Context, req account.CreateAccountRequest) error
	GetByEmailAndRole(ctx context.Context, email string, role account.Role) (account.Account, error)
	GetStudentMatricNumber(ctx context.Context, userID int64) (string, error)
	ViewProfileByID(ctx context.Context, role account.Role, userID int64) (map[string]any, error)
	UpdateProfile(ctx context.Context, req account.UpdateProfileRequest) error
	GetPasswordHash(ctx context.Context, userID int64) (string, error)
	UpdatePassword(ctx context.Context, userID int64, newHash string) error
}

type TokenIssuer interface {
	GenerateToken(claims auth.Claims) (string, error)
}

// LoginGuard gates login attempts before any store access. Satisfied by
// security.LoginGuard; may be nil when no redis is configured.
type LoginGuard interface {
	Blocked(ctx context.Context, email, ip string) bool
	RecordFailure(ctx context.Context, email, ip string)
	Reset(ctx context.Context, email, ip string)
}

type AuthHandler struct {
	store    AccountStore
	jwt      TokenIssuer
	guard    LoginGuard
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger
	cfg      config.Config
}

func NewAuthHandler(store AccountStore, jwt TokenIssuer, guard LoginGuard, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		store:    store,
		jwt:      jwt,
		guard:    guard,
		notifier: notifier,
		prom:     prom,
		log:      log,
		cfg:      cfg,
	}
}

type RegisterRequest struct {
	Email               string `json:"email" binding:"required,email"`
	FirstName           string `json:"firstName" binding:"required"`
	LastName            string `json:"lastName" binding:"required"`
	Password            string `json:"password" binding:"required"`
	Role                string `json:"role" binding:"required"`
	StudentMatricNumber string `json:"studentMatricNumber"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	// historical field spelling, kept for client compatibility
	StudentMatrixNumber string `json:"studentMatrixNumber"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// Register creates an account for one of the three roles. Registration
// never logs the account in; clients go through Login afterwards.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role, err := account.ParseRole(req.Role)

	if err != nil {
		RespondBadRequest(ctx, "Invalid role.", nil)
		return
	}

	if role.RequiresMatricNumber() && req.StudentMatricNumber == "" {
		RespondBadRequest(ctx, "Student matrix number is required for student accounts", nil)
		return
	}

	hash, err := security.HashPassword(req.Password, h.cfg.BcryptCost)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "password hashing failed", "err", err)
		RespondInternal(ctx, "Registration failed", h.devDetails(err))
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err = h.store.Create(cctx, account.CreateAccountRequest{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         role,
		MatricNumber: req.StudentMatricNumber,
	})

	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			RespondConflict(ctx, "Email address already exists")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "account creation failed", "role", role, "err", err)
		RespondInternal(ctx, "Registration failed", h.devDetails(err))
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "account created", "role", role, "email", req.Email)

	if h.notifier != nil {
		// best-effort; a down provider never fails the registration
		if err := h.notifier.SendAccountWelcome(ctx.Request.Context(), notifications.SendAccountWelcomeInput{
			Email:     req.Email,
			FirstName: req.FirstName,
			Role:      string(role),
		}); err != nil {
			h.log.WarnContext(ctx.Request.Context(), "welcome notification failed", "err", err)
		}
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": string(role) + " account created successfully",
		"user": gin.H{
			"email":     req.Email,
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"role":      role,
		},
	})
}

// Login verifies credentials for a given role and issues a session token.
// A wrong role and an unknown email produce the same response so accounts
// cannot be enumerated.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ip := ctx.ClientIP()

	if h.guard != nil && h.guard.Blocked(ctx.Request.Context(), req.Email, ip) {
		h.prom.ObserveLogin(req.Role, "blocked")
		RespondError(ctx, http.StatusTooManyRequests, "Too many failed login attempts. Please try again later.", nil)
		return
	}

	role, err := account.ParseRole(req.Role)

	if err != nil {
		// an unknown role reads the same as a wrong one
		h.recordLoginFailure(ctx, req.Email, ip)
		h.prom.ObserveLogin(req.Role, "bad_credentials")
		RespondUnauthorized(ctx, "Invalid credentials or role")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	acc, err := h.store.GetByEmailAndRole(cctx, req.Email, role)

	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			h.recordLoginFailure(ctx, req.Email, ip)
			h.prom.ObserveLogin(string(role), "bad_credentials")
			RespondUnauthorized(ctx, "Invalid credentials or role")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		h.prom.ObserveLogin(string(role), "error")
		RespondInternal(ctx, "Login failed", h.devDetails(err))
		return
	}

	err = security.CheckPassword(acc.PasswordHash, req.Password)

	if err != nil {
		h.recordLoginFailure(ctx, req.Email, ip)
		h.prom.ObserveLogin(string(role), "bad_credentials")
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	matric := ""

	if role == account.RoleStudent {
		matric, err = h.store.GetStudentMatricNumber(cctx, acc.UserID)

		if err != nil && !errors.Is(err, account.ErrNoStudentDetail) {
			h.log.ErrorContext(ctx.Request.Context(), "student detail lookup failed", "userId", acc.UserID, "err", err)
			h.prom.ObserveLogin(string(role), "error")
			RespondInternal(ctx, "Login failed", h.devDetails(err))
			return
		}
		// a missing detail row just leaves the field out of the claims
	}

	claims := auth.NewClaims(acc, matric)

	token, err := h.jwt.GenerateToken(claims)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token generation failed", "userId", acc.UserID, "err", err)
		h.prom.ObserveLogin(string(role), "error")
		RespondInternal(ctx, "Login failed", h.devDetails(err))
		return
	}

	if h.guard != nil {
		h.guard.Reset(ctx.Request.Context(), req.Email, ip)
	}

	h.prom.ObserveLogin(string(role), "ok")
	h.log.InfoContext(ctx.Request.Context(), "login successful", "email", req.Email, "role", role)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    claims,
	})
}

// GetProfile returns the role-specific profile projection for the
// authenticated account.
func (h *AuthHandler) GetProfile(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Access token required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	profile, err := h.store.ViewProfileByID(cctx, claims.Role, claims.UserID)

	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			RespondNotFound(ctx, "User profile not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "profile fetch failed", "userId", claims.UserID, "err", err)
		RespondInternal(ctx, "Failed to fetch profile", h.devDetails(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profile,
	})
}

// UpdateProfile writes the submitted fields through the role's update
// procedure and echoes them back without re-reading the store.
func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Access token required")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if claims.Role.RequiresMatricNumber() && req.StudentMatrixNumber == "" {
		RespondBadRequest(ctx, "Student matrix number is required for student accounts", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.store.UpdateProfile(cctx, account.UpdateProfileRequest{
		UserID:       claims.UserID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         claims.Role,
		MatricNumber: req.StudentMatrixNumber,
	})

	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			RespondConflict(ctx, "Email address already exists")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "profile update failed", "userId", claims.UserID, "err", err)
		RespondInternal(ctx, "Profile update failed", h.devDetails(err))
		return
	}

	user := gin.H{
		"userId":    claims.UserID,
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"role":      claims.Role,
	}

	if claims.Role.RequiresMatricNumber() {
		user["studentMatrixNumber"] = req.StudentMatrixNumber
	}

	h.log.InfoContext(ctx.Request.Context(), "profile updated", "userId", claims.UserID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// UpdatePassword re-verifies the current password before persisting a new
// hash. No token is re-issued; the existing one stays valid to expiry.
func (h *AuthHandler) UpdatePassword(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Access token required")
		return
	}

	var req UpdatePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	storedHash, err := h.store.GetPasswordHash(cctx, claims.UserID)

	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "password hash fetch failed", "userId", claims.UserID, "err", err)
		RespondInternal(ctx, "Password update failed", h.devDetails(err))
		return
	}

	err = security.CheckPassword(storedHash, req.CurrentPassword)

	if err != nil {
		RespondUnauthorized(ctx, "Current password is incorrect")
		return
	}

	newHash, err := security.HashPassword(req.NewPassword, h.cfg.BcryptCost)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "password hashing failed", "err", err)
		RespondInternal(ctx, "Password update failed", h.devDetails(err))
		return
	}

	err = h.store.UpdatePassword(cctx, claims.UserID, newHash)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "password update failed", "userId", claims.UserID, "err", err)
		RespondInternal(ctx, "Password update failed", h.devDetails(err))
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "password updated", "userId", claims.UserID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}

// TestAuth echoes the verified identity; handy for clients checking that
// their bearer token still works.
func (h *AuthHandler) TestAuth(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Access token required")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication working!",
		"user":    claims,
	})
}

func (h *AuthHandler) recordLoginFailure(ctx *gin.Context, email, ip string) {
	if h.guard != nil {
		h.guard.RecordFailure(ctx.Request.Context(), email, ip)
	}
}

// devDetails surfaces the raw error only in a dev environment; production
// clients get the generic message alone.
func (h *AuthHandler) devDetails(err error) interface{} {
	if h.cfg.IsDev() && err != nil {
		return err.Error()
	}
	return nil
}
