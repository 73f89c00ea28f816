package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/errors"
	"github.com/HapoSeiz/AlertShip/pkg/logger"
	"github.com/HapoSeiz/AlertShip/pkg/response"
)

func (h *Handlers) handleSignup(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "name is required"
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = "passwords do not match"
	}
	if len(fields) > 0 {
		response.FailFields(c, "please fix the highlighted fields", fields)
		return
	}

	user, err := models.CreateUser(h.db, req.Email, req.Name, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, models.ErrEmailTaken) {
			status = http.StatusConflict
		}
		response.Fail(c, status, errors.GetMessage(err))
		return
	}

	// No session until the email is verified.
	response.Created(c, gin.H{
		"uid":     user.UID,
		"message": "check your inbox to verify your email",
	})
}

func (h *Handlers) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := models.AuthenticateUser(h.db, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrNotVerified) {
			response.Fail(c, http.StatusForbidden, errors.GetMessage(err))
			return
		}
		response.Fail(c, http.StatusUnauthorized, errors.GetMessage(err))
		return
	}

	if err := models.TouchLastLogin(h.db, user); err != nil {
		logger.Warn("update last login failed", zap.Error(err))
	}
	if err := models.Login(c, user); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not open session")
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (h *Handlers) handleGoogleLogin(c *gin.Context) {
	if h.verifier == nil {
		response.Fail(c, http.StatusServiceUnavailable, errors.GetMessage(models.ErrGoogleUnavailable))
		return
	}
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, errors.GetMessage(err))
		return
	}
	if !identity.EmailVerified {
		response.Fail(c, http.StatusUnauthorized, "Google account email is not verified")
		return
	}

	user, err := models.UpsertGoogleUser(h.db, identity)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not sign in")
		return
	}
	if err := models.TouchLastLogin(h.db, user); err != nil {
		logger.Warn("update last login failed", zap.Error(err))
	}
	if err := models.Login(c, user); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not open session")
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (h *Handlers) handleVerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, "token is required")
		return
	}
	user, err := models.ConsumeToken(h.db, token, models.TokenVerifyEmail)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, errors.GetMessage(err))
		return
	}
	if err := models.MarkVerified(h.db, user); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not verify email")
		return
	}
	response.Success(c, gin.H{"message": "email verified, you can sign in now"})
}

func (h *Handlers) handleResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// A generic reply regardless of account existence.
	reply := func() {
		response.Success(c, gin.H{"message": "if the account exists, a mail is on its way"})
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil {
		reply()
		return
	}
	if err := models.MarkVerificationSent(h.db, user); err != nil {
		if errors.Is(err, models.ErrResendTooSoon) {
			response.Fail(c, http.StatusTooManyRequests, errors.GetMessage(err))
			return
		}
		reply()
		return
	}
	token, err := models.IssueToken(h.db, user, models.TokenVerifyEmail)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	link := h.verifyLink(token.Token)
	go func() {
		if err := h.mailer.SendVerificationEmail(user.Email, user.Name, link); err != nil {
			logger.Warn("send verification mail failed", zap.Error(err))
		}
	}()
	reply()
}

func (h *Handlers) handlePasswordResetRequest(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if user, err := models.GetUserByEmail(h.db, req.Email); err == nil {
		token, terr := models.IssueToken(h.db, user, models.TokenPasswordReset)
		if terr == nil {
			link := h.resetLink(token.Token)
			go func() {
				if err := h.mailer.SendPasswordResetEmail(user.Email, link); err != nil {
					logger.Warn("send reset mail failed", zap.Error(err))
				}
			}()
		}
	}
	response.Success(c, gin.H{"message": "if the account exists, a mail is on its way"})
}

func (h *Handlers) handlePasswordResetConfirm(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := models.ConsumeToken(h.db, req.Token, models.TokenPasswordReset)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, errors.GetMessage(err))
		return
	}
	if err := models.SetPassword(h.db, user, req.Password); err != nil {
		response.Fail(c, http.StatusBadRequest, errors.GetMessage(err))
		return
	}
	response.Success(c, gin.H{"message": "password updated, you can sign in now"})
}

func (h *Handlers) handleLogout(c *gin.Context) {
	if err := models.Logout(c); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not clear session")
		return
	}
	response.Success(c, gin.H{"message": "signed out"})
}

func (h *Handlers) handleUserInfo(c *gin.Context) {
	response.Success(c, gin.H{"user": models.CurrentUser(c)})
}

func (h *Handlers) handleUserUpdate(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		response.Fail(c, http.StatusBadRequest, "name is required")
		return
	}
	user := models.CurrentUser(c)
	if err := models.UpdateProfile(h.db, user, req.Name); err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not update profile")
		return
	}
	response.Success(c, gin.H{"user": user})
}
