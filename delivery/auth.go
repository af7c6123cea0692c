package delivery

import (
	"errors"
	"net/http"

	"agrizen/config"
	"agrizen/domain"
	"agrizen/dto"
	"agrizen/middleware"
	"agrizen/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUseCase
}

func NewAuthHandler(r *gin.Engine, authUC domain.AuthUseCase, authLimiter middleware.RateLimiter) {
	handler := &AuthHandler{authUC: authUC}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/auth")
	if authLimiter != nil {
		public.Use(middleware.RateLimitMiddleware(authLimiter, middleware.RateLimiterConfig{
			RequestsPerWindow: 10,
			WindowDuration:    middleware.DefaultWindow,
			KeyPrefix:         "ratelimit:auth",
		}))
	}
	{
		public.POST("/register", handler.Register)
		public.POST("/login", handler.Login)
		public.POST("/otp/send", handler.SendOTP)
		public.POST("/otp/verify", handler.VerifyOTP)
	}

	protected := r.Group("/auth")
	protected.Use(config.AuthMiddleware(authUC.GetAccessTokenManager()))
	{
		protected.GET("/me", handler.Me)
	}

	admin := r.Group("/users")
	admin.Use(config.AuthMiddleware(authUC.GetAccessTokenManager()), middleware.AdminOnly())
	{
		admin.GET("", handler.ListUsers)
	}
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authUC.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   utils.TranslateDBError(err),
		})
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.MakeUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    out,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "Register", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Failed to register",
			"error":   utils.TranslateValidationError(err),
		})
		return
	}

	user, err := h.authUC.Register(c.Request.Context(), req.Name, req.Email, req.MobileNumber, req.Password, req.Role)
	if err != nil {
		utils.PrintLogInfo(&req.Email, 400, "Register", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Failed to register",
			"error":   err.Error(),
		})
		return
	}

	utils.PrintLogInfo(&req.Email, 200, "Register", nil)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Registered successfully",
		"user":    dto.MakeUserResponse(user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "Login", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request",
			"error":   utils.TranslateValidationError(err),
		})
		return
	}

	user, tokens, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.PrintLogInfo(&req.Email, 401, "Login", &err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Login failed",
			"error":   err.Error(),
		})
		return
	}

	utils.PrintLogInfo(&req.Email, 200, "Login", nil)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Login successful",
		"access_token": tokens.AccessToken,
		"user":         dto.MakeUserResponse(user),
	})
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req dto.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "SendOTP", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request",
			"error":   utils.TranslateValidationError(err),
		})
		return
	}

	channel, ok := domain.ParseChannel(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid type. Use 'email' or 'mobile'",
		})
		return
	}

	role := req.Role
	if role == "" {
		role = domain.RoleBuyer
	}

	identifier := req.Identifier(channel)
	if err := h.authUC.SendOTP(c.Request.Context(), channel, identifier, role); err != nil {
		utils.PrintLogInfo(&identifier, 400, "SendOTP", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": sendFailureMessage(channel, err),
		})
		return
	}

	utils.PrintLogInfo(&identifier, 200, "SendOTP", nil)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": sendSuccessMessage(channel),
	})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "VerifyOTP", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request",
			"error":   utils.TranslateValidationError(err),
		})
		return
	}

	channel, ok := domain.ParseChannel(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid type. Use 'email' or 'mobile'",
		})
		return
	}

	identifier := req.Identifier(channel)
	user, tokens, err := h.authUC.VerifyOTP(c.Request.Context(), channel, identifier, req.OTP)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, domain.ErrInvalidCode) || errors.Is(err, domain.ErrIdentifierRequired) {
			status = http.StatusBadRequest
		}
		utils.PrintLogInfo(&identifier, status, "VerifyOTP", &err)
		c.JSON(status, gin.H{
			"success": false,
			"message": "Failed to verify OTP",
			"error":   err.Error(),
		})
		return
	}

	utils.PrintLogInfo(&identifier, 200, "VerifyOTP", nil)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "OTP verified successfully",
		"access_token": tokens.AccessToken,
		"user":         dto.MakeUserResponse(user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	idVal, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Unauthorized: missing user context",
		})
		return
	}

	userID, ok := idVal.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Invalid user id type",
		})
		return
	}

	user, err := h.authUC.Me(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   utils.TranslateDBError(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.MakeUserResponse(user),
	})
}

func sendSuccessMessage(channel domain.Channel) string {
	if channel == domain.ChannelEmail {
		return "OTP has been sent to your email address. Please check your inbox."
	}
	return "OTP has been sent to your mobile number. Please check your SMS."
}

func sendFailureMessage(channel domain.Channel, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConfigured) && channel == domain.ChannelEmail:
		return "Failed to send OTP. Please ensure email configuration is correct."
	case errors.Is(err, domain.ErrNotConfigured):
		return "Failed to send OTP. Please ensure SMS gateway is configured correctly."
	case errors.Is(err, domain.ErrDispatchFailed):
		return "Failed to send OTP. Please try again later."
	default:
		return err.Error()
	}
}
