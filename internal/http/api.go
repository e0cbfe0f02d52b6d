package http

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tkd-backend/internal/auth"
	"tkd-backend/internal/domain"
	"tkd-backend/internal/payments"
	"tkd-backend/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	payments *payments.Service
	tokens   *auth.Codec
	db       *sql.DB
	logger   *logrus.Logger
}

func NewHandler(authSvc service.AuthService, paymentSvc *payments.Service, tokens *auth.Codec, db *sql.DB, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:     authSvc,
		payments: paymentSvc,
		tokens:   tokens,
		db:       db,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.health)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	router.GET("/protected", requireAuth(h.tokens), h.protected)

	paymentGroup := router.Group("/payments", requireAuth(h.tokens))
	{
		paymentGroup.POST("", h.createPayment)
		paymentGroup.GET("", h.listPayments)
		paymentGroup.GET("/:id", h.getPayment)
	}

	adminGroup := router.Group("/admin", requireAdmin(h.tokens))
	{
		adminGroup.GET("/users", h.listUsers)
	}
}

func (h *Handler) health(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("health check: database unreachable")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "error",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and name are required"})
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		default:
			h.serverError(c, "Internal server error", err)
		}
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Message: "User created successfully",
		User:    userToResponse(result.User),
		Token:   result.Token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	result, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			h.serverError(c, "Internal server error", err)
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		User:    userToResponse(result.User),
		Token:   result.Token,
	})
}

func (h *Handler) protected(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Hello %s! You are logged in as %s", claims.Email, claims.Role),
	})
}

type createPaymentRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
}

func (h *Handler) createPayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.payments.CreatePayment(c.Request.Context(), identityFromClaims(claims), req.Amount, req.Description, req.Type)
	if err != nil {
		if errors.Is(err, payments.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.serverError(c, "Unable to create payment", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getPayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	view, err := h.payments.GetPayment(c.Request.Context(), identityFromClaims(claims), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, payments.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			h.serverError(c, "Unable to retrieve payment", err)
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) listPayments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	// an unusable limit falls back to the default; listing only fails with
	// 401 or 500
	limit := int64(payments.DefaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	views, hasMore, err := h.payments.ListPayments(c.Request.Context(), identityFromClaims(claims), limit, c.Query("starting_after"))
	if err != nil {
		h.serverError(c, "Unable to retrieve payments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": views,
		"hasMore":  hasMore,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		h.serverError(c, "Unable to list users", err)
		return
	}

	resp := make([]userResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

// serverError logs the underlying failure and returns a generic body; raw
// upstream error strings never reach clients.
func (h *Handler) serverError(c *gin.Context, message string, err error) {
	h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func identityFromClaims(claims *auth.Claims) payments.Identity {
	return payments.Identity{UserID: claims.UserID, Email: claims.Email}
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}
