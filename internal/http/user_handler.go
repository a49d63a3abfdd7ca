package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"account-api/internal/domain"
	"account-api/internal/repository"
	"account-api/internal/service"
)

// invalidCredentialsMessage es la única respuesta de fallo de autenticación:
// no distingue usuario inexistente de password incorrecto.
const invalidCredentialsMessage = "Invalid combination of username/password"

// UserHandler mantiene dependencias para los endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	strategy service.CredentialStrategy
	sessions *service.SessionService
	devMode  bool
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, strategy service.CredentialStrategy, sessions *service.SessionService, devMode bool) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		strategy: strategy,
		sessions: sessions,
		devMode:  devMode,
	}
}

// Signup maneja POST /user/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		Email     string `json:"email"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		// RawMessage para rechazar cualquier forma del valor, string o
		// numérica, con el mensaje específico.
		SignupDate    json.RawMessage `json:"signupdate"`
		LastLoginDate json.RawMessage `json:"lastlogindate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required information"})
		return
	}
	// Los timestamps los fija solo el servidor; un valor del cliente es un
	// request rechazado, no un campo ignorado.
	if len(req.SignupDate) > 0 || len(req.LastLoginDate) > 0 {
		field := "signupdate"
		if len(req.LastLoginDate) > 0 {
			field = "lastlogindate"
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Can't set the field " + field})
		return
	}

	user, err := h.userServ.Signup(c.Request.Context(), service.SignupInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		var vErr *service.ValidationError
		var dErr *repository.DuplicateError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"message": vErr.Message})
		case errors.As(err, &dErr):
			c.JSON(http.StatusBadRequest, gin.H{"message": dErr.Error()})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	h.attachSession(c, user)
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Login maneja POST /user/login. Una sesión válida hace del login un no-op
// que devuelve la identidad embebida; sin sesión se verifican credenciales.
func (h *UserHandler) Login(c *gin.Context) {
	if claims, ok := GetSessionClaims(c); ok {
		identity := claims.Identity()
		c.JSON(http.StatusOK, gin.H{
			"username":  identity.Username,
			"firstname": identity.Firstname,
			"lastname":  identity.Lastname,
		})
		return
	}

	user, ok := h.verifyCredentials(c)
	if !ok {
		return
	}

	h.attachSession(c, user)
	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"firstname": user.Firstname,
		"lastname":  user.Lastname,
	})
}

// Signout maneja POST /user/signout. Con sesión: revoca y limpia la cookie.
// Sin sesión: acepta credenciales como camino alternativo.
func (h *UserHandler) Signout(c *gin.Context) {
	if _, ok := GetSessionClaims(c); ok {
		if token, err := c.Cookie(sessionCookieName); err == nil {
			if err := h.sessions.Revoke(token); err != nil {
				h.logger.Warn("session revoke failed", zap.Error(err))
			}
		}
		clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "User successfully signed out"})
		return
	}

	if _, ok := h.verifyCredentials(c); !ok {
		return
	}
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "User successfully signed out"})
}

// Update maneja POST /user/update. Requiere credenciales; username y password
// se descartan del patch y los timestamps restringidos son un 400.
func (h *UserHandler) Update(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required information"})
		return
	}

	user, err := h.strategy.Verify(c.Request.Context(), body["username"], body["password"])
	if err != nil {
		h.rejectCredentials(c, err)
		return
	}

	updated, err := h.userServ.UpdateProfile(c.Request.Context(), user.Username, body)
	if err != nil {
		var vErr *service.ValidationError
		var dErr *repository.DuplicateError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"message": vErr.Message})
		case errors.As(err, &dErr):
			c.JSON(http.StatusBadRequest, gin.H{"message": dErr.Error()})
		case errors.Is(err, service.ErrNothingToUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unable updating user information."})
		default:
			h.logger.Error("update profile failed", zap.String("username", user.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": updated.Username})
}

// UpdatePassword maneja POST /user/pupdate. Las comprobaciones de campos van
// antes de autenticar; la identidad sale del body o de la sesión vigente.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		Username        string `json:"username"`
		Password        string `json:"password"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required information"})
		return
	}

	if err := service.ValidatePasswordChange(req.Password, req.NewPassword, req.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	identity := req.Username
	if identity == "" {
		if claims, ok := GetSessionClaims(c); ok {
			identity = claims.Username
		}
	}

	user, err := h.strategy.Verify(c.Request.Context(), identity, req.Password)
	if err != nil {
		h.rejectCredentials(c, err)
		return
	}

	updated, err := h.userServ.ChangePassword(c.Request.Context(), user.Username, req.Password, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"message": vErr.Message})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unable updating user password."})
		default:
			h.logger.Error("update password failed", zap.String("username", user.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": updated.Username})
}

// Delete maneja POST /user/delete.
func (h *UserHandler) Delete(c *gin.Context) {
	user, ok := h.verifyCredentials(c)
	if !ok {
		return
	}

	if err := h.userServ.Delete(c.Request.Context(), user.Username); err != nil {
		h.logger.Error("delete user failed", zap.String("username", user.Username), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error deleting the user"})
		return
	}
	clearSessionCookie(c)
	c.Status(http.StatusOK)
}

// GetAll maneja GET /dev/user/getall; fuera de dev/test no existe.
func (h *UserHandler) GetAll(c *gin.Context) {
	if !h.devMode {
		c.Status(http.StatusNotFound)
		return
	}
	profiles, err := h.userServ.ListProfiles(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	c.JSON(http.StatusOK, profiles)
}

// verifyCredentials lee username/password del body y los verifica con la
// estrategia local. Responde el 401/500 correspondiente cuando falla.
func (h *UserHandler) verifyCredentials(c *gin.Context) (domain.User, bool) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": invalidCredentialsMessage})
		return domain.User{}, false
	}

	user, err := h.strategy.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.rejectCredentials(c, err)
		return domain.User{}, false
	}
	return user, true
}

func (h *UserHandler) rejectCredentials(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": invalidCredentialsMessage})
		return
	}
	h.logger.Error("credential verification failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// attachSession emite la cookie de sesión para el usuario autenticado. Un
// fallo al firmar no tumba la respuesta: el usuario puede autenticarse por
// credenciales en el siguiente request.
func (h *UserHandler) attachSession(c *gin.Context, user domain.User) {
	if h.sessions == nil {
		return
	}
	token, err := h.sessions.Mint(user)
	if err != nil {
		h.logger.Warn("session mint failed", zap.String("username", user.Username), zap.Error(err))
		return
	}
	setSessionCookie(c, token, int(h.sessions.TTL().Seconds()))
}
