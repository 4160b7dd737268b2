package accountd

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
)

// AuthController maps the account lifecycle operations onto the HTTP
// transport. Every handler produces exactly one terminal outcome: a
// single discriminated result from the core, translated into the one
// response the transport sends.
type AuthController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Mailer Mailer
	Auther SessionAuthenticator
	Tokens TokenService
	DB     *bun.DB
	Config *Config
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing session authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterAuthRoutes mounts the auth API and the health check.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	grp := app.Group("/api/v1/auth")
	grp.Post("/signup", controller.Signup)
	grp.Post("/login", controller.Login)
	grp.Post("/verify", controller.Verify)
	grp.Post("/logout",
		RequireSession(controller.Tokens, controller.Config.GetCookieName()),
		controller.Logout,
	)

	app.Get("/health", controller.Health)

	return controller
}

// SignupRequest payload
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(0, 255),
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 255),
		),
	)
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := new(SignupRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if a.Debug {
		a.Logger.Debug("signup payload", "payload", print.MaybePrettyJSON(payload))
	}

	var res *SignupResponse

	msg := SignupMessage{
		Email:    payload.Email,
		Password: payload.Password,
		BaseURL:  c.BaseURL(),
		OnResponse: func(r *SignupResponse) {
			res = r
		},
	}

	handler := NewSignupHandler(
		a.Repo,
		a.Mailer,
		a.Config.GetConfirmationTokenTTL(),
		a.Config.GetBcryptCost(),
	)

	if err := handler.Execute(c.UserContext(), msg); err != nil {
		if IsDuplicateEmail(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "an account with this email already exists",
				"value":   payload.Email,
			})
		}

		a.Logger.Error("signup failed", "email", payload.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"userId": res.AccountID,
		"email":  res.Email,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 255),
		),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	token, expiresAt, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password, payload.RememberMe)
	if err != nil {
		if isTextCode(err, ErrInvalidCredentials.TextCode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid email or password",
			})
		}

		a.Logger.Error("login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "internal server error",
		})
	}

	SetSessionCookie(c, a.Config.GetCookieName(), token, expiresAt)

	return c.JSON(fiber.Map{
		"success":     true,
		"accessToken": token,
	})
}

// VerifyRequest payload
type VerifyRequest struct {
	Token string `json:"token"`
}

// Validate will run validation rules
func (r VerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AuthController) Verify(c *fiber.Ctx) error {
	payload := new(VerifyRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("verify parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var res *VerifyResponse

	msg := VerifyMessage{
		Token: payload.Token,
		OnResponse: func(r *VerifyResponse) {
			res = r
		},
	}

	if err := NewVerifyHandler(a.Repo).Execute(c.UserContext(), msg); err != nil {
		if isTextCode(err, ErrInvalidOrExpiredToken.TextCode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token provided",
			})
		}

		a.Logger.Error("verify failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Successfully verified",
		"userId":  res.AccountID,
	})
}

// Logout clears the session cookie. The precondition (a valid session)
// is enforced by RequireSession before this handler runs.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	if _, err := SessionFromContext(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "authentication required",
		})
	}

	ClearSessionCookie(c, a.Config.GetCookieName())

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Health reports liveness of the API and its database.
func (a *AuthController) Health(c *fiber.Ctx) error {
	if a.DB != nil {
		if _, err := a.DB.ExecContext(c.UserContext(), "SELECT 1"); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "ERROR",
				"message": err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "OK",
		"message": "API and database are ok",
	})
}

func isTextCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}

	return false
}
