// Package accounts implements the credential service: registration, login
// and token minting. It shares only the token codec with the todo API.
package accounts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"todoboard/domain"
	"todoboard/storage"
	"todoboard/token"
)

const (
	// tokenTTL is fixed in the issuing service; verifiers only honor the
	// embedded expiry.
	tokenTTL = 12 * time.Hour

	defaultProvider = "local"
	bcryptCost      = bcrypt.DefaultCost
	requestMaxSize  = 16 * 1024
)

// Storage abstracts the account store for handlers.
type Storage interface {
	CreateUser(ctx context.Context, username, passwordHash, email string) (domain.User, error)
	FindUser(ctx context.Context, username string) (domain.User, error)
}

// Register wires up all auth service routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, codec *token.Codec) {
	e.GET("/health", health())
	e.POST("/register", register(store, codec))
	e.POST("/login", login(store, codec))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Provider    string `json:"provider"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func register(store Storage, codec *token.Codec) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := decodeCredentials(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		}
		if req.Username == "" || req.Password == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: "username and password are required"})
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "registration failed"})
		}

		user, err := store.CreateUser(c.Request().Context(), req.Username, string(hash), req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateUsername) {
				return c.JSON(http.StatusConflict, errorResponse{Detail: "already exists"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "registration failed"})
		}
		return issueToken(c, codec, user, req.Provider)
	}
}

func login(store Storage, codec *token.Codec) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := decodeCredentials(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		}

		user, err := store.FindUser(c.Request().Context(), req.Username)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorResponse{Detail: "invalid credentials"})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "login failed"})
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Detail: "invalid credentials"})
		}
		return issueToken(c, codec, user, req.Provider)
	}
}

func issueToken(c echo.Context, codec *token.Codec, user domain.User, provider string) error {
	if provider == "" {
		provider = defaultProvider
	}
	signed, err := codec.Issue(user.Username, user.Email, provider, tokenTTL)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "token issue failed"})
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: signed, Username: user.Username, Provider: provider})
}

func decodeCredentials(c echo.Context) (credentialsRequest, error) {
	var req credentialsRequest
	lr := io.LimitReader(c.Request().Body, requestMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	if err := dec.Decode(&req); err != nil {
		return credentialsRequest{}, err
	}
	return req, nil
}
