package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

// BondService defines the bond operations exposed over HTTP.
type BondService interface {
	CreateBond(ctx context.Context, ownerID string, submitted domain.FieldSet) (*domain.Bond, error)
	UpdateBond(ctx context.Context, ownerID, id string, submitted domain.FieldSet, partial bool) (*domain.Bond, error)
	GetBond(ctx context.Context, ownerID, id string) (*domain.Bond, error)
	ListBonds(ctx context.Context, ownerID string) ([]domain.Bond, error)
	DeleteBond(ctx context.Context, ownerID, id string) error
	AnalyzePortfolio(ctx context.Context, ownerID string) (*domain.PortfolioAnalysis, error)
	VerifyIdentifier(ctx context.Context, cval string) (bool, error)
}

// UserService defines account and token operations.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, token string) (userID, sessionID string, err error)
}

type Handler struct {
	bondService BondService
	userService UserService
}

func NewHandler(bondService BondService, userService UserService) *Handler {
	return &Handler{
		bondService: bondService,
		userService: userService,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError maps service errors to status codes. Validation problems are
// always the client's fault; anything unrecognised is logged and hidden.
func writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message, Kind: string(ve.Kind)})
	case errors.Is(err, domain.ErrBondNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	case errors.Is(err, domain.ErrUserExists):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "A user with that username already exists."})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unable to log in with provided credentials."})
	default:
		slog.ErrorContext(c.Request.Context(), "Unhandled error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error."})
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
