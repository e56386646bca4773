package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint. Paths are served with and without a
// trailing slash. metrics may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	router.RedirectTrailingSlash = false

	users := router.Group("/api/users")
	{
		handle(users, http.MethodPost, "/register", handler.Register)
		handle(users, http.MethodPost, "/login", handler.Login)
		handle(users, http.MethodPost, "/logout", handler.RequireAuth(), handler.Logout)
	}

	bonds := router.Group("/api/bonds", handler.RequireAuth())
	{
		handle(bonds, http.MethodGet, "/manage", handler.ListBonds)
		handle(bonds, http.MethodPost, "/manage", handler.CreateBond)
		handle(bonds, http.MethodGet, "/manage/:id", handler.GetBond)
		handle(bonds, http.MethodPut, "/manage/:id", handler.ReplaceBond)
		handle(bonds, http.MethodPatch, "/manage/:id", handler.PatchBond)
		handle(bonds, http.MethodDelete, "/manage/:id", handler.DeleteBond)

		handle(bonds, http.MethodGet, "/analysis", handler.AnalyzePortfolio)
		handle(bonds, http.MethodGet, "/registry/:cval", handler.VerifyIdentifier)
	}

	router.GET("/health", handler.Health)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
}

func handle(group *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	path = strings.TrimSuffix(path, "/")
	group.Handle(method, path, handlers...)
	group.Handle(method, path+"/", handlers...)
}
