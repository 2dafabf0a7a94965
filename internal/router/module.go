package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area. Each module mounts its own routes,
// including any per-route middleware, onto the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
