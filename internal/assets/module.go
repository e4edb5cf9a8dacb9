// Package assets serves the files embedded in the binary, such as the
// fallback thumbnail used by carousel cards.
package assets

import (
	"embed"
	"io/fs"
	"net/http"

	apphttp "cafe_bot_backend/internal/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFiles embed.FS

const cacheControl = "public, max-age=86400"

// Module serves embedded static files under /static.
type Module struct {
	files http.FileSystem
}

// NewModule creates the assets module.
func NewModule() *Module {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("assets: " + err.Error())
	}
	return &Module{files: http.FS(sub)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assets"
}

// RegisterRoutes mounts the embedded files at /static.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Engine.Group("/static", func(c *gin.Context) {
		c.Header("Cache-Control", cacheControl)
		c.Next()
	})
	group.StaticFS("/", m.files)
}

var _ apphttp.Module = (*Module)(nil)
