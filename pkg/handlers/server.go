package handlers

import (
	"context"
	"crypto/rand"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"portfolio-site/pkg/authapi"
	"portfolio-site/pkg/config"
	"portfolio-site/pkg/services"
	"portfolio-site/templates"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const sessionName = "portfolio_session"

// Authenticator signs admins in. It is nil when no auth API is configured.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*oauth2.Token, *authapi.User, error)
}

// Server holds what the HTTP handlers need.
type Server struct {
	cfg     *config.Config
	catalog *services.Catalog
	contact *services.Contact
	auth    Authenticator
	md      *services.Markdown
	log     *zap.Logger
}

func NewServer(cfg *config.Config, catalog *services.Catalog, contact *services.Contact, auth Authenticator, log *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		catalog: catalog,
		contact: contact,
		auth:    auth,
		md:      services.NewMarkdown(),
		log:     log,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := templates.Load(template.FuncMap{
		"markdown":   s.md.Render,
		"formatDate": formatDate,
		"join":       strings.Join,
	})
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(RequestLogger(s.log), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	secret := []byte(s.cfg.SessionSecret)
	if len(secret) == 0 {
		s.log.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	}
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((12 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.cfg.AppURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// Images referenced from imported content.
	if s.cfg.ContentDir != "" {
		r.Static("/media", filepath.Join(s.cfg.ContentDir, "media"))
	}

	// --- Pages ---
	r.GET("/", s.HomePage)
	r.GET("/articles", s.ArticlesPage)
	r.GET("/articles/:slug", s.ArticlePage)
	r.GET("/projects", s.ProjectsPage)
	r.GET("/projects/:slug", s.ProjectPage)
	r.GET("/resources", s.ResourcesPage)
	r.POST("/resources/:id/access", s.AccessResource)
	r.POST("/contact", s.ContactSubmit)
	r.GET("/404", s.NotFound)

	// --- Auth Routes ---
	r.GET("/login", s.LoginPage)
	r.POST("/login", s.Login)
	r.GET("/logout", s.Logout)

	admin := r.Group("/admin")
	admin.Use(AuthRequired)
	{
		admin.GET("", s.AdminPage)
		admin.POST("/cache/invalidate", s.InvalidateCache)
	}

	// --- JSON API ---
	api := r.Group("/api")
	{
		api.GET("/facets", s.GetFacets)
		api.GET("/articles", s.ListArticles)
		api.GET("/articles/:slug", s.GetArticle)
		api.GET("/projects", s.ListProjects)
		api.GET("/projects/:slug", s.GetProject)
		api.GET("/resources", s.ListResources)
		api.POST("/resources/:id/access", s.AccessResourceJSON)
		api.POST("/contact", s.ContactJSON)
		api.POST("/admin/cache/invalidate", AuthRequired, s.InvalidateCache)
	}

	r.NoRoute(s.NotFound)
	return r, nil
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("Request", fields...)
		case status >= 400:
			log.Warn("Request", fields...)
		default:
			log.Debug("Request", fields...)
		}
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// render adds the fields every page layout reads.
func (s *Server) render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Path"] = c.Request.URL.Path
	data["Year"] = time.Now().Year()
	if email, ok := sessions.Default(c).Get(sessionEmail).(string); ok {
		data["AdminEmail"] = email
	}
	c.HTML(status, name, data)
}

func (s *Server) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	s.render(c, http.StatusNotFound, "not_found.html", "Page Not Found", gin.H{
		"Message":  "The page you are looking for does not exist.",
		"Back":     "/",
		"BackText": "Back to home",
	})
}
