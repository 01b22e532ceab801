package handlers

import (
	"errors"
	"net/http"
	"strings"

	"portfolio-site/pkg/models"
	"portfolio-site/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// selection reads the facet values and search text of a listing request.
func (s *Server) selection(c *gin.Context, collection string) services.Selection {
	return services.NewSelection(s.catalog.Facets(collection), c.Query, c.Query("q"))
}

func (s *Server) HomePage(c *gin.Context) {
	home := s.catalog.Home(c.Request.Context())
	s.render(c, http.StatusOK, "home.html", "Home", gin.H{"Home": home})
}

func (s *Server) ArticlesPage(c *gin.Context) {
	l := s.catalog.Articles(c.Request.Context(), s.selection(c, models.TableArticles))
	s.render(c, http.StatusOK, "articles.html", "Articles", gin.H{"Listing": l})
}

func (s *Server) ArticlePage(c *gin.Context) {
	d := s.catalog.Article(c.Request.Context(), c.Param("slug"))
	if d.State == services.StateNotFound {
		s.notFound(c, "Article", "/articles", "Back to articles")
		return
	}
	s.render(c, http.StatusOK, "article.html", d.Record.Title, gin.H{
		"Detail":   d,
		"ShareURL": services.ShareLink(s.cfg.AppURL, models.TableArticles, d.Record.Slug),
	})
}

func (s *Server) ProjectsPage(c *gin.Context) {
	l := s.catalog.Projects(c.Request.Context(), s.selection(c, models.TableProjects))
	s.render(c, http.StatusOK, "projects.html", "Projects", gin.H{"Listing": l})
}

func (s *Server) ProjectPage(c *gin.Context) {
	d := s.catalog.Project(c.Request.Context(), c.Param("slug"))
	if d.State == services.StateNotFound {
		s.notFound(c, "Project", "/projects", "Back to projects")
		return
	}
	s.render(c, http.StatusOK, "project.html", d.Record.Title, gin.H{"Detail": d})
}

func (s *Server) ResourcesPage(c *gin.Context) {
	l := s.catalog.Resources(c.Request.Context(), s.selection(c, models.TableResources))
	s.render(c, http.StatusOK, "resources.html", "Resources", gin.H{"Listing": l})
}

// AccessResource counts a download and sends the browser to the resource.
func (s *Server) AccessResource(c *gin.Context) {
	access, err := s.catalog.AccessResource(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		s.notFound(c, "Resource", "/resources", "Back to resources")
		return
	}
	if err != nil {
		s.log.Error("Failed to open resource", zap.String("id", c.Param("id")), zap.Error(err))
		s.render(c, http.StatusBadGateway, "not_found.html", "Unavailable", gin.H{
			"Message":  "This resource is unavailable right now. Please try again later.",
			"Back":     "/resources",
			"BackText": "Back to resources",
		})
		return
	}
	if access.Target == "" {
		c.Redirect(http.StatusSeeOther, "/resources")
		return
	}
	c.Redirect(http.StatusSeeOther, access.Target)
}

func (s *Server) ContactSubmit(c *gin.Context) {
	var msg models.ContactMessage
	if err := c.ShouldBind(&msg); err != nil {
		s.render(c, http.StatusBadRequest, "contact.html", "Contact", gin.H{
			"Form":  msg,
			"Error": "Please fill in your name, a valid email and a message.",
		})
		return
	}
	ack := s.contact.Submit(c.Request.Context(), msg)
	s.render(c, http.StatusOK, "contact.html", "Contact", gin.H{"Ack": ack})
}

func (s *Server) AdminPage(c *gin.Context) {
	msgs, err := s.contact.Recent(c.Request.Context(), 50)
	if err != nil {
		s.log.Error("Failed to list contact messages", zap.Error(err))
		msgs = []models.ContactMessage{}
	}
	s.render(c, http.StatusOK, "admin.html", "Admin", gin.H{
		"Persisting":  s.contact.Persisting(),
		"Messages":    msgs,
		"Invalidated": c.Query("invalidated") != "",
	})
}

// InvalidateCache drops the cached collections so the next request refetches.
func (s *Server) InvalidateCache(c *gin.Context) {
	s.catalog.Invalidate()
	s.log.Info("Collection cache invalidated")
	if c.FullPath() == "/api/admin/cache/invalidate" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin?invalidated=1")
}

func (s *Server) notFound(c *gin.Context, kind, back, backText string) {
	s.render(c, http.StatusNotFound, "not_found.html", kind+" Not Found", gin.H{
		"Message":  "The " + strings.ToLower(kind) + " you are looking for does not exist or is no longer published.",
		"Back":     back,
		"BackText": backText,
	})
}
