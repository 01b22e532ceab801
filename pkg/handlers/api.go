package handlers

import (
	"errors"
	"net/http"

	"portfolio-site/pkg/models"
	"portfolio-site/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) GetFacets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		models.TableArticles:  s.catalog.Facets(models.TableArticles),
		models.TableProjects:  s.catalog.Facets(models.TableProjects),
		models.TableResources: s.catalog.Facets(models.TableResources),
	})
}

func (s *Server) ListArticles(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Articles(c.Request.Context(), s.selection(c, models.TableArticles)))
}

func (s *Server) GetArticle(c *gin.Context) {
	d := s.catalog.Article(c.Request.Context(), c.Param("slug"))
	c.JSON(detailStatus(d.State), d)
}

func (s *Server) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Projects(c.Request.Context(), s.selection(c, models.TableProjects)))
}

func (s *Server) GetProject(c *gin.Context) {
	d := s.catalog.Project(c.Request.Context(), c.Param("slug"))
	c.JSON(detailStatus(d.State), d)
}

func (s *Server) ListResources(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Resources(c.Request.Context(), s.selection(c, models.TableResources)))
}

func detailStatus(state services.State) int {
	if state == services.StateNotFound {
		return http.StatusNotFound
	}
	return http.StatusOK
}

func (s *Server) AccessResourceJSON(c *gin.Context) {
	access, err := s.catalog.AccessResource(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}
	if err != nil {
		s.log.Error("Failed to open resource", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Resource unavailable"})
		return
	}
	c.JSON(http.StatusOK, access)
}

func (s *Server) ContactJSON(c *gin.Context) {
	var msg models.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, a valid email and message are required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.contact.Submit(c.Request.Context(), msg)})
}
