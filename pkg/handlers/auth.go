package handlers

import (
	"net/http"
	"strings"
	"time"

	"portfolio-site/pkg/authapi"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionToken  = "access_token"
	sessionExpiry = "expires_at"
	sessionEmail  = "email"
)

// AuthRequired lets through requests whose session carries an unexpired
// admin token.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	token, _ := session.Get(sessionToken).(string)
	expiry, _ := session.Get(sessionExpiry).(int64)
	if token != "" && expiry != 0 && time.Now().Unix() >= expiry {
		session.Clear()
		_ = session.Save()
		token = ""
	}
	if token == "" {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
		return
	}
	c.Next()
}

func (s *Server) LoginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login.html", "Sign In", gin.H{"Enabled": s.auth != nil, "Email": ""})
}

func (s *Server) Login(c *gin.Context) {
	if s.auth == nil {
		s.render(c, http.StatusServiceUnavailable, "login.html", "Sign In", gin.H{
			"Error": "Sign-in is not configured.",
		})
		return
	}

	var form struct {
		Email    string `form:"email" binding:"required,email"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		s.render(c, http.StatusBadRequest, "login.html", "Sign In", gin.H{
			"Enabled": true,
			"Email":   form.Email,
			"Error":   "Enter your email and password.",
		})
		return
	}

	token, user, err := s.auth.SignIn(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		status := http.StatusUnauthorized
		msg := "Invalid email or password."
		if !authapi.IsStatus(err, http.StatusBadRequest) && !authapi.IsStatus(err, http.StatusUnauthorized) {
			s.log.Error("Sign-in failed", zap.String("email", form.Email), zap.Error(err))
			status = http.StatusBadGateway
			msg = "Sign-in is unavailable right now."
		}
		s.render(c, status, "login.html", "Sign In", gin.H{"Enabled": true, "Email": form.Email, "Error": msg})
		return
	}
	if !s.isAdmin(user) {
		s.log.Warn("Sign-in without admin access", zap.String("email", form.Email))
		s.render(c, http.StatusForbidden, "login.html", "Sign In", gin.H{
			"Enabled": true,
			"Email":   form.Email,
			"Error":   "This account has no admin access.",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionToken, token.AccessToken)
	if !token.Expiry.IsZero() {
		session.Set(sessionExpiry, token.Expiry.Unix())
	}
	session.Set(sessionEmail, user.Email)
	if err := session.Save(); err != nil {
		s.log.Error("Failed to save session", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to save session")
		return
	}
	s.log.Info("Admin signed in", zap.String("email", user.Email))
	c.Redirect(http.StatusFound, "/admin")
}

// isAdmin trusts only server-controlled data: the app_metadata role set
// with the service key, or the ADMIN_EMAILS allowlist.
func (s *Server) isAdmin(user *authapi.User) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || s.cfg.IsAdminEmail(user.Email)
}

func (s *Server) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}
