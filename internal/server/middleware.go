package server

import (
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storefront/internal/observability/obscontext"
	"github.com/smallbiznis/storefront/internal/usercontext"
)

// AuthRequired resolves the session token into an identity and rejects the
// request when none is present or valid.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			s.recordAuthFailure(c, "missing_credentials")
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.attachIdentity(c, token); err != nil {
			s.recordAuthFailure(c, "invalid_session")
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// AuthOptional attaches an identity when a valid session token is present and
// lets anonymous requests through untouched.
func (s *Server) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := s.sessions.ReadToken(c); ok {
			// Reads stay public even when a stale cookie is sent along.
			_ = s.attachIdentity(c, token)
		}
		c.Next()
	}
}

func (s *Server) attachIdentity(c *gin.Context, token string) error {
	ctx := c.Request.Context()

	sess, err := s.authsvc.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	// A live session whose user is gone still reads as unauthenticated.
	user, err := s.authsvc.GetUser(ctx, sess.UserID)
	if err != nil {
		return ErrUnauthorized
	}

	ctx = usercontext.WithIdentity(ctx, usercontext.Identity{
		UserID:  user.ID,
		IsStaff: user.IsStaff,
	})
	ctx = obscontext.WithActor(ctx, "user", user.ID.String())
	c.Request = c.Request.WithContext(ctx)
	return nil
}

func (s *Server) recordAuthFailure(c *gin.Context, reason string) {
	if s.obsMetrics == nil {
		return
	}
	s.obsMetrics.RecordAuthFailure(c.Request.Context(), reason)
}
