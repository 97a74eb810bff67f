package handler

import (
	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
	"hustle/internal/middleware"
	"hustle/internal/service"
)

// sessionUser returns the authenticated user, writing 401 when there is none.
func sessionUser(c *gin.Context) (*domain.User, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok || session.User.ID == "" {
		respondError(c, service.ErrUnauthorized)
		return nil, false
	}
	return &session.User, true
}

// requireSelf checks that userID names the caller. It writes 403 otherwise.
func requireSelf(c *gin.Context, userID string) (*domain.User, bool) {
	user, ok := sessionUser(c)
	if !ok {
		return nil, false
	}
	if user.ID != userID {
		respondError(c, service.ErrForbidden)
		return nil, false
	}
	return user, true
}

// sessionRunner returns the runner profile of the caller. Accounts without
// one get 403.
func sessionRunner(c *gin.Context, runners *service.RunnerService) (*domain.Runner, bool) {
	user, ok := sessionUser(c)
	if !ok {
		return nil, false
	}
	runner, err := runners.ForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return runner, true
}

// requireOwnRunner checks that runnerID is the caller's runner profile.
func requireOwnRunner(c *gin.Context, runners *service.RunnerService, runnerID string) (*domain.Runner, bool) {
	runner, ok := sessionRunner(c, runners)
	if !ok {
		return nil, false
	}
	if runner.ID != runnerID {
		respondError(c, service.ErrForbidden)
		return nil, false
	}
	return runner, true
}
