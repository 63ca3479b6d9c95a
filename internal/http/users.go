package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/helper"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/security"
)

type tokenReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tokenResp struct {
	Token string `json:"token"`
}

// IssueToken godoc
// @Summary Issue an access token for a signed-in user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body tokenReq true "identity claims"
// @Success 200 {object} tokenResp
// @Failure 400 {object} map[string]string
// @Router /jwt [post]
func (h *Handler) IssueToken(c *gin.Context) {
	var in tokenReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	tok, err := h.Tokens.Issue(security.Claims{Email: strings.TrimSpace(in.Email), Name: in.Name})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokenResp{Token: tok})
}

// RegisterUser godoc
// @Summary Register a user (idempotent by email)
// @Tags users
// @Accept json
// @Produce json
// @Param payload body domain.User true "user document"
// @Success 200 {object} domain.WriteResult
// @Failure 400 {object} map[string]string
// @Router /users [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var u domain.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	// privileges are granted by admins and payments, never self-declared
	u.Role, u.Premium = domain.RoleUnset, false

	res, created, err := h.Store.CreateUserIfAbsent(c.Request.Context(), &u)
	if err != nil {
		h.fail(c, "register user", err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "user already exist"})
		return
	}
	h.publish(c, queue.KeyUserRegistered, queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name})
	c.JSON(http.StatusOK, res)
}

// publish sends an event without failing the request.
func (h *Handler) publish(c *gin.Context, key string, ev any) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, key, ev, c.GetString(requestIDKey)); err != nil {
		zap.L().Warn("publish failed", zap.String("key", key), zap.Error(err))
	}
}

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.User
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Fetch a user by email (null when absent)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param email path string true "email"
// @Success 200 {object} domain.User
// @Router /user/{email} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Store.FindUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// IsAdmin godoc
// @Summary Whether the caller is an admin
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param email path string true "caller email"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} map[string]string
// @Router /users/admin/{email} [get]
func (h *Handler) IsAdmin(c *gin.Context) { h.hasRole(c, domain.RoleAdmin, "admin") }

// IsModerator godoc
// @Summary Whether the caller is a moderator
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param email path string true "caller email"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} map[string]string
// @Router /users/moderator/{email} [get]
func (h *Handler) IsModerator(c *gin.Context) { h.hasRole(c, domain.RoleModerator, "moderator") }

func (h *Handler) hasRole(c *gin.Context, role domain.Role, key string) {
	p, err := mustPrincipal(c)
	if err != nil {
		unauthorized(c, "no_principal")
		return
	}
	email := c.Param("email")
	if email != p.Email {
		forbidden(c, "probe_other_user")
		return
	}
	u, err := h.Store.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		h.fail(c, "role probe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: u != nil && u.Role == role})
}

// UpVoteStatus godoc
// @Summary Whether a user has up-voted a product
// @Tags votes
// @Produce json
// @Param id path string true "product id"
// @Param email query string true "voter email"
// @Success 200 {boolean} bool
// @Router /users/upVoteStatus/{id} [get]
func (h *Handler) UpVoteStatus(c *gin.Context) {
	ok, err := h.Voting.HasUpVoted(c.Request.Context(), c.Param("id"), c.Query("email"))
	if err != nil {
		h.fail(c, "vote status", err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func (h *Handler) DownVoteStatus(c *gin.Context) {
	ok, err := h.Voting.HasDownVoted(c.Request.Context(), c.Param("id"), c.Query("email"))
	if err != nil {
		h.fail(c, "vote status", err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

// UpdateUserRole godoc
// @Summary Set a user's role
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Param role query string true "admin | moderator | user"
// @Success 200 {object} domain.WriteResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /user/updateUser/{id} [patch]
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	role, err := domain.ParseRole(c.Query("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Store.SetUserRole(c.Request.Context(), id, role)
	if err != nil {
		h.fail(c, "update role", err)
		return
	}
	if p, ok := PrincipalFrom(c); ok {
		zap.L().Info("role changed",
			zap.String("user_id", id.Hex()), zap.String("role", string(role)),
			zap.String("by", helper.EmailTag(p.Email)))
	}
	c.JSON(http.StatusOK, res)
}

// AppendUpVote godoc
// @Summary Record a product id in a user's up-vote set
// @Tags votes
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Param email query string true "voter email"
// @Success 200 {object} domain.WriteResult
// @Router /users/upVotes/{id} [patch]
func (h *Handler) AppendUpVote(c *gin.Context) { h.appendVote(c, domain.VoteUp) }

func (h *Handler) AppendDownVote(c *gin.Context) { h.appendVote(c, domain.VoteDown) }

func (h *Handler) appendVote(c *gin.Context, dir domain.VoteDirection) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	res, err := h.Store.AppendVote(c.Request.Context(), email, id.Hex(), dir)
	if err != nil {
		h.fail(c, "append vote", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
