package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler holds the post service dependency.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// --- Request/Response Structs ---

type CreatePostRequest struct {
	Text      string                   `json:"text"`
	Type      domain.PostType          `json:"type" binding:"omitempty,oneof=simple fencepost"`
	ChatRoom  domain.ChatRoom          `json:"chatRoom" binding:"required,oneof=regional statewide national"`
	MediaURLs []string                 `json:"mediaUrls"`
	FencePost *domain.FencePostDetails `json:"fencePost"`
}

type RainGaugeRequest struct {
	Rainfall    *float64 `json:"rainfall" binding:"required,gte=0"`
	Notes       string   `json:"notes"`
	PostToState bool     `json:"postToState"`
}

type CreateCommentRequest struct {
	Text            string  `json:"text" binding:"required"`
	ParentCommentID *string `json:"parentCommentId"`
}

type LikeResponse struct {
	Liked bool `json:"liked"`
}

// --- Handler Methods ---

// CreatePost publishes a new post to a chat room feed.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	post := &domain.Post{
		Text:      req.Text,
		Type:      req.Type,
		ChatRoom:  req.ChatRoom,
		MediaURLs: req.MediaURLs,
		FencePost: req.FencePost,
	}

	created, err := h.postService.CreatePost(c.Request.Context(), userID, post)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserBanned):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrEmptyPost), errors.Is(err, service.ErrInvalidRoom):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create post")
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// CreateRainGauge posts a rainfall reading and records it on the caller's
// profile ledger.
func (h *PostHandler) CreateRainGauge(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req RainGaugeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	posts, err := h.postService.CreateRainGauge(c.Request.Context(), userID, service.RainGaugeInput{
		Rainfall:    *req.Rainfall,
		Notes:       req.Notes,
		PostToState: req.PostToState,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserBanned):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidRainfall):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to post rain gauge reading")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"posts": posts})
}

// GetFeed lists the newest posts in a chat room.
func (h *PostHandler) GetFeed(c *gin.Context) {
	room := domain.ChatRoom(c.Param("room"))

	posts, err := h.postService.GetFeed(c.Request.Context(), room)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRoom) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load feed")
		}
		return
	}

	c.JSON(http.StatusOK, posts)
}

// DeletePost removes a post (owner or admin only).
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid post ID format")
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), userID, postID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotPostOwner):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete post")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleLike likes or unlikes a post for the caller.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid post ID format")
		return
	}

	liked, err := h.postService.ToggleLikePost(c.Request.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update like")
		}
		return
	}

	c.JSON(http.StatusOK, LikeResponse{Liked: liked})
}

// AddComment attaches a comment or reply to a post.
func (h *PostHandler) AddComment(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid post ID format")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentCommentID != nil {
		id, err := primitive.ObjectIDFromHex(*req.ParentCommentID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid parent comment ID format")
			return
		}
		parentID = &id
	}

	comment, err := h.postService.AddComment(c.Request.Context(), userID, postID, req.Text, parentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserBanned):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrPostNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add comment")
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments lists a post's comments.
func (h *PostHandler) GetComments(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid post ID format")
		return
	}

	comments, err := h.postService.GetComments(c.Request.Context(), postID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	c.JSON(http.StatusOK, comments)
}

// LikeComment records a like on a comment.
func (h *PostHandler) LikeComment(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid comment ID format")
		return
	}

	if err := h.postService.LikeComment(c.Request.Context(), userID, commentID); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to like comment")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
