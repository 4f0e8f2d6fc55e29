package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/filedepot/filedepot/internal/logger"
	"github.com/filedepot/filedepot/pkg/files"
	"github.com/filedepot/filedepot/pkg/metadata"
)

// writeError maps service errors to HTTP statuses with a JSON body of
// the form {"error": "..."}.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, files.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, files.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case files.IsValidation(err), files.IsBadRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// userID returns the user id stored by the auth middleware.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func (s *Server) handleStatus(c *gin.Context) {
	sessionsAlive, storeAlive := s.service.Status(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redis": sessionsAlive, "db": storeAlive})
}

func (s *Server) handleStats(c *gin.Context) {
	users, fileCount, err := s.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "files": fileCount})
}

func (s *Server) handleUsersMe(c *gin.Context) {
	user, err := s.service.UserByID(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email})
}

// createFileRequest is the upload request body. ParentID is untyped
// because clients send either the number 0 or a record id string; both
// normalize to the canonical string form.
type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// parentIDString normalizes the untyped parentId field to its canonical
// string form. Absent or zero means the root.
func parentIDString(v any) string {
	switch p := v.(type) {
	case nil:
		return metadata.RootParentID
	case string:
		if p == "" {
			return metadata.RootParentID
		}
		return p
	case float64:
		return strconv.FormatInt(int64(p), 10)
	default:
		return fmt.Sprintf("%v", p)
	}
}

func (s *Server) handleCreateFile(c *gin.Context) {
	var req createFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	record, err := s.service.CreateResource(c.Request.Context(), userID(c), files.CreateRequest{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: parentIDString(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (s *Server) handleGetFile(c *gin.Context) {
	record, err := s.service.GetResource(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleListFiles(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "0"), 10, 64)

	records, err := s.service.ListResources(c.Request.Context(), userID(c), c.Query("parentId"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handlePublish(isPublic bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := s.service.SetVisibility(c.Request.Context(), userID(c), c.Param("id"), isPublic)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (s *Server) handleReadContent(c *gin.Context) {
	// A size outside the supported set, or one that doesn't parse at
	// all, is ignored: the original content is served.
	width := 0
	if sizeParam := c.Query("size"); sizeParam != "" {
		if parsed, err := strconv.Atoi(sizeParam); err == nil {
			width = parsed
		}
	}

	content, err := s.service.ReadContent(c.Request.Context(), c.GetHeader("X-Token"), c.Param("id"), width)
	if err != nil {
		writeError(c, err)
		return
	}
	defer func() { _ = content.Reader.Close() }()

	c.DataFromReader(http.StatusOK, -1, content.MimeType, content.Reader, nil)
}
