package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/domain"
	"inkwell/internal/service"
)

type PostResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type postRequest struct {
	Title string `json:"title" form:"title"`
	Body  string `json:"body" form:"body"`
}

type searchRequest struct {
	SearchTerm string `json:"searchTerm" form:"searchTerm"`
}

func (h *Handler) home(c *gin.Context) {
	page, err := h.posts.List(c.Request.Context(), service.ListQuery{
		Page: service.ParsePage(c.Query("page")),
		Sort: domain.SortNewest,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	var nextPage *int
	if n := page.NextPage(); n > 0 {
		nextPage = &n
	}
	c.JSON(http.StatusOK, gin.H{
		"locals":        locals(siteTitle, ""),
		"data":          postsToResponse(page.Items),
		"current":       page.Page,
		"nextPage":      nextPage,
		"hasNextPage":   page.HasNextPage,
		"currentRoute":  "/",
		"authenticated": h.authenticated(c),
	})
}

func (h *Handler) showPost(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.respondError(c, domain.ErrNotFound)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locals":       locals(post.Title, "Getting the post"),
		"data":         postToResponse(*post),
		"currentRoute": c.Request.URL.Path,
	})
}

func (h *Handler) sortedPosts(c *gin.Context) {
	posts, err := h.posts.All(c.Request.Context(), domain.ParseSort(c.Query("sort")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locals":       locals("Search", "Search Results"),
		"data":         postsToResponse(posts),
		"currentRoute": "/search",
	})
}

func (h *Handler) searchPosts(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid search request")
		return
	}

	posts, err := h.posts.Search(c.Request.Context(), req.SearchTerm)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locals":       locals("Search", "Search"),
		"data":         postsToResponse(posts),
		"searchTerm":   service.SanitizeSearchTerm(req.SearchTerm),
		"currentRoute": "/",
	})
}

func (h *Handler) dashboard(c *gin.Context) {
	posts, err := h.posts.All(c.Request.Context(), domain.SortNone)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locals": locals("Dashboard", "Dashboard"),
		"data":   postsToResponse(posts),
	})
}

func (h *Handler) addPostForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locals": locals("Add Post", "Add Post")})
}

func (h *Handler) createPost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid post payload")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), req.Title, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.RecordPostWrite("create")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"data":    postToResponse(*post),
	})
}

func (h *Handler) editPostForm(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.respondError(c, domain.ErrNotFound)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locals": locals("Edit Post", "Edit Post"),
		"data":   postToResponse(*post),
	})
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.respondError(c, domain.ErrNotFound)
		return
	}

	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid post payload")
		return
	}

	post, err := h.posts.Update(c.Request.Context(), id, req.Title, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.RecordPostWrite("update")

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"data":    postToResponse(*post),
	})
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid post id")
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.RecordPostWrite("delete")

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}
