package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-api/blog"
	"blog-api/content"
	"blog-api/media"
	"blog-api/models"
)

const imageField = "featuredImage"

func (s *Server) handleListPublic(c *gin.Context) {
	posts, err := s.posts.ListPublic(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handleListMine(c *gin.Context) {
	posts, err := s.posts.ListByAuthor(c.Request.Context(), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.posts.Get(c.Request.Context(), c.Param("id"), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleGetPostForEdit(c *gin.Context) {
	post, doc, err := s.posts.GetForEdit(c.Request.Context(), c.Param("id"), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "document": doc})
}

func (s *Server) handleCreatePost(c *gin.Context) {
	in, err := s.bindPost(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	post, err := s.posts.Create(c.Request.Context(), in, identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) handleUpdatePost(c *gin.Context) {
	in, err := s.bindPost(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	post, err := s.posts.Update(c.Request.Context(), c.Param("id"), blog.UpdateInput(in), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleDeletePost(c *gin.Context) {
	if err := s.posts.Delete(c.Request.Context(), c.Param("id"), identity(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully"})
}

// bindPost reads a post from a multipart form (title, visibility, blocks,
// featuredImage) or a JSON body. A form may send stored-style HTML in
// "content" instead of blocks.
func (s *Server) bindPost(c *gin.Context) (blog.CreateInput, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		return s.bindPostForm(c)
	}

	var req models.CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return blog.CreateInput{}, badRequest(err, ErrCodeInvalidJSON)
	}
	doc, err := parseBlocks(string(req.Blocks))
	if err != nil {
		return blog.CreateInput{}, err
	}
	return blog.CreateInput{
		Title:      req.Title,
		Blocks:     doc,
		Visibility: req.Visibility,
		ImageURL:   req.FeaturedImageURL,
	}, nil
}

func (s *Server) bindPostForm(c *gin.Context) (blog.CreateInput, error) {
	limit := s.maxImageBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			e := makeAPIError(http.StatusRequestEntityTooLarge, "invalid_argument", ErrCodeRequestTooLarge, err)
			e.message = fmt.Sprintf("Image must be at most %d bytes", limit)
			e.field = "featured_image"
			return blog.CreateInput{}, e
		}
		return blog.CreateInput{}, badRequest(err, ErrCodeInvalidArgument)
	}

	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	in := blog.CreateInput{
		Title:      value("title"),
		Visibility: value("visibility"),
		ImageURL:   value("featured_image_url"),
	}
	if raw := value("blocks"); strings.TrimSpace(raw) != "" {
		if in.Blocks, err = parseBlocks(raw); err != nil {
			return blog.CreateInput{}, err
		}
	} else {
		in.Blocks = content.Decode(value("content"))
	}

	if files := form.File[imageField]; len(files) > 0 {
		img, err := readImage(files[0], limit)
		if err != nil {
			return blog.CreateInput{}, err
		}
		in.Image = img
	}
	return in, nil
}

func parseBlocks(raw string) (content.Document, error) {
	doc, err := content.ParseDocument([]byte(raw))
	if err != nil {
		e := badRequest(err, ErrCodeInvalidBlocks)
		e.field = "blocks"
		e.message = "Blocks must be editor JSON"
		return nil, e
	}
	return doc, nil
}

func readImage(fh *multipart.FileHeader, limit int64) (*media.Image, error) {
	if fh.Size > limit {
		e := badRequest(media.ErrInvalidImage, ErrCodeInvalidImage)
		e.field = "featured_image"
		e.message = fmt.Sprintf("Image must be at most %d bytes", limit)
		return nil, e
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest(err, ErrCodeInvalidImage)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, badRequest(err, ErrCodeInvalidImage)
	}
	return &media.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
