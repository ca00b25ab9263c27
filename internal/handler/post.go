package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/ctxkeys"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/service"
)

const (
	multipartMemory   = 32 << 20 // 32MB, larger parts spill to disk
	multipartOverhead = 1 << 20
)

type PostHandler struct {
	postService *service.PostService
	maxUpload   int64
}

// NewPostHandler bounds request bodies at the largest accepted upload.
func NewPostHandler(postService *service.PostService, limits service.UploadLimits) *PostHandler {
	return &PostHandler{
		postService: postService,
		maxUpload:   max(limits.VideoMaxBytes, limits.PDFMaxBytes) + multipartOverhead,
	}
}

type postRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        model.PostType `json:"type"`
	CategoryID  string         `json:"category_id"`
}

type updatePostResponse struct {
	Message string           `json:"message"`
	Status  model.PostStatus `json:"status"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, "")
}

// CreateTyped pins the post type, for the e-learning and works endpoints.
func (h *PostHandler) CreateTyped(postType model.PostType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.create(w, r, postType)
	}
}

func (h *PostHandler) create(w http.ResponseWriter, r *http.Request, postType model.PostType) {
	in, ok := h.readCreateInput(w, r)
	if !ok {
		return
	}
	if postType != "" {
		in.Type = postType
	}
	if in.Type == "" {
		in.Type = model.PostTypePost
	}

	post, err := h.postService.Create(r.Context(), ctxkeys.Identity(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Post created", post)
}

// readCreateInput accepts multipart forms carrying the media in the "file" field,
// and plain JSON for text-only posts.
func (h *PostHandler) readCreateInput(w http.ResponseWriter, r *http.Request) (service.CreatePostInput, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req postRequest
		if !decodeJSON(w, r, &req) {
			return service.CreatePostInput{}, false
		}
		return service.CreatePostInput{
			Title:       req.Title,
			Description: req.Description,
			Type:        req.Type,
			CategoryID:  req.CategoryID,
		}, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: "file too large"})
			return service.CreatePostInput{}, false
		}
		badRequest(w, "invalid multipart form")
		return service.CreatePostInput{}, false
	}
	defer r.MultipartForm.RemoveAll()

	in := service.CreatePostInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        model.PostType(r.FormValue("type")),
		CategoryID:  r.FormValue("category_id"),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, true
	}
	if err != nil {
		badRequest(w, "invalid file upload")
		return service.CreatePostInput{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "failed to read uploaded file")
		return service.CreatePostInput{}, false
	}

	in.Media = &service.Upload{
		Filename: header.Filename,
		Data:     data,
	}
	return in, true
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.PostType(r.URL.Query().Get("type")))
}

// ListTyped serves the feed restricted to one post type.
func (h *PostHandler) ListTyped(postType model.PostType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.list(w, r, postType)
	}
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, postType model.PostType) {
	posts, err := h.postService.List(r.Context(), ctxkeys.Identity(r.Context()), service.ListFilter{
		Type:   postType,
		UserID: r.URL.Query().Get("user_id"),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", posts)
}

func (h *PostHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Identity(r.Context())

	posts, err := h.postService.ListByUser(r.Context(), caller, caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", posts)
}

func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListByUser(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "OK", post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := h.postService.Update(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"), service.UpdatePostInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updatePostResponse{Message: "Post updated", Status: status})
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.postService.Delete(r.Context(), ctxkeys.Identity(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse{Message: "Post deleted"})
}
