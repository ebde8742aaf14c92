package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/atomic"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/query"
)

const (
	taskPrefix      = "task["
	uploadFileField = "task[uploadFile]"
	maxFormMemory   = 32 << 20
)

// filterRequest is a decoded /filterResult call
type filterRequest struct {
	file     string
	criteria query.Criteria
}

// FilterResult handles GET|POST /filterResult and responds with one page
func (s *Server) FilterResult(c *gin.Context) {
	req, err := s.bindFilterRequest(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	table, err := s.catalog.GetTable(req.file)
	if err != nil {
		abortWithError(c, err)
		return
	}

	page, err := s.scanner.Scan(table, req.criteria)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Datasets lists the files that can be passed as "file"
func (s *Server) Datasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": s.catalog.Names()})
}

// Health reports liveness
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindFilterRequest reads either the plain parameter form (storage, ram,
// hdisk, location, limit, offset, file) or the task[...] form submission with
// an uploaded spreadsheet.
func (s *Server) bindFilterRequest(c *gin.Context) (*filterRequest, error) {
	isTask, err := hasTaskForm(c.Request)
	if err != nil {
		return nil, NewAppError(http.StatusBadRequest, "Malformed form data", err)
	}
	if isTask {
		return s.bindTaskForm(c)
	}

	file, ok := param(c, "file")
	if !ok || file == "" {
		return nil, Forbidden("Unauthorized access")
	}

	req := &filterRequest{
		file: file,
		criteria: query.Criteria{
			Limit:  s.cfg.Scan.Limit,
			Offset: database.FirstDataRow - 1,
		},
	}
	req.criteria.Storage, _ = param(c, "storage")
	req.criteria.RAM, _ = param(c, "ram")
	req.criteria.HDisk, _ = param(c, "hdisk")
	req.criteria.Location, _ = param(c, "location")

	if v, ok := param(c, "limit"); ok {
		if req.criteria.Limit, err = strconv.Atoi(v); err != nil {
			return nil, BadRequest("Invalid limit")
		}
	}
	if v, ok := param(c, "offset"); ok {
		if req.criteria.Offset, err = strconv.Atoi(v); err != nil {
			return nil, BadRequest("Invalid offset")
		}
	}
	return req, nil
}

func (s *Server) bindTaskForm(c *gin.Context) (*filterRequest, error) {
	fh, err := c.FormFile(uploadFileField)
	if err != nil {
		return nil, BadRequest("Missing upload file")
	}
	name, err := s.saveUpload(fh)
	if err != nil {
		return nil, err
	}

	return &filterRequest{
		file: name,
		criteria: query.Criteria{
			Storage:  c.PostForm("task[storage]"),
			RAM:      strings.Join(c.PostFormArray("task[ram]"), ","),
			HDisk:    c.PostForm("task[hdisk]"),
			Location: c.PostForm("task[location]"),
			Limit:    s.cfg.Scan.Limit,
			Offset:   database.FirstDataRow - 1,
		},
	}, nil
}

// saveUpload writes an uploaded spreadsheet into the upload directory and
// registers it in the catalog under its file name.
func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	name, ok := safeFileName(fh.Filename)
	if !ok {
		return "", BadRequest("Invalid upload file name")
	}

	src, err := fh.Open()
	if err != nil {
		return "", Internal(err)
	}
	defer src.Close()

	path := filepath.Join(s.cfg.Upload.Dir, name)
	if err := atomic.WriteFile(path, src); err != nil {
		return "", Internal(err)
	}
	s.catalog.RegisterTable(name, database.NewSheetTable(path))
	s.logger.Info("upload stored", "file", name, "size", fh.Size)
	return name, nil
}

// safeFileName returns the base name of a client supplied file name and false
// if it is unusable or not an inventory file.
func safeFileName(name string) (string, bool) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := filepath.Base(name)
	if base == "" || base == "." || base == "/" || strings.Contains(base, "..") {
		return "", false
	}
	return base, database.IsInventoryFile(base)
}

// hasTaskForm parses the request body and reports whether it carries any
// task[...] field or file.
func hasTaskForm(r *http.Request) (bool, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return false, err
	}
	for key := range r.PostForm {
		if strings.HasPrefix(key, taskPrefix) {
			return true, nil
		}
	}
	if r.MultipartForm != nil {
		for key := range r.MultipartForm.File {
			if strings.HasPrefix(key, taskPrefix) {
				return true, nil
			}
		}
	}
	return false, nil
}

// param looks a parameter up in the query string, then in the body
func param(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	return c.GetPostForm(key)
}
