package shared

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/validation"
)

const multipartMemory = 8 << 20

// ReadUpload pulls one file field out of a multipart form. Fields not larger
// than limit are read whole.
func ReadUpload(r *http.Request, field string, limit int64) (demostore.File, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return demostore.File{}, err
		}
		return demostore.File{}, invalid(field, "must be sent as multipart/form-data")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return demostore.File{}, invalid(field, "is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return demostore.File{}, err
	}
	if int64(len(data)) > limit {
		return demostore.File{}, invalid(field, fmt.Sprintf("must not exceed %d bytes", limit))
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return demostore.File{Name: filepath.Base(header.Filename), ContentType: contentType, Data: data}, nil
}

func invalid(field, reason string) error {
	v := validation.New()
	v.Add(field, reason)
	return v.Err()
}

// WriteFile sends a stored file as an attachment.
func WriteFile(w http.ResponseWriter, file demostore.File) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
