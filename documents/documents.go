// Package documents is the typed client for shared department documents.
// Visibility is scoped server-side: admins see every document, everyone
// else sees their own department's.
package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudopshq/cloudops-go/session"
	"github.com/cloudopshq/cloudops-go/transport"
	"github.com/pkg/errors"
)

// Document is one uploaded file. File is the download URL; the department
// is assigned server-side from the uploader's profile.
type Document struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	File           string          `json:"file"`
	UploadedBy     session.Profile `json:"uploaded_by"`
	Department     int64           `json:"department"`
	DepartmentName string          `json:"department_name"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Service is the typed client for the document endpoints.
type Service struct {
	api *transport.Client
}

// NewService creates a document Service.
func NewService(api *transport.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[documents.NewService] transport client is required")
	}
	return &Service{api: api}, nil
}

// List fetches the documents visible to the caller.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	var page transport.Page[Document]
	if err := s.api.Get(ctx, "/documents/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Upload sends a new document as a multipart form, mirroring the browser
// upload. fileName is the client-side name; the backend stores the content
// under a generated one.
func (s *Service) Upload(ctx context.Context, title, description, fileName string, file io.Reader) (*Document, error) {
	fields := map[string]string{
		"title":       title,
		"description": description,
	}
	var document Document
	if err := s.api.PostMultipart(ctx, "/documents/", fields, "file", fileName, file, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

// Delete removes a document. Restricted server-side to admins and the
// owning department's managers.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/documents/%d/", id))
}
