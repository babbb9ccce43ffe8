package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"social-analytics/models"
	"social-analytics/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ImportRequest is the JSON body of POST /v1/imports.
type ImportRequest struct {
	Files []models.UploadFile `json:"files" validate:"required,min=1,dive"`
}

// PostsRequest is the JSON body of POST /v1/posts.
type PostsRequest struct {
	Posts   []models.APIPost  `json:"posts" validate:"dive"`
	Profile models.APIProfile `json:"profile"`
	Days    int               `json:"days" validate:"omitempty,min=1,max=365"`
}

// FileFailure describes one rejected file.
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// ImportResponse reports the outcome of an import batch.
type ImportResponse struct {
	BatchID  string                 `json:"batchId"`
	Imported []services.FileSummary `json:"imported"`
	Failed   []FileFailure          `json:"failed"`
	Files    []string               `json:"files,omitempty"`
	Summary  *models.Summary        `json:"summary,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newImportResponse(res *services.ImportResult) *ImportResponse {
	resp := &ImportResponse{
		BatchID:  res.BatchID,
		Imported: res.Imported,
		Failed:   make([]FileFailure, 0, len(res.Failed)),
	}
	if resp.Imported == nil {
		resp.Imported = []services.FileSummary{}
	}
	for _, fe := range res.Failed {
		resp.Failed = append(resp.Failed, FileFailure{
			File:   fe.File,
			Reason: fe.Reason(),
			Error:  fe.Err.Error(),
		})
	}
	return resp
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
