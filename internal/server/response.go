package server

import (
	"errors"
	"net/http"

	"exam-allocator/internal/allocator"
	"exam-allocator/internal/export"
	"exam-allocator/internal/models"
	"exam-allocator/internal/roster"
	"exam-allocator/internal/workspace"

	"github.com/gin-gonic/gin"
)

var errBadRequest = errors.New("bad request")

// classify maps an error to the HTTP status and the kind reported to clients.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, roster.ErrFileFormat):
		return http.StatusUnprocessableEntity, "file_format"
	case errors.Is(err, roster.ErrFormat):
		return http.StatusUnprocessableEntity, "format"
	case errors.Is(err, export.ErrUnsupportedText):
		return http.StatusUnprocessableEntity, "unsupported_text"
	case errors.Is(err, allocator.ErrInsufficientData):
		return http.StatusConflict, "insufficient_data"
	case errors.Is(err, workspace.ErrNoStudents):
		return http.StatusConflict, "no_students"
	case errors.Is(err, allocator.ErrUnknownMode),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, kind := classify(err)
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"ok": false, "kind": kind, "error": err.Error()})
}

type assignmentRow struct {
	StudentName   string `json:"student_name"`
	Pincode       int    `json:"pincode"`
	CenterName    string `json:"exam_center"`
	CenterPincode int    `json:"exam_center_pincode"`
	Distance      int    `json:"distance"`
}

func toAssignmentRows(assignments []models.Assignment) []assignmentRow {
	rows := make([]assignmentRow, len(assignments))
	for i, a := range assignments {
		rows[i] = assignmentRow{
			StudentName:   a.Student.Name,
			Pincode:       a.Student.PostalCode,
			CenterName:    a.Center.Name,
			CenterPincode: a.Center.PostalCode,
			Distance:      a.Distance,
		}
	}
	return rows
}

type rejectedRow struct {
	File   roster.Kind `json:"file"`
	Row    int         `json:"row"`
	Column string      `json:"column"`
	Value  string      `json:"value"`
	Error  string      `json:"error"`
}

func toRejectedRows(rejected []*roster.RecordError) []rejectedRow {
	rows := make([]rejectedRow, len(rejected))
	for i, r := range rejected {
		rows[i] = rejectedRow{
			File:   r.Kind,
			Row:    r.Row,
			Column: r.Column,
			Value:  r.Value,
			Error:  r.Error(),
		}
	}
	return rows
}

type centerLoadRow struct {
	CenterName    string `json:"exam_center"`
	CenterPincode int    `json:"exam_center_pincode"`
	Students      int    `json:"students"`
	MaxDistance   int    `json:"max_distance"`
}

func toCenterLoadRows(loads []models.CenterLoad) []centerLoadRow {
	rows := make([]centerLoadRow, len(loads))
	for i, l := range loads {
		rows[i] = centerLoadRow{
			CenterName:    l.Center.Name,
			CenterPincode: l.Center.PostalCode,
			Students:      l.Students,
			MaxDistance:   l.MaxDistance,
		}
	}
	return rows
}
