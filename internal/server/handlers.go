package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"exam-allocator/internal/allocator"
	"exam-allocator/internal/export"
	"exam-allocator/internal/models"
	"exam-allocator/internal/roster"
	"exam-allocator/internal/workspace"

	"github.com/gin-gonic/gin"
)

func (s *Server) uploadStudents(c *gin.Context) {
	ws := s.workspace(c)
	ws.Log("Students file received.")

	file, format, err := s.formFile(c)
	if err != nil {
		s.rejectUpload(c, ws, roster.KindStudents, err)
		return
	}
	defer file.Close()

	r, err := roster.ReadStudents(file, format)
	if err != nil {
		s.rejectUpload(c, ws, roster.KindStudents, err)
		return
	}
	ws.SetStudents(r)
	s.acceptUpload(c, ws, roster.KindStudents, len(r.Students), r.Rejected)
}

func (s *Server) uploadCenters(c *gin.Context) {
	ws := s.workspace(c)
	ws.Log("Exam centers file received.")

	file, format, err := s.formFile(c)
	if err != nil {
		s.rejectUpload(c, ws, roster.KindCenters, err)
		return
	}
	defer file.Close()

	r, err := roster.ReadCenters(file, format)
	if err != nil {
		s.rejectUpload(c, ws, roster.KindCenters, err)
		return
	}
	ws.SetCenters(r)
	s.acceptUpload(c, ws, roster.KindCenters, len(r.Centers), r.Rejected)
}

// formFile opens the uploaded "file" field and detects its format.
func (s *Server) formFile(c *gin.Context) (multipart.File, roster.Format, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.UploadLimit)

	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: a file upload is required: %v", errBadRequest, err)
	}
	format, err := roster.FormatFromPath(header.Filename)
	if err != nil {
		return nil, "", err
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	return file, format, nil
}

// rejectUpload reports a failed load. The previous list stays in place.
func (s *Server) rejectUpload(c *gin.Context, ws *workspace.Workspace, kind roster.Kind, err error) {
	ws.Log(fmt.Sprintf("Error: %v", err))
	s.metrics.Uploads.WithLabelValues(string(kind), "error").Inc()
	s.log.InfoContext(c.Request.Context(), "Upload rejected", "workspace", ws.ID, "kind", kind, "error", err)
	s.fail(c, err)
}

func (s *Server) acceptUpload(
	c *gin.Context,
	ws *workspace.Workspace,
	kind roster.Kind,
	loaded int,
	rejected []*roster.RecordError,
) {
	s.metrics.Uploads.WithLabelValues(string(kind), "success").Inc()
	s.metrics.RejectedRecords.WithLabelValues(string(kind)).Add(float64(len(rejected)))
	s.log.InfoContext(c.Request.Context(), "Upload accepted",
		"workspace", ws.ID, "kind", kind, "records", loaded, "rejected", len(rejected))

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"file":     kind,
		"loaded":   loaded,
		"rejected": toRejectedRows(rejected),
	})
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (s *Server) setMode(c *gin.Context) {
	ws := s.workspace(c)

	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	mode, err := allocator.ParseMode(req.Mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	ws.SetMode(mode)
	c.JSON(http.StatusOK, gin.H{"ok": true, "mode": mode})
}

// allocate runs the allocator over the workspace snapshot.
func (s *Server) allocate(c *gin.Context, ws *workspace.Workspace) ([]models.Assignment, bool) {
	if ws == nil {
		s.fail(c, workspace.ErrNoStudents)
		return nil, false
	}
	mode := ws.Mode()
	start := time.Now()
	assignments, err := ws.Assignments()
	s.metrics.AllocationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.Allocations.WithLabelValues(string(mode), "error").Inc()
		ws.Log(fmt.Sprintf("Error: %v", err))
		s.fail(c, err)
		return nil, false
	}
	s.metrics.Allocations.WithLabelValues(string(mode), "success").Inc()
	return assignments, true
}

func (s *Server) assignments(c *gin.Context) {
	ws := s.currentWorkspace(c)
	assignments, ok := s.allocate(c, ws)
	if !ok {
		return
	}

	snap := ws.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"mode":     snap.Mode,
		"columns":  export.Columns,
		"rows":     toAssignmentRows(assignments),
		"rejected": toRejectedRows(snap.Rejected),
	})
}

func (s *Server) summary(c *gin.Context) {
	ws := s.currentWorkspace(c)
	assignments, ok := s.allocate(c, ws)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"mode":    ws.Mode(),
		"centers": toCenterLoadRows(allocator.Summary(assignments)),
	})
}

func (s *Server) export(c *gin.Context) {
	ws := s.currentWorkspace(c)

	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		s.fail(c, err)
		return
	}
	assignments, ok := s.allocate(c, ws)
	if !ok {
		return
	}

	var buf bytes.Buffer
	opts := export.DefaultOptions()
	opts.FontPath = s.cfg.Export.FontPath
	if s.cfg.Export.Sheet != "" {
		opts.Sheet = s.cfg.Export.Sheet
	}
	if s.cfg.Export.Title != "" {
		opts.Title = s.cfg.Export.Title
	}
	if err := export.Write(format, &buf, assignments, opts); err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.Exports.WithLabelValues(string(format)).Inc()
	ws.Log(fmt.Sprintf("Exported %d rows as %s.", len(assignments), format))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName("exam_allocation")))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) logs(c *gin.Context) {
	ws := s.currentWorkspace(c)
	if ws == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": "", "logs": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"workspace": ws.ID,
		"logs":      ws.Logs(),
	})
}

func (s *Server) deleteWorkspace(c *gin.Context) {
	if ws := s.currentWorkspace(c); ws != nil {
		s.store.Delete(ws.ID)
		s.metrics.ActiveWorkspaces.Set(float64(s.store.Len()))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
