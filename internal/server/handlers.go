package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bpdmkit/partnerfile"
	"github.com/bpdmkit/partnerfile/fileformat"
	"github.com/bpdmkit/partnerfile/i18n"
	"github.com/bpdmkit/partnerfile/internal/job"
	"github.com/bpdmkit/partnerfile/source"
)

// jobTimeout bounds one background job; paged downloads of large tenants
// are the slowest case.
const jobTimeout = 30 * time.Minute

func (s *Server) index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", map[string]any{
		"Header": fileformat.Header(),
	})
}

// upload converts an uploaded CSV into API records and pushes them to the
// input stage.
func (s *Server) upload(c echo.Context) error {
	name, data, err := formFile(c)
	if err != nil {
		return err
	}
	j := s.jobs.Create(name)
	go s.runUpload(j, data)
	return c.JSON(http.StatusAccepted, map[string]string{"id": j.ID()})
}

// sharingState queries the sharing state for every identifier in an
// uploaded CSV and returns the states as a downloadable CSV.
func (s *Server) sharingState(c echo.Context) error {
	name, data, err := formFile(c)
	if err != nil {
		return err
	}
	j := s.jobs.Create(name)
	go s.runSharingState(j, data)
	return c.JSON(http.StatusAccepted, map[string]string{"id": j.ID()})
}

// download fetches every record of a stage and renders it as a CSV.
func (s *Server) download(c echo.Context) error {
	stage := c.Param("stage")
	if stage != "input" && stage != "output" {
		return echo.NewHTTPError(http.StatusNotFound, "unknown stage")
	}
	j := s.jobs.Create(stage + ".csv")
	go s.runDownload(j, stage)
	return c.JSON(http.StatusAccepted, map[string]string{"id": j.ID()})
}

func (s *Server) progress(c echo.Context) error {
	j, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no such job")
	}
	return c.JSON(http.StatusOK, j.Snapshot())
}

func (s *Server) result(c echo.Context) error {
	j, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no such job")
	}
	name, data, ok := j.Result()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "job has no result")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func formFile(c echo.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "cannot open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
	}
	return fh.Filename, data, nil
}

func (s *Server) runUpload(j *job.Job, data []byte) {
	defer j.Finish()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	j.Infof("Converting %s", j.Name())
	res, err := fileformat.Decode(ctx, data, fileformat.Options{Required: s.cfg.RequiredColumns})
	reportIssues(j, err)
	if res == nil {
		j.Errorf("File could not be read, nothing uploaded")
		return
	}
	j.Infof("Converted %d records", len(res.Payloads))
	if len(res.Payloads) == 0 {
		j.Errorf("No valid records, nothing uploaded")
		return
	}
	s.debugDump(j, res.Payloads)

	if err := s.client.UpsertInput(ctx, res.Payloads, j.Infof); err != nil {
		s.log.Error("upload failed", zap.String("job", j.ID()), zap.Error(err))
		j.Errorf("Upload failed: %v", err)
		return
	}
	j.Infof("Upload complete")
}

func (s *Server) runSharingState(j *job.Job, data []byte) {
	defer j.Finish()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	ids, err := fileformat.ExternalIDs(data)
	reportIssues(j, err)
	if len(ids) == 0 {
		j.Errorf("No identifiers found, nothing to check")
		return
	}
	j.Infof("Checking %d identifiers", len(ids))

	states, err := s.client.SharingStates(ctx, ids, j.Infof)
	if err != nil {
		s.log.Error("sharing-state failed", zap.String("job", j.ID()), zap.Error(err))
		j.Errorf("Sharing-state check failed: %v", err)
		return
	}
	rows := [][]string{fileformat.SharingStateHeader}
	for _, st := range states {
		rows = append(rows, st.Row())
	}
	out, err := source.WriteAllBOM(rows, ';')
	if err != nil {
		j.Errorf("Result could not be written: %v", err)
		return
	}
	j.SetResult("sharing-state.csv", out)
	s.debugWrite(j.ID()+"-sharing-state.csv", out)
	j.Infof("Sharing-state check complete, %d states", len(states))
}

func (s *Server) runDownload(j *job.Job, stage string) {
	defer j.Finish()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	payloads, err := s.client.DownloadAll(ctx, stage, j.Infof)
	if err != nil {
		s.log.Error("download failed", zap.String("job", j.ID()), zap.Error(err))
		j.Errorf("Download failed: %v", err)
		return
	}
	out, unknown, err := fileformat.Encode(ctx, payloads)
	if err != nil {
		j.Errorf("Records could not be rendered: %v", err)
		return
	}
	for _, k := range unknown {
		s.log.Warn("payload key not part of the file format", zap.String("key", k))
	}
	j.SetResult(stage+".csv", out)
	s.debugWrite(j.ID()+"-"+stage+".csv", out)
	j.Infof("Download complete, %d records", len(payloads))
}

// debugDump writes the converted payloads next to the server when an upload
// directory is configured.
func (s *Server) debugDump(j *job.Job, payloads []map[string]any) {
	data, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return
	}
	s.debugWrite(j.ID()+".json", data)
}

func (s *Server) debugWrite(name string, data []byte) {
	if s.cfg.UploadDir == "" {
		return
	}
	path := filepath.Join(s.cfg.UploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Warn("debug dump failed", zap.String("path", path), zap.Error(err))
	}
}

// reportIssues turns codec issues into translated job events. A plain error
// becomes a single event.
func reportIssues(j *job.Job, err error) {
	if err == nil {
		return
	}
	iss, ok := partnerfile.AsIssues(err)
	if !ok {
		j.Errorf("%v", err)
		return
	}
	for _, i := range iss {
		msg := i18n.T(i.Code, map[string]string{
			"column":     i.Column,
			"externalId": i.ExternalID,
		})
		switch {
		case i.Line > 0 && i.Column != "":
			j.Errorf("Line %d, column %s: %s", i.Line, i.Column, msg)
		case i.Line > 0:
			j.Errorf("Line %d: %s", i.Line, msg)
		case i.Column != "":
			j.Errorf("Column %s: %s", i.Column, msg)
		default:
			j.Errorf("%s", msg)
		}
	}
}
