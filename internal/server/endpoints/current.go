package endpoints

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/export"
	"github.com/jackzampolin/shiftparse/internal/schedule"
	"github.com/jackzampolin/shiftparse/internal/svcctx"
)

// GetCurrentEndpoint handles GET /api/schedules/current.
type GetCurrentEndpoint struct{}

var _ api.Endpoint = (*GetCurrentEndpoint)(nil)

func (e *GetCurrentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/schedules/current", e.handler
}

func (e *GetCurrentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get current schedule
//	@Description	Get the schedule produced by the last successful extraction
//	@Tags			schedules
//	@Produce		json
//	@Success		200	{object}	schedule.ParsedSchedule
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/schedules/current [get]
func (e *GetCurrentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	session := svcctx.SessionFrom(r.Context())
	if session == nil {
		writeError(w, http.StatusServiceUnavailable, "extraction session not initialized")
		return
	}
	sched := session.Current()
	if sched == nil {
		writeError(w, http.StatusNotFound, "no schedule has been extracted")
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (e *GetCurrentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the schedule held by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var sched schedule.ParsedSchedule
			if err := client.Get(cmd.Context(), "/api/schedules/current", &sched); err != nil {
				return err
			}
			return api.Output(&sched)
		},
	}
}

// ClearResponse reports a cleared session.
type ClearResponse struct {
	Cleared bool `json:"cleared" yaml:"cleared"`
}

// ClearCurrentEndpoint handles DELETE /api/schedules/current.
type ClearCurrentEndpoint struct{}

var _ api.Endpoint = (*ClearCurrentEndpoint)(nil)

func (e *ClearCurrentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/schedules/current", e.handler
}

func (e *ClearCurrentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Clear current schedule
//	@Description	Discard the schedule held by the server
//	@Tags			schedules
//	@Produce		json
//	@Success		200	{object}	ClearResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/schedules/current [delete]
func (e *ClearCurrentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	session := svcctx.SessionFrom(r.Context())
	if session == nil {
		writeError(w, http.StatusServiceUnavailable, "extraction session not initialized")
		return
	}
	session.Clear()
	writeJSON(w, http.StatusOK, ClearResponse{Cleared: true})
}

func (e *ClearCurrentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the schedule held by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ClearResponse
			if err := client.Delete(cmd.Context(), "/api/schedules/current", &resp); err != nil {
				return err
			}
			fmt.Println("Schedule cleared")
			return nil
		},
	}
}

// CurrentXLSXEndpoint handles GET /api/schedules/current/xlsx.
type CurrentXLSXEndpoint struct{}

var _ api.Endpoint = (*CurrentXLSXEndpoint)(nil)

func (e *CurrentXLSXEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/schedules/current/xlsx", e.handler
}

func (e *CurrentXLSXEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Export current schedule
//	@Description	Download the current schedule as an XLSX workbook
//	@Tags			schedules
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success		200	{file}		file
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/schedules/current/xlsx [get]
func (e *CurrentXLSXEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	session := svcctx.SessionFrom(r.Context())
	exporter := svcctx.ExporterFrom(r.Context())
	if session == nil || exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "extraction session not initialized")
		return
	}
	sched := session.Current()
	if sched == nil {
		writeError(w, http.StatusNotFound, "no schedule has been extracted")
		return
	}

	data, err := exporter.ScheduleXLSX(sched)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *CurrentXLSXEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Download the current schedule as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var buf bytes.Buffer
			filename, err := client.Download(cmd.Context(), "/api/schedules/current/xlsx", &buf)
			if err != nil {
				return err
			}
			if outputFile == "" {
				outputFile = filename
			}
			if outputFile == "" {
				outputFile = "schedule.xlsx"
			}
			if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}
			fmt.Printf("Wrote %s\n", outputFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "Output file (defaults to the server's filename)")
	return cmd
}
