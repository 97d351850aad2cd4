package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/extract"
	"github.com/jackzampolin/shiftparse/internal/schedule"
	"github.com/jackzampolin/shiftparse/internal/svcctx"
)

// maxUploadMemory bounds the multipart form held in memory; larger parts
// spill to temporary files.
const maxUploadMemory = 32 << 20

// ExtractResponse is the result of an extraction. Exactly one of Schedule or
// NoMatch is set.
type ExtractResponse struct {
	Schedule *schedule.ParsedSchedule `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	NoMatch  bool                     `json:"no_match,omitempty" yaml:"no_match,omitempty"`
	Message  string                   `json:"message,omitempty" yaml:"message,omitempty"`
}

// ExtractEndpoint handles POST /api/schedules/extract with a multipart PDF upload.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/schedules/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Extract a shift schedule
//	@Description	Upload a PDF roster and extract its shift schedule. An empty result is reported with no_match set.
//	@Tags			schedules
//	@Accept			mpfd
//	@Produce		json
//	@Param			file		formData	file	true	"PDF roster"
//	@Param			employee	formData	string	false	"Restrict extraction to this employee"
//	@Success		200			{object}	ExtractResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Failure		502			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Failure		504			{object}	ErrorResponse
//	@Router			/api/schedules/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Could not read file %s", header.Filename))
		return
	}

	session := svcctx.SessionFrom(r.Context())
	if session == nil {
		writeError(w, http.StatusServiceUnavailable, "extraction session not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	sched, err := session.Extract(r.Context(), data, header.Filename, r.FormValue("employee"))
	if err != nil {
		if errors.Is(err, extract.ErrNoMatch) {
			writeJSON(w, http.StatusOK, ExtractResponse{NoMatch: true, Message: extract.UserMessage(err)})
			return
		}
		logger.Warn("extract request failed", "file", header.Filename, "error", err)
		writeExtractError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{Schedule: sched})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var employee string
	cmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Upload a PDF roster to the server and print its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("could not read file %s: %w", args[0], err)
			}

			fields := map[string]string{}
			if employee != "" {
				fields["employee"] = employee
			}

			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			if err := client.PostFile(cmd.Context(), "/api/schedules/extract", "file", filepath.Base(args[0]), data, fields, &resp); err != nil {
				return err
			}
			if resp.NoMatch {
				fmt.Println(resp.Message)
				return nil
			}
			return api.Output(resp.Schedule)
		},
	}
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "Only extract shifts for this employee")
	return cmd
}
