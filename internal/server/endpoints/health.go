package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/extract"
	"github.com/jackzampolin/shiftparse/internal/svcctx"
	"github.com/jackzampolin/shiftparse/version"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

var _ api.Endpoint = (*HealthEndpoint)(nil)

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Server health
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server    string        `json:"server" yaml:"server"`
	Version   string        `json:"version" yaml:"version"`
	Service   ServiceStatus `json:"service" yaml:"service"`
	InFlight  bool          `json:"in_flight" yaml:"in_flight"`
	HasResult bool          `json:"has_result" yaml:"has_result"`
}

// ServiceStatus describes the configured extraction service.
type ServiceStatus struct {
	Type     string `json:"type" yaml:"type"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

var _ api.Endpoint = (*StatusEndpoint)(nil)

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Server status
//	@Description	Report the configured extraction service and session state
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server:  "running",
		Version: version.GitRelease,
		Service: ServiceStatus{Type: "not_configured"},
	}

	if pipeline := svcctx.PipelineFrom(r.Context()); pipeline != nil {
		opts := pipeline.Builder().Options()
		resp.Service.Type = pipeline.Client().Name()
		resp.Service.Model = opts.Model
		resp.Service.Language = opts.Language
		if resp.Service.Model == "" {
			resp.Service.Model = pipeline.Client().Model()
		}
	}

	if session := svcctx.SessionFrom(r.Context()); session != nil {
		resp.InFlight = session.InFlight()
		resp.HasResult = session.Current() != nil
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// WaitCommand polls /health until the server answers or the timeout passes.
// It has no route of its own.
func WaitCommand(getServerURL func() string) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for the server to become ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.WaitReady(cmd.Context(), timeout); err != nil {
				return err
			}
			fmt.Println("Server is ready")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "How long to wait")
	return cmd
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

var errorStatuses = map[error]int{
	extract.ErrInvalidInput:      http.StatusBadRequest,
	extract.ErrRead:              http.StatusBadRequest,
	extract.ErrBusy:              http.StatusConflict,
	extract.ErrEmptyResponse:     http.StatusUnprocessableEntity,
	extract.ErrMalformedResponse: http.StatusUnprocessableEntity,
	extract.ErrService:           http.StatusBadGateway,
	extract.ErrTimeout:           http.StatusGatewayTimeout,
	extract.ErrNoMatch:           http.StatusOK,
}

// writeExtractError maps a pipeline failure to a status code and writes the
// user-facing message. Unclassified errors are 500s.
func writeExtractError(w http.ResponseWriter, err error) {
	status, ok := errorStatuses[extract.KindOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, ErrorResponse{Error: extract.UserMessage(err), Kind: extract.KindName(err)})
}
