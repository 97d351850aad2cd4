package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/api"
	"github.com/jackzampolin/shiftparse/internal/llmcall"
	"github.com/jackzampolin/shiftparse/internal/svcctx"
)

// CallsListResponse contains recorded service calls, newest first.
type CallsListResponse struct {
	Calls []llmcall.Call `json:"calls" yaml:"calls"`
}

// ListCallsEndpoint handles GET /api/calls.
type ListCallsEndpoint struct{}

var _ api.Endpoint = (*ListCallsEndpoint)(nil)

func (e *ListCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/calls", e.handler
}

func (e *ListCallsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List service calls
//	@Description	Get recent extraction service calls with optional filters
//	@Tags			calls
//	@Produce		json
//	@Param			provider	query		string	false	"Filter by provider"
//	@Param			model		query		string	false	"Filter by model"
//	@Param			filename	query		string	false	"Filter by uploaded filename"
//	@Param			success		query		bool	false	"Filter by success status (true or false)"
//	@Param			limit		query		int		false	"Maximum results"
//	@Param			offset		query		int		false	"Skip this many results"
//	@Success		200			{object}	CallsListResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/calls [get]
func (e *ListCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	recorder := svcctx.RecorderFrom(r.Context())
	if recorder == nil {
		writeError(w, http.StatusInternalServerError, "call recorder not available")
		return
	}

	q := r.URL.Query()
	filter := llmcall.QueryFilter{
		Provider: q.Get("provider"),
		Model:    q.Get("model"),
		Filename: q.Get("filename"),
	}
	if s := q.Get("success"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "success must be true or false")
			return
		}
		filter.Success = &b
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if s := q.Get(name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a non-negative integer", name))
				return
			}
			*dst = n
		}
	}

	writeJSON(w, http.StatusOK, CallsListResponse{Calls: recorder.List(filter)})
}

func (e *ListCallsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit int
	var failedOnly bool
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List recent extraction service calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if limit > 0 {
				params.Set("limit", strconv.Itoa(limit))
			}
			if failedOnly {
				params.Set("success", "false")
			}
			path := "/api/calls"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			client := api.NewClient(getServerURL())
			var resp CallsListResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed calls")
	return cmd
}

// GetCallEndpoint handles GET /api/calls/{id}.
type GetCallEndpoint struct{}

var _ api.Endpoint = (*GetCallEndpoint)(nil)

func (e *GetCallEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/calls/{id}", e.handler
}

func (e *GetCallEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a service call
//	@Description	Get a single recorded call by ID
//	@Tags			calls
//	@Produce		json
//	@Param			id	path		string	true	"Call ID"
//	@Success		200	{object}	llmcall.Call
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/calls/{id} [get]
func (e *GetCallEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	recorder := svcctx.RecorderFrom(r.Context())
	if recorder == nil {
		writeError(w, http.StatusInternalServerError, "call recorder not available")
		return
	}
	call := recorder.Get(r.PathValue("id"))
	if call == nil {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}
	writeJSON(w, http.StatusOK, call)
}

// Command returns nil; call records are reached through the list command.
func (e *GetCallEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil
}

// CallsSummaryEndpoint handles GET /api/calls/summary.
type CallsSummaryEndpoint struct{}

var _ api.Endpoint = (*CallsSummaryEndpoint)(nil)

func (e *CallsSummaryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/calls/summary", e.handler
}

func (e *CallsSummaryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Summarize service calls
//	@Description	Aggregate token usage, latency and outcomes over recent calls
//	@Tags			calls
//	@Produce		json
//	@Success		200	{object}	llmcall.Summary
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/calls/summary [get]
func (e *CallsSummaryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	recorder := svcctx.RecorderFrom(r.Context())
	if recorder == nil {
		writeError(w, http.StatusInternalServerError, "call recorder not available")
		return
	}
	writeJSON(w, http.StatusOK, recorder.Summarize())
}

func (e *CallsSummaryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Summarize token usage and outcomes of recent calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp llmcall.Summary
			if err := client.Get(cmd.Context(), "/api/calls/summary", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
