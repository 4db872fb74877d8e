package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/api"
	"github.com/brotwerk/intake/internal/intake"
	"github.com/brotwerk/intake/internal/svcctx"
)

// TranscriptExtractRequest is the JSON body for transcript extraction.
type TranscriptExtractRequest struct {
	Transcript string          `json:"transcript"`
	Metadata   intake.Metadata `json:"metadata"`
}

// TranscriptsExtractEndpoint handles POST /api/v1/transcripts/extract.
type TranscriptsExtractEndpoint struct{}

var _ api.Endpoint = (*TranscriptsExtractEndpoint)(nil)

func (e *TranscriptsExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/transcripts/extract", e.handler
}

func (e *TranscriptsExtractEndpoint) RequiresInit() bool { return true }

func (e *TranscriptsExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := requestID(w, r)

	var req TranscriptExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript must not be empty")
		return
	}

	svc := svcctx.IntakeFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "intake service not initialized")
		return
	}

	writeJSON(w, http.StatusOK, svc.ExtractFromTranscript(r.Context(), id, req.Transcript, req.Metadata))
}

func (e *TranscriptsExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var enteredBy string
	cmd := &cobra.Command{
		Use:   "extract <transcript>",
		Short: "Extract orders from transcribed or typed text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := TranscriptExtractRequest{
				Transcript: args[0],
				Metadata:   intake.Metadata{DefaultEnteredBy: enteredBy},
			}

			client := api.NewClient(getServerURL())
			var resp intake.ExtractResponse
			if err := client.Post(cmd.Context(), "/api/v1/transcripts/extract", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&enteredBy, "eintragender", "", "Default value for the Eintragender column")
	return cmd
}
