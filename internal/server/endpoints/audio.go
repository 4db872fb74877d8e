package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/api"
	"github.com/brotwerk/intake/internal/intake"
	"github.com/brotwerk/intake/internal/svcctx"
)

// audioExtensions lists the upload formats the transcription API accepts.
var audioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".webm", ".flac"}

// AudioExtractEndpoint handles POST /api/v1/audio/extract with a
// multipart audio upload. The recording is transcribed, then the
// transcript goes through the same extraction path as typed text.
type AudioExtractEndpoint struct {
	// MaxBytes caps the accepted recording size.
	MaxBytes int64
}

var _ api.Endpoint = (*AudioExtractEndpoint)(nil)

func (e *AudioExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/audio/extract", e.handler
}

func (e *AudioExtractEndpoint) RequiresInit() bool { return true }

func (e *AudioExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := requestID(w, r)

	if err := r.ParseMultipartForm(e.MaxBytes + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file field")
		return
	}
	defer file.Close()

	if e.MaxBytes > 0 && header.Size > e.MaxBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("recording exceeds maximum size of %d bytes", e.MaxBytes))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !supportedAudio(ext) {
		writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported audio format %q, accepted: %s", ext, strings.Join(audioExtensions, ", ")))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read audio: %v", err))
		return
	}

	meta, err := parseMetadata(r.FormValue("metadata"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid metadata JSON: %v", err))
		return
	}

	svc := svcctx.IntakeFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, "intake service not initialized")
		return
	}

	writeJSON(w, http.StatusOK, svc.ExtractFromAudio(r.Context(), id, data, header.Filename, meta))
}

func supportedAudio(ext string) bool {
	for _, e := range audioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (e *AudioExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var enteredBy string
	cmd := &cobra.Command{
		Use:   "extract <audio-file>",
		Short: "Transcribe a recording and extract orders from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			fields := map[string]string{}
			if enteredBy != "" {
				fields["metadata"] = fmt.Sprintf(`{"default_eintragender":%q}`, enteredBy)
			}

			client := api.NewClient(getServerURL())
			var resp intake.ExtractResponse
			if err := client.PostMultipart(cmd.Context(), "/api/v1/audio/extract",
				"audio", filepath.Base(args[0]), data, fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&enteredBy, "eintragender", "", "Default value for the Eintragender column")
	return cmd
}
