package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/api"
	"github.com/brotwerk/intake/internal/intake"
	"github.com/brotwerk/intake/internal/svcctx"
)

// ImagesExtractEndpoint handles POST /api/v1/images/extract with a
// multipart image upload. Upload problems are the only 4xx cases;
// extraction problems come back as 200 with warnings.
type ImagesExtractEndpoint struct {
	// MaxBytes caps the accepted image size.
	MaxBytes int64
}

var _ api.Endpoint = (*ImagesExtractEndpoint)(nil)

func (e *ImagesExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/images/extract", e.handler
}

func (e *ImagesExtractEndpoint) RequiresInit() bool { return true }

func (e *ImagesExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := requestID(w, r)

	if err := r.ParseMultipartForm(e.MaxBytes + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file field")
		return
	}
	defer file.Close()

	if e.MaxBytes > 0 && header.Size > e.MaxBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("image exceeds maximum size of %d bytes", e.MaxBytes))
		return
	}

	declared := normalizeImageMIME(header.Header.Get("Content-Type"))
	if declared == "" {
		writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported content type %q, accepted: jpeg, png, heic", header.Header.Get("Content-Type")))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read image: %v", err))
		return
	}

	sniffed := sniffImage(data)
	if sniffed == "" {
		writeError(w, http.StatusUnprocessableEntity, "file content is not a supported image")
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

	// Trust the sniffed type over the declared one.
	writeJSON(w, http.StatusOK, svc.ExtractFromImage(r.Context(), id, data, sniffed, meta))
}

func (e *ImagesExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var enteredBy string
	cmd := &cobra.Command{
		Use:   "extract <image-file>",
		Short: "Extract orders from a photographed order slip",
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
			if err := client.PostMultipart(cmd.Context(), "/api/v1/images/extract",
				"image", filepath.Base(args[0]), data, fields, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&enteredBy, "eintragender", "", "Default value for the Eintragender column")
	return cmd
}

// ImagesUsageEndpoint handles GET /api/v1/images/extract with a usage
// hint for clients probing the endpoint from a browser.
type ImagesUsageEndpoint struct{}

var _ api.Endpoint = (*ImagesUsageEndpoint)(nil)

// UsageResponse describes how to call an upload endpoint.
type UsageResponse struct {
	Usage  string   `json:"usage"`
	Fields []string `json:"fields"`
}

func (e *ImagesUsageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/images/extract", e.handler
}

func (e *ImagesUsageEndpoint) RequiresInit() bool { return false }

func (e *ImagesUsageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UsageResponse{
		Usage:  "POST multipart/form-data with an image file (jpeg, png or heic)",
		Fields: []string{"image", "metadata"},
	})
}

func (e *ImagesUsageEndpoint) Command(_ func() string) *cobra.Command {
	// The POST endpoint owns the CLI command.
	return nil
}
