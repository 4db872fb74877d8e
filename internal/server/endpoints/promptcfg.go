package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/api"
	"github.com/brotwerk/intake/internal/prompts"
	"github.com/brotwerk/intake/internal/svcctx"
)

// GetPromptConfigEndpoint handles GET /api/v1/prompt-config.
type GetPromptConfigEndpoint struct{}

var _ api.Endpoint = (*GetPromptConfigEndpoint)(nil)

func (e *GetPromptConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/prompt-config", e.handler
}

func (e *GetPromptConfigEndpoint) RequiresInit() bool { return true }

func (e *GetPromptConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.PromptsFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt store not initialized")
		return
	}
	writeJSON(w, http.StatusOK, store.Load())
}

func (e *GetPromptConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current extraction prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp prompts.Config
			if err := client.Get(cmd.Context(), "/api/v1/prompt-config", &resp); err != nil {
				return err
			}
			fmt.Println(resp.SystemPrompt)
			return nil
		},
	}
}

// PutPromptConfigEndpoint handles PUT /api/v1/prompt-config. A blank
// system prompt resets the stored config back to the built-in default.
type PutPromptConfigEndpoint struct{}

var _ api.Endpoint = (*PutPromptConfigEndpoint)(nil)

func (e *PutPromptConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/v1/prompt-config", e.handler
}

func (e *PutPromptConfigEndpoint) RequiresInit() bool { return true }

func (e *PutPromptConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var cfg prompts.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	store := svcctx.PromptsFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "prompt store not initialized")
		return
	}
	if err := store.Save(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save prompt config: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, store.Load())
}

func (e *PutPromptConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <system-prompt>",
		Short: "Overwrite the extraction prompt (empty string resets the default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp prompts.Config
			if err := client.Put(cmd.Context(), "/api/v1/prompt-config",
				prompts.Config{SystemPrompt: args[0]}, &resp); err != nil {
				return err
			}
			fmt.Println(resp.SystemPrompt)
			return nil
		},
	}
}
