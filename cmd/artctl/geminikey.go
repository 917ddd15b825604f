package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"artcreator/internal/infra/credentials"
)

func newGeminiKeyCmd(opts *rootOptions) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "geminikey",
		Short: "Store the Gemini API key in the integration token table",
		Long: "Stores the Gemini API key used for prompt analysis and enhancement.\n" +
			"The key is read from --key or GEMINI_API_KEY. A GEMINI_API_KEY set on the\n" +
			"API server still takes precedence over the stored key.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key = strings.TrimSpace(key)
			if key == "" {
				key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
			}
			if key == "" {
				return errors.New("a Gemini API key is required via --key or GEMINI_API_KEY")
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s, err := openSession(ctx, opts, "geminikey")
			if err != nil {
				return err
			}
			defer s.Close()
			store := credentials.NewStore(s.runner)
			props := map[string]any{"set_at": time.Now().UTC().Format(time.RFC3339), "source": "artctl"}
			if err := store.SetGeminiAPIKey(ctx, key, props); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "gemini api key stored")
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Gemini API key")
	return cmd
}
