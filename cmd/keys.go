package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

// newKeysCmd prints fresh signing and encryption keys for the staff session
// cookie. The hash key signs, the block key selects AES-128/192/256.
func newKeysCmd() *cobra.Command {
	var (
		format     string
		blockBytes int
	)

	c := &cobra.Command{
		Use:   "keys",
		Short: "Generate COOKIE_HASH_KEY and COOKIE_BLOCK_KEY for staff sessions",
		Long: "Generate base64 keys for the tablebook_session cookie.\n" +
			"Output is shell exports (--format env) or .env lines (--format dotenv).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if blockBytes != 16 && blockBytes != 24 && blockBytes != 32 {
				return fmt.Errorf("invalid --block-bytes %d (want 16, 24 or 32)", blockBytes)
			}
			prefix := ""
			switch format {
			case "env":
				prefix = "export "
			case "dotenv":
			default:
				return fmt.Errorf("invalid --format %q (want env or dotenv)", format)
			}

			hash := make([]byte, 32)
			block := make([]byte, blockBytes)
			if _, err := rand.Read(hash); err != nil {
				return err
			}
			if _, err := rand.Read(block); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%sCOOKIE_HASH_KEY=%s\n", prefix, base64.StdEncoding.EncodeToString(hash))
			fmt.Fprintf(out, "%sCOOKIE_BLOCK_KEY=%s\n", prefix, base64.StdEncoding.EncodeToString(block))
			return nil
		},
	}
	c.Flags().StringVar(&format, "format", "env", "output format: env or dotenv")
	c.Flags().IntVar(&blockBytes, "block-bytes", 32, "block key length in bytes (16, 24 or 32)")
	return c
}
