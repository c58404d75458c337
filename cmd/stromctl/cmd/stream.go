package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhuss/strom/pkg/api"
)

var (
	dataFlags []string
	bodyFlag  string
)

var streamCmd = &cobra.Command{
	Use:   "stream <kind>",
	Short: "Open a stream and print its chunks",
	Long: "Open a stream and print chunks as they arrive.\n\n" +
		"Kinds: text, audio, video, data, logs, metrics, chat, transcription, translation, analysis.\n" +
		"Request fields are given with --data key=value or as a raw JSON object with --body.",
	Example: `  stromctl stream text --data text="hello world" --data chunk_size=3
  stromctl stream metrics --data interval=2
  stromctl stream data --body '{"data":{"a":1,"b":2},"format":"csv"}'`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE:      runStream,
}

func init() {
	streamCmd.Flags().StringArrayVarP(&dataFlags, "data", "d", nil, "request field as key=value (repeatable)")
	streamCmd.Flags().StringVar(&bodyFlag, "body", "", "raw JSON request object, merged under --data fields")
}

func runStream(cmd *cobra.Command, args []string) error {
	kind := api.Kind(args[0])
	if !kind.Valid() {
		return fmt.Errorf("unknown stream kind %q, want one of %s", kind, strings.Join(kindNames(), ", "))
	}

	fields, err := buildFields(bodyFlag, dataFlags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := newClient().stream(ctx, kind, fields, cmd.OutOrStdout())
	if res != nil && verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nsession=%s request=%s content-type=%s bytes=%d\n",
			res.SessionID, res.RequestID, res.ContentType, res.Bytes)
	}
	if err != nil && ctx.Err() != nil {
		// Interrupted by the user.
		return nil
	}
	return err
}

// buildFields merges the --body object with the --data pairs. Pairs win.
func buildFields(body string, pairs []string) (map[string]any, error) {
	fields := map[string]any{}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return nil, fmt.Errorf("--body must be a JSON object: %w", err)
		}
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--data %q: want key=value", p)
		}
		fields[k] = parseValue(v)
	}
	return fields, nil
}

func kindNames() []string {
	names := make([]string, len(api.Kinds))
	for i, k := range api.Kinds {
		names[i] = string(k)
	}
	return names
}
