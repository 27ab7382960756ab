package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes formatted JSON to w, optionally wrapped in a slack code block.
func WriteJSON(w io.Writer, v any, slackMode bool) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fenced(w, slackMode, func() {
		fmt.Fprintln(w, string(output))
	})
	return nil
}

// fenced runs body between slack code fences when slackMode is set.
func fenced(w io.Writer, slackMode bool, body func()) {
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	body()
	if slackMode {
		fmt.Fprintln(w, "```")
	}
}
