package cmdutil

import (
	"encoding/json"
	"io"
)

// WriteJSON encodes data as indented JSON followed by a newline. HTML
// escaping is off so revisions such as "topic&fix" print as given.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
