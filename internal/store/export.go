package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExportTSV writes messages to a TSV corpus file.
func ExportTSV(messages []Message, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create TSV file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "msgid\tmsgstr\tcatalog\tlocale")

	for _, m := range messages {
		fmt.Fprintf(f, "%s\t%s\t%s\t%s\n",
			escapeTSV(m.Msgid),
			escapeTSV(m.Msgstr),
			m.CatalogPath,
			m.Locale,
		)
	}

	log.Info().Str("path", outputPath).Int("entries", len(messages)).Msg("Exported corpus to TSV")
	return nil
}

// ExportJSON writes messages to an indented JSON corpus file.
func ExportJSON(messages []Message, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(messages); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	log.Info().Str("path", outputPath).Int("entries", len(messages)).Msg("Exported corpus to JSON")
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
