package feed

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

// DecodeDelimited reads the radar listing. The first non-blank line is a
// header and is always skipped; a header containing ';' selects the
// semicolon layout, anything else the comma layout. Fields are split on the
// delimiter without quote handling and keyed by column index.
func DecodeDelimited(data []byte) ([]domain.RawRecord, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode delimited: %w", err)
	}

	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("decode delimited: %w", ErrNoFeatures)
	}

	shape, sep := domain.ShapeRadarComma, ","
	if strings.Contains(lines[0], ";") {
		shape, sep = domain.ShapeRadarSemicolon, ";"
	}

	rows := lines[1:]
	records := make([]domain.RawRecord, 0, len(rows))
	for i, line := range rows {
		cols := strings.Split(line, sep)
		fields := make(map[string]string, len(cols))
		for j, v := range cols {
			fields[strconv.Itoa(j)] = v
		}
		records = append(records, domain.RawRecord{
			Shape:  shape,
			Fields: fields,
			Line:   i + 1,
		})
	}
	return records, nil
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1252 for bytes that
// are not valid UTF-8, which is how the municipal portal publishes its CSVs.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
