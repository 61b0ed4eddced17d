package feed

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
)

// Decoder turns a feed document into raw records.
type Decoder func(data []byte) ([]domain.RawRecord, error)

// DecoderFor returns the decoder for a source's publication format.
func DecoderFor(src domain.Source) (Decoder, error) {
	switch src {
	case domain.SourceUrbanas:
		return DecodeKML, nil
	case domain.SourceM30:
		return DecodeM30, nil
	case domain.SourceRadares:
		return DecodeDelimited, nil
	case domain.SourceDGT:
		return DecodeDATEX, nil
	default:
		return nil, fmt.Errorf("no decoder for source %q", src)
	}
}

// FileExtractor reads one source's feed from a local file on every call.
type FileExtractor struct {
	source domain.Source
	path   string
	decode Decoder
}

// NewFileExtractor creates an extractor for src reading path.
func NewFileExtractor(src domain.Source, path string) (*FileExtractor, error) {
	decode, err := DecoderFor(src)
	if err != nil {
		return nil, err
	}
	return &FileExtractor{source: src, path: path, decode: decode}, nil
}

// Source returns the feed this extractor reads.
func (e *FileExtractor) Source() domain.Source { return e.source }

// Path returns the file the extractor reads.
func (e *FileExtractor) Path() string { return e.path }

// Extract reads the whole file and decodes it. The read itself cannot be
// interrupted; ctx is checked before it starts.
func (e *FileExtractor) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("read %s feed: %w", e.source, err)
	}
	return e.decode(data)
}

// Probe reports whether the feed file exists and is readable.
func (e *FileExtractor) Probe(_ context.Context) error {
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("open %s feed: %w", e.source, err)
	}
	return f.Close()
}

// NewFileExtractors creates one extractor per configured source, in source order.
func NewFileExtractors(paths map[domain.Source]string) ([]*FileExtractor, error) {
	out := make([]*FileExtractor, 0, len(paths))
	for _, src := range domain.Sources {
		path, ok := paths[src]
		if !ok {
			continue
		}
		e, err := NewFileExtractor(src, path)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
