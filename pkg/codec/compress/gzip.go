package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/provide-io/featurecat/go/featurecat/pkg/codec"
)

func init() {
	codec.Register(NewGzipCodec())
}

// GzipCodec stores catalogs as "<name>.compiled.gz"
type GzipCodec struct {
	codec.BaseCodec
}

// NewGzipCodec creates a new GZIP codec
func NewGzipCodec() *GzipCodec {
	return &GzipCodec{
		BaseCodec: codec.BaseCodec{
			CodecName: "GZIP",
			Ext:       ".gz",
		},
	}
}

// Apply compresses a catalog at the best compression level
func (c *GzipCodec) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gw.Write(input); err != nil {
		gw.Close()
		return nil, fmt.Errorf("writing gzip data: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Reverse decompresses a gzip catalog file
func (c *GzipCodec) Reverse(input []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("opening gzip catalog: %w", err)
	}
	defer gr.Close()

	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("inflating gzip catalog: %w", err)
	}
	return out, nil
}
