package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/provide-io/featurecat/go/featurecat/pkg/codec"
)

func init() {
	codec.Register(NewBzip2Codec())
}

// Bzip2Codec stores catalogs as "<name>.compiled.bz2"
type Bzip2Codec struct {
	codec.BaseCodec
}

// NewBzip2Codec creates a new BZIP2 codec
func NewBzip2Codec() *Bzip2Codec {
	return &Bzip2Codec{
		BaseCodec: codec.BaseCodec{
			CodecName: "BZIP2",
			Ext:       ".bz2",
		},
	}
}

// Apply compresses a catalog with 900k blocks
func (c *Bzip2Codec) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	if _, err := bw.Write(input); err != nil {
		bw.Close()
		return nil, fmt.Errorf("writing bzip2 data: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("closing bzip2 writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Reverse decompresses a bzip2 catalog file
func (c *Bzip2Codec) Reverse(input []byte) ([]byte, error) {
	br, err := bzip2.NewReader(bytes.NewReader(input), nil)
	if err != nil {
		return nil, fmt.Errorf("opening bzip2 catalog: %w", err)
	}
	defer br.Close()

	out, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("inflating bzip2 catalog: %w", err)
	}
	return out, nil
}
