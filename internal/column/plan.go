package column

import (
	"fmt"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// StreamKind identifies a stream inside a stripe. Values match ORC.
type StreamKind uint8

const (
	Present StreamKind = 0
	Data    StreamKind = 1
	Length  StreamKind = 2
)

func (k StreamKind) String() string {
	switch k {
	case Present:
		return "PRESENT"
	case Data:
		return "DATA"
	case Length:
		return "LENGTH"
	default:
		return fmt.Sprintf("stream(%d)", uint8(k))
	}
}

// Stream describes one stream of a stripe.
type Stream struct {
	Kind   StreamKind
	Column int
	Length uint64
}

// StreamPlan is the ordered stream layout of a stripe. It is built once and
// drives both sizing and copying.
type StreamPlan struct {
	streams []Stream
	sources [][]byte
	size    int
}

func (p *StreamPlan) add(kind StreamKind, col int, src []byte) {
	p.streams = append(p.streams, Stream{Kind: kind, Column: col, Length: uint64(len(src))})
	p.sources = append(p.sources, src)
	p.size += len(src)
}

// Size returns the total byte length of all streams.
func (p *StreamPlan) Size() int { return p.size }

// Streams returns the stream descriptors in file order.
func (p *StreamPlan) Streams() []Stream { return p.streams }

// Combine copies every stream into dst in plan order and returns Size().
func (p *StreamPlan) Combine(dst []byte) (int, error) {
	if len(dst) < p.size {
		return 0, errs.OutOfRange("stripe buffer", p.size, len(dst)+1)
	}
	off := 0
	for _, src := range p.sources {
		off += copy(dst[off:], src)
	}
	return off, nil
}
