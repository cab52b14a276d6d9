package output

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Message kinds in a MessagePack report stream.
const (
	KindCrop   = "crop"
	KindLeaves = "leaves"
)

// Message is one value in a MessagePack report stream.
type Message struct {
	Kind   string       `json:"kind"`
	Crop   *CropRecord  `json:"crop,omitempty"`
	Leaves []LeafRecord `json:"leaves,omitempty"`
}

// MsgpackSink appends Messages to a file, one MessagePack value each.
type MsgpackSink struct {
	file    *os.File
	buf     *bufio.Writer
	encoder *msgpack.Encoder
}

// NewMsgpackSink creates the stream at path.
func NewMsgpackSink(path string) (*MsgpackSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating msgpack report: %w", err)
	}
	buf := bufio.NewWriter(f)
	encoder := msgpack.NewEncoder(buf)
	encoder.SetCustomStructTag("json")
	return &MsgpackSink{file: f, buf: buf, encoder: encoder}, nil
}

func (s *MsgpackSink) WriteCrop(r CropRecord) error {
	return s.encoder.Encode(Message{Kind: KindCrop, Crop: &r})
}

func (s *MsgpackSink) WriteLeaves(rs []LeafRecord) error {
	return s.encoder.Encode(Message{Kind: KindLeaves, Leaves: rs})
}

func (s *MsgpackSink) Close() error {
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// NewMsgpackDecoder reads a stream written by MsgpackSink.
func NewMsgpackDecoder(r io.Reader) *msgpack.Decoder {
	d := msgpack.NewDecoder(r)
	d.SetCustomStructTag("json")
	return d
}
