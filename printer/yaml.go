package printer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rickchristie/reagent"
	"gopkg.in/yaml.v3"
)

// YAML writes every final message as a YAML document and ignores partial
// steps. Useful for machine-readable logs of a session.
type YAML struct {
	mu  sync.Mutex
	enc *yaml.Encoder
	err error
}

// NewYAML creates a YAML printer writing to w.
func NewYAML(w io.Writer) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{enc: enc}
}

// Print implements reagent.Printer.
func (p *YAML) Print(_ context.Context, msg *reagent.Message, isFinal bool) {
	if !isFinal || msg == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enc.Encode(msg); err != nil && p.err == nil {
		p.err = err
	}
}

// Err returns the first encoding error, if any.
func (p *YAML) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close flushes the encoder.
func (p *YAML) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Close()
}

var _ reagent.Printer = (*YAML)(nil)

// WriteTranscript writes msgs to w as one YAML sequence.
func WriteTranscript(w io.Writer, msgs []*reagent.Message) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(msgs); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return enc.Close()
}

// ReadTranscript decodes a transcript written by WriteTranscript.
func ReadTranscript(r io.Reader) ([]*reagent.Message, error) {
	var msgs []*reagent.Message
	if err := yaml.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return msgs, nil
}
