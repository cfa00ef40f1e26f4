// Package report renders decode runs as the classroom text trace or as JSON.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
	"github.com/BackendStack21/rsa-blocks-go/decoder"
	"github.com/BackendStack21/rsa-blocks-go/utils"
)

// Section names one decoded block sequence in the text trace.
type Section struct {
	Title string
	Label string
}

var (
	// MessageSection heads the message blocks.
	MessageSection = Section{Title: "DECRYPTING MESSAGE", Label: "📧 MESSAGE"}

	// SignatureSection heads the signature blocks.
	SignatureSection = Section{Title: "DECRYPTING SIGNATURE", Label: "✍️  SIGNATURE"}
)

// ClosingLine ends every text report. It only states that decoding ran to
// the end; the signature is never checked against the message.
const ClosingLine = "✅ All blocks decrypt successfully!"

const digestDomain = "rsa-blocks/transcript"

// Run decodes the message and signature blocks with d and writes the full
// text report to w: both sections followed by the parameter summary.
// The trace goes to w; d.Trace is ignored and left unchanged.
func Run(ctx context.Context, w io.Writer, d *decoder.Decoder, message, signature []uint64) (rsablocks.Transcript, error) {
	t, err := Decode(ctx, d, message, signature, w)
	if err != nil {
		return rsablocks.Transcript{}, err
	}
	if err := WriteSummary(w, d.Key); err != nil {
		return rsablocks.Transcript{}, err
	}
	return t, nil
}

// Decode decodes both sequences. When w is non-nil the two sections of the
// text report are written to it as decoding proceeds. d is not modified,
// so one decoder may serve concurrent runs.
func Decode(ctx context.Context, d *decoder.Decoder, message, signature []uint64, w io.Writer) (rsablocks.Transcript, error) {
	dc := *d
	dc.Trace = w
	d = &dc

	t := rsablocks.Transcript{Key: d.Key}

	msg, err := decodeSection(ctx, w, d, MessageSection, message, false)
	if err != nil {
		return rsablocks.Transcript{}, fmt.Errorf("message: %w", err)
	}
	t.Message = msg

	sig, err := decodeSection(ctx, w, d, SignatureSection, signature, true)
	if err != nil {
		return rsablocks.Transcript{}, fmt.Errorf("signature: %w", err)
	}
	t.Signature = sig

	return t, nil
}

func decodeSection(ctx context.Context, w io.Writer, d *decoder.Decoder, s Section, blocks []uint64, leadingBlank bool) (rsablocks.DecodeResult, error) {
	if w != nil {
		header := "=== " + s.Title + " ===\n"
		if leadingBlank {
			header = "\n" + header
		}
		if _, err := io.WriteString(w, header); err != nil {
			return rsablocks.DecodeResult{}, err
		}
	}

	res, err := d.Decode(ctx, blocks)
	if err != nil {
		return rsablocks.DecodeResult{}, err
	}

	if w != nil {
		if _, err := fmt.Fprintf(w, "\n%s: '%s'\n", s.Label, res.Text); err != nil {
			return rsablocks.DecodeResult{}, err
		}
	}
	return res, nil
}

// WriteSummary writes the VERIFICATION section. It echoes the key
// parameters and the closing line; nothing is verified.
func WriteSummary(w io.Writer, key rsablocks.KeyParams) error {
	e := "n/a"
	if key.E != 0 {
		e = strconv.FormatUint(key.E, 10)
	}
	_, err := fmt.Fprintf(w, "\n=== VERIFICATION ===\nn = %d\ne = %s (public)\nd = %d (private)\n\n%s\n",
		key.N, e, key.D, ClosingLine)
	return err
}

// Digest returns a hex SHA3-256 fingerprint of a transcript. Two runs over
// the same key and blocks always produce the same digest.
func Digest(t rsablocks.Transcript) string {
	values := []uint64{t.Key.N, t.Key.E, t.Key.D}
	for _, seq := range []rsablocks.DecodeResult{t.Message, t.Signature} {
		values = append(values, uint64(len(seq.Blocks)))
		for _, b := range seq.Blocks {
			values = append(values, b.Ciphertext, b.Plain)
		}
	}
	return utils.HashUint64s(digestDomain, values)
}

// TranscriptExport is the JSON form of a transcript.
type TranscriptExport struct {
	Version   string                 `json:"version"`
	Key       rsablocks.KeyParams    `json:"key"`
	Message   rsablocks.DecodeResult `json:"message"`
	Signature rsablocks.DecodeResult `json:"signature"`
	Digest    string                 `json:"digest"`
}

// EncodeJSON renders t as indented JSON.
func EncodeJSON(t rsablocks.Transcript) ([]byte, error) {
	export := TranscriptExport{
		Version:   rsablocks.Version,
		Key:       t.Key,
		Message:   t.Message,
		Signature: t.Signature,
		Digest:    Digest(t),
	}
	return json.MarshalIndent(export, "", "  ")
}
