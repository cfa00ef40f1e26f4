// Package decoder turns textbook RSA block sequences into text.
//
// Each block is decrypted independently as c^d mod n and its code is mapped
// through an alphabet. A block whose code has no character is kept in the
// result and reported as invalid, but contributes nothing to the text.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
	"github.com/BackendStack21/rsa-blocks-go/codec"
	"github.com/BackendStack21/rsa-blocks-go/modexp"
	"github.com/BackendStack21/rsa-blocks-go/utils"
)

var (
	// ErrNoPublicExponent indicates encryption with a key whose E is unknown.
	ErrNoPublicExponent = errors.New("key has no public exponent")

	// ErrCodeTooLarge indicates a character code that does not fit below the modulus.
	ErrCodeTooLarge = errors.New("character code not below modulus")
)

// Decoder decrypts block sequences under one key.
// The zero values of Alphabet and Engine select codec.Standard and modexp.EngineSquare.
type Decoder struct {
	Key      rsablocks.KeyParams
	Alphabet *codec.Alphabet
	Engine   modexp.Engine

	// SplitPairs decodes each plaintext as packed two-digit codes
	// instead of a single code.
	SplitPairs bool

	// Trace receives one line per decoded block when non-nil.
	Trace io.Writer

	// Logger receives debug output when non-nil.
	Logger logrus.FieldLogger
}

// New returns a decoder for key using the standard alphabet and native engine.
func New(key rsablocks.KeyParams) *Decoder {
	return &Decoder{
		Key:      key,
		Alphabet: codec.Standard,
		Engine:   modexp.EngineSquare,
	}
}

func (d *Decoder) alphabet() *codec.Alphabet {
	if d.Alphabet == nil {
		return codec.Standard
	}
	return d.Alphabet
}

// DecryptBlock computes c^D mod N.
func (d *Decoder) DecryptBlock(c uint64) (uint64, error) {
	return d.Engine.Exp(c, d.Key.D, d.Key.N)
}

// Decode decrypts blocks in order. Results keep the input order and Text
// concatenates the characters of the valid blocks only. The context is
// checked between blocks.
func (d *Decoder) Decode(ctx context.Context, blocks []uint64) (rsablocks.DecodeResult, error) {
	if err := utils.CheckLength(len(blocks), utils.MaxBlocks); err != nil {
		return rsablocks.DecodeResult{}, fmt.Errorf("%d blocks: %w", len(blocks), err)
	}

	alpha := d.alphabet()
	result := rsablocks.DecodeResult{Blocks: make([]rsablocks.BlockResult, 0, len(blocks))}
	var text strings.Builder

	for i, c := range blocks {
		if err := ctx.Err(); err != nil {
			return rsablocks.DecodeResult{}, err
		}

		plain, err := d.DecryptBlock(c)
		if err != nil {
			return rsablocks.DecodeResult{}, fmt.Errorf("block %d: %w", i, err)
		}

		br := rsablocks.BlockResult{Ciphertext: c, Plain: plain}
		if d.SplitPairs {
			br.Char = alpha.Decode(codec.SplitPairs(plain))
		} else if ch, ok := alpha.Lookup(plain); ok {
			br.Char = string(ch)
		}
		br.Valid = br.Char != ""
		text.WriteString(br.Char)
		result.Blocks = append(result.Blocks, br)

		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"index":      i,
				"ciphertext": c,
				"plain":      plain,
				"valid":      br.Valid,
			}).Debug("decrypted block")
		}
		if d.Trace != nil {
			if _, err := io.WriteString(d.Trace, TraceLine(br)); err != nil {
				return rsablocks.DecodeResult{}, fmt.Errorf("write trace: %w", err)
			}
		}
	}

	result.Text = text.String()
	return result, nil
}

// TraceLine formats one block as "c -> m -> 'X'" or "c -> m -> [INVALID]", with a newline.
func TraceLine(br rsablocks.BlockResult) string {
	return fmt.Sprintf("%d -> %d -> %s\n", br.Ciphertext, br.Plain, codec.Format(br.Char))
}

// Encrypt encodes message with the alphabet and encrypts every code with
// the public exponent. Characters outside the alphabet are dropped.
func (d *Decoder) Encrypt(message string) ([]uint64, error) {
	if d.Key.E == 0 {
		return nil, ErrNoPublicExponent
	}

	codes := d.alphabet().Encode(message)
	if i := utils.CheckBelow(codes, d.Key.N); i >= 0 {
		return nil, fmt.Errorf("%w: code %d, modulus %d", ErrCodeTooLarge, codes[i], d.Key.N)
	}
	if err := utils.CheckLength(len(codes), utils.MaxBlocks); err != nil {
		return nil, err
	}

	blocks := make([]uint64, len(codes))
	for i, code := range codes {
		c, err := d.Engine.Exp(code, d.Key.E, d.Key.N)
		if err != nil {
			return nil, fmt.Errorf("code %d: %w", i, err)
		}
		blocks[i] = c
	}
	return blocks, nil
}
