package rsablocks

// Version of the rsa-blocks Go implementation.
const Version = "1.0.0"

// API summary:
//
// Arithmetic:
//   - modexp.ModExp(base, exp, mod) - Square-and-multiply with 128-bit reduction
//   - modexp.ModExpBig(base, exp, mod) - Exact math/big reference
//   - modexp.ModExpConstantTime(base, exp, mod) - Constant-time variant (safenum)
//
// Decoding:
//   - codec.Standard.Lookup(code) - Code to character, total over all integers
//   - decoder.New(key).Decode(ctx, blocks) - Decrypt and map a block sequence
//   - decoder.New(key).Encrypt(message) - Encode and encrypt a message
//
// Keys:
//   - core.GetParams(name) - Built-in key presets
//   - core.ValidateParams(key) - Key consistency checks
//   - keyring.Load(path) - keys.json keyring
