// Package main provides the rsa-blocks-cli command line interface.
//
// Run without arguments it decrypts the built-in classroom submission and
// prints the block-by-block trace.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
	"github.com/BackendStack21/rsa-blocks-go/core"
	"github.com/BackendStack21/rsa-blocks-go/decoder"
	"github.com/BackendStack21/rsa-blocks-go/keyring"
	"github.com/BackendStack21/rsa-blocks-go/modexp"
	"github.com/BackendStack21/rsa-blocks-go/report"
	"github.com/BackendStack21/rsa-blocks-go/utils"
)

const (
	version = "1.0.0"
	appName = "rsa-blocks-cli"
)

// OutputFormat represents the output format of a decode run
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	KeyName      string
	KeysFile     string
	Engine       modexp.Engine
	OutputFormat OutputFormat
	OutputFile   string
	SplitPairs   bool
	Verbose      bool
	Timing       bool
}

// EncryptionExport represents an exported encryption result
type EncryptionExport struct {
	Key    string   `json:"key"`
	Blocks []uint64 `json:"blocks"`
}

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

func main() {
	if len(os.Args) < 2 {
		runDecode(nil)
		return
	}

	command := os.Args[1]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("rsa-blocks library version %s\n", rsablocks.Version)
	case "decode", "dec":
		runDecode(os.Args[2:])
	case "encrypt", "enc":
		runEncrypt(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "keys":
		handleKeys(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - textbook RSA block decoder

USAGE:
    %s [COMMAND] [OPTIONS]

With no command the built-in submission is decoded and traced.

COMMANDS:
    decode      Decrypt message and signature blocks
    encrypt     Encode and encrypt a message
    validate    Check a key for consistency
    keys        Manage a keys.json keyring
    version     Show version information
    help        Show this help message

OPTIONS:
    --key-name <name>           Key to use (default: %s)
    --keys <file>               keys.json keyring to search before the built-in keys
    --engine <square|big|ct>    Exponentiation engine (default: square)
    --format <text|json>        Output format (default: text)
    --output <file>             Output file (default: stdout)
    --message "<c1 c2 ...>"     Message blocks (decode) or plaintext (encrypt)
    --signature "<c1 c2 ...>"   Signature blocks (decode)
    --split-pairs               Treat each plaintext as packed two-digit codes
    --timing                    Show timing information
    --verbose                   Verbose output

EXAMPLES:
    %s
    %s decode --key-name class-pub7
    %s decode --engine ct --format json --output run.json
    %s encrypt --message "HELLO WORLD"
    %s keys list --keys keys.json
`, appName, appName, core.DefaultKeyName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Decode / Encrypt
// ============================================================================

func runDecode(args []string) {
	config := parseConfig(args)
	preset := resolvePreset(config)

	if s := getArg(args, "--message", "-m"); s != "" {
		preset.Message = parseBlocks(s, "message")
	}
	if s := getArg(args, "--signature", "-s"); s != "" {
		preset.Signature = parseBlocks(s, "signature")
	}
	if i := utils.CheckBelow(preset.Message, preset.Key.N); i >= 0 {
		log.WithField("block", preset.Message[i]).Warn("message block is not below the modulus and will be reduced")
	}
	if i := utils.CheckBelow(preset.Signature, preset.Key.N); i >= 0 {
		log.WithField("block", preset.Signature[i]).Warn("signature block is not below the modulus and will be reduced")
	}

	d := decoder.New(preset.Key)
	d.Engine = config.Engine
	d.SplitPairs = config.SplitPairs
	d.Logger = log

	ctx := context.Background()
	start := time.Now()

	var (
		transcript rsablocks.Transcript
		err        error
	)
	switch config.OutputFormat {
	case FormatJSON:
		transcript, err = report.Decode(ctx, d, preset.Message, preset.Signature, nil)
		if err != nil {
			fatal("Error decoding blocks", err)
		}
		output, err := report.EncodeJSON(transcript)
		if err != nil {
			fatal("Error marshaling output", err)
		}
		writeOutput(output, config.OutputFile)
	default:
		var sb strings.Builder
		transcript, err = report.Run(ctx, &sb, d, preset.Message, preset.Signature)
		if err != nil {
			fatal("Error decoding blocks", err)
		}
		writeOutput([]byte(strings.TrimSuffix(sb.String(), "\n")), config.OutputFile)
	}
	elapsed := time.Since(start)

	if config.Timing {
		log.WithField("elapsed", elapsed).Info("decode finished")
	}
	log.WithFields(logrus.Fields{
		"key":               transcript.Key.Name,
		"engine":            string(config.Engine),
		"message_invalid":   transcript.Message.InvalidCount(),
		"signature_invalid": transcript.Signature.InvalidCount(),
		"digest":            report.Digest(transcript),
	}).Debug("transcript")
}

func runEncrypt(args []string) {
	config := parseConfig(args)
	message := getArg(args, "--message", "-m")
	if message == "" {
		fmt.Fprintf(os.Stderr, "Error: --message is required\n")
		os.Exit(1)
	}

	preset := resolvePreset(config)
	d := decoder.New(preset.Key)
	d.Engine = config.Engine

	start := time.Now()
	blocks, err := d.Encrypt(message)
	if err != nil {
		fatal("Error encrypting", err)
	}
	if config.Timing {
		log.WithField("elapsed", time.Since(start)).Info("encrypt finished")
	}

	var output []byte
	switch config.OutputFormat {
	case FormatJSON:
		output, err = json.MarshalIndent(EncryptionExport{Key: preset.Key.Name, Blocks: blocks}, "", "  ")
		if err != nil {
			fatal("Error marshaling output", err)
		}
	default:
		parts := make([]string, len(blocks))
		for i, b := range blocks {
			parts[i] = strconv.FormatUint(b, 10)
		}
		output = []byte(strings.Join(parts, " "))
	}
	writeOutput(output, config.OutputFile)
}

func runValidate(args []string) {
	config := parseConfig(args)
	preset := resolvePreset(config)

	if err := core.ValidateParams(preset.Key); err != nil {
		fatal("Key "+preset.Key.Name+" is inconsistent", err)
	}
	fmt.Printf("Key %s is consistent\n", preset.Key.Name)
	if !preset.Key.HasFactors() {
		fmt.Println("Prime factors unknown: only range checks applied")
	}
}

// resolvePreset finds the requested key, looking in the keyring first.
// Keyring keys carry no ciphertext, so the built-in submission blocks are used
// unless --message / --signature replace them.
func resolvePreset(config CLIConfig) core.Preset {
	if config.KeysFile != "" {
		if _, err := os.Stat(config.KeysFile); errors.Is(err, os.ErrNotExist) {
			log.WithField("keys", config.KeysFile).Warn("keyring file does not exist, using built-in keys")
		}
		kr, err := keyring.Load(config.KeysFile)
		if err != nil {
			fatal("Error loading keyring", err)
		}
		if key, err := kr.Find(config.KeyName); err == nil {
			preset, _ := core.GetPreset(core.DefaultKeyName)
			preset.Key = key
			log.WithField("key", key.Name).Debug("using keyring key")
			return preset
		}
	}

	preset, err := core.GetPreset(config.KeyName)
	if err != nil {
		fatal("Error selecting key", err)
	}
	return preset
}

func parseBlocks(s, name string) []uint64 {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if err := utils.CheckLength(len(fields), utils.MaxBlocks); err != nil {
		fatal("Error: too many "+name+" blocks", err)
	}

	blocks := make([]uint64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			fatal("Error parsing "+name+" block "+strconv.Quote(f), err)
		}
		blocks = append(blocks, v)
	}
	return blocks
}

// ============================================================================
// Keyring Commands
// ============================================================================

func handleKeys(args []string) {
	if len(args) < 1 {
		printKeysUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	switch subcommand {
	case "list", "ls":
		keysList(args[1:])
	case "show":
		keysShow(args[1:])
	case "add", "import":
		keysAdd(args[1:])
	case "remove", "rm", "delete":
		keysRemove(args[1:])
	case "help", "--help", "-h":
		printKeysUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keys subcommand: %s\n", subcommand)
		printKeysUsage()
		os.Exit(1)
	}
}

func printKeysUsage() {
	fmt.Printf(`%s keys - keys.json keyring operations

USAGE:
    %s keys <SUBCOMMAND> --keys <file> [OPTIONS]

SUBCOMMANDS:
    list            List built-in and keyring keys
    show            Show one key (--key-name)
    add             Add or replace a key
    remove          Remove a key (--key-name)
    help            Show this help message

ADD OPTIONS:
    --name <name> --modulus <n> --private <d> [--public <e>] [--prime-p <p>] [--prime-q <q>]
`, appName, appName)
}

func keysList(args []string) {
	config := parseConfig(args)

	for _, name := range core.PresetNames() {
		fmt.Printf("%s (built-in)\n", name)
	}
	if config.KeysFile == "" {
		return
	}
	kr, err := keyring.Load(config.KeysFile)
	if err != nil {
		fatal("Error loading keyring", err)
	}
	for _, name := range kr.Names() {
		fmt.Println(name)
	}
}

func keysShow(args []string) {
	config := parseConfig(args)
	preset := resolvePreset(config)

	output, err := json.MarshalIndent(preset.Key, "", "  ")
	if err != nil {
		fatal("Error marshaling output", err)
	}
	writeOutput(output, config.OutputFile)
}

func keysAdd(args []string) {
	config := requireKeysFile(args)

	key := rsablocks.KeyParams{
		Name: getArg(args, "--name", "-n"),
		N:    parseUintArg(args, "--modulus"),
		E:    parseUintArg(args, "--public"),
		D:    parseUintArg(args, "--private"),
		P:    parseUintArg(args, "--prime-p"),
		Q:    parseUintArg(args, "--prime-q"),
	}

	kr, err := keyring.Load(config.KeysFile)
	if err != nil {
		fatal("Error loading keyring", err)
	}
	if err := kr.Put(key); err != nil {
		fatal("Error adding key", err)
	}
	if err := kr.Save(config.KeysFile); err != nil {
		fatal("Error saving keyring", err)
	}
	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Stored key %s in %s\n", key.Name, config.KeysFile)
	}
}

func keysRemove(args []string) {
	config := requireKeysFile(args)

	kr, err := keyring.Load(config.KeysFile)
	if err != nil {
		fatal("Error loading keyring", err)
	}
	if err := kr.Remove(config.KeyName); err != nil {
		fatal("Error removing key", err)
	}
	if err := kr.Save(config.KeysFile); err != nil {
		fatal("Error saving keyring", err)
	}
}

func requireKeysFile(args []string) CLIConfig {
	config := parseConfig(args)
	if config.KeysFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --keys is required\n")
		os.Exit(1)
	}
	return config
}

// ============================================================================
// Helpers
// ============================================================================

func parseConfig(args []string) CLIConfig {
	config := CLIConfig{
		KeyName:      core.DefaultKeyName,
		Engine:       modexp.EngineSquare,
		OutputFormat: FormatText,
	}

	if name := getArg(args, "--key-name", "-k"); name != "" {
		config.KeyName = name
	}

	engine, err := modexp.ParseEngine(getArg(args, "--engine", "-e"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v. Must be one of: square, big, ct\n", err)
		os.Exit(1)
	}
	config.Engine = engine

	format := getArg(args, "--format", "-f")
	switch format {
	case "text":
		config.OutputFormat = FormatText
	case "json":
		config.OutputFormat = FormatJSON
	case "":
		// No format specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format '%s'. Must be one of: text, json\n", format)
		os.Exit(1)
	}

	config.KeysFile = getArg(args, "--keys", "")
	config.OutputFile = getArg(args, "--output", "-o")
	config.SplitPairs = hasFlag(args, "--split-pairs", "")
	config.Verbose = hasFlag(args, "--verbose", "-v")
	config.Timing = hasFlag(args, "--timing", "-t")

	if config.Timing {
		log.SetLevel(logrus.InfoLevel)
	}
	if config.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return config
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

func parseUintArg(args []string, long string) uint64 {
	s := getArg(args, long, "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fatal("Error parsing "+long, err)
	}
	return v
}

func fatal(msg string, err error) {
	log.WithError(err).Error(msg)
	os.Exit(1)
}

func writeOutput(data []byte, filename string) {
	if filename != "" {
		// Create file with restrictive permissions (0600 read-write for owner only).
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			fatal("Error creating output file", err)
		}
		defer f.Close()

		if _, err := f.Write(append(data, '\n')); err != nil {
			fatal("Error writing output file", err)
		}

		// Ensure permissions are enforced even if umask is permissive
		if err := os.Chmod(filename, 0600); err != nil {
			fatal("Error setting file permissions", err)
		}
	} else {
		fmt.Println(string(data))
	}
}
