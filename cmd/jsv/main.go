// jsv - JSV/JSON text codec CLI tool
//
// Usage:
//
//	jsv to-jsv [options] [file]     Convert JSON to JSV
//	jsv to-json [options] [file]    Convert JSV to JSON
//	jsv pretty [options] [file]     Re-indent JSV or JSON
//	jsv version                     Print version info
//
// Compressed input (zstd or gzip) is detected from its magic bytes.
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Neumenon/jsv/jsv"
)

const libVersion = "0.1.0"

type options struct {
	file     string
	format   jsv.Format
	pretty   bool
	indent   string
	compress string
	strict   bool
	verbose  bool
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "version", "-v", "--version":
		fmt.Printf("jsv %s\n", libVersion)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	opts, err := parseArgs(os.Args[2:])
	if err != nil {
		fatal("%v", err)
	}

	var input io.Reader = os.Stdin
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}
	raw, err := io.ReadAll(input)
	if err != nil {
		fatal("read input: %v", err)
	}
	data, err := decompress(raw)
	if err != nil {
		fatal("decompress input: %v", err)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var out string
	switch cmd {
	case "to-jsv":
		out, err = convert(string(data), jsv.JSON, jsv.JSV, opts, logger)
	case "to-json":
		out, err = convert(string(data), jsv.JSV, jsv.JSON, opts, logger)
	case "pretty":
		f := opts.format
		if f == nil {
			f = sniffFormat(string(data))
		}
		out = jsv.PrettyWithOptions(strings.TrimSpace(string(data)), f, jsv.PrettyOptions{Indent: opts.indent, SpaceAfterKey: true})
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal("%s: %v", cmd, err)
	}

	if err := writeOutput(os.Stdout, out+"\n", opts.compress); err != nil {
		fatal("write output: %v", err)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `jsv - JSV/JSON text codec CLI tool

Usage:
  jsv to-jsv [options] [file]     Convert JSON to JSV
  jsv to-json [options] [file]    Convert JSV to JSON
  jsv pretty [options] [file]     Re-indent JSV or JSON
  jsv version                     Print version info

Options:
  --pretty             Indent the converted output
  --indent=N           Spaces per indent level (default: 2)
  --format=jsv|json    Input format for pretty (default: sniffed)
  --compress=zstd|gzip Compress the output
  --strict             Fail on values that cannot be assigned
  --verbose            Log debug output to stderr

Compressed input (zstd or gzip) is detected from its magic bytes.
If no file is given, reads from stdin.

Examples:
  echo '{"name":"Ann, Inc.","tags":["a","b"]}' | jsv to-jsv
  # Output: {name:"Ann, Inc.",tags:[a,b]}

  echo '{name:x,n:1}' | jsv to-json
  # Output: {"n":1,"name":"x"}

  cat data.json | jsv to-jsv --compress=zstd > data.jsv.zst
  jsv to-json data.jsv.zst
`)
}

func parseArgs(args []string) (options, error) {
	opts := options{indent: "  "}
	for _, arg := range args {
		switch {
		case arg == "--pretty":
			opts.pretty = true
		case arg == "--strict":
			opts.strict = true
		case arg == "--verbose":
			opts.verbose = true
		case strings.HasPrefix(arg, "--indent="):
			n, err := parseIntArg(arg, "--indent=")
			if err != nil || n < 0 {
				return opts, fmt.Errorf("bad indent: %s", arg)
			}
			opts.indent = strings.Repeat(" ", n)
		case strings.HasPrefix(arg, "--format="):
			f, ok := jsv.ParseFormat(strings.TrimPrefix(arg, "--format="))
			if !ok {
				return opts, fmt.Errorf("unknown format: %s", arg)
			}
			opts.format = f
		case strings.HasPrefix(arg, "--compress="):
			opts.compress = strings.TrimPrefix(arg, "--compress=")
			if opts.compress != "zstd" && opts.compress != "gzip" {
				return opts, fmt.Errorf("unknown compression: %s", opts.compress)
			}
		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, fmt.Errorf("unknown option: %s", arg)
		default:
			if arg != "-" {
				opts.file = arg
			}
		}
	}
	return opts, nil
}

// convert reads text of format from as untyped values and writes them back
// in format to. Member order follows the sorted keys of the decoded maps.
func convert(text string, from, to jsv.Format, opts options, logger *slog.Logger) (string, error) {
	cfg := jsv.DefaultConfig()
	cfg.InferDynamicTypes = true
	cfg.NestedObjectBags = true
	cfg.ThrowOnError = opts.strict
	cfg.Logger = logger

	var v any
	if err := jsv.NewCodec(from, cfg).DeserializeInto(text, &v); err != nil {
		return "", err
	}
	logger.Debug("decoded input", "format", from.Name(), "bytes", len(text))

	out, err := jsv.NewCodec(to, cfg).Serialize(v)
	if err != nil {
		return "", err
	}
	if opts.pretty {
		out = jsv.PrettyWithOptions(out, to, jsv.PrettyOptions{Indent: opts.indent, SpaceAfterKey: true})
	}
	return out, nil
}

// sniffFormat guesses JSON when the first member key is quoted.
func sniffFormat(text string) jsv.Format {
	s := strings.TrimLeft(text, " \t\r\n{[")
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "true") || strings.HasPrefix(s, "null") {
		return jsv.JSON
	}
	return jsv.JSV
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "jsv: "+format+"\n", args...)
	os.Exit(1)
}

// parseIntArg extracts an integer from a flag like "--indent=2"
func parseIntArg(arg, prefix string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(arg, prefix))
}
