// Command formpath inspects and generates form field paths.
//
//	formpath encode -ns signup todos 2 task
//	formpath parse  -ns signup 'signup.todos[2].task'
//	formpath decode -ns signup -format yaml < body.txt
//	formpath gen    -type Signup -o signup_fields.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/formpath"
	"github.com/reoring/formpath/formdata"
	"github.com/reoring/formpath/internal/gen"
)

// errUsage is returned for invalid command lines; main exits with status 2.
var errUsage = errors.New("usage")

func main() {
	log := newLogger(os.Stderr, os.Getenv("FORMPATH_LOG_LEVEL"))
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout, log)
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		log.Error().Err(err).Str("cmd", os.Args[1]).Msg("failed")
		os.Exit(1)
	}
}

func run(sub string, args []string, stdin io.Reader, stdout io.Writer, log zerolog.Logger) error {
	switch sub {
	case "encode":
		return encodeCmd(args, stdout)
	case "parse":
		return parseCmd(args, stdout)
	case "decode":
		return decodeCmd(args, stdin, stdout)
	case "gen":
		return genCmd(args, stdout, log)
	}
	usage(os.Stderr)
	return errUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `formpath CLI

Usage:
  formpath encode -ns NS [-format text|json|yaml] SEGMENT...
  formpath parse  -ns NS [-format text|json|yaml] NAME_OR_ID...
  formpath decode -ns NS [-strict] [-max-index N] [-format json|yaml] [BODY]
  formpath gen    -type T1[,T2,...] [-dir DIR] [-pkg NAME] [-o out.go]

Notes:
  - encode treats all-digit segments as array indices.
  - decode reads an urlencoded body from BODY or stdin.
  - FORMPATH_LOG_LEVEL sets the log level (debug, info, warn, error).`)
}

// newLogger writes human-readable logs to w, colored only on a terminal.
func newLogger(w *os.File, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()),
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// pathInfo is the printable form of one path.
type pathInfo struct {
	Name    string `json:"name" yaml:"name"`
	ID      string `json:"id" yaml:"id"`
	Display string `json:"display" yaml:"display"`
	Pointer string `json:"pointer" yaml:"pointer"`
	Parts   []any  `json:"parts" yaml:"parts"`
}

func infoOf(ns string, p formpath.Path) pathInfo {
	return pathInfo{
		Name:    formpath.EncodeName(ns, p),
		ID:      formpath.EncodeID(ns, p),
		Display: formpath.DisplayName(p),
		Pointer: p.Pointer(),
		Parts:   p.Parts(),
	}
}

func segmentsPath(args []string) formpath.Path {
	var p formpath.Path
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil && n >= 0 && strings.TrimLeft(a, "0123456789") == "" {
			p = p.Index(n)
			continue
		}
		p = p.Field(a)
	}
	return p
}

func encodeCmd(args []string, stdout io.Writer) error {
	fs := newFlagSet("encode")
	ns := fs.String("ns", "", "form namespace")
	format := fs.String("format", "text", "output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ns == "" {
		fs.Usage()
		return errUsage
	}
	for _, seg := range fs.Args() {
		if !formpath.ValidKey(seg) {
			if _, err := strconv.Atoi(seg); err != nil {
				return fmt.Errorf("segment %q contains a reserved character", seg)
			}
		}
	}
	info := infoOf(*ns, segmentsPath(fs.Args()))
	return write(stdout, *format, info, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "name\t%s\nid\t%s\n", info.Name, info.ID)
		return err
	})
}

func parseCmd(args []string, stdout io.Writer) error {
	fs := newFlagSet("parse")
	ns := fs.String("ns", "", "form namespace")
	format := fs.String("format", "text", "output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ns == "" || fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	infos := make([]pathInfo, 0, fs.NArg())
	for _, s := range fs.Args() {
		decode := formpath.DecodeName
		if strings.HasPrefix(s, *ns+":") {
			decode = formpath.DecodeID
		}
		p, err := decode(*ns, s)
		if err != nil {
			return err
		}
		infos = append(infos, infoOf(*ns, p))
	}
	return write(stdout, *format, infos, func(w io.Writer) error {
		for _, in := range infos {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", in.Name, in.Pointer); err != nil {
				return err
			}
		}
		return nil
	})
}

func decodeCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("decode")
	ns := fs.String("ns", "", "form namespace")
	format := fs.String("format", "json", "output format: json or yaml")
	strict := fs.Bool("strict", false, "fail on names that cannot be decoded instead of skipping them")
	maxIndex := fs.Int("max-index", 0, "largest accepted array index (0 keeps the default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ns == "" || fs.NArg() > 1 {
		fs.Usage()
		return errUsage
	}
	var body string
	if fs.NArg() == 1 {
		body = fs.Arg(0)
	} else {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		body = string(b)
	}
	values, err := url.ParseQuery(strings.TrimSpace(body))
	if err != nil {
		return fmt.Errorf("parse body: %w", err)
	}
	var opts []formdata.Option
	if *strict {
		opts = append(opts, formdata.Strict())
	}
	if *maxIndex > 0 {
		opts = append(opts, formdata.MaxIndex(*maxIndex))
	}
	tree, err := formdata.Decode(*ns, values, opts...)
	if err != nil {
		return err
	}
	if *format == "text" {
		*format = "json"
	}
	return write(stdout, *format, tree, nil)
}

func genCmd(args []string, stdout io.Writer, log zerolog.Logger) error {
	fs := newFlagSet("gen")
	typesCSV := fs.String("type", "", "comma-separated struct type names")
	dir := fs.String("dir", ".", "package directory containing the types")
	pkg := fs.String("pkg", "", "package name of the output (default: the package of -dir)")
	out := fs.String("o", "", "output filename (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	types := splitCSV(*typesCSV)
	if len(types) == 0 {
		fs.Usage()
		return errUsage
	}

	idx, err := loadStructs(*dir)
	if err != nil {
		return err
	}
	file, err := idx.file(*pkg, types)
	if err != nil {
		return err
	}
	log.Debug().Str("dir", *dir).Str("package", file.Package).Strs("types", types).Msg("collected struct shapes")
	code, err := gen.RenderFile(file)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = stdout.Write(code)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(*out, code, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	log.Info().Str("file", *out).Strs("types", types).Msg("wrote accessors")
	return nil
}

// write prints v as json or yaml, or with text for the text format.
func write(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if text != nil {
			return text(w)
		}
	}
	return fmt.Errorf("unknown format %q", format)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
