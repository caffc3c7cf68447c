package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hugr-lab/ogcfilter/internal/msgpack"
)

// readInput returns the content of path, or of stdin for "" and "-".
// Compressed content is decompressed.
func (a *app) readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return a.dec.Maybe(data)
}

// text returns CQL text from --file, the arguments or stdin, in this order.
func (a *app) text(cmd *cli.Command) (string, error) {
	if path := cmd.String(fileFlag); path != "" {
		data, err := a.readInput(path)
		return strings.TrimSpace(string(data)), err
	}
	if cmd.Args().Len() > 0 && cmd.Args().First() != "-" {
		return strings.Join(cmd.Args().Slice(), " "), nil
	}
	data, err := a.readInput("")
	return strings.TrimSpace(string(data)), err
}

// document returns a JSON document from path, converting MessagePack
// input when the input format asks for it.
func (a *app) document(path string) ([]byte, error) {
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	if a.settings.InputFormat == inputMsgpack {
		return msgpack.ToJSON(data)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: invalid JSON", displayName(path))
	}
	return data, nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func (a *app) println(s string) error {
	_, err := fmt.Fprintln(a.stdout, s)
	return err
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.println(string(data))
}
