package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netweave/netweave/pkg/codec"
	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

// readNetworkFile reads and parses a network document. When format is empty
// it is detected from the file extension. It returns the network together
// with the format it was parsed as.
func readNetworkFile(path, format string) (*network.Network, string, error) {
	if format == "" {
		detected, err := codec.Detect(path)
		if err != nil {
			return nil, "", err
		}
		format = detected
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	net, err := codec.Parse(data, format)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return net, format, nil
}

// writeNetworkFile stringifies the network in the given format and writes it
// to path. Attribute declarations are inferred first so that values attached
// to nodes and edges survive formats with typed schemas.
func writeNetworkFile(net *network.Network, path, format string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	net.InferModel()

	data, err := codec.Stringify(net, format)
	if err != nil {
		return fmt.Errorf("stringify %s: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// replaceExt swaps the extension of path for the given format.
func replaceExt(path, format string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// render-format extension, that extension is stripped as well so multiple
// formats can share the base.
func basePath(output, input string, validFormats map[string]bool) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
