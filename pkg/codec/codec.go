// Package codec routes network data to and from its interchange formats.
//
// Three formats are supported out of the box: GEXF (XML), GML (bracketed
// key/value) and XNET (line oriented). Each lives in its own subpackage and
// satisfies the Codec interface; this package holds the registry and the
// format-dispatching Parse and Stringify entry points.
//
// # Round Trips
//
// For every registered format, Stringify followed by Parse preserves node
// identity, insertion order, edge endpoints and weights. Attribute fidelity
// depends on the format: GEXF keeps declared types through the network model,
// GML types values lexically, and XNET distinguishes only numeric and string
// columns.
package codec

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/netweave/netweave/pkg/codec/gexf"
	"github.com/netweave/netweave/pkg/codec/gml"
	"github.com/netweave/netweave/pkg/codec/xnet"
	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

// Codec converts between raw document bytes and the in-memory network model.
type Codec interface {
	// Name returns the canonical lowercase format name.
	Name() string
	// Parse decodes a document into a Network.
	Parse(data []byte) (*network.Network, error)
	// Stringify encodes a Network as a document.
	Stringify(net *network.Network) ([]byte, error)
}

var (
	_ Codec = (*gexf.Codec)(nil)
	_ Codec = (*gml.Codec)(nil)
	_ Codec = (*xnet.Codec)(nil)
)

var registry = map[string]Codec{
	"gexf": gexf.New(),
	"gml":  gml.New(),
	"xnet": xnet.New(),
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get looks up a codec by format name, case-insensitively.
func Get(format string) (Codec, error) {
	name := normalize(format)
	if err := errors.ValidateFormat(name, Formats()); err != nil {
		return nil, err
	}
	return registry[name], nil
}

// Parse decodes data in the named format into a Network.
func Parse(data []byte, format string) (*network.Network, error) {
	c, err := Get(format)
	if err != nil {
		return nil, err
	}
	return c.Parse(data)
}

// Stringify encodes a Network in the named format.
func Stringify(net *network.Network, format string) ([]byte, error) {
	c, err := Get(format)
	if err != nil {
		return nil, err
	}
	return c.Stringify(net)
}

// Detect infers a format from a file path by extension.
func Detect(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := registry[ext]; !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"cannot detect format from path %q, supported extensions: %s", path, strings.Join(Formats(), ", "))
	}
	return ext, nil
}

func normalize(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
