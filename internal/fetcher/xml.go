package fetcher

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// StreamXML decodes every XML element with the given local name from r and
// passes it to fn. Decoding stops on the first fn error. Namespaces are
// ignored: GML extracts and WFS responses use the same local names under
// different schema versions.
func StreamXML[T any](ctx context.Context, r io.Reader, elementName string, fn func(T) error) error {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "xml: context cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "xml: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elementName {
			continue
		}

		var item T
		if err := decoder.DecodeElement(&item, &se); err != nil {
			return eris.Wrap(err, "xml: decode element")
		}

		if err := fn(item); err != nil {
			return err
		}
	}
}
