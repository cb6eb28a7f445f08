// Package star encodes receipt documents in Star Line Mode.
package star

import (
	"bytes"
	"strings"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/printer/codepage"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
)

const (
	esc = 0x1b
	gs  = 0x1d
	rs  = 0x1e
	lf  = 0x0a

	code128       = 6
	hriWithFeed   = 2
	barcodeModule = 2
	barcodeHeight = 80
	maxBarcodeLen = 255
)

// Options configure the encoder for a concrete device.
type Options struct {
	Columns        int
	LineCharacter  byte
	BarcodeEnabled bool
}

// Encoder renders documents for Star printers in line mode.
type Encoder struct {
	opts Options
}

func New(opts Options) *Encoder {
	if opts.Columns <= 0 {
		opts.Columns = 48
	}
	if opts.LineCharacter == 0 {
		opts.LineCharacter = '-'
	}

	return &Encoder{opts: opts}
}

// Encode renders the whole document or fails without partial output.
func (e *Encoder) Encode(doc receipt.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{esc, '@'})

	for i, d := range doc.Directives {
		switch d.Kind {
		case receipt.KindAlign:
			n := byte(0)
			if d.Align == receipt.AlignCenter {
				n = 1
			}
			buf.Write([]byte{esc, gs, 'a', n})
		case receipt.KindBold:
			if d.Bold {
				buf.Write([]byte{esc, 'E'})
			} else {
				buf.Write([]byte{esc, 'F'})
			}
		case receipt.KindTextSize:
			if d.Size == receipt.SizeDoubleHeight {
				buf.Write([]byte{esc, 'i', 1, 0})
			} else {
				buf.Write([]byte{esc, 'i', 0, 0})
			}
		case receipt.KindLine:
			buf.Write(codepage.Encode437(d.Text))
			buf.WriteByte(lf)
		case receipt.KindSeparator:
			buf.WriteString(strings.Repeat(string(e.opts.LineCharacter), e.opts.Columns))
			buf.WriteByte(lf)
		case receipt.KindNewLine:
			buf.WriteByte(lf)
		case receipt.KindBarcode:
			if err := e.barcode(&buf, i, d); err != nil {
				return nil, err
			}
		case receipt.KindCut:
			buf.Write([]byte{esc, 'd', 2})
		default:
			return nil, &apperr.UnsupportedDirectiveError{Index: i, Kind: d.Kind.String(), Reason: "unknown directive"}
		}
	}

	return buf.Bytes(), nil
}

func (e *Encoder) barcode(buf *bytes.Buffer, i int, d receipt.Directive) error {
	unsupported := func(reason string) error {
		return &apperr.UnsupportedDirectiveError{Index: i, Kind: d.Kind.String(), Reason: reason}
	}
	if !e.opts.BarcodeEnabled {
		return unsupported("barcodes disabled for this printer")
	}
	if d.Symbology != receipt.SymbologyCode128 {
		return unsupported("symbology not supported")
	}
	if d.Text == "" || len(d.Text) > maxBarcodeLen || !codepage.IsPrintableASCII(d.Text) {
		return unsupported("payload not encodable as CODE128")
	}

	buf.Write([]byte{esc, 'b', code128, hriWithFeed, barcodeModule, barcodeHeight})
	buf.WriteString(d.Text)
	buf.WriteByte(rs)

	return nil
}
