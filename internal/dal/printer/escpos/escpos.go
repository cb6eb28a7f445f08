// Package escpos encodes receipt documents as Epson ESC/POS commands.
package escpos

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
	lf  = 0x0a

	barcodeHeight = 80
	barcodeWidth  = 2
	// Code128 payload including the two-byte code set selector.
	maxBarcodeLen = 255
)

// Options configure the encoder for a concrete device.
type Options struct {
	Columns        int
	LineCharacter  byte
	BarcodeEnabled bool
}

// Encoder renders documents for ESC/POS printers.
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
	// PC437
	buf.Write([]byte{esc, 't', 0})

	for i, d := range doc.Directives {
		switch d.Kind {
		case receipt.KindAlign:
			n := byte(0)
			if d.Align == receipt.AlignCenter {
				n = 1
			}
			buf.Write([]byte{esc, 'a', n})
		case receipt.KindBold:
			n := byte(0)
			if d.Bold {
				n = 1
			}
			buf.Write([]byte{esc, 'E', n})
		case receipt.KindTextSize:
			n := byte(0)
			if d.Size == receipt.SizeDoubleHeight {
				n = 0x01
			}
			buf.Write([]byte{gs, '!', n})
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
			buf.Write([]byte{esc, 'd', 4})
			buf.Write([]byte{gs, 'V', 0})
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
	if d.Text == "" || len(d.Text)+2 > maxBarcodeLen || !codepage.IsPrintableASCII(d.Text) {
		return unsupported("payload not encodable as CODE128")
	}

	buf.Write([]byte{gs, 'h', barcodeHeight})
	buf.Write([]byte{gs, 'w', barcodeWidth})
	// HRI below the bars
	buf.Write([]byte{gs, 'H', 2})
	buf.Write([]byte{gs, 'k', 73, byte(len(d.Text) + 2), '{', 'B'})
	buf.WriteString(d.Text)
	buf.WriteByte(lf)

	return nil
}
