package escpos

import (
	"bytes"
	"testing"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Commands(t *testing.T) {
	enc := New(Options{Columns: 4, BarcodeEnabled: true})
	doc := receipt.NewBuilder("t").
		AlignCenter().Bold(true).DoubleHeight().
		Line("Hi").
		Separator().
		Cut().
		Document()

	out, err := enc.Encode(doc)
	require.NoError(t, err)

	want := []byte{
		esc, '@', esc, 't', 0,
		esc, 'a', 1,
		esc, 'E', 1,
		gs, '!', 1,
		'H', 'i', lf,
		'-', '-', '-', '-', lf,
		esc, 'd', 4, gs, 'V', 0,
	}
	assert.Equal(t, want, out)
}

func TestEncode_Barcode(t *testing.T) {
	enc := New(Options{BarcodeEnabled: true})
	doc := receipt.NewBuilder("t").Barcode("ABC123", receipt.SymbologyCode128, "ID: ABC123").Document()

	out, err := enc.Encode(doc)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte{gs, 'k', 73, 8, '{', 'B', 'A', 'B', 'C', '1', '2', '3'}))
}

func TestEncode_BarcodeUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		payload string
	}{
		{name: "disabled", opts: Options{BarcodeEnabled: false}, payload: "ABC"},
		{name: "non ascii", opts: Options{BarcodeEnabled: true}, payload: "ÄBC"},
		{name: "empty", opts: Options{BarcodeEnabled: true}, payload: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := receipt.NewBuilder("t").Line("x").Barcode(tt.payload, receipt.SymbologyCode128, "fb").Document()

			out, err := New(tt.opts).Encode(doc)

			var unsupported *apperr.UnsupportedDirectiveError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, 1, unsupported.Index)
			assert.Equal(t, "barcode", unsupported.Kind)
			assert.Nil(t, out)
		})
	}
}

func TestEncode_ReplacesUnmappableRunes(t *testing.T) {
	out, err := New(Options{}).Encode(receipt.NewBuilder("t").Line("ok ✓").Document())
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("ok ?\n")))
}
