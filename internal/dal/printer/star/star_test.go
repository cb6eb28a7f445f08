package star

import (
	"testing"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Commands(t *testing.T) {
	doc := receipt.NewBuilder("t").
		AlignCenter().Bold(true).DoubleHeight().Line("A").
		Normal().Bold(false).
		Barcode("X1", receipt.SymbologyCode128, "ID: X1").
		Cut().
		Document()

	out, err := New(Options{BarcodeEnabled: true}).Encode(doc)
	require.NoError(t, err)

	want := []byte{
		esc, '@',
		esc, gs, 'a', 1,
		esc, 'E',
		esc, 'i', 1, 0,
		'A', lf,
		esc, 'i', 0, 0,
		esc, 'F',
		esc, 'b', code128, hriWithFeed, barcodeModule, barcodeHeight, 'X', '1', rs,
		esc, 'd', 2,
	}
	assert.Equal(t, want, out)
}

func TestEncode_BarcodeDisabled(t *testing.T) {
	doc := receipt.NewBuilder("t").Barcode("X1", receipt.SymbologyCode128, "ID: X1").Document()

	_, err := New(Options{}).Encode(doc)

	var unsupported *apperr.UnsupportedDirectiveError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, 0, unsupported.Index)
}
