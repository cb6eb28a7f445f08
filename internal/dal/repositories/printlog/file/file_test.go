package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/printlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "print-log.txt")
	repo, err := NewPrintLogFileRepository(path)
	require.NoError(t, err)

	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Append(context.Background(), printlog.NewEntry(at, printlog.TypeTestPage, "", nil)))
	require.NoError(t, repo.Append(context.Background(), printlog.NewEntry(at, printlog.TypeDeliverySlip, "ord-1", errors.New("paper out"))))
	require.NoError(t, repo.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	assert.JSONEq(t,
		`{"timestamp":"2024-03-01T10:30:00.000Z","type":"TEST_PAGE","orderId":null,"status":"success","error":null}`,
		lines[0],
	)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "DELIVERY_SLIP", second["type"])
	assert.Equal(t, "ord-1", second["orderId"])
	assert.Equal(t, "failed", second["status"])
	assert.Equal(t, "paper out", second["error"])
}

func TestAppend_KeepsExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "print-log.txt")
	require.NoError(t, os.WriteFile(path, []byte("{\"old\":true}\n"), 0o644))

	repo, err := NewPrintLogFileRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), printlog.NewEntry(time.Now(), printlog.TypeAddressLabel, "x", nil)))
	require.NoError(t, repo.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\"old\":true}\n"))
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}
