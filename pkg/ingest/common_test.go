package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"liyu1981.xyz/energy-dashboard-service/pkg/db"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

func openStore(t *testing.T) *db.DB {
	t.Helper()

	store, err := db.Open(db.UseMemorySqliteDialector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// recordingStore passes writes through to a real store, remembers batch
// sizes and can be told to fail a given NILM batch.
type recordingStore struct {
	*db.DB

	mu         sync.Mutex
	nilmSizes  []int
	failOnCall int
	clearErr   error
}

var errInjected = errors.New("injected insert failure")

func (s *recordingStore) InsertNILMBatch(ctx context.Context, records []models.NILMRecord) error {
	s.mu.Lock()
	s.nilmSizes = append(s.nilmSizes, len(records))
	call := len(s.nilmSizes)
	s.mu.Unlock()

	if call == s.failOnCall {
		return errInjected
	}
	return s.DB.InsertNILMBatch(ctx, records)
}

func (s *recordingStore) DeleteAllNILM(ctx context.Context) (int64, error) {
	if s.clearErr != nil {
		return 0, s.clearErr
	}
	return s.DB.DeleteAllNILM(ctx)
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

const nilmHeader = "Time,Aggregate,EVSE,PV,CS,CHP,BA"

// nilmRows returns n valid rows, one minute apart starting at epoch second
// start.
func nilmRows(start int64, n int) []string {
	rows := make([]string, 0, n)
	for i := range n {
		rows = append(rows, fmt.Sprintf("%d,%d.5,1,2,3,4,5", start+int64(i)*60, i))
	}
	return rows
}

func countNILM(t *testing.T, store *db.DB, filter models.SiteFilter) int64 {
	t.Helper()
	res, err := store.NILMRange(context.Background(), filter)
	require.NoError(t, err)
	return res.Count
}
