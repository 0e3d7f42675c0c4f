package energy

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/energy-dashboard-service/pkg/db"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy/mocks"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

var _ Store = (*db.DB)(nil)

func GetMockEnergyWithMemorySqliteDialector(t *testing.T, useMockINILM, useMockIPV bool) (
	*gomock.Controller,
	*Energy,
	*mocks.MockINILM,
	*mocks.MockIPV,
) {
	ctrl := gomock.NewController(t)

	mockINILM := mocks.NewMockINILM(ctrl)
	mockIPV := mocks.NewMockIPV(ctrl)

	store, err := db.Open(db.UseMemorySqliteDialector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	energyInstance := New(store, 5*time.Second)

	nilmService := energyInstance.GetINILM()
	if useMockINILM {
		nilmService = mockINILM
	}

	pvService := energyInstance.GetIPV()
	if useMockIPV {
		pvService = mockIPV
	}

	energyInstance.WithServices(ServiceOpts{
		NILM: nilmService,
		PV:   pvService,
	})

	return ctrl, energyInstance, mockINILM, mockIPV
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

var base = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// seedSite inserts n records ten minutes apart starting at base.
func seedSite(t *testing.T, e *Energy, b models.Building, l models.Location, n int, aggregate func(i int) float64) {
	t.Helper()

	records := make([]models.NILMRecord, 0, n)
	for i := range n {
		records = append(records, models.NILMRecord{
			Timestamp: base.Add(time.Duration(i) * 10 * time.Minute),
			Aggregate: aggregate(i),
			Building:  b,
			Location:  l,
		})
	}
	require.NoError(t, e.Store.InsertNILMBatch(context.Background(), records))
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}
