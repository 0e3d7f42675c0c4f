package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/bootstrap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/config"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
	"liyu1981.xyz/energy-dashboard-service/pkg/ingest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	nilmDir := flag.String("nilm-dir", cfg.NILMDataDir, "directory holding <Building>/<Building>_<Location>.csv files")
	pvCSV := flag.String("pv-csv", cfg.PVCSVPath, "PV irradiance/temperature CSV")
	only := flag.String("only", "all", "what to import: nilm, pv or all")
	pvBase := flag.String("pv-base", "", "PV timestamp base (epoch ms or date); defaults to the run start")
	clearKind := flag.String("clear", "", "only delete every record of this kind (nilm or pv) and exit")
	sampleIfEmpty := flag.Bool("sample-if-empty", false, "generate one day of Office/LA NILM data when no NILM CSV exists")
	batchSize := flag.Int("batch-size", ingest.DefaultBatchSize, "records per insert batch")
	breakdown := flag.Bool("breakdown", false, "print per-site record counts and date ranges after the run")
	flag.Parse()

	kinds, err := selectKinds(*only, *clearKind)
	if err != nil {
		log.Fatalf("%v", err)
	}

	common.InitLogger(common.LogOptions{Dir: cfg.LogDir})
	defer common.SyncLogger()
	logger := common.GetLoggerWith(common.LoggerNameIngest)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer stores.Close()

	importer := ingest.New(stores.Data)
	importer.BatchSize = *batchSize
	importer.SampleWhenEmpty = *sampleIfEmpty
	importer.Metrics = ingest.NewMetrics(prometheus.NewRegistry())
	if *pvBase != "" {
		base := energy.ParseTime(*pvBase)
		if base == nil {
			log.Fatalf("invalid -pv-base %q", *pvBase)
		}
		importer.PVBase = *base
	}

	if *clearKind != "" {
		deleted, err := importer.Clear(ctx, kinds[0])
		if err != nil {
			logger.Fatal("Clear failed", zap.String("kind", *clearKind), zap.Error(err))
		}
		fmt.Printf("deleted %d %s records\n", deleted, *clearKind)
		return
	}

	var reports []*ingest.Report
	failed := false

	for _, kind := range kinds {
		var report *ingest.Report
		if kind == ingest.KindNILM {
			report, err = importer.ImportNILM(ctx, *nilmDir)
		} else {
			report, err = importer.ImportPV(ctx, *pvCSV)
		}
		if err != nil {
			logger.Error("Import aborted", zap.String("kind", string(kind)), zap.Error(err))
			failed = true
		}
		if report != nil {
			reports = append(reports, report)
		}
	}

	for _, r := range reports {
		printReport(r)
		if r.Count(ingest.StatusFailed) > 0 {
			failed = true
		}
	}

	if *breakdown {
		sites, err := energy.New(stores.Data, cfg.QueryTimeout).NILM.Breakdown(ctx)
		if err != nil {
			logger.Error("Breakdown failed", zap.Error(err))
			failed = true
		}
		for _, s := range sites {
			fmt.Printf("%-9s %-10s %8d  %s .. %s (%.1f days)\n",
				s.Building, s.Location, s.Count,
				s.MinDate.Format("2006-01-02 15:04"), s.MaxDate.Format("2006-01-02 15:04"),
				s.Span().Hours()/24)
		}
	}

	if failed {
		stores.Close()
		os.Exit(1)
	}
}

// selectKinds validates -only and -clear. With -clear set it returns the
// single kind to delete, otherwise the kinds to import.
func selectKinds(only, clearKind string) ([]ingest.Kind, error) {
	if clearKind != "" {
		kinds, err := ingest.ParseKinds(clearKind, false)
		if err != nil {
			return nil, fmt.Errorf("invalid -clear: %w", err)
		}
		return kinds, nil
	}
	kinds, err := ingest.ParseKinds(only, true)
	if err != nil {
		return nil, fmt.Errorf("invalid -only: %w", err)
	}
	return kinds, nil
}

func printReport(r *ingest.Report) {
	fmt.Printf("%s: cleared %d, wrote %d records in %v\n",
		r.Kind, r.Cleared, r.Records(), r.FinishedAt.Sub(r.StartedAt))
	if r.Generated {
		fmt.Println("  no source files found, sample data generated")
	}
	for _, f := range r.Files {
		line := fmt.Sprintf("  %-9s %-9s %-10s records=%d dropped=%d batches=%d",
			f.Status, f.Building, f.Location, f.Records, f.Dropped, f.Batches)
		if f.Error != "" {
			line += " error=" + f.Error
		}
		fmt.Println(line)
	}
}
