package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// Mobility report columns read by the loader.
const (
	ColumnDate          = "date"
	ColumnSubRegion1    = "sub_region_1"
	ColumnSubRegion2    = "sub_region_2"
	ColumnTransitChange = "transit_stations_percent_change_from_baseline"
)

type Loader struct {
	pollutantPath string
	mobilityPath  string
	logger        *zap.Logger
}

func NewLoader(pollutantPath, mobilityPath string, logger *zap.Logger) *Loader {
	return &Loader{
		pollutantPath: pollutantPath,
		mobilityPath:  mobilityPath,
		logger:        logger,
	}
}

// Paths returns the input files the loader reads.
func (l *Loader) Paths() []string {
	return []string{l.pollutantPath, l.mobilityPath}
}

// Load reads both input files and runs the full pipeline. Any read or shape
// error aborts the load; a partial dataset is never returned.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	startTime := time.Now()

	pollutants, err := l.readPollutants(l.pollutantPath)
	if err != nil {
		return nil, fmt.Errorf("load pollutant data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := l.readMobility(l.mobilityPath)
	if err != nil {
		return nil, fmt.Errorf("load mobility data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mobility, normStats := NormalizeMobility(rows)
	l.logger.Debug("Mobility rows normalized",
		zap.Int("kept", normStats.Kept),
		zap.Int("untracked", normStats.Untracked),
		zap.Int("bad_date", normStats.BadDate),
		zap.Int("missing_value", normStats.MissingValue))

	dataset, err := NewDataset(pollutants, mobility, models.StudyStart, models.StudyEnd, l.logger)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	l.logger.Info("Dataset built",
		zap.String("dataset_id", dataset.ID),
		zap.Int("mobility_rows", normStats.Kept),
		zap.Duration("duration", time.Since(startTime)))

	return dataset, nil
}

// pollutantEntry is one day in input file 1. Average is a pointer so a null
// stays distinguishable from a measured zero.
type pollutantEntry struct {
	Date         models.Date `json:"date"`
	Average      *float64    `json:"average"`
	ReadingCount int         `json:"readingCount"`
}

// readPollutants decodes input file 1: metro name -> pollutant -> daily
// averages. Cities outside the tracked set are ignored and null averages are
// dropped, leaving those days missing.
func (l *Loader) readPollutants(path string) (map[models.City]map[models.Pollutant][]models.DailyAverage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw map[string]map[string][]pollutantEntry
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	result := make(map[models.City]map[models.Pollutant][]models.DailyAverage, len(models.AllCities()))
	for key, byPollutant := range raw {
		city, ok := models.CityForMetro(key)
		if !ok {
			l.logger.Debug("Skipping untracked city", zap.String("city", key))
			continue
		}

		result[city] = make(map[models.Pollutant][]models.DailyAverage, len(byPollutant))
		for pkey, entries := range byPollutant {
			pollutant, err := models.ParsePollutant(pkey)
			if err != nil {
				l.logger.Debug("Skipping untracked pollutant",
					zap.String("city", key),
					zap.String("pollutant", pkey))
				continue
			}

			averages := make([]models.DailyAverage, 0, len(entries))
			for _, e := range entries {
				if e.Average == nil {
					continue
				}
				averages = append(averages, models.DailyAverage{
					Date:         e.Date,
					Average:      *e.Average,
					ReadingCount: e.ReadingCount,
				})
			}
			if dropped := len(entries) - len(averages); dropped > 0 {
				l.logger.Debug("Dropped null averages",
					zap.String("city", key),
					zap.String("pollutant", pkey),
					zap.Int("count", dropped))
			}
			result[city][pollutant] = averages
		}
	}

	return result, nil
}

// readMobility loads the mobility report CSV with every column as text and
// keeps only the rows whose county is tracked.
func (l *Loader) readMobility(path string) ([]models.MobilityRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, df.Err)
	}

	df = df.Select([]string{ColumnDate, ColumnSubRegion1, ColumnSubRegion2, ColumnTransitChange})
	if df.Err != nil {
		return nil, fmt.Errorf("select columns from %s: %w", path, df.Err)
	}

	counties := make([]string, 0, len(models.AllCities()))
	for _, c := range models.AllCities() {
		counties = append(counties, c.County().County)
	}
	df = df.Filter(dataframe.F{Colname: ColumnSubRegion2, Comparator: series.In, Comparando: counties})
	if df.Err != nil {
		return nil, fmt.Errorf("filter counties in %s: %w", path, df.Err)
	}

	dates := df.Col(ColumnDate).Records()
	states := df.Col(ColumnSubRegion1).Records()
	countyNames := df.Col(ColumnSubRegion2).Records()
	transit := df.Col(ColumnTransitChange).Records()

	rows := make([]models.MobilityRow, len(dates))
	for i := range dates {
		rows[i] = models.MobilityRow{
			Date:          dates[i],
			SubRegion1:    states[i],
			SubRegion2:    countyNames[i],
			TransitChange: transit[i],
		}
	}
	return rows, nil
}

// Refresher loads datasets and publishes them to the store. Reloads are
// serialized; a failed reload leaves the current dataset in place.
type Refresher struct {
	loader *Loader
	store  *DataStore
	logger *zap.Logger
	mu     sync.Mutex
}

func NewRefresher(loader *Loader, store *DataStore, logger *zap.Logger) *Refresher {
	return &Refresher{
		loader: loader,
		store:  store,
		logger: logger,
	}
}

func (r *Refresher) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dataset, err := r.loader.Load(ctx)
	if err != nil {
		r.store.RecordFailure(err)
		r.logger.Error("Dataset load failed", zap.Error(err))
		return err
	}

	r.store.Publish(dataset)
	return nil
}

func (r *Refresher) WatchedFiles() []string {
	return r.loader.Paths()
}
