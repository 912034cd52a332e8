package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Crowley723/proxy-health-monitor/config"
	"github.com/Crowley723/proxy-health-monitor/monitor"
)

// ErrWrite marks every failure to create or append to the result log.
var ErrWrite = errors.New("result log write failed")

const maxPartitionNameLength = 31

var header = []string{"Timestamp", "URL", "Status", "Download Time (s)", "Error", "Run ID"}

// Store appends probe records to a persisted log with one partition per website.
// Rows already in the log are never rewritten.
type Store interface {
	Append(records []Record) error
	Close() error
}

// Record is the persisted form of one probe result.
type Record struct {
	RunID     string
	Timestamp time.Time
	Website   string
	Status    monitor.Status
	Elapsed   *time.Duration
	Error     string
}

func NewRecord(runID string, result monitor.Result) Record {
	return Record{
		RunID:     runID,
		Timestamp: result.Timestamp,
		Website:   result.Website,
		Status:    result.Status,
		Elapsed:   result.Elapsed,
		Error:     result.Error,
	}
}

func NewRecords(runID string, results []monitor.Result) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, NewRecord(runID, r))
	}
	return records
}

func (r Record) Partition() string {
	return PartitionName(r.Website)
}

func (r Record) timestamp() string {
	return r.Timestamp.Format(time.RFC3339Nano)
}

// elapsedSeconds is empty for records without a timing.
func (r Record) elapsedSeconds() string {
	if r.Elapsed == nil {
		return ""
	}
	return strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 4, 64)
}

func (r Record) row() []string {
	return []string{r.timestamp(), r.Website, string(r.Status), r.elapsedSeconds(), r.Error, r.RunID}
}

// PartitionName turns a website URL into a name usable as a sheet, table key or
// file name component.
func PartitionName(website string) string {
	name := strings.NewReplacer("https://", "", "http://", "", "www.", "").Replace(website)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]/\?*:`, r) {
			return '_'
		}
		return r
	}, name)

	for utf8.RuneCountInString(name) > maxPartitionNameLength {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}

	// Sheet names may not start or end with a single quote.
	name = strings.Trim(name, "'")

	if name == "" {
		return "website"
	}
	return name
}

// Open opens (creating it if needed) the result log described by cfg.
func Open(cfg *config.MonitoringConfig) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create log directory: %w", ErrWrite, err)
	}

	var (
		s   Store
		err error
	)
	switch format := cfg.ResolvedLogFormat(); format {
	case config.LogFormatCSV:
		s, err = openCSV(cfg.LogFile)
	case config.LogFormatXLSX:
		s, err = openXLSX(cfg.LogFile)
	case config.LogFormatSQLite:
		s, err = openSQLite(cfg.LogFile)
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return s, nil
}

// groupByPartition keeps first-seen partition order and record order within a partition.
func groupByPartition(records []Record) ([]string, map[string][]Record) {
	var order []string
	groups := make(map[string][]Record)

	for _, r := range records {
		p := r.Partition()
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], r)
	}

	return order, groups
}
