package store

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Crowley723/proxy-health-monitor/config"
	"github.com/Crowley723/proxy-health-monitor/monitor"
	"github.com/xuri/excelize/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var timestamp = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func sampleRecords(runID string) []Record {
	elapsed := 1500 * time.Millisecond
	return []Record{
		{RunID: runID, Timestamp: timestamp, Website: "https://www.google.com", Status: monitor.StatusUp, Elapsed: &elapsed},
		{RunID: runID, Timestamp: timestamp, Website: "https://github.com/status", Status: monitor.StatusDown, Error: "timeout"},
	}
}

func appendRun(cfg *config.MonitoringConfig, runID string) {
	s, err := Open(cfg)
	Expect(err).NotTo(HaveOccurred())
	Expect(s.Append(sampleRecords(runID))).To(Succeed())
	Expect(s.Close()).To(Succeed())
}

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	Expect(err).NotTo(HaveOccurred())
	return rows
}

var _ = Describe("PartitionName()", func() {
	DescribeTable("sanitizes websites",
		func(website, expected string) {
			Expect(PartitionName(website)).To(Equal(expected))
		},
		Entry("strips scheme and www", "https://www.google.com", "google.com"),
		Entry("plain http", "http://example.org", "example.org"),
		Entry("replaces invalid characters", "https://example.com/a?b=*[1]:2", "example.com_a_b=__1__2"),
		Entry("truncates to 31 characters", "https://"+strings.Repeat("a", 40)+".com", strings.Repeat("a", 31)),
		Entry("falls back for empty names", "https://www.", "website"),
		Entry("trims surrounding single quotes", "https://example.com/o'", "example.com_o"),
		Entry("trims quotes exposed by truncation", "https://'"+strings.Repeat("b", 29)+"'x", "b"+strings.Repeat("b", 28)),
		Entry("falls back when only quotes remain", "https://''", "website"),
	)
})

var _ = Describe("NewRecords()", func() {
	It("keeps one record per result in order", func() {
		elapsed := time.Second
		results := []monitor.Result{
			{Website: "https://a.example", Timestamp: timestamp, Status: monitor.StatusUp, Elapsed: &elapsed},
			{Website: "https://b.example", Timestamp: timestamp, Status: monitor.StatusDown, Error: "refused"},
		}

		records := NewRecords("run-1", results)
		Expect(records).To(HaveLen(2))
		Expect(records[0].Website).To(Equal("https://a.example"))
		Expect(records[0].elapsedSeconds()).To(Equal("1.0000"))
		Expect(records[1].RunID).To(Equal("run-1"))
		Expect(records[1].elapsedSeconds()).To(BeEmpty())
		Expect(records[1].row()).To(Equal([]string{
			"2026-10-19T08:30:00Z", "https://b.example", "DOWN", "", "refused", "run-1",
		}))
	})
})

var _ = Describe("Open()", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("creates missing log directories", func() {
		cfg := &config.MonitoringConfig{LogFile: filepath.Join(dir, "nested", "logs", "proxy.csv")}
		appendRun(cfg, "run-1")
		Expect(filepath.Join(dir, "nested", "logs", "proxy.google.com.csv")).To(BeAnExistingFile())
	})

	It("fails with ErrWrite when the log location is unwritable", func() {
		blocker := filepath.Join(dir, "not-a-dir")
		Expect(os.WriteFile(blocker, []byte("x"), 0o644)).To(Succeed())

		_, err := Open(&config.MonitoringConfig{LogFile: filepath.Join(blocker, "proxy.csv")})
		Expect(err).To(MatchError(ErrWrite))
	})
})

var _ = Describe("csvStore", func() {
	var (
		dir string
		cfg *config.MonitoringConfig
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfg = &config.MonitoringConfig{LogFile: filepath.Join(dir, "proxy_log.csv")}
	})

	It("writes a header and one row per website partition", func() {
		appendRun(cfg, "run-1")

		up := readCSV(filepath.Join(dir, "proxy_log.google.com.csv"))
		Expect(up).To(Equal([][]string{
			header,
			{"2026-10-19T08:30:00Z", "https://www.google.com", "UP", "1.5000", "", "run-1"},
		}))

		down := readCSV(filepath.Join(dir, "proxy_log.github.com_status.csv"))
		Expect(down).To(HaveLen(2))
		Expect(down[1][2]).To(Equal("DOWN"))
		Expect(down[1][3]).To(BeEmpty())
	})

	It("appends on every run without overwriting earlier rows", func() {
		for i := 1; i <= 3; i++ {
			appendRun(cfg, fmt.Sprintf("run-%d", i))
		}

		rows := readCSV(filepath.Join(dir, "proxy_log.google.com.csv"))
		Expect(rows).To(HaveLen(4))
		Expect(rows[1][5]).To(Equal("run-1"))
		Expect(rows[3][5]).To(Equal("run-3"))
	})

	It("reports partitions it could not write while writing the rest", func() {
		blocked := filepath.Join(dir, "proxy_log.google.com.csv")
		Expect(os.Mkdir(blocked, 0o755)).To(Succeed())

		s, err := Open(cfg)
		Expect(err).NotTo(HaveOccurred())
		err = s.Append(sampleRecords("run-1"))

		Expect(err).To(MatchError(ErrWrite))
		Expect(err.Error()).To(ContainSubstring("google.com"))
		Expect(readCSV(filepath.Join(dir, "proxy_log.github.com_status.csv"))).To(HaveLen(2))
	})
})

var _ = Describe("xlsxStore", func() {
	var (
		path string
		cfg  *config.MonitoringConfig
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "proxy_log.xlsx")
		cfg = &config.MonitoringConfig{LogFile: path}
	})

	It("creates a workbook with one sheet per website", func() {
		appendRun(cfg, "run-1")

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(ConsistOf("google.com", "github.com_status"))

		rows, err := f.GetRows("google.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0]).To(Equal(header))
		Expect(rows[1][2]).To(Equal("UP"))
		Expect(rows[1][3]).To(Equal("1.5"))
	})

	It("appends rows to existing sheets on later runs", func() {
		appendRun(cfg, "run-1")
		appendRun(cfg, "run-2")

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		rows, err := f.GetRows("github.com_status")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))
		Expect(rows[1][5]).To(Equal("run-1"))
		Expect(rows[2][5]).To(Equal("run-2"))
	})

	It("accepts websites whose path ends in a single quote", func() {
		s, err := Open(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Append([]Record{{
			Timestamp: timestamp, Website: "https://example.com/o'", Status: monitor.StatusDown, Error: "refused", RunID: "run-1",
		}})).To(Succeed())
		Expect(s.Close()).To(Succeed())

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(ConsistOf("example.com_o"))
	})
})

var _ = Describe("sqliteStore", func() {
	var (
		path string
		cfg  *config.MonitoringConfig
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "proxy_log.db")
		cfg = &config.MonitoringConfig{LogFile: path}
	})

	It("appends every run to the probe_results table", func() {
		appendRun(cfg, "run-1")
		appendRun(cfg, "run-2")

		db, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var count int
		Expect(db.QueryRow(`SELECT COUNT(*) FROM probe_results WHERE partition_name = ?`, "google.com").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(2))

		var elapsed sql.NullFloat64
		Expect(db.QueryRow(`SELECT elapsed_seconds FROM probe_results WHERE status = 'DOWN' LIMIT 1`).Scan(&elapsed)).To(Succeed())
		Expect(elapsed.Valid).To(BeFalse())

		var runID string
		Expect(db.QueryRow(`SELECT run_id FROM probe_results ORDER BY id DESC LIMIT 1`).Scan(&runID)).To(Succeed())
		Expect(runID).To(Equal("run-2"))
	})
})
