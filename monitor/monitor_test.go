package monitor

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"time"

	"github.com/Crowley723/proxy-health-monitor/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeProxy answers absolute-URI requests the way a forwarding proxy would,
// choosing the behaviour from the requested host.
func fakeProxy() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Hostname() {
		case "up.example", "also-up.example":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("hello"))
		case "redirect.example":
			http.Redirect(w, r, "http://up.example/", http.StatusFound)
		case "error.example":
			w.WriteHeader(http.StatusBadGateway)
		case "slow.example":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testConfig(proxyAddr string, websites ...string) *config.Config {
	host, port, err := net.SplitHostPort(proxyAddr)
	Expect(err).NotTo(HaveOccurred())
	p, err := strconv.Atoi(port)
	Expect(err).NotTo(HaveOccurred())

	return &config.Config{
		Proxy: config.ProxyConfig{Host: host, Port: p},
		Monitoring: config.MonitoringConfig{
			Websites: websites,
			LogFile:  "unused.csv",
			Timeout:  "300ms",
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Monitor", func() {
	var (
		proxy *httptest.Server
		addr  string
	)

	BeforeEach(func() {
		proxy = fakeProxy()
		u, err := url.Parse(proxy.URL)
		Expect(err).NotTo(HaveOccurred())
		addr = u.Host
	})

	AfterEach(func() {
		proxy.Close()
	})

	newMonitor := func(cfg *config.Config) *Monitor {
		m, err := New(cfg, discardLogger())
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	Describe("New()", func() {
		It("rejects an unparsable timeout", func() {
			cfg := testConfig(addr, "http://up.example/")
			cfg.Monitoring.Timeout = "never"
			_, err := New(cfg, discardLogger())
			Expect(err).To(MatchError(ContainSubstring("failed to parse timeout")))
		})
	})

	Describe("CheckAll()", func() {
		It("returns one result per website in configured order", func() {
			websites := []string{"http://up.example/", "http://error.example/", "http://also-up.example/"}
			results := newMonitor(testConfig(addr, websites...)).CheckAll(context.Background())

			Expect(results).To(HaveLen(len(websites)))
			for i, r := range results {
				Expect(r.Website).To(Equal(websites[i]))
			}
		})

		It("marks reachable websites UP with a non-negative elapsed time", func() {
			results := newMonitor(testConfig(addr, "http://up.example/", "http://also-up.example/")).CheckAll(context.Background())

			for _, r := range results {
				Expect(r.Status).To(Equal(StatusUp))
				Expect(r.IsUp()).To(BeTrue())
				Expect(r.Elapsed).NotTo(BeNil())
				Expect(*r.Elapsed).To(BeNumerically(">=", 0))
				Expect(r.StatusCode).To(Equal(http.StatusOK))
				Expect(r.Error).To(BeEmpty())
				Expect(r.Timestamp).NotTo(BeZero())
			}
		})

		It("follows redirects and judges the final response", func() {
			results := newMonitor(testConfig(addr, "http://redirect.example/")).CheckAll(context.Background())
			Expect(results[0].Status).To(Equal(StatusUp))
		})

		It("marks error responses DOWN without an elapsed time", func() {
			results := newMonitor(testConfig(addr, "http://error.example/")).CheckAll(context.Background())

			Expect(results[0].Status).To(Equal(StatusDown))
			Expect(results[0].Elapsed).To(BeNil())
			Expect(results[0].StatusCode).To(Equal(http.StatusBadGateway))
			Expect(results[0].Error).To(ContainSubstring("status 502"))
		})

		It("marks a timed out website DOWN and still probes the next one", func() {
			results := newMonitor(testConfig(addr, "http://slow.example/", "http://up.example/")).CheckAll(context.Background())

			Expect(results).To(HaveLen(2))
			Expect(results[0].Status).To(Equal(StatusDown))
			Expect(results[0].Elapsed).To(BeNil())
			Expect(results[0].Error).NotTo(BeEmpty())
			Expect(results[1].Status).To(Equal(StatusUp))
		})

		It("marks every website DOWN when the proxy is unreachable", func() {
			cfg := testConfig(addr, "http://up.example/", "http://also-up.example/")
			proxy.Close()

			results := newMonitor(cfg).CheckAll(context.Background())

			Expect(results).To(HaveLen(2))
			for _, r := range results {
				Expect(r.Status).To(Equal(StatusDown))
				Expect(r.Elapsed).To(BeNil())
			}
		})

		It("stops waiting when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			results := newMonitor(testConfig(addr, "http://up.example/")).CheckAll(ctx)
			Expect(results[0].Status).To(Equal(StatusDown))
		})
	})
})
