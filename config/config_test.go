package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/j3k0/haproxy-statsd/config"
)

var envNames = []string{
	"HAPROXY_HOST", "HAPROXY_USER", "HAPROXY_PASS",
	"STATSD_HOST", "STATSD_PORT", "STATSD_NAMESPACE",
	"INTERVAL", "MAX_PACKET_SIZE", "KEEP_GOING", "STATUS_ADDR",
	"LOG_LEVEL", "ENVIRONMENT",
}

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	writeConfig := func(name, content string) string {
		configPath := filepath.Join(tempDir, name)
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
		return configPath
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())

		for _, name := range envNames {
			os.Unsetenv(name)
		}
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		for _, name := range envNames {
			os.Unsetenv(name)
		}
	})

	Describe("Load", func() {
		Context("without config file or environment", func() {
			It("should use the built-in defaults", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.HAProxyURL).To(Equal("http://127.0.0.1:1936/;csv"))
				Expect(cfg.HAProxyUser).To(BeEmpty())
				Expect(cfg.StatsdHost).To(Equal("127.0.0.1"))
				Expect(cfg.StatsdPort).To(Equal(8125))
				Expect(cfg.StatsdNamespace).To(Equal("haproxy.(HOSTNAME)"))
				Expect(cfg.Interval).To(Equal(10.0))
				Expect(cfg.MaxPacketSize).To(Equal(1386))
				Expect(cfg.KeepGoing).To(BeFalse())
				Expect(cfg.StatusAddr).To(BeEmpty())
				Expect(cfg.LogLevel).To(Equal(config.LogLevelInfo))
				Expect(cfg.Environment).To(Equal(config.EnvDev))
			})
		})

		Context("with environment variables", func() {
			It("should override the defaults", func() {
				os.Setenv("HAPROXY_HOST", "http://lb.internal:8404/stats;csv")
				os.Setenv("HAPROXY_USER", "admin")
				os.Setenv("HAPROXY_PASS", "secret")
				os.Setenv("STATSD_PORT", "9125")
				os.Setenv("INTERVAL", "2.5")
				os.Setenv("MAX_PACKET_SIZE", "512")
				os.Setenv("KEEP_GOING", "true")

				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.HAProxyURL).To(Equal("http://lb.internal:8404/stats;csv"))
				Expect(cfg.HAProxyUser).To(Equal("admin"))
				Expect(cfg.HAProxyPassword).To(Equal("secret"))
				Expect(cfg.StatsdPort).To(Equal(9125))
				Expect(cfg.Interval).To(Equal(2.5))
				Expect(cfg.MaxPacketSize).To(Equal(512))
				Expect(cfg.KeepGoing).To(BeTrue())
			})
		})

		Context("with a config file in the working directory", func() {
			BeforeEach(func() {
				writeConfig("haproxy-statsd.yaml", `
haproxy_url: "http://10.0.0.5:1936/;csv"
statsd_host: "statsd.internal"
statsd_port: 8126
statsd_namespace: "lb.(HOSTNAME).haproxy"
interval: 5
`)
			})

			It("should be found without an explicit path", func() {
				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.HAProxyURL).To(Equal("http://10.0.0.5:1936/;csv"))
				Expect(cfg.StatsdHost).To(Equal("statsd.internal"))
				Expect(cfg.StatsdPort).To(Equal(8126))
				Expect(cfg.Interval).To(Equal(5.0))
			})

			It("should take precedence over environment variables", func() {
				os.Setenv("STATSD_HOST", "10.9.9.9")
				os.Setenv("STATSD_NAMESPACE", "from-env")
				os.Setenv("LOG_LEVEL", "debug")

				cfg, err := config.Load("")
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.StatsdHost).To(Equal("statsd.internal"))
				Expect(cfg.StatsdNamespace).To(Equal("lb.(HOSTNAME).haproxy"))
				Expect(cfg.LogLevel).To(Equal("debug"))
			})
		})

		Context("with an explicit config path", func() {
			It("should load the given file", func() {
				path := writeConfig("custom.yml", "statsd_namespace: \"edge\"\nstatus_addr: \"127.0.0.1:9102\"\n")

				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.StatsdNamespace).To(Equal("edge"))
				Expect(cfg.StatusAddr).To(Equal("127.0.0.1:9102"))
			})

			It("should load JSON files", func() {
				path := writeConfig("custom.json", `{"statsd_port": 8200, "interval": 0.5}`)

				cfg, err := config.Load(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.StatsdPort).To(Equal(8200))
				Expect(cfg.IntervalDuration()).To(Equal(500 * time.Millisecond))
			})

			It("should fail when the file does not exist", func() {
				_, err := config.Load(filepath.Join(tempDir, "missing.yaml"))
				Expect(err).To(HaveOccurred())
			})

			It("should fail on malformed content", func() {
				path := writeConfig("broken.yaml", "statsd_port: [\n")

				_, err := config.Load(path)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with invalid values", func() {
			It("should reject a non-numeric port", func() {
				os.Setenv("STATSD_PORT", "statsd")
				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})

			It("should reject a zero interval", func() {
				os.Setenv("INTERVAL", "0")
				_, err := config.Load("")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				HAProxyURL:      "http://127.0.0.1:1936/;csv",
				StatsdHost:      "127.0.0.1",
				StatsdPort:      8125,
				StatsdNamespace: "haproxy",
				Interval:        10,
				MaxPacketSize:   1386,
				LogLevel:        config.LogLevelInfo,
				Environment:     config.EnvDev,
			}
		})

		It("should accept a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		DescribeTable("rejecting invalid fields",
			func(mutate func(*config.Config)) {
				mutate(cfg)
				Expect(cfg.Validate()).NotTo(Succeed())
			},
			Entry("non-http scheme", func(c *config.Config) { c.HAProxyURL = "ftp://127.0.0.1/;csv" }),
			Entry("url without host", func(c *config.Config) { c.HAProxyURL = "http:///;csv" }),
			Entry("empty statsd host", func(c *config.Config) { c.StatsdHost = "" }),
			Entry("invalid statsd host", func(c *config.Config) { c.StatsdHost = "statsd host!" }),
			Entry("port out of range", func(c *config.Config) { c.StatsdPort = 70000 }),
			Entry("negative interval", func(c *config.Config) { c.Interval = -1 }),
			Entry("zero packet size", func(c *config.Config) { c.MaxPacketSize = 0 }),
			Entry("empty namespace", func(c *config.Config) { c.StatsdNamespace = "" }),
			Entry("malformed status address", func(c *config.Config) { c.StatusAddr = "localhost" }),
			Entry("unknown log level", func(c *config.Config) { c.LogLevel = "trace" }),
			Entry("unknown environment", func(c *config.Config) { c.Environment = "qa" }),
		)

		It("should accept a port-only status address", func() {
			cfg.StatusAddr = ":9102"
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("helpers", func() {
		It("should join the statsd address", func() {
			cfg := &config.Config{StatsdHost: "10.0.0.1", StatsdPort: 8125}
			Expect(cfg.StatsdAddr()).To(Equal("10.0.0.1:8125"))
		})

		It("should convert fractional seconds", func() {
			cfg := &config.Config{Interval: 1.25}
			Expect(cfg.IntervalDuration()).To(Equal(1250 * time.Millisecond))
		})
	})

	Describe("ResolveNamespace", func() {
		It("should substitute the host name placeholder", func() {
			Expect(config.ResolveNamespace("haproxy.(HOSTNAME)", "web01")).To(Equal("haproxy.web01"))
		})

		It("should pass a namespace without placeholder through", func() {
			Expect(config.ResolveNamespace("haproxy.edge", "web01")).To(Equal("haproxy.edge"))
		})

		It("should substitute every occurrence", func() {
			Expect(config.ResolveNamespace("(HOSTNAME).haproxy.(HOSTNAME)", "web01")).To(Equal("web01.haproxy.web01"))
		})
	})

	Describe("Namespace", func() {
		It("should resolve the local host name", func() {
			hostname, err := os.Hostname()
			Expect(err).NotTo(HaveOccurred())

			cfg := &config.Config{StatsdNamespace: "haproxy.(HOSTNAME)"}
			ns, err := cfg.Namespace()
			Expect(err).NotTo(HaveOccurred())
			Expect(ns).To(Equal("haproxy." + hostname))
		})

		It("should return a literal namespace unchanged", func() {
			cfg := &config.Config{StatsdNamespace: "haproxy"}
			Expect(cfg.Namespace()).To(Equal("haproxy"))
		})
	})
})
