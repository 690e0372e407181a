package haproxy_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/j3k0/haproxy-statsd/internal/haproxy"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		status  int
		gotUser string
		gotPass string
		hasAuth bool
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		gotUser, gotPass, hasAuth = "", "", false

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, hasAuth = r.BasicAuth()
			w.WriteHeader(status)
			w.Write([]byte(sampleReport))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Fetch", func() {
		It("should fetch and parse the report", func() {
			client := haproxy.NewClient(server.URL+"/;csv", "", "", nil)

			rows, err := client.Fetch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[2].ServiceName()).To(Equal("BACKEND"))
		})

		It("should not send credentials without a user", func() {
			client := haproxy.NewClient(server.URL+"/;csv", "", "secret", nil)

			_, err := client.Fetch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasAuth).To(BeFalse())
		})

		It("should send basic auth when a user is set", func() {
			client := haproxy.NewClient(server.URL+"/;csv", "admin", "secret", nil)

			_, err := client.Fetch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(hasAuth).To(BeTrue())
			Expect(gotUser).To(Equal("admin"))
			Expect(gotPass).To(Equal("secret"))
		})

		It("should return a StatusError on a non-2xx response", func() {
			status = http.StatusUnauthorized
			client := haproxy.NewClient(server.URL+"/;csv", "", "", nil)

			_, err := client.Fetch(ctx)

			var statusErr *haproxy.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("should fail when the endpoint is unreachable", func() {
			client := haproxy.NewClient(server.URL+"/;csv", "", "", nil)
			server.Close()

			_, err := client.Fetch(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("should honour context cancellation", func() {
			client := haproxy.NewClient(server.URL+"/;csv", "", "", nil)
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := client.Fetch(cancelled)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	It("should expose its URL", func() {
		Expect(haproxy.NewClient("http://127.0.0.1:1936/;csv", "", "", nil).URL()).To(Equal("http://127.0.0.1:1936/;csv"))
	})
})
