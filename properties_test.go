package yeelight_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/atomic"

	"github.com/wufe/yeelight"
)

var _ = ginkgo.Describe("PropertyCache", func() {
	var (
		queries atomic.Int64
		bulb    *fakeBulb
	)

	ginkgo.BeforeEach(func() {
		queries.Store(0)
		bulb = startFakeBulb(func(line string) string {
			queries.Inc()
			time.Sleep(50 * time.Millisecond)
			if !strings.Contains(line, `"get_prop"`) {
				return `{"id":1,"error":{"code":-1,"message":"method not supported"}}`
			}
			return `{"id":1,"result":["on","75"]}`
		})
	})

	ginkgo.It("should map the reply values onto the property names", func() {
		cache := yeelight.NewPropertyCache(yeelight.NewTransport())

		props, err := cache.Get(context.Background(), bulb.device(), "power", "bright")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(props).To(gomega.Equal(map[string]string{"power": "on", "bright": "75"}))
	})

	ginkgo.It("should serve repeated lookups from the cache", func() {
		cache := yeelight.NewPropertyCache(yeelight.NewTransport(), yeelight.WithPropertyTTL(time.Minute))

		for range 3 {
			_, err := cache.Get(context.Background(), bulb.device(), "power", "bright")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		}
		gomega.Expect(queries.Load()).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("should collapse concurrent lookups", func() {
		cache := yeelight.NewPropertyCache(yeelight.NewTransport())

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = cache.Get(context.Background(), bulb.device(), "power", "bright")
			}()
		}
		wg.Wait()
		gomega.Expect(queries.Load()).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("should query again after invalidation", func() {
		cache := yeelight.NewPropertyCache(yeelight.NewTransport(), yeelight.WithPropertyTTL(time.Minute))
		device := bulb.device()

		_, err := cache.Get(context.Background(), device, "power", "bright")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		cache.Invalidate(device.ID)
		_, err = cache.Get(context.Background(), device, "power", "bright")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(queries.Load()).To(gomega.Equal(int64(2)))
	})

	ginkgo.It("should not let callers mutate the cached values", func() {
		cache := yeelight.NewPropertyCache(yeelight.NewTransport(), yeelight.WithPropertyTTL(time.Minute))

		props, err := cache.Get(context.Background(), bulb.device(), "power", "bright")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		props["power"] = "off"

		props, err = cache.Get(context.Background(), bulb.device(), "power", "bright")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(props["power"]).To(gomega.Equal("on"))
	})

	ginkgo.It("should not fail a waiting lookup when the first caller gives up", func() {
		slowBulb := startFakeBulb(func(string) string {
			time.Sleep(300 * time.Millisecond)
			return `{"id":1,"result":["on","75"]}`
		})
		cache := yeelight.NewPropertyCache(yeelight.NewTransport())
		device := slowBulb.device()

		shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		var (
			wg       sync.WaitGroup
			props    map[string]string
			errOther error
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			props, errOther = cache.Get(context.Background(), device, "power", "bright")
		}()

		_, err := cache.Get(shortCtx, device, "power", "bright")
		gomega.Expect(err).To(gomega.MatchError(context.DeadlineExceeded))

		wg.Wait()
		gomega.Expect(errOther).NotTo(gomega.HaveOccurred())
		gomega.Expect(props).To(gomega.Equal(map[string]string{"power": "on", "bright": "75"}))
	})

	ginkgo.It("should keep devices without an id apart", func() {
		onBulb := startFakeBulb(func(string) string {
			return `{"id":1,"result":["on"]}`
		})
		offBulb := startFakeBulb(func(string) string {
			return `{"id":1,"result":["off"]}`
		})
		cache := yeelight.NewPropertyCache(yeelight.NewTransport(), yeelight.WithPropertyTTL(time.Minute))

		on := onBulb.device()
		on.ID = ""
		off := offBulb.device()
		off.ID = ""

		props, err := cache.Get(context.Background(), on, "power")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(props).To(gomega.Equal(map[string]string{"power": "on"}))

		props, err = cache.Get(context.Background(), off, "power")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(props).To(gomega.Equal(map[string]string{"power": "off"}))
	})

	ginkgo.It("should report ErrNoReply for a silent bulb", func() {
		silentBulb := startFakeBulb(silent)
		cache := yeelight.NewPropertyCache(yeelight.NewTransport(yeelight.WithReadTimeout(100 * time.Millisecond)))

		_, err := cache.Get(context.Background(), silentBulb.device(), "power")
		gomega.Expect(err).To(gomega.MatchError(yeelight.ErrNoReply))
	})

	ginkgo.It("should reject a reply with the wrong number of values", func() {
		cache := yeelight.NewPropertyCache(yeelight.NewTransport())

		_, err := cache.Get(context.Background(), bulb.device(), "power")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
