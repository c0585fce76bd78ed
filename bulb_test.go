package yeelight_test

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/wufe/yeelight"
)

var _ = ginkgo.Describe("Bulb", func() {
	ginkgo.It("should send each operation through the transport", func() {
		fake := startFakeBulb(okReply)
		bulb := yeelight.NewBulb(fake.device(), yeelight.NewTransport())
		ctx := context.Background()

		calls := []struct {
			send func() (string, bool, error)
			want string
		}{
			{func() (string, bool, error) { return bulb.SetPower(ctx, true, yeelight.Sudden()) },
				`{"id":1,"method":"set_power","params":["on","sudden",500]}`},
			{func() (string, bool, error) { return bulb.SetColorHSV(ctx, 400, 50) },
				`{"id":1,"method":"set_hsv","params":[359,50,"smooth",500]}`},
			{func() (string, bool, error) { return bulb.CronAdd(ctx, yeelight.CronPowerOff{Duration: 2 * time.Minute}) },
				`{"id":1,"method":"cron_add","params":[0,2]}`},
			{func() (string, bool, error) { return bulb.GetProperties(ctx, "power") },
				`{"id":1,"method":"get_prop","params":["power"]}`},
		}

		for _, call := range calls {
			reply, ok, err := call.send()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(reply).To(gomega.Equal(`{"id":1,"result":["ok"]}`))
			gomega.Eventually(fake.received).Should(gomega.Receive(gomega.Equal(call.want + "\r\n")))
		}
	})
})
