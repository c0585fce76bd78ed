package yeelight_test

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/wufe/yeelight"
)

func firstInt(cmd yeelight.Command) int {
	return cmd.Params()[0].IntValue()
}

var _ = ginkgo.Describe("Command encoder", func() {
	ginkgo.Context("rendering", func() {
		ginkgo.It("should render id, method and params as compact JSON", func() {
			cmd := yeelight.SetBrightness(50)
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"set_bright","params":[50,"smooth",500]}`))
		})

		ginkgo.It("should terminate the wire form with CRLF", func() {
			wire := string(yeelight.Toggle().Wire())
			gomega.Expect(wire).To(gomega.Equal(`{"id":1,"method":"toggle","params":[]}` + "\r\n"))
		})

		ginkgo.It("should render parameterless commands with an empty list", func() {
			gomega.Expect(yeelight.SetDefault().Render()).To(gomega.Equal(`{"id":1,"method":"set_default","params":[]}`))
			gomega.Expect(yeelight.StopColorFlow().Render()).To(gomega.Equal(`{"id":1,"method":"stop_cf","params":[]}`))
			gomega.Expect(yeelight.CronGet().Render()).To(gomega.Equal(`{"id":1,"method":"cron_get","params":[]}`))
			gomega.Expect(yeelight.CronDel().Render()).To(gomega.Equal(`{"id":1,"method":"cron_del","params":[]}`))
		})

		ginkgo.It("should be deterministic", func() {
			flow := []yeelight.FlowTuple{yeelight.FlowColor(0x00FF00, 80, time.Second)}
			a := yeelight.StartColorFlow(flow, 3, yeelight.FlowStay)
			b := yeelight.StartColorFlow(flow, 3, yeelight.FlowStay)
			gomega.Expect(a.Wire()).To(gomega.Equal(b.Wire()))
			gomega.Expect(a.Render()).To(gomega.Equal(a.Render()))
		})

		ginkgo.It("should escape line terminators inside text params", func() {
			cmd := yeelight.NewCommand(yeelight.MethodGetProp, yeelight.Text("na\r\nme"))
			gomega.Expect(cmd.Render()).NotTo(gomega.ContainSubstring("\n"))
			gomega.Expect(cmd.Render()).To(gomega.ContainSubstring(`"na\r\nme"`))
		})

		ginkgo.It("should always carry request id 1", func() {
			gomega.Expect(yeelight.Toggle().ID()).To(gomega.Equal(1))
		})
	})

	ginkgo.Context("NewCommand", func() {
		ginkgo.It("should keep param order and not share the caller's slice", func() {
			params := []yeelight.Param{yeelight.Text("b"), yeelight.Text("a"), yeelight.Text("b")}
			cmd := yeelight.NewCommand(yeelight.MethodGetProp, params...)
			params[0] = yeelight.Text("changed")

			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"get_prop","params":["b","a","b"]}`))
		})

		ginkgo.It("should hand out copies of its params", func() {
			cmd := yeelight.SetBrightness(10)
			cmd.Params()[0] = yeelight.Int(99)
			gomega.Expect(firstInt(cmd)).To(gomega.Equal(10))
		})
	})

	ginkgo.Context("get_prop", func() {
		ginkgo.It("should list the property names as strings", func() {
			cmd := yeelight.GetProperties("power", "bright", "rgb")
			gomega.Expect(cmd.Method()).To(gomega.Equal(yeelight.MethodGetProp))
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"get_prop","params":["power","bright","rgb"]}`))
		})
	})

	ginkgo.Context("set_power", func() {
		ginkgo.It("should default to a smooth 500ms transition", func() {
			gomega.Expect(yeelight.SetPower(true).Render()).To(gomega.Equal(`{"id":1,"method":"set_power","params":["on","smooth",500]}`))
		})

		ginkgo.It("should honour the effect and duration options", func() {
			cmd := yeelight.SetPower(false, yeelight.Sudden(), yeelight.WithDuration(30*time.Millisecond))
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"set_power","params":["off","sudden",30]}`))
		})

		ginkgo.It("should clamp negative durations to zero", func() {
			cmd := yeelight.SetPower(true, yeelight.WithDuration(-time.Second))
			gomega.Expect(cmd.Params()[2].IntValue()).To(gomega.Equal(0))
		})
	})

	ginkgo.DescribeTable("set_bright clamps to 1-100",
		func(in, want int) {
			gomega.Expect(firstInt(yeelight.SetBrightness(in))).To(gomega.Equal(want))
		},
		ginkgo.Entry("below range", -20, 1),
		ginkgo.Entry("zero", 0, 1),
		ginkgo.Entry("lower bound", 1, 1),
		ginkgo.Entry("inside", 50, 50),
		ginkgo.Entry("upper bound", 100, 100),
		ginkgo.Entry("above range", 250, 100),
	)

	ginkgo.DescribeTable("set_rgb clamps to 0x000000-0xFFFFFF",
		func(in, want int) {
			gomega.Expect(firstInt(yeelight.SetColorRGB(in))).To(gomega.Equal(want))
		},
		ginkgo.Entry("negative", -1, 0),
		ginkgo.Entry("black", 0, 0),
		ginkgo.Entry("red", 0xFF0000, 0xFF0000),
		ginkgo.Entry("white", 0xFFFFFF, 0xFFFFFF),
		ginkgo.Entry("overflow", 0x1000000, 0xFFFFFF),
	)

	ginkgo.DescribeTable("set_ct_abx clamps to 1700-6500",
		func(in, want int) {
			cmd := yeelight.SetWhiteTemperature(in)
			gomega.Expect(cmd.Method()).To(gomega.Equal(yeelight.MethodSetColorTemp))
			gomega.Expect(firstInt(cmd)).To(gomega.Equal(want))
		},
		ginkgo.Entry("too warm", 1000, 1700),
		ginkgo.Entry("inside", 4000, 4000),
		ginkgo.Entry("too cold", 9000, 6500),
	)

	ginkgo.DescribeTable("set_hsv clamps hue and saturation independently",
		func(hue, sat, wantHue, wantSat int) {
			params := yeelight.SetColorHSV(hue, sat).Params()
			gomega.Expect(params).To(gomega.HaveLen(4))
			gomega.Expect(params[0].IntValue()).To(gomega.Equal(wantHue))
			gomega.Expect(params[1].IntValue()).To(gomega.Equal(wantSat))
			gomega.Expect(params[2].TextValue()).To(gomega.Equal("smooth"))
			gomega.Expect(params[3].IntValue()).To(gomega.Equal(500))
		},
		ginkgo.Entry("both inside", 120, 50, 120, 50),
		ginkgo.Entry("hue high only", 400, 50, 359, 50),
		ginkgo.Entry("sat high only", 120, 150, 120, 100),
		ginkgo.Entry("hue low, sat high", -5, 101, 0, 100),
		ginkgo.Entry("hue high, sat low", 360, -1, 359, 0),
	)

	ginkgo.Context("start_cf", func() {
		ginkgo.It("should multiply the step count and join the tuples", func() {
			cmd := yeelight.StartColorFlow([]yeelight.FlowTuple{
				yeelight.FlowColor(0xFF0000, 100, 1000*time.Millisecond),
				yeelight.FlowSleep(500 * time.Millisecond),
			}, 2, yeelight.FlowRecover)

			params := cmd.Params()
			gomega.Expect(params).To(gomega.HaveLen(3))
			gomega.Expect(params[0].IntValue()).To(gomega.Equal(4))
			gomega.Expect(params[1].IntValue()).To(gomega.Equal(0))
			gomega.Expect(params[2].TextValue()).To(gomega.Equal("1000,1,16711680,100,500,7,0,0"))
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"start_cf","params":[4,0,"1000,1,16711680,100,500,7,0,0"]}`))
		})

		ginkgo.It("should play at least once", func() {
			cmd := yeelight.StartColorFlow([]yeelight.FlowTuple{yeelight.FlowSleep(time.Second)}, 0, yeelight.FlowOff)
			gomega.Expect(firstInt(cmd)).To(gomega.Equal(1))
			gomega.Expect(cmd.Params()[1].IntValue()).To(gomega.Equal(2))
		})

		ginkgo.It("should pass raw expressions through", func() {
			cmd := yeelight.StartColorFlowRaw(0, yeelight.FlowStay, "1000,2,2700,100")
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"start_cf","params":[0,1,"1000,2,2700,100"]}`))
		})
	})

	ginkgo.Context("flow tuples", func() {
		ginkgo.It("should clamp the duration to at least 50ms", func() {
			gomega.Expect(yeelight.FlowSleep(10 * time.Millisecond).String()).To(gomega.Equal("50,7,0,0"))
		})

		ginkgo.It("should clamp color and brightness", func() {
			gomega.Expect(yeelight.FlowColor(-3, 300, time.Second).String()).To(gomega.Equal("1000,1,0,100"))
			gomega.Expect(yeelight.FlowColor(0x0000FF, -7, time.Second).String()).To(gomega.Equal("1000,1,255,-1"))
		})

		ginkgo.It("should encode white temperature steps with mode 2", func() {
			gomega.Expect(yeelight.FlowWhiteTemperature(100, 50, 2*time.Second).String()).To(gomega.Equal("2000,2,1700,50"))
		})
	})

	ginkgo.Context("set_scene", func() {
		ginkgo.DescribeTable("should flatten the scene name and params",
			func(scene yeelight.Scene, want string) {
				gomega.Expect(yeelight.SetScene(scene).Render()).To(gomega.Equal(want))
			},
			ginkgo.Entry("rgb", yeelight.SceneColorRGB{Color: 0xFF5500, Brightness: 70},
				`{"id":1,"method":"set_scene","params":["color",16733440,70]}`),
			ginkgo.Entry("hsv", yeelight.SceneColorHSV{Hue: 300, Sat: 70, Brightness: 100},
				`{"id":1,"method":"set_scene","params":["hsv",300,70,100]}`),
			ginkgo.Entry("ct", yeelight.SceneColorTemperature{Kelvin: 5400, Brightness: 60},
				`{"id":1,"method":"set_scene","params":["ct",5400,60]}`),
			ginkgo.Entry("cf", yeelight.SceneColorFlow{
				Tuples: []yeelight.FlowTuple{yeelight.FlowWhiteTemperature(3000, 50, 500*time.Millisecond)},
				Repeat: 1,
				Action: yeelight.FlowOff,
			}, `{"id":1,"method":"set_scene","params":["cf",1,2,"500,2,3000,50"]}`),
			ginkgo.Entry("auto delay off", yeelight.SceneAutoDelayOff{Brightness: 50, Duration: 5 * time.Minute},
				`{"id":1,"method":"set_scene","params":["auto_delay_off",50,5]}`),
		)

		ginkgo.It("should floor the auto delay off duration to a minute", func() {
			cmd := yeelight.SetScene(yeelight.SceneAutoDelayOff{Brightness: 0, Duration: 10 * time.Second})
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"set_scene","params":["auto_delay_off",1,1]}`))
		})
	})

	ginkgo.Context("cron_add", func() {
		ginkgo.It("should floor sub-minute durations to one minute", func() {
			cmd := yeelight.CronAdd(yeelight.CronPowerOff{Duration: 30 * time.Second})
			gomega.Expect(cmd.Render()).To(gomega.Equal(`{"id":1,"method":"cron_add","params":[0,1]}`))
		})

		ginkgo.It("should truncate to whole minutes", func() {
			cmd := yeelight.CronAdd(yeelight.CronPowerOff{Duration: 15*time.Minute + 59*time.Second})
			gomega.Expect(cmd.Params()[1].IntValue()).To(gomega.Equal(15))
		})
	})

	ginkgo.It("should pack rgb channels", func() {
		gomega.Expect(yeelight.PackRGB(0xFF, 0x00, 0x00)).To(gomega.Equal(16711680))
		gomega.Expect(yeelight.PackRGB(0x12, 0x34, 0x56)).To(gomega.Equal(0x123456))
	})
})
