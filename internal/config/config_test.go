package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/intellinbox/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.BaseURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(cfg.Timeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.UserAgent, convey.ShouldEqual, "inboxctl")
			convey.So(cfg.Workers, convey.ShouldEqual, 4)
			convey.So(cfg.Trace, convey.ShouldBeFalse)
			convey.So(cfg.RateLimit, convey.ShouldEqual, 0)
			convey.So(cfg.APIToken, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty base url", func(c *config.Config) { c.BaseURL = "" }},
			{"relative base url", func(c *config.Config) { c.BaseURL = "/inboxes" }},
			{"ftp base url", func(c *config.Config) { c.BaseURL = "ftp://example.com" }},
			{"bad base url", func(c *config.Config) { c.BaseURL = "http://[::1" }},
			{"negative timeout", func(c *config.Config) { c.Timeout = -time.Second }},
			{"zero workers", func(c *config.Config) { c.Workers = 0 }},
			{"negative rate limit", func(c *config.Config) { c.RateLimit = -1 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a zero timeout should be allowed", func() {
			cfg := config.New()
			cfg.Timeout = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
