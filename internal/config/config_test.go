package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/scorebook/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.LiveStore, convey.ShouldEqual, config.LiveStoreMemory)
			convey.So(cfg.WinPoints, convey.ShouldEqual, 2)
			convey.So(cfg.TiePoints, convey.ShouldEqual, 1)
			convey.So(cfg.LossPoints, convey.ShouldEqual, 0)
			convey.So(cfg.KnockoutOddTeam, convey.ShouldEqual, config.OddTeamDrop)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with an invalid field", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"unknown live store", func(c *config.Config) { c.LiveStore = "etcd" }},
			{"redis without addr", func(c *config.Config) { c.LiveStore = config.LiveStoreRedis; c.RedisAddr = "" }},
			{"archive without dsn", func(c *config.Config) { c.ArchiveDriver = config.ArchiveSQLite }},
			{"unknown archive", func(c *config.Config) { c.ArchiveDriver = "mysql"; c.ArchiveDSN = "x" }},
			{"kafka without topic", func(c *config.Config) { c.KafkaBrokers = []string{"k:9092"}; c.KafkaTopic = "" }},
			{"negative overs", func(c *config.Config) { c.MaxOvers = -1 }},
			{"tie above win", func(c *config.Config) { c.TiePoints = 3 }},
			{"unknown odd handling", func(c *config.Config) { c.KnockoutOddTeam = "bye" }},
			{"negative retries", func(c *config.Config) { c.PublishRetries = -1 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
