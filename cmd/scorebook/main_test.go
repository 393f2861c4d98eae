package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorebook/internal/config"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/types"
	"github.com/okian/scorebook/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.WorkerCount = 1
	return cfg
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given scorebook environment variables", t, func() {
		_ = os.Setenv("SCOREBOOK_ADDR", ":8080")
		_ = os.Setenv("SCOREBOOK_QUEUE_SIZE", "1000")
		_ = os.Setenv("SCOREBOOK_WORKER_COUNT", "4")
		defer func() {
			_ = os.Unsetenv("SCOREBOOK_ADDR")
			_ = os.Unsetenv("SCOREBOOK_QUEUE_SIZE")
			_ = os.Unsetenv("SCOREBOOK_WORKER_COUNT")
		}()

		convey.Convey("Then the configuration reflects them", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})
}

func TestBuildService(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given the default configuration", t, func() {
		cfg := testConfig()

		convey.Convey("When the service is built", func() {
			svc, closers, err := buildService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeAll(ctx, closers)

			convey.Convey("Then the router serves health, stats and the API", func() {
				srv := httptest.NewServer(newRouter(ctx, svc))
				defer srv.Close()

				for _, path := range []string{"/healthz", "/stats", "/openapi.yaml"} {
					resp, err := http.Get(srv.URL + path)
					convey.So(err, convey.ShouldBeNil)
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
					_ = resp.Body.Close()
				}
				resp, err := http.Get(srv.URL + "/live/none")
				convey.So(err, convey.ShouldBeNil)
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
				_ = resp.Body.Close()
			})
		})
	})

	convey.Convey("Given a sqlite archive and a redis live store", t, func() {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.LiveStore = config.LiveStoreRedis
		cfg.RedisAddr = mr.Addr()
		cfg.ArchiveDriver = config.ArchiveSQLite
		cfg.ArchiveDSN = ":memory:"

		convey.Convey("When the service is built", func() {
			svc, closers, err := buildService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeAll(ctx, closers)

			convey.Convey("Then both backends are held for closing", func() {
				convey.So(closers, convey.ShouldHaveLength, 2)
			})

			convey.Convey("Then tournaments are published to redis", func() {
				created, err := svc.CreateTournament(ctx, types.CreateTournamentInput{
					Name:           "Cup",
					Teams:          []model.Team{{Name: "A"}, {Name: "B"}},
					SchedulePolicy: model.RoundRobin,
				})
				convey.So(err, convey.ShouldBeNil)
				convey.So(created.Published, convey.ShouldBeTrue)
				convey.So(mr.Exists("scorebook:tournaments/"+created.Tournament.ID), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given an unreachable redis", t, func() {
		mr, err := miniredis.Run()
		convey.So(err, convey.ShouldBeNil)
		addr := mr.Addr()
		mr.Close()
		cfg := testConfig()
		cfg.LiveStore = config.LiveStoreRedis
		cfg.RedisAddr = addr

		convey.Convey("Then building fails with a persistence error", func() {
			_, _, err := buildService(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, model.ErrPersistenceUnavailable), convey.ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, testConfig()) }()

		convey.Convey("When the context is cancelled", func() {
			time.Sleep(100 * time.Millisecond)
			cancel()

			convey.Convey("Then run returns cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})
	})
}
