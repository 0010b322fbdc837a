package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/ecopoints/internal/adapters/http/api"
	service "github.com/okian/ecopoints/internal/app"
	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New(
		service.WithWorkerCount(4),
		service.WithQueueSize(1000),
		service.WithLogger(logger.Nop()),
	)
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, api.WithLogger(logger.Nop())).Register(ctx, mux)
	return httptest.NewServer(mux), svc
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded config", t, func() {
		ctx := context.Background()
		cfg := &Config{NumSubmissions: 50, NumUsers: 5, MaxLabels: 4, Seed: 42}

		Convey("When generating a plan", func() {
			plan, err := Generate(ctx, cfg, catalog.Default())
			So(err, ShouldBeNil)

			Convey("Then every submission is well formed", func() {
				So(len(plan.Submissions), ShouldEqual, 50)
				So(len(plan.Expected), ShouldBeLessThanOrEqualTo, 5)
				ids := map[string]bool{}
				for _, s := range plan.Submissions {
					So(s.UserID, ShouldNotBeBlank)
					So(len(s.Labels), ShouldBeBetweenOrEqual, 1, 4)
					_, perr := time.Parse(time.RFC3339, s.TS)
					So(perr, ShouldBeNil)
					ids[s.SubmissionID] = true
				}
				So(len(ids), ShouldEqual, 50)
			})

			Convey("And expected sessions add up to the submission count", func() {
				total := 0
				for _, e := range plan.Expected {
					total += e.Sessions
				}
				So(total, ShouldEqual, 50)
			})
		})

		Convey("When a fixed label set is used", func() {
			cfg.Labels = []string{"tree"}
			cfg.MaxLabels = 1
			plan, err := Generate(ctx, cfg, catalog.Default())
			So(err, ShouldBeNil)

			Convey("Then each session is worth the tree points", func() {
				for _, e := range plan.Expected {
					So(e.Points, ShouldEqual, 8*e.Sessions)
				}
			})
		})

		Convey("When the config asks for nothing", func() {
			_, err := Generate(ctx, &Config{}, catalog.Default())

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestCheckOrdering(t *testing.T) {
	Convey("Given leaderboard entries", t, func() {
		So(checkOrdering(nil), ShouldBeNil)
		So(checkOrdering([]Entry{{Rank: 1, Points: 20}, {Rank: 2, Points: 8}}), ShouldBeNil)
		So(checkOrdering([]Entry{{Rank: 1, Points: 8}, {Rank: 2, Points: 20}}), ShouldNotBeNil)
		So(checkOrdering([]Entry{{Rank: 2, Points: 8}}), ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		srv, svc := newTestServer(ctx)
		defer srv.Close()
		defer svc.Stop()

		out := filepath.Join(t.TempDir(), "submissions.json")
		cfg := &Config{
			BaseURL:        srv.URL,
			NumSubmissions: 200,
			NumUsers:       10,
			TopN:           5,
			Workers:        8,
			Timeout:        5 * time.Second,
			DrainTimeout:   10 * time.Second,
			MaxLabels:      4,
			Seed:           7,
			OutputFile:     out,
		}

		Convey("When the load run completes", func() {
			stats, err := NewRunner(cfg, nil, nil).Run(ctx)

			Convey("Then every user's totals match the local resolver", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 200)
				So(stats.Accepted, ShouldEqual, 200)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Mismatches, ShouldEqual, 0)
				So(stats.Leaderboard, ShouldBeBetweenOrEqual, 1, 5)
				_, serr := os.Stat(out)
				So(serr, ShouldBeNil)
			})
		})
	})

	Convey("Given no service", t, func() {
		cfg := &Config{BaseURL: "http://127.0.0.1:1", NumSubmissions: 1, NumUsers: 1, Timeout: time.Second}

		Convey("When running", func() {
			_, err := NewRunner(cfg, nil, nil).Run(context.Background())

			Convey("Then the health check fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
			})
		})
	})
}
