package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/okian/piste/internal/adapters/mq/queue"
	"github.com/okian/piste/internal/adapters/repository"
	service "github.com/okian/piste/internal/app"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/types"
	"github.com/okian/piste/internal/pipeline"
	"github.com/okian/piste/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// gatedStore holds every athlete read until the gate opens, keeping runs in flight.
type gatedStore struct {
	*repository.Repo
	gate chan struct{}
	once sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{Repo: repository.NewRepo(repository.NewMemoryStore()), gate: make(chan struct{})}
}

func (g *gatedStore) FetchAll(ctx context.Context, table string, filters model.Row) ([]model.Row, error) {
	if table == model.TableAthletes {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.Repo.FetchAll(ctx, table, filters)
}

func (g *gatedStore) open() { g.once.Do(func() { close(g.gate) }) }

func waitFor(svc *service.Service, id string) types.Run {
	deadline := time.Now().Add(5 * time.Second)
	for {
		run, err := svc.Run(context.Background(), id)
		So(err, ShouldBeNil)
		if run.State.Terminal() || time.Now().After(deadline) {
			return run
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewRepo(repository.NewMemoryStore()),
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
			service.WithDedupeSize(16),
		)

		Convey("Runs are refused before Start", func() {
			_, err := svc.Submit(ctx, model.StagePiste, 2025, false)
			So(err, ShouldEqual, service.ErrNotStarted)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})

		Convey("Start and Stop are idempotent", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueLength"], ShouldEqual, 0)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service whose runs wait on the store", t, func() {
		ctx := context.Background()
		store := newGatedStore()
		svc := service.New(store, service.WithQueueSize(1))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() {
			store.open()
			_ = svc.Stop(ctx)
		})

		Convey("Invalid stages and years are rejected up front", func() {
			_, err := svc.Submit(ctx, model.Stage("bogus"), 2025, false)
			So(err, ShouldWrap, pipeline.ErrUnknownStage)
			_, err = svc.Submit(ctx, model.StageSoc, 0, false)
			So(err, ShouldWrap, pipeline.ErrInvalidYear)
		})

		Convey("A second run of the same stage and year is rejected while the first is in flight", func() {
			first, err := svc.Submit(ctx, model.StagePiste, 2025, false)
			So(err, ShouldBeNil)
			So(first.State, ShouldEqual, types.RunQueued)

			_, err = svc.Submit(ctx, model.StagePiste, 2025, false)
			So(err, ShouldWrap, service.ErrRunInFlight)

			Convey("And accepted again once it finished", func() {
				store.open()
				done := waitFor(svc, first.ID)
				So(done.State, ShouldEqual, types.RunDone)
				So(done.Started, ShouldNotBeNil)
				So(done.Finished, ShouldNotBeNil)
				So(done.Steps, ShouldHaveLength, 1)
				So(done.Steps[0].Stage, ShouldEqual, "piste")

				again, err := svc.Submit(ctx, model.StagePiste, 2025, false)
				So(err, ShouldBeNil)
				So(waitFor(svc, again.ID).State, ShouldEqual, types.RunDone)
			})
		})

		Convey("The competitions stage is in flight for every year at once", func() {
			_, err := svc.Submit(ctx, model.StageCompetitions, 2025, false)
			So(err, ShouldBeNil)
			_, err = svc.Submit(ctx, model.StageCompetitions, 2024, false)
			So(err, ShouldWrap, service.ErrRunInFlight)
		})

		Convey("A full queue rejects the run and releases its key", func() {
			_, err := svc.Submit(ctx, model.StagePiste, 2025, false)
			So(err, ShouldBeNil)

			var (
				rejected types.Run
				stage    model.Stage
			)
			for _, st := range []model.Stage{model.StageSoc, model.StageRefPoints, model.StageCompetitions} {
				run, err := svc.Submit(ctx, st, 2025, false)
				if err != nil {
					So(err, ShouldEqual, queue.ErrFull)
					rejected, stage = run, st
					break
				}
			}
			So(rejected.State, ShouldEqual, types.RunRejected)

			stored, err := svc.Run(ctx, rejected.ID)
			So(err, ShouldBeNil)
			So(stored.Error, ShouldEqual, queue.ErrFull.Error())

			_, err = svc.Submit(ctx, stage, 2025, false)
			So(err, ShouldEqual, queue.ErrFull)
		})

		Convey("Unknown run ids are reported", func() {
			_, err := svc.Run(ctx, "nope")
			So(err, ShouldWrap, service.ErrRunNotFound)
		})
	})
}
