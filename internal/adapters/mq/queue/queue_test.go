package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/piste/internal/adapters/mq/queue"
	"github.com/okian/piste/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func run(id string, stage model.Stage, year int) queue.Request {
	return queue.Request{RunID: id, Stage: stage, Year: year, Submitted: time.Now()}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When two runs are enqueued", func() {
			So(q.Enqueue(ctx, run("r1", model.StagePiste, 2025)), ShouldBeTrue)
			So(q.Enqueue(ctx, run("r2", model.StageSoc, 2025)), ShouldBeTrue)

			Convey("Then a third is rejected", func() {
				So(q.Enqueue(ctx, run("r3", model.StageFull, 2025)), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then they are dequeued in submission order", func() {
				ch := q.Dequeue(ctx)
				So((<-ch).RunID, ShouldEqual, "r1")
				So((<-ch).RunID, ShouldEqual, "r2")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, run("r1", model.StagePiste, 2025)), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then new runs are rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, run("r2", model.StagePiste, 2025)), ShouldBeFalse)
			})

			Convey("Then queued runs are still delivered and the channel closes", func() {
				ch := q.Dequeue(ctx)
				r, ok := <-ch
				So(ok, ShouldBeTrue)
				So(r.RunID, ShouldEqual, "r1")
				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})

			Convey("Then closing twice is harmless", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue fails", func() {
				So(q.Enqueue(cctx, run("r1", model.StagePiste, 2025)), ShouldBeFalse)
			})
		})
	})
}
