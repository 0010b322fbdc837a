package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/ecopoints/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sub(id string) model.Submission {
	return model.Submission{ID: id, UserID: "alice", Labels: []string{"tree"}}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity two", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("When it is empty", func() {
			So(q.Len(ctx), ShouldEqual, 0)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("When a submission is enqueued and dequeued", func() {
			So(q.Enqueue(ctx, sub("s1")), ShouldBeNil)
			So(q.Len(ctx), ShouldEqual, 1)
			got := <-q.Dequeue(ctx)

			Convey("Then the same submission comes out", func() {
				So(got.ID, ShouldEqual, "s1")
				So(got.Labels, ShouldResemble, []string{"tree"})
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, sub("s1")), ShouldBeNil)
			So(q.Enqueue(ctx, sub("s2")), ShouldBeNil)
			err := q.Enqueue(ctx, sub("s3"))

			Convey("Then ErrFull is returned", func() {
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue fails with the context error", func() {
				So(errors.Is(q.Enqueue(cctx, sub("s1")), context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the queue is closed with pending items", func() {
			So(q.Enqueue(ctx, sub("s1")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new submissions are refused", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, sub("s2")), ErrClosed), ShouldBeTrue)
				So(q.Close(), ShouldBeNil)
			})

			Convey("And pending ones drain before the channel closes", func() {
				var ids []string
				timeout := time.After(time.Second)
				ch := q.Dequeue(ctx)
			loop:
				for {
					select {
					case s, ok := <-ch:
						if !ok {
							break loop
						}
						ids = append(ids, s.ID)
					case <-timeout:
						break loop
					}
				}
				So(ids, ShouldResemble, []string{"s1"})
			})
		})
	})
}

func TestInMemoryQueueConcurrent(t *testing.T) {
	Convey("Given producers and consumers sharing a queue", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(50))
		const producers, perProducer = 5, 100

		var consumed sync.WaitGroup
		seen := make(chan string, producers*perProducer)
		for i := 0; i < 3; i++ {
			consumed.Add(1)
			go func() {
				defer consumed.Done()
				for s := range q.Dequeue(ctx) {
					seen <- s.ID
				}
			}()
		}

		var produced sync.WaitGroup
		for p := 0; p < producers; p++ {
			produced.Add(1)
			go func(p int) {
				defer produced.Done()
				for i := 0; i < perProducer; i++ {
					for q.Enqueue(ctx, sub(fmt.Sprintf("%d-%d", p, i))) != nil {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		produced.Wait()
		So(q.Close(), ShouldBeNil)
		consumed.Wait()
		close(seen)

		Convey("Then every submission is delivered once", func() {
			unique := make(map[string]struct{})
			for id := range seen {
				unique[id] = struct{}{}
			}
			So(len(unique), ShouldEqual, producers*perProducer)
		})
	})
}
