package repository

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

func outcome(sub, user string, points int) model.Outcome {
	return model.Outcome{SubmissionID: sub, UserID: user, TotalPoints: points}
}

func TestTallyStoreRecord(t *testing.T) {
	Convey("Given an empty tally store", t, func() {
		ctx := context.Background()
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		s := NewTallyStore(WithClock(func() time.Time { return fixed }))

		Convey("When recording two sessions for the same user", func() {
			_, err := s.Record(ctx, outcome("s1", "alice", 20))
			So(err, ShouldBeNil)
			tot, err := s.Record(ctx, outcome("s2", "alice", 8))
			So(err, ShouldBeNil)

			Convey("Then the totals accumulate", func() {
				So(tot.UserID, ShouldEqual, "alice")
				So(tot.Sessions, ShouldEqual, 2)
				So(tot.Points, ShouldEqual, 28)
				So(tot.LastPoints, ShouldEqual, 8)
				So(tot.UpdatedAt, ShouldEqual, fixed)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("And both outcomes can be looked up", func() {
				o, err := s.Outcome(ctx, "s1")
				So(err, ShouldBeNil)
				So(o.TotalPoints, ShouldEqual, 20)
			})
		})

		Convey("When a zero-point session is recorded", func() {
			tot, err := s.Record(ctx, outcome("s1", "bob", 0))

			Convey("Then it still counts as a session", func() {
				So(err, ShouldBeNil)
				So(tot.Sessions, ShouldEqual, 1)
				So(tot.Points, ShouldEqual, 0)
			})
		})

		Convey("When the user id is blank", func() {
			_, err := s.Record(ctx, outcome("s1", "  ", 5))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrInvalidUser), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the points are negative", func() {
			_, err := s.Record(ctx, outcome("s1", "carol", -1))

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When looking up unknown keys", func() {
			_, errT := s.Totals(ctx, "nobody")
			_, errO := s.Outcome(ctx, "nothing")
			_, errR := s.Rank(ctx, "nobody")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(errT, ErrNotFound), ShouldBeTrue)
				So(errors.Is(errO, ErrNotFound), ShouldBeTrue)
				So(errors.Is(errR, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestTallyStoreLeaderboard(t *testing.T) {
	Convey("Given several users", t, func() {
		ctx := context.Background()
		s := NewTallyStore()
		_, _ = s.Record(ctx, outcome("1", "carol", 15))
		_, _ = s.Record(ctx, outcome("2", "alice", 20))
		_, _ = s.Record(ctx, outcome("3", "bob", 20))
		_, _ = s.Record(ctx, outcome("4", "dave", 3))

		Convey("When asking for the top three", func() {
			top, err := s.TopN(ctx, 3)

			Convey("Then users are ordered by points then id", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].UserID, ShouldEqual, "alice")
				So(top[1].UserID, ShouldEqual, "bob")
				So(top[2].UserID, ShouldEqual, "carol")
				So(top[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When a user overtakes the leader", func() {
			_, _ = s.Record(ctx, outcome("5", "dave", 30))
			top, _ := s.TopN(ctx, 10)
			rank, err := s.Rank(ctx, "dave")

			Convey("Then the ranking is re-keyed", func() {
				So(len(top), ShouldEqual, 4)
				So(top[0].UserID, ShouldEqual, "dave")
				So(top[0].Points, ShouldEqual, 33)
				So(top[0].Sessions, ShouldEqual, 2)
				So(err, ShouldBeNil)
				So(rank.Rank, ShouldEqual, 1)
			})

			Convey("And the others shift down", func() {
				r, _ := s.Rank(ctx, "carol")
				So(r.Rank, ShouldEqual, 4)
			})
		})

		Convey("When the limit is below one", func() {
			_, err := s.TopN(ctx, 0)

			Convey("Then ErrInvalidLimit is returned", func() {
				So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
			})
		})
	})
}

func TestTallyStoreOutcomeBound(t *testing.T) {
	Convey("Given a store that keeps two outcomes", t, func() {
		ctx := context.Background()
		s := NewTallyStore(WithMaxOutcomes(2))

		for i := 1; i <= 3; i++ {
			_, err := s.Record(ctx, outcome(fmt.Sprintf("s%d", i), "alice", i))
			So(err, ShouldBeNil)
		}

		Convey("Then the oldest outcome is evicted", func() {
			_, err := s.Outcome(ctx, "s1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			_, err = s.Outcome(ctx, "s3")
			So(err, ShouldBeNil)
		})

		Convey("And totals are unaffected", func() {
			tot, err := s.Totals(ctx, "alice")
			So(err, ShouldBeNil)
			So(tot.Points, ShouldEqual, 6)
			So(tot.Sessions, ShouldEqual, 3)
		})
	})
}

func TestTallyStoreConcurrent(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		s := NewTallyStore(WithMaxOutcomes(0))

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					_, _ = s.Record(ctx, outcome(fmt.Sprintf("%d-%d", w, i), fmt.Sprintf("user-%d", i%10), 1))
				}
			}(w)
		}
		wg.Wait()

		Convey("Then every session is counted exactly once", func() {
			So(s.Count(ctx), ShouldEqual, 10)
			top, err := s.TopN(ctx, 10)
			So(err, ShouldBeNil)
			total := 0
			for _, e := range top {
				So(e.Points, ShouldEqual, 80)
				total += e.Sessions
			}
			So(total, ShouldEqual, 800)
		})
	})
}

func BenchmarkTallyStoreRecord(b *testing.B) {
	ctx := context.Background()
	s := NewTallyStore(WithMaxOutcomes(1000))
	users := make([]string, 1000)
	for i := range users {
		users[i] = fmt.Sprintf("user-%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Record(ctx, outcome(fmt.Sprintf("s-%d", i), users[i%len(users)], i%20))
	}
}
