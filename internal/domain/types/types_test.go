package types_test

import (
	"testing"

	types "github.com/okian/ecopoints/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTotalsAverage(t *testing.T) {
	Convey("Given running totals", t, func() {
		Convey("When no session was recorded", func() {
			So(types.Totals{UserID: "u1"}.Average(), ShouldEqual, 0)
		})

		Convey("When sessions were recorded", func() {
			tot := types.Totals{UserID: "u1", Sessions: 4, Points: 30}
			So(tot.Average(), ShouldEqual, 7.5)
		})
	})
}
