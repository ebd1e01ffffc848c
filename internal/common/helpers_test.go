package common_test

import (
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"serotonyl.ru/socialcredit/internal/common"
)

func TestPluralizePoints(t *testing.T) {
	Convey("PluralizePoints follows Russian plural rules", t, func() {
		cases := map[int64]string{
			0: "баллов", 1: "балл", 2: "балла", 4: "балла", 5: "баллов",
			11: "баллов", 12: "баллов", 14: "баллов", 21: "балл", 22: "балла",
			101: "балл", 111: "баллов", -1: "балл", -3: "балла", -500: "баллов",
			math.MinInt64: "баллов", math.MinInt64 + 7: "балл", math.MaxInt64: "баллов",
		}
		for n, want := range cases {
			So(common.PluralizePoints(n), ShouldEqual, want)
		}
	})

	Convey("Other nouns share the same rules", t, func() {
		So(common.PluralizeUsers(1), ShouldEqual, "гражданин")
		So(common.PluralizeUsers(3), ShouldEqual, "гражданина")
		So(common.PluralizeUsers(7), ShouldEqual, "граждан")
		So(common.PluralizeChanges(21), ShouldEqual, "изменение")
		So(common.PluralizeChanges(13), ShouldEqual, "изменений")
	})
}

func TestFormatting(t *testing.T) {
	Convey("FormatNumber inserts thousands separators", t, func() {
		So(common.FormatNumber(0), ShouldEqual, "0")
		So(common.FormatNumber(999), ShouldEqual, "999")
		So(common.FormatNumber(2350), ShouldEqual, "2 350")
		So(common.FormatNumber(1000005), ShouldEqual, "1 000 005")
		So(common.FormatNumber(-2000), ShouldEqual, "-2 000")
	})

	Convey("FormatNumber handles the int64 extremes", t, func() {
		So(common.FormatNumber(math.MaxInt64), ShouldEqual, "9 223 372 036 854 775 807")
		So(common.FormatNumber(math.MinInt64), ShouldEqual, "-9 223 372 036 854 775 808")
		So(common.FormatPoints(math.MinInt64), ShouldEqual, "-9 223 372 036 854 775 808 баллов")
	})

	Convey("FormatPoints and FormatSignedPoints", t, func() {
		So(common.FormatPoints(1500), ShouldEqual, "1 500 баллов")
		So(common.FormatSignedPoints(1), ShouldEqual, "+1 балл")
		So(common.FormatSignedPoints(0), ShouldEqual, "+0 баллов")
		So(common.FormatSignedPoints(-52), ShouldEqual, "-52 балла")
	})

	Convey("FormatDateTime renders in the given zone", t, func() {
		ts := time.Date(2024, 3, 5, 21, 30, 0, 0, time.UTC)
		So(common.FormatDateTime(ts, nil), ShouldEqual, "05.03.2024 21:30")
		So(common.FormatDateTime(ts, time.FixedZone("MSK", 3*60*60)), ShouldEqual, "06.03.2024 00:30")
	})
}
