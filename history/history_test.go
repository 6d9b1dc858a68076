package history

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplayer/vplayer/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a played source", t, func() {
		So(Clear(), ShouldBeNil)

		entry := &Entry{
			Source:         "file:///media/big-buck-bunny.mp4",
			Variant:        "decoder",
			PositionMillis: 61_000,
			DurationMillis: 596_000,
		}

		Convey("When saving the position", func() {
			err := Save(entry)
			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the entry can be looked up", func() {
					found, err := Lookup(entry.Source)
					So(err, ShouldBeNil)
					So(found.IsPresent(), ShouldBeTrue)
					So(found.MustGet().PositionMillis, ShouldEqual, 61_000)
					So(found.MustGet().SavedAt.IsZero(), ShouldBeFalse)
				})

				Convey("And a later save replaces the position", func() {
					So(Save(&Entry{Source: entry.Source, PositionMillis: 5_000, DurationMillis: 596_000}), ShouldBeNil)
					found, _ := Lookup(entry.Source)
					So(found.MustGet().PositionMillis, ShouldEqual, 5_000)
				})

				Convey("And reaching the end clears it", func() {
					So(Save(&Entry{Source: entry.Source, PositionMillis: 596_000, DurationMillis: 596_000}), ShouldBeNil)
					found, err := Lookup(entry.Source)
					So(err, ShouldBeNil)
					So(found.IsAbsent(), ShouldBeTrue)
				})

				Convey("And it can be removed", func() {
					So(Remove(entry.Source), ShouldBeNil)
					saved, err := Get()
					So(err, ShouldBeNil)
					So(saved, ShouldBeEmpty)
				})
			})
		})

		Convey("When several sources are saved", func() {
			now := time.Now()
			So(Save(&Entry{Source: "https://cdn.example.com/live/news.m3u8", PositionMillis: 1, SavedAt: now.Add(-time.Hour)}), ShouldBeNil)
			So(Save(&Entry{Source: "file:///media/holiday.mp4", PositionMillis: 1, SavedAt: now}), ShouldBeNil)

			Convey("List orders them by recency", func() {
				entries, err := List()
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Source, ShouldEqual, "file:///media/holiday.mp4")
			})

			Convey("Garbage collection drops stale entries", func() {
				dropped, err := CollectGarbage(30 * time.Minute)
				So(err, ShouldBeNil)
				So(dropped, ShouldEqual, 1)

				entries, _ := List()
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Source, ShouldEqual, "file:///media/holiday.mp4")

				dropped, _ = CollectGarbage(0)
				So(dropped, ShouldEqual, 0)
			})

			Convey("Garbage collection without a max age keeps everything", func() {
				for _, maxAge := range []time.Duration{0, -time.Hour} {
					dropped, err := CollectGarbage(maxAge)
					So(err, ShouldBeNil)
					So(dropped, ShouldEqual, 0)
				}

				entries, _ := List()
				So(entries, ShouldHaveLength, 2)
			})

			Convey("Garbage collection keeps fresh entries", func() {
				dropped, err := CollectGarbage(2 * time.Hour)
				So(err, ShouldBeNil)
				So(dropped, ShouldEqual, 0)

				entries, _ := List()
				So(entries, ShouldHaveLength, 2)
			})

			Convey("Filter returns the closest match first", func() {
				So(Save(&Entry{Source: "file:///news.mp4", PositionMillis: 1}), ShouldBeNil)

				entries, err := Filter("news")
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Source, ShouldEqual, "file:///news.mp4")
				So(entries[1].Source, ShouldEqual, "https://cdn.example.com/live/news.m3u8")
			})

			Convey("Filter without a match is empty", func() {
				entries, err := Filter("zzz")
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})

			Convey("Filter matches fuzzily", func() {
				entries, err := Filter("news")
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Source, ShouldEqual, "https://cdn.example.com/live/news.m3u8")
			})
		})
	})
}

func TestEntry(t *testing.T) {
	Convey("Entry", t, func() {
		e := &Entry{Source: "a", PositionMillis: 90_000, DurationMillis: 3_600_000}
		So(e.Progress(), ShouldAlmostEqual, 0.025)
		So(e.Finished(), ShouldBeFalse)
		So(e.String(), ShouldEqual, "a : 00:01:30 / 01:00:00")
		So((&Entry{}).Progress(), ShouldEqual, 0)
	})
}
