package catalog_test

import (
	"errors"
	"testing"

	"github.com/okian/ecopoints/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.Default()

		Convey("Then it holds every activity in declaration order", func() {
			defs := c.Definitions()
			So(c.Len(), ShouldEqual, 7)
			keys := make([]string, len(defs))
			for i, d := range defs {
				keys[i] = d.Key
			}
			So(keys, ShouldResemble, []string{
				"bicycle", "potted plant", "tree",
				"person and bicycle", "person and tree", "person and plant",
				"boat",
			})
		})

		Convey("And compound rules are listed in declaration order", func() {
			So(c.CompoundRules(), ShouldResemble, []catalog.CompoundRule{
				{ComponentA: "person", ComponentB: "bicycle", Key: "person and bicycle"},
				{ComponentA: "person", ComponentB: "tree", Key: "person and tree"},
				{ComponentA: "person", ComponentB: "potted plant", Key: "person and plant"},
			})
			So(c.CompoundRules(), ShouldResemble, c.CompoundRules())
		})

		Convey("And simple keys exclude compound keys", func() {
			So(c.SimpleKeys(), ShouldResemble, map[string]struct{}{
				"bicycle": {}, "potted plant": {}, "tree": {}, "boat": {},
			})
			So(c.IsSimple("tree"), ShouldBeTrue)
			So(c.IsSimple("person"), ShouldBeFalse)
			So(c.IsSimple("person and tree"), ShouldBeFalse)
		})

		Convey("And the presentation split matches the sidebar sections", func() {
			So(len(c.Simple()), ShouldEqual, 4)
			So(len(c.Compound()), ShouldEqual, 3)
			So(c.Compound()[0].Icon, ShouldEqual, "🚴")
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.Default()

		Convey("When looking up a known key", func() {
			d, ok := c.Lookup("person and tree")

			Convey("Then the definition is returned", func() {
				So(ok, ShouldBeTrue)
				So(d.Points, ShouldEqual, 15)
				So(d.Description, ShouldEqual, "Tree planting/care activity")
				So(d.Components, ShouldResemble, []string{"person", "tree"})
				So(d.IsCompound(), ShouldBeTrue)
			})

			Convey("And mutating the copy does not touch the catalog", func() {
				d.Components[0] = "dog"
				again, _ := c.Lookup("person and tree")
				So(again.Components[0], ShouldEqual, "person")
			})
		})

		Convey("When looking up an unknown key", func() {
			_, ok := c.Lookup("car")
			So(ok, ShouldBeFalse)
		})

		Convey("When the catalog is nil", func() {
			var nilCatalog *catalog.Catalog
			_, ok := nilCatalog.Lookup("tree")
			So(ok, ShouldBeFalse)
			So(nilCatalog.CompoundRules(), ShouldBeEmpty)
			So(nilCatalog.SimpleKeys(), ShouldBeEmpty)
			So(nilCatalog.Len(), ShouldEqual, 0)
		})
	})
}

func TestNewValidation(t *testing.T) {
	Convey("Given catalog definitions", t, func() {
		bike := catalog.ActivityDefinition{Key: "bicycle", Points: 5}
		tree := catalog.ActivityDefinition{Key: "tree", Points: 8}

		Convey("When two entries share a key", func() {
			_, err := catalog.New(bike, tree, bike)

			Convey("Then a ConfigurationError names the key", func() {
				So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
				var cerr *catalog.ConfigurationError
				So(errors.As(err, &cerr), ShouldBeTrue)
				So(cerr.Key, ShouldEqual, "bicycle")
				So(cerr.Reason, ShouldContainSubstring, "duplicate")
			})
		})

		Convey("When a key is blank", func() {
			_, err := catalog.New(catalog.ActivityDefinition{Key: "  "})
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When points are negative", func() {
			_, err := catalog.New(catalog.ActivityDefinition{Key: "car", Points: -1})
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When a compound component is not a known label", func() {
			_, err := catalog.New(bike, catalog.ActivityDefinition{
				Key: "person and bicycle", Points: 12, Components: []string{"person", "bicycle"},
			})

			Convey("Then construction fails", func() {
				So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"person"`)
			})

			Convey("And registering the detector label fixes it", func() {
				c, err := catalog.NewWithOptions(
					[]catalog.Option{catalog.WithDetectorLabels("person")},
					bike,
					catalog.ActivityDefinition{Key: "person and bicycle", Points: 12, Components: []string{"person", "bicycle"}},
				)
				So(err, ShouldBeNil)
				So(len(c.CompoundRules()), ShouldEqual, 1)
			})
		})

		Convey("When a compound component is declared after the compound", func() {
			c, err := catalog.New(
				catalog.ActivityDefinition{Key: "bike and tree", Points: 1, Components: []string{"bicycle", "tree"}},
				bike, tree,
			)
			So(err, ShouldBeNil)
			So(c.CompoundRules()[0].Key, ShouldEqual, "bike and tree")
		})

		Convey("When a compound references another compound", func() {
			_, err := catalog.New(bike, tree,
				catalog.ActivityDefinition{Key: "bike and tree", Components: []string{"bicycle", "tree"}},
				catalog.ActivityDefinition{Key: "nested", Components: []string{"bike and tree", "tree"}},
			)
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When a compound has the wrong arity or repeated components", func() {
			_, err := catalog.New(bike, catalog.ActivityDefinition{Key: "solo", Components: []string{"bicycle"}})
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)

			_, err = catalog.New(bike, catalog.ActivityDefinition{Key: "pair", Components: []string{"bicycle", "bicycle"}})
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When MustNew is given a malformed catalog", func() {
			So(func() { catalog.MustNew(bike, bike) }, ShouldPanic)
		})
	})
}
