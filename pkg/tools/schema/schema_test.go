package schema

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type pageParams struct {
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=1000,default=200" jsonschema_description:"Maximum number of items to retrieve"`
	Skip  int    `json:"skip,omitempty" jsonschema:"minimum=0,default=0" jsonschema_description:"Number of items to skip"`
	Name  string `json:"name" jsonschema_description:"A required name"`
}

type noParams struct{}

func TestReflect(t *testing.T) {
	Convey("Given a parameter struct", t, func() {
		raw, err := Reflect[pageParams]()
		So(err, ShouldBeNil)

		var doc map[string]any
		So(json.Unmarshal(raw, &doc), ShouldBeNil)

		Convey("It should describe an object with the tagged properties", func() {
			So(doc["type"], ShouldEqual, "object")

			props, ok := doc["properties"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(props, ShouldContainKey, "limit")
			So(props, ShouldContainKey, "skip")
			So(props, ShouldContainKey, "name")

			limit := props["limit"].(map[string]any)
			So(limit["type"], ShouldEqual, "integer")
			So(limit["minimum"], ShouldEqual, float64(1))
			So(limit["maximum"], ShouldEqual, float64(1000))
			So(limit["default"], ShouldEqual, float64(200))
			So(limit["description"], ShouldEqual, "Maximum number of items to retrieve")
		})

		Convey("Only fields without omitempty should be required", func() {
			So(doc["required"], ShouldResemble, []any{"name"})
		})
	})

	Convey("Given an unnamed type", t, func() {
		_, err := Reflect[map[string]any]()

		Convey("It should be refused", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a struct without fields", t, func() {
		raw, err := Reflect[noParams]()

		Convey("It should still produce a compilable schema", func() {
			So(err, ShouldBeNil)
			_, err = Compile(raw)
			So(err, ShouldBeNil)
		})
	})
}

func TestValidatorApply(t *testing.T) {
	Convey("Given a compiled schema", t, func() {
		raw, err := Reflect[pageParams]()
		So(err, ShouldBeNil)

		validator, err := Compile(raw)
		So(err, ShouldBeNil)

		Convey("Missing optional arguments should receive their defaults", func() {
			args := map[string]any{"name": "x"}
			out, err := validator.Apply(args)

			So(err, ShouldBeNil)
			So(out["limit"], ShouldEqual, float64(200))
			So(out["skip"], ShouldEqual, float64(0))

			Convey("And the caller's map should be left alone", func() {
				So(args, ShouldNotContainKey, "limit")
			})
		})

		Convey("Explicit arguments should be kept", func() {
			out, err := validator.Apply(map[string]any{"name": "x", "limit": float64(50)})

			So(err, ShouldBeNil)
			So(out["limit"], ShouldEqual, float64(50))
		})

		Convey("Bounds should be enforced", func() {
			for _, limit := range []float64{0, 1001, -5} {
				_, err := validator.Apply(map[string]any{"name": "x", "limit": limit})
				So(err, ShouldNotBeNil)
			}

			_, err := validator.Apply(map[string]any{"name": "x", "limit": float64(1000)})
			So(err, ShouldBeNil)
			_, err = validator.Apply(map[string]any{"name": "x", "limit": float64(1)})
			So(err, ShouldBeNil)
		})

		Convey("Non-integer values should be rejected", func() {
			_, err := validator.Apply(map[string]any{"name": "x", "limit": 2.5})
			So(err, ShouldNotBeNil)

			_, err = validator.Apply(map[string]any{"name": "x", "limit": "ten"})
			So(err, ShouldNotBeNil)
		})

		Convey("Missing required arguments should be rejected", func() {
			_, err := validator.Apply(map[string]any{})
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown arguments should be rejected", func() {
			_, err := validator.Apply(map[string]any{"name": "x", "bogus": true})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given malformed schema JSON", t, func() {
		_, err := Compile([]byte(`{"type":`))

		Convey("Compile should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
