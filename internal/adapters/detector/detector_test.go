package detector

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ollama/ollama/api"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeChat struct {
	reply string
	err   error
	got   *api.ChatRequest
}

func (f *fakeChat) Chat(_ context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error {
	f.got = req
	if f.err != nil {
		return f.err
	}
	return fn(api.ChatResponse{Message: api.Message{Role: "assistant", Content: f.reply}})
}

func pngImage(w, h int) []byte {
	img := imaging.New(w, h, color.NRGBA{R: 30, G: 160, B: 60, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestOllamaDetector(t *testing.T) {
	Convey("Given an ollama detector with a fake client", t, func() {
		ctx := context.Background()
		fake := &fakeChat{reply: `{"objects":[{"label":"Person","confidence":0.92},{"label":"tree","confidence":0.8}]}`}
		d := newOllamaDetector(fake, WithModel("llava:13b"), WithMaxDim(64), WithTimeout(time.Second))

		Convey("When detecting objects in a large image", func() {
			dets, err := d.Detect(ctx, pngImage(200, 100))

			Convey("Then labels come back normalized in order", func() {
				So(err, ShouldBeNil)
				So(len(dets), ShouldEqual, 2)
				So(dets[0].Label, ShouldEqual, "person")
				So(dets[0].Confidence, ShouldEqual, 0.92)
				So(dets[1].Label, ShouldEqual, "tree")
			})

			Convey("And the model receives a resized JPEG", func() {
				So(fake.got, ShouldNotBeNil)
				So(fake.got.Model, ShouldEqual, "llava:13b")
				So(len(fake.got.Messages), ShouldEqual, 1)
				So(fake.got.Messages[0].Content, ShouldContainSubstring, "potted plant")
				sent, err := imaging.Decode(bytes.NewReader(fake.got.Messages[0].Images[0]))
				So(err, ShouldBeNil)
				So(sent.Bounds(), ShouldResemble, image.Rect(0, 0, 64, 32))
			})
		})

		Convey("When the image is empty", func() {
			_, err := d.Detect(ctx, nil)

			Convey("Then ErrEmptyImage is returned", func() {
				So(errors.Is(err, ErrEmptyImage), ShouldBeTrue)
			})
		})

		Convey("When the image is not decodable", func() {
			_, err := d.Detect(ctx, []byte("not an image"))

			Convey("Then ErrDecodeImage is returned", func() {
				So(errors.Is(err, ErrDecodeImage), ShouldBeTrue)
			})
		})

		Convey("When the model replies with nothing", func() {
			fake.reply = "  "
			_, err := d.Detect(ctx, pngImage(10, 10))

			Convey("Then ErrEmptyResponse is returned", func() {
				So(errors.Is(err, ErrEmptyResponse), ShouldBeTrue)
			})
		})

		Convey("When the model replies with prose", func() {
			fake.reply = "I can see a lovely garden."
			_, err := d.Detect(ctx, pngImage(10, 10))

			Convey("Then ErrParse is returned", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
			})
		})

		Convey("When the request fails", func() {
			fake.err = errors.New("connection refused")
			_, err := d.Detect(ctx, pngImage(10, 10))

			Convey("Then the error is wrapped", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "connection refused")
			})
		})
	})
}

func TestNewOllamaDetector(t *testing.T) {
	Convey("Given detector urls", t, func() {
		d, err := NewOllamaDetector("http://localhost:11434/api/chat")
		So(err, ShouldBeNil)
		So(d.model, ShouldEqual, defaultModel)
		So(d.maxDim, ShouldEqual, defaultMaxDim)

		_, err = NewOllamaDetector("localhost")
		So(err, ShouldNotBeNil)
	})
}

func TestParseDetections(t *testing.T) {
	Convey("Given model replies", t, func() {
		Convey("When the reply is fenced JSON", func() {
			dets, err := ParseDetections("```json\n{\"objects\":[{\"label\":\"bicycle\"}]}\n```")
			So(err, ShouldBeNil)
			So(len(dets), ShouldEqual, 1)
			So(dets[0].Label, ShouldEqual, "bicycle")
		})

		Convey("When the reply is a bare array inside prose", func() {
			dets, err := ParseDetections(`Sure! [{"label":"Potted  Plant","confidence":0.5},{"label":" "}] hope this helps`)
			So(err, ShouldBeNil)
			So(len(dets), ShouldEqual, 1)
			So(dets[0].Label, ShouldEqual, "potted plant")
		})

		Convey("When the reply is an empty list", func() {
			dets, err := ParseDetections(`{"objects":[]}`)
			So(err, ShouldBeNil)
			So(dets, ShouldBeEmpty)
		})

		Convey("When the reply has no list", func() {
			_, err := ParseDetections(`{"answer":"a tree"}`)
			So(errors.Is(err, ErrParse), ShouldBeTrue)
		})
	})
}
