package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQueue_RunsInRequestOrder(t *testing.T) {
	q := NewFrameQueue()
	var got []int
	q.RequestFrame(func() { got = append(got, 1) })
	q.RequestFrame(func() { got = append(got, 2) })
	id := q.RequestFrame(func() { got = append(got, 3) })
	q.CancelFrame(id)

	assert.Equal(t, 2, q.Flush())
	assert.Equal(t, []int{1, 2}, got)
	assert.Zero(t, q.Flush())
}

func TestFrameQueue_NestedRequestWaitsForNextFlush(t *testing.T) {
	q := NewFrameQueue()
	runs := 0
	var tick func()
	tick = func() {
		runs++
		q.RequestFrame(tick)
	}
	q.RequestFrame(tick)

	q.Flush()
	assert.Equal(t, 1, runs)
	q.Flush()
	assert.Equal(t, 2, runs)
}

func TestFrameQueue_Close(t *testing.T) {
	q := NewFrameQueue()
	q.RequestFrame(func() { t.Fatal("closed queue ran a callback") })
	q.Close()

	assert.Zero(t, q.RequestFrame(func() {}))
	assert.Zero(t, q.Pending())
	assert.Zero(t, q.Flush())
}

func TestPalette_Color(t *testing.T) {
	p := NewPalette()
	assert.Equal(t, color.NRGBA{R: 10, G: 116, B: 230, A: 51}, p.Color("#0A74E6", 0.2))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, p.Color("not-a-color", 3))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 0}, p.Color("#FFFFFF", -1))
}

func TestHSV(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, A: 255}, HSV(0, 1, 1))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, HSV(360, 1, 1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, HSV(-120, 1, 1))
}
