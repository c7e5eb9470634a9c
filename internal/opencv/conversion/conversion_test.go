package conversion

import (
	"image"
	"image/color"
	"testing"

	"histoview/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestColorOrderRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	want := []color.RGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
		{R: 10, G: 20, B: 30, A: 255},
		{R: 200, G: 100, B: 50, A: 255},
		{R: 1, G: 2, B: 3, A: 255},
	}
	for i, c := range want {
		src.SetRGBA(i%3, i/3, c)
	}

	mat, err := ImageToMat(src)
	require.NoError(t, err)
	defer mat.Close()

	require.Equal(t, 3, mat.Channels())

	// pure red must land in the last channel of a BGR Mat
	matMat := mat.GetMat()
	red := matMat.GetVecbAt(0, 0)
	assert.Equal(t, uint8(0), red[0])
	assert.Equal(t, uint8(0), red[1])
	assert.Equal(t, uint8(255), red[2])

	out, err := MatToImage(mat)
	require.NoError(t, err)

	rgba, ok := out.(*image.RGBA)
	require.True(t, ok)
	for i, c := range want {
		assert.Equal(t, c, rgba.RGBAAt(i%3, i/3), "pixel %d", i)
	}
}

func TestMatToImageFromBGRScalar(t *testing.T) {
	// Scalar order is B, G, R
	mat, err := safe.NewMatFromScalar(2, 2, gocv.MatTypeCV8UC3, gocv.NewScalar(255, 0, 0, 0))
	require.NoError(t, err)
	defer mat.Close()

	out, err := MatToImage(mat)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, out.(*image.RGBA).RGBAAt(1, 1))
}

func TestMatToImageGray(t *testing.T) {
	mat, err := safe.NewMatFromScalar(4, 5, gocv.MatTypeCV8UC1, gocv.NewScalar(42, 0, 0, 0))
	require.NoError(t, err)
	defer mat.Close()

	out, err := MatToImage(mat)
	require.NoError(t, err)

	gray, ok := out.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 5, 4), gray.Bounds())
	assert.Equal(t, uint8(42), gray.GrayAt(4, 3).Y)
}

func TestToGrayAndBack(t *testing.T) {
	mat, err := safe.NewMatFromScalar(3, 3, gocv.MatTypeCV8UC3, gocv.NewScalar(90, 90, 90, 0))
	require.NoError(t, err)
	defer mat.Close()

	gray, err := ToGray(mat)
	require.NoError(t, err)
	defer gray.Close()
	assert.Equal(t, 1, gray.Channels())
	grayMat := gray.GetMat()
	assert.Equal(t, uint8(90), grayMat.GetUCharAt(1, 1))

	expanded, err := GrayToBGR(gray)
	require.NoError(t, err)
	defer expanded.Close()
	assert.Equal(t, 3, expanded.Channels())

	expandedMat := expanded.GetMat()
	v := expandedMat.GetVecbAt(2, 2)
	assert.Equal(t, []uint8{90, 90, 90}, []uint8{v[0], v[1], v[2]})

	_, err = GrayToBGR(mat)
	assert.Error(t, err)
}

func TestImageToMatFromGrayAndGeneric(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	g.SetGray(1, 1, color.Gray{Y: 77})

	mat, err := ImageToMat(g)
	require.NoError(t, err)
	defer mat.Close()
	matMat := mat.GetMat()
	v := matMat.GetVecbAt(1, 1)
	assert.Equal(t, []uint8{77, 77, 77}, []uint8{v[0], v[1], v[2]})

	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	n.SetNRGBA(0, 0, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	mat2, err := ImageToMat(n)
	require.NoError(t, err)
	defer mat2.Close()
	mat2Mat := mat2.GetMat()
	v = mat2Mat.GetVecbAt(0, 0)
	assert.Equal(t, []uint8{7, 8, 9}, []uint8{v[0], v[1], v[2]})

	_, err = ImageToMat(nil)
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	mat, err := safe.NewMat(6, 9, gocv.MatTypeCV8UC3)
	require.NoError(t, err)
	defer mat.Close()

	p := Describe(mat)
	assert.Equal(t, 6, p.Rows)
	assert.Equal(t, 9, p.Cols)
	assert.Equal(t, 3, p.Channels)
	assert.Equal(t, "8-bit unsigned 3-channel", p.DataType)
	assert.False(t, p.Empty)
	assert.Equal(t, 9, p.Fields()["width"])

	assert.True(t, Describe(nil).Empty)
}
