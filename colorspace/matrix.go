// Package colorspace converts canonical RGB24 images to YUV24 and HSV24 with
// the fixed-point arithmetic of the capture hardware.
package colorspace

import "github.com/Skryldev/gen-image/config"

// Matrix is a 3x3 RGB to YCbCr coefficient matrix pre-scaled by 256 and by the
// luma/chroma excursion of its quantization range.
type Matrix [3][3]int

func coeff(v, r float64) int { return int(0.5 + v*r*256) }

func matrix(ky, kcb, kcr [3]float64, yr, cr float64) Matrix {
	var m Matrix
	for i := 0; i < 3; i++ {
		m[0][i] = coeff(ky[i], yr)
		m[1][i] = coeff(kcb[i], cr)
		m[2][i] = coeff(kcr[i], cr)
	}
	return m
}

var (
	bt601Y  = [3]float64{0.299, 0.587, 0.114}
	bt601Cb = [3]float64{-0.169, -0.331, 0.5}
	bt601Cr = [3]float64{0.5, -0.419, -0.081}

	rec709Y  = [3]float64{0.2126, 0.7152, 0.0722}
	rec709Cb = [3]float64{-0.1146, -0.3854, 0.5}
	rec709Cr = [3]float64{0.5, -0.4542, -0.0458}

	smpte240mY  = [3]float64{0.212, 0.701, 0.087}
	smpte240mCb = [3]float64{-0.116, -0.384, 0.5}
	smpte240mCr = [3]float64{0.5, -0.445, -0.055}

	bt2020Y  = [3]float64{0.2627, 0.6780, 0.0593}
	bt2020Cb = [3]float64{-0.1396, -0.3604, 0.5}
	bt2020Cr = [3]float64{0.5, -0.4598, -0.0402}
	// The full range table of the reference frames carries -0.4698 for the
	// Cr green term. Kept so generated frames stay byte compatible.
	bt2020FullCr = [3]float64{0.5, -0.4698, -0.0402}
)

var matrices = map[config.Encoding][2]Matrix{
	config.EncodingBT601: {
		matrix(bt601Y, bt601Cb, bt601Cr, 219, 224),
		matrix(bt601Y, bt601Cb, bt601Cr, 255, 255),
	},
	config.EncodingRec709: {
		matrix(rec709Y, rec709Cb, rec709Cr, 219, 224),
		matrix(rec709Y, rec709Cb, rec709Cr, 255, 255),
	},
	config.EncodingSMPTE240M: {
		matrix(smpte240mY, smpte240mCb, smpte240mCr, 219, 224),
		matrix(smpte240mY, smpte240mCb, smpte240mCr, 255, 255),
	},
	config.EncodingBT2020: {
		matrix(bt2020Y, bt2020Cb, bt2020Cr, 219, 224),
		matrix(bt2020Y, bt2020Cb, bt2020FullCr, 255, 255),
	},
}

// MatrixFor returns the coefficient matrix for an encoding and quantization.
// Unknown encodings fall back to BT.601.
func MatrixFor(enc config.Encoding, q config.Quantization) Matrix {
	m, ok := matrices[enc]
	if !ok {
		m = matrices[config.EncodingBT601]
	}
	if q == config.QuantizationFull {
		return m[1]
	}
	return m[0]
}
