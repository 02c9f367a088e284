package plane

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/psdkit/internal/testutil"
	"github.com/joshuapare/psdkit/pkg/types"
)

func TestUnpackBits_KnownSequence(t *testing.T) {
	src := []byte{
		0x02, 'a', 'b', 'c', // literal run of 3
		0xFD, 'z', // repeat 'z' 4 times
		0x80,      // no-op
		0x00, 'q', // literal run of 1
	}
	dst := make([]byte, 8)
	require.NoError(t, UnpackBits(dst, src))
	require.Equal(t, []byte("abczzzzq"), dst)
}

func TestUnpackBits_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		src   []byte
		width int
	}{
		{"short row", []byte{0x01, 'a', 'b'}, 3},
		{"overflowing literal", []byte{0x03, 'a', 'b', 'c', 'd'}, 3},
		{"overflowing repeat", []byte{0xFB, 'x'}, 3},
		{"literal past data", []byte{0x05, 'a'}, 6},
		{"repeat without value", []byte{0xFE}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UnpackBits(make([]byte, tt.width), tt.src)
			require.ErrorIs(t, err, ErrMalformedRLE)
		})
	}
}

func TestPackBitsRoundTrip(t *testing.T) {
	row := []byte{1, 1, 1, 1, 2, 3, 4, 4, 5, 5, 5, 6}
	long := make([]byte, 300)
	for i := range long {
		long[i] = byte(i / 7)
	}
	for _, in := range [][]byte{row, long, {9}, make([]byte, 129)} {
		dst := make([]byte, len(in))
		require.NoError(t, UnpackBits(dst, testutil.PackBits(in)))
		require.Equal(t, in, dst)
	}
}

func TestDecodeRLE(t *testing.T) {
	samples := []byte{
		1, 1, 1, 1,
		1, 2, 3, 4,
		9, 9, 0, 0,
	}
	out, err := DecodeRLE(testutil.EncodeRLE(samples, 3, 4), 3, 4)
	require.NoError(t, err)
	require.Equal(t, samples, out)

	_, err = DecodeRLE([]byte{0, 2}, 3, 4)
	require.ErrorIs(t, err, ErrMalformedRLE, "row table shorter than the row count")

	// Row table claims more bytes than the payload holds.
	bad := []byte{0, 9, 0x03, 1, 2, 3, 4}
	_, err = DecodeRLE(bad, 1, 4)
	require.ErrorIs(t, err, ErrMalformedRLE)
}

func TestDecode_AllMethodsAgree(t *testing.T) {
	const w, h = 5, 3
	for _, depth := range []types.Depth{types.Depth8, types.Depth16, types.Depth32} {
		size := depth.BytesPerRow(w) * h
		samples := make([]byte, size)
		for i := range samples {
			samples[i] = byte(i*37 + 11)
		}
		for _, method := range []uint16{Raw, RLE, ZIP, ZIPPred} {
			payload := testutil.Encode(method, samples, w, h, int(depth))
			got, err := Decode(method, payload, w, h, depth, 0)
			require.NoError(t, err, "depth %d method %d", depth, method)
			require.Equal(t, samples, got, "depth %d method %d", depth, method)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(Raw, make([]byte, 5), 2, 2, types.Depth8, 0)
	require.ErrorIs(t, err, ErrLength)

	_, err = Decode(7, nil, 2, 2, types.Depth8, 0)
	require.ErrorIs(t, err, ErrUnsupportedCompression)

	_, err = Decode(ZIP, []byte("not zlib"), 2, 2, types.Depth8, 0)
	require.ErrorIs(t, err, ErrZIP)

	_, err = Decode(ZIP, testutil.Deflate([]byte{1, 2}), 2, 2, types.Depth8, 0)
	require.ErrorIs(t, err, ErrLength)

	_, err = Decode(ZIP, testutil.Deflate([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}), 2, 2, types.Depth8, 0)
	require.ErrorIs(t, err, ErrLength, "stream longer than the plane")

	_, err = Decode(Raw, make([]byte, 100), 10, 10, types.Depth8, 50)
	require.ErrorIs(t, err, ErrTooLarge)

	got, err := Decode(RLE, nil, 0, 10, types.Depth8, 0)
	require.NoError(t, err)
	require.Nil(t, got, "empty geometry decodes to nothing")
}

func TestSample8(t *testing.T) {
	p16 := Plane{Width: 2, Height: 1, Depth: types.Depth16, Data: []byte{0xAB, 0xCD, 0x01, 0x02}}
	require.Equal(t, uint8(0xAB), p16.Sample8(0))
	require.Equal(t, uint8(0x01), p16.Sample8(1))

	p32 := Plane{Width: 4, Height: 1, Depth: types.Depth32, Data: make([]byte, 16)}
	for i, f := range []float32{0.5, 2, -1, float32(math.NaN())} {
		binary.BigEndian.PutUint32(p32.Data[i*4:], math.Float32bits(f))
	}
	require.Equal(t, uint8(128), p32.Sample8(0))
	require.Equal(t, uint8(255), p32.Sample8(1))
	require.Equal(t, uint8(0), p32.Sample8(2))
	require.Equal(t, uint8(0), p32.Sample8(3))

	p1 := Plane{Width: 10, Height: 2, Depth: types.Depth1, Data: []byte{0x80, 0x40, 0x01, 0x00}}
	require.Equal(t, 2, p1.RowBytes())
	require.Equal(t, uint8(255), p1.Sample8(0))
	require.Equal(t, uint8(0), p1.Sample8(1))
	require.Equal(t, uint8(255), p1.Sample8(9))
	require.Equal(t, uint8(0), p1.Sample8(10))
	require.Equal(t, uint8(255), p1.Sample8(17))
}

func TestDecodeComposite(t *testing.T) {
	const w, h = 3, 2
	r := []byte{1, 2, 3, 4, 5, 6}
	g := []byte{7, 7, 7, 7, 7, 7}
	b := []byte{0, 0, 0, 9, 9, 9}

	var rle []byte
	var rows []byte
	for _, p := range [][]byte{r, g, b} {
		for y := 0; y < h; y++ {
			row := testutil.PackBits(p[y*w : (y+1)*w])
			rle = binary.BigEndian.AppendUint16(rle, uint16(len(row)))
			rows = append(rows, row...)
		}
	}
	rle = append(rle, rows...)

	raw := append(append(append([]byte{}, r...), g...), b...)
	for _, tc := range []struct {
		method uint16
		data   []byte
	}{
		{Raw, raw},
		{RLE, rle},
		{ZIP, testutil.Deflate(raw)},
	} {
		planes, err := DecodeComposite(tc.method, tc.data, w, h, 3, types.Depth8, 0)
		require.NoError(t, err, "method %d", tc.method)
		require.Len(t, planes, 3)
		require.Equal(t, r, planes[0].Data)
		require.Equal(t, g, planes[1].Data)
		require.Equal(t, b, planes[2].Data)
		require.Equal(t, types.ChannelBlue, planes[2].ID)
	}

	_, err := DecodeComposite(Raw, raw[:10], w, h, 3, types.Depth8, 0)
	require.ErrorIs(t, err, ErrLength)
}

func TestDecodeAll_PreservesOrder(t *testing.T) {
	jobs := make([]Job, 64)
	for i := range jobs {
		samples := []byte{byte(i), byte(i), byte(i), byte(i + 1)}
		jobs[i] = Job{
			Layer: i, ID: types.ChannelRed, Compression: RLE,
			Data:  testutil.EncodeRLE(samples, 2, 2),
			Width: 2, Height: 2, Depth: types.Depth8,
		}
	}
	results, err := DecodeAll(jobs, 4, 0)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, []byte{byte(i), byte(i), byte(i), byte(i + 1)}, r.Plane.Data)
	}
}

func TestDecodeAll_Errors(t *testing.T) {
	ok := Job{Compression: Raw, Data: []byte{1}, Width: 1, Height: 1, Depth: types.Depth8}
	unknown := Job{Layer: 1, Compression: 9, Width: 1, Height: 1, Depth: types.Depth8, Offset: 77}

	results, err := DecodeAll([]Job{ok, unknown}, 2, 0)
	require.NoError(t, err, "unknown compression is not fatal")
	require.ErrorIs(t, results[1].Err, ErrUnsupportedCompression)
	var pe *Error
	require.ErrorAs(t, results[1].Err, &pe)
	require.Equal(t, int64(77), pe.Offset)

	broken := Job{Layer: 2, Compression: RLE, Data: []byte{0, 1, 0x05}, Width: 3, Height: 1, Depth: types.Depth8}
	_, err = DecodeAll([]Job{ok, broken}, 1, 0)
	require.ErrorIs(t, err, ErrMalformedRLE)
	require.True(t, Fatal(err))
}
