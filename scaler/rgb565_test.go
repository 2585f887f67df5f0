package scaler

import (
	"math/rand"
	"testing"
)

func TestAverage565(t *testing.T) {
	tests := []struct {
		a, b, want uint16
	}{
		{0x0000, 0x0000, 0x0000},
		{0xFFFF, 0xFFFF, 0xFFFF},
		{0x0000, 0xFFFF, 0x8410},
		{0xF800, 0x0000, 0x8000},
		{0x07E0, 0x0000, 0x0400},
		{0x001F, 0x0000, 0x0010},
	}
	for _, tt := range tests {
		if got := Average565(tt.a, tt.b); got != tt.want {
			t.Errorf("Average565(%04X, %04X): got %04X, want %04X", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAverage565_ChannelsIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := uint16(r.Intn(1 << 16))
		b := uint16(r.Intn(1 << 16))
		got := Average565(a, b)
		for _, ch := range []struct {
			shift, mask uint16
		}{{11, 0x1F}, {5, 0x3F}, {0, 0x1F}} {
			ca := (a >> ch.shift) & ch.mask
			cb := (b >> ch.shift) & ch.mask
			want := (ca + cb + 1) / 2
			if c := (got >> ch.shift) & ch.mask; c != want {
				t.Fatalf("Average565(%04X, %04X) channel>>%d: got %d, want %d", a, b, ch.shift, c, want)
			}
		}
	}
}

func TestAverage565x2_MatchesLanes(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		a := r.Uint32()
		b := r.Uint32()
		got := Average565x2(a, b)
		lo := averageFloor565(uint16(a), uint16(b))
		hi := averageFloor565(uint16(a>>16), uint16(b>>16))
		if got != pack(lo, hi) {
			t.Fatalf("Average565x2(%08X, %08X): got %08X, want %08X", a, b, got, pack(lo, hi))
		}
	}
}

func TestAverage565_1_3(t *testing.T) {
	if got := Average565_1_3(0x0000, 0xFFFF); got != Average565(0x8410, 0xFFFF) {
		t.Errorf("got %04X", got)
	}
	if got := Average565_1_3(0x1234, 0x1234); got != 0x1234 {
		t.Errorf("identical colors: got %04X", got)
	}
}

// blendRowsScalar is the per-pixel reference for blendRows.
func blendRowsScalar(dst, a, b []uint16, weighted bool) {
	for i := range dst {
		if weighted {
			dst[i] = averageFloor565_1_3(a[i], b[i])
		} else {
			dst[i] = averageFloor565(a[i], b[i])
		}
	}
}

func TestBlendRows_MatchesScalar(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 2, 7, 64, 257} {
		a := make([]uint16, n)
		b := make([]uint16, n)
		for i := range a {
			a[i] = uint16(r.Intn(1 << 16))
			b[i] = uint16(r.Intn(1 << 16))
		}
		for _, weighted := range []bool{false, true} {
			got := make([]uint16, n)
			want := make([]uint16, n)
			blendRows(got, a, b, weighted)
			blendRowsScalar(want, a, b, weighted)
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("n=%d weighted=%v pixel %d: got %04X, want %04X", n, weighted, i, got[i], want[i])
				}
			}
		}
	}
}

func TestRGB565ToRGBA(t *testing.T) {
	src := []uint16{0x0000, 0xFFFF, 0xF800, 0x07E0, 0x001F}
	dst := make([]byte, len(src)*4)
	RGB565ToRGBA(dst, src)

	want := [][4]byte{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
	}
	for i, w := range want {
		got := [4]byte{dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3]}
		if got != w {
			t.Errorf("pixel %d: got %v, want %v", i, got, w)
		}
	}

	RGB565ToRGBA(nil, nil)
}

func TestRGB565(t *testing.T) {
	if got := RGB565(255, 255, 255); got != 0xFFFF {
		t.Errorf("white: got %04X", got)
	}
	if got := RGB565(255, 0, 0); got != 0xF800 {
		t.Errorf("red: got %04X", got)
	}
}
