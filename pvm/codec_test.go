// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package pvm

import "testing"

func TestLeUintPutLERoundTrip(t *testing.T) {
	cases := []struct {
		v uint64
		n int
	}{
		{0, 0},
		{0xff, 1},
		{0x1234, 2},
		{0x1234567890abcdef, 8},
	}
	for _, tc := range cases {
		buf := make([]byte, 8)
		putLE(buf, tc.v, tc.n)
		got := leUint(buf[:tc.n], tc.n)
		want := tc.v
		if tc.n < 8 {
			want &= (uint64(1) << uint(8*tc.n)) - 1
		}
		if got != want {
			t.Errorf("leUint(putLE(%#x, %d)) = %#x; want %#x", tc.v, tc.n, got, want)
		}
	}
}

func TestSignExtend(t *testing.T) {
	cases := []struct {
		x    uint64
		n    int
		want uint64
	}{
		{0x7f, 1, 0x7f},
		{0xff, 1, ^uint64(0)},
		{0x80, 1, ^uint64(0) - 0x7f},
		{0x00, 4, 0},
		{0, 8, 0}, // n>=8 returns x unchanged
	}
	for _, tc := range cases {
		if got := signExtend(tc.x, tc.n); got != tc.want {
			t.Errorf("signExtend(%#x, %d) = %#x; want %#x", tc.x, tc.n, got, tc.want)
		}
	}
}

func TestToSignedFromSignedRoundTrip(t *testing.T) {
	if got := toSigned(0xff, 1); got != -1 {
		t.Errorf("toSigned(0xff, 1) = %d; want -1", got)
	}
	if got := fromSigned(-1, 1); got != 0xff {
		t.Errorf("fromSigned(-1, 1) = %#x; want 0xff", got)
	}
	if got := fromSigned(-1, 8); got != ^uint64(0) {
		t.Errorf("fromSigned(-1, 8) = %#x; want all-ones", got)
	}
	for n := 1; n <= 8; n++ {
		s := toSigned(0xff, n)
		back := fromSigned(s, n)
		raw := leUint([]byte{0xff, 0, 0, 0, 0, 0, 0, 0}, n)
		if back != raw {
			t.Errorf("fromSigned(toSigned(0xff, %d), %d) = %#x; want %#x", n, n, back, raw)
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0x7f, 0x80, 300, 1 << 20, ^uint64(0)}
	for _, v := range cases {
		enc := putVarint(nil, v)
		if got := varintSize(v); got != len(enc) {
			t.Errorf("varintSize(%d) = %d; want %d", v, got, len(enc))
		}
		got, n, err := readVarint(enc, 0)
		if err != nil {
			t.Fatalf("readVarint(%d): %v", v, err)
		}
		if got != v || n != len(enc) {
			t.Errorf("readVarint(putVarint(%d)) = (%d, %d); want (%d, %d)", v, got, n, v, len(enc))
		}
	}
}

func TestVarint300Encoding(t *testing.T) {
	enc := putVarint(nil, 300)
	want := []byte{0xAC, 0x02}
	if len(enc) != len(want) || enc[0] != want[0] || enc[1] != want[1] {
		t.Errorf("putVarint(300) = %#v; want %#v", enc, want)
	}
}

func TestReadVarintTruncated(t *testing.T) {
	if _, _, err := readVarint([]byte{0x80}, 0); err != ErrMalformedVarint {
		t.Errorf("readVarint on truncated varint: err = %v; want ErrMalformedVarint", err)
	}
}

func TestBitAtPastEndIsTrue(t *testing.T) {
	bm := []byte{0b00000101}
	cases := []struct {
		i    int
		want bool
	}{
		{0, true},
		{1, false},
		{2, true},
		{3, false},
		{8, true},  // past the single byte: tolerant-true
		{63, true}, // far past the end
	}
	for _, tc := range cases {
		if got := bitAt(bm, tc.i); got != tc.want {
			t.Errorf("bitAt(bm, %d) = %v; want %v", tc.i, got, tc.want)
		}
	}
}

func TestPackBitmap(t *testing.T) {
	bits := []bool{true, false, true}
	got := packBitmap(bits)
	if len(got) != 1 || got[0] != 0b00000101 {
		t.Errorf("packBitmap(%v) = %#v; want [0b00000101]", bits, got)
	}

	nine := []bool{true, true, true, true, true, true, true, true, true}
	got9 := packBitmap(nine)
	if len(got9) != 2 {
		t.Errorf("packBitmap(9 bits) has %d bytes; want 2", len(got9))
	}
	if got9[0] != 0xff || got9[1] != 0x01 {
		t.Errorf("packBitmap(9 bits) = %#v; want [0xff, 0x01]", got9)
	}
}
