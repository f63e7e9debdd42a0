package program

import "testing"

func TestNewImageDefaultsEntryToBase(t *testing.T) {
	img := NewImage(0x1000, []uint32{0, 0, 0})
	if img.Entry != img.Base {
		t.Fatalf("entry = %#x, want %#x", img.Entry, img.Base)
	}
	if err := img.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestDataEndTracksHighestTouchedAddress(t *testing.T) {
	img := NewImage(0x1000, []uint32{0})
	img.SetROData(0x2000, []byte{1, 2, 3})
	img.SetRWData(0x2100, []byte{9})
	if got, want := img.DataEnd(), uint32(0x2101); got != want {
		t.Fatalf("DataEnd() = %#x, want %#x", got, want)
	}
}

func TestValidateRejectsUnalignedBase(t *testing.T) {
	img := NewImage(0x1001, []uint32{0})
	if err := img.Validate(); err == nil {
		t.Fatal("expected validation error for unaligned base")
	}
}

func TestValidateRejectsEntryOutsideInstructions(t *testing.T) {
	img := NewImage(0x1000, []uint32{0, 0})
	img.Entry = 0x9000
	if err := img.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range entry")
	}
}
