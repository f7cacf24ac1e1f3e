package io

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"unsafe"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/lattice"
)

const (
	// Endianness used by default when writing checkpoints. Checkpoints of
	// any endianness can be read.
	DefaultEndiannessFlag int32 = -1
)

/*
The binary format used for checkpoints is as follows:
    |-- 1 --||-- 2 --||-- ... 3 ... --||-- ... 4 ... --|

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a big
        endian byte ordering and -1 indicates a little endian byte order.
    2 - (int32) Size of a CheckpointHeader struct. Should be checked for
        consistency.
    3 - (CheckpointHeader) Header containing the grid size, the number of
        components and the step of the checkpoint.
    4 - ([]float64) The direction-major populations of each component in
        turn: Components x 9 x Nx x Ny values.
*/
type CheckpointHeader struct {
	Nx, Ny     int64
	Components int64
	Step       int64
}

func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case -1:
		return binary.LittleEndian, nil
	case 0:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag %d.", flag)
}

// WriteCheckpoint writes cp to fname in the binary checkpoint format.
func WriteCheckpoint(fname string, cp *golbm.Checkpoint) error {
	order, err := endianness(DefaultEndiannessFlag)
	if err != nil {
		return err
	}

	hd := CheckpointHeader{
		Nx: int64(cp.Nx), Ny: int64(cp.Ny),
		Components: int64(len(cp.Populations)), Step: int64(cp.Step),
	}

	return writeBinary(fname, func(w io.Writer) error {
		if err := binary.Write(w, order, DefaultEndiannessFlag); err != nil {
			return err
		}
		if err := binary.Write(w, order, int32(unsafe.Sizeof(hd))); err != nil {
			return err
		}
		if err := binary.Write(w, order, &hd); err != nil {
			return err
		}
		for _, f := range cp.Populations {
			if err := binary.Write(w, order, f); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadCheckpointHeader reads only the header of a binary checkpoint.
func ReadCheckpointHeader(fname string) (*CheckpointHeader, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hd, _, err := readCheckpointHeader(f, fname)
	return hd, err
}

// readCheckpointHeader reads and validates the header of the open
// checkpoint f. The header must describe exactly the populations that
// follow it in the file.
func readCheckpointHeader(
	f *os.File, fname string,
) (*CheckpointHeader, binary.ByteOrder, error) {
	var flag, size int32
	if err := binary.Read(f, binary.LittleEndian, &flag); err != nil {
		return nil, nil, fmt.Errorf("Could not read %s: %w", fname, err)
	}
	order, err := endianness(flag)
	if err != nil {
		return nil, nil, fmt.Errorf("%s is not a checkpoint: %w", fname, err)
	}

	if err := binary.Read(f, order, &size); err != nil {
		return nil, nil, fmt.Errorf("Could not read %s: %w", fname, err)
	}
	hd := &CheckpointHeader{}
	if int(size) != int(unsafe.Sizeof(*hd)) {
		return nil, nil, fmt.Errorf(
			"Expected CheckpointHeader size of %d, found %d in %s.",
			unsafe.Sizeof(*hd), size, fname,
		)
	}
	if err := binary.Read(f, order, hd); err != nil {
		return nil, nil, fmt.Errorf("Could not read %s: %w", fname, err)
	}

	if hd.Nx <= 0 || hd.Ny <= 0 || hd.Components <= 0 ||
		hd.Components > golbm.MaxComponents || hd.Step < 0 {
		return nil, nil, fmt.Errorf(
			"Checkpoint %s has an invalid header: %+v.", fname, *hd,
		)
	}

	// Each population is 8 bytes, so no valid file holds more than
	// MaxInt64/8 of them.
	maxValues := int64(math.MaxInt64 / 8)
	perNode := hd.Components * lattice.Q
	if hd.Nx > maxValues/perNode/hd.Ny {
		return nil, nil, fmt.Errorf(
			"Checkpoint %s has an impossibly large %d x %d grid.",
			fname, hd.Nx, hd.Ny,
		)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("Could not read %s: %w", fname, err)
	}
	want := 4 + 4 + int64(size) + 8*perNode*hd.Nx*hd.Ny
	if info.Size() != want {
		return nil, nil, fmt.Errorf(
			"Checkpoint %s is %d bytes, but its header describes %d bytes.",
			fname, info.Size(), want,
		)
	}
	return hd, order, nil
}

// ReadCheckpoint reads a binary checkpoint written by WriteCheckpoint.
func ReadCheckpoint(fname string) (*golbm.Checkpoint, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hd, order, err := readCheckpointHeader(f, fname)
	if err != nil {
		return nil, err
	}

	cp := &golbm.Checkpoint{
		Nx: int(hd.Nx), Ny: int(hd.Ny), Step: int(hd.Step),
		Populations: make([][]float64, hd.Components),
	}
	for c := range cp.Populations {
		cp.Populations[c] = make([]float64, lattice.Q*cp.Nx*cp.Ny)
		if err := binary.Read(f, order, cp.Populations[c]); err != nil {
			return nil, fmt.Errorf(
				"Could not read component %d of %s: %w", c, fname, err,
			)
		}
	}
	return cp, nil
}
