/*Package io reads and writes everything a golbm run touches on disk:
configuration files, geometry masks, text matrices of macroscopic fields and
populations, and binary checkpoints.

Text matrices are whitespace-delimited, one row per line. Row i holds the
nodes with y = i and column j the nodes with x = j. Every file is written to
a temporary file in its target directory and renamed into place, so readers
never see a partially written file.
*/
package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/golbm/geom"
)

// ReadMatrix reads a text matrix.
func ReadMatrix(fname string) (*mat.Dense, error) {
	width, err := countColumns(fname)
	if err != nil {
		return nil, err
	}

	colIdxs := make([]int, width)
	for i := range colIdxs {
		colIdxs[i] = i
	}
	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not read matrix %s: %w", fname, err)
	}

	height := len(cols[0])
	if height == 0 {
		return nil, fmt.Errorf("Matrix file %s has no rows.", fname)
	}
	data := make([]float64, width*height)
	for x, col := range cols {
		if len(col) != height {
			return nil, fmt.Errorf(
				"Column %d of matrix %s has %d rows, but column 0 has %d.",
				x, fname, len(col), height,
			)
		}
		for y, v := range col {
			data[y*width+x] = v
		}
	}
	return mat.NewDense(height, width, data), nil
}

// countColumns returns the number of fields on the first data line of a
// text matrix.
func countColumns(fname string) (int, error) {
	f, err := os.Open(fname)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<16), 1<<30)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		return len(strings.Fields(line)), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("Could not read matrix %s: %w", fname, err)
	}
	return 0, fmt.Errorf("Matrix file %s is empty.", fname)
}

// WriteMatrix writes m as a text matrix. Values are written with enough
// digits to be read back exactly.
func WriteMatrix(fname string, m mat.Matrix) error {
	rows, cols := m.Dims()
	return writeAtomic(fname, func(w *bufio.Writer) error {
		buf := []byte{}
		for y := 0; y < rows; y++ {
			buf = buf[:0]
			for x := 0; x < cols; x++ {
				if x > 0 {
					buf = append(buf, ' ')
				}
				buf = strconv.AppendFloat(buf, m.At(y, x), 'g', 17, 64)
			}
			buf = append(buf, '\n')
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadField reads a text matrix which must have nx columns and ny rows and
// returns it flattened in geom.Grid order.
func ReadField(fname string, nx, ny int) ([]float64, error) {
	m, err := ReadMatrix(fname)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	if rows != ny || cols != nx {
		return nil, fmt.Errorf(
			"Field %s is %d x %d, but the simulation is %d x %d.",
			fname, cols, rows, nx, ny,
		)
	}
	return mat.DenseCopyOf(m).RawMatrix().Data, nil
}

// ReadMask reads a 0/1 text matrix where 1 marks fluid nodes.
func ReadMask(fname string) (*geom.Mask, error) {
	m, err := ReadMatrix(fname)
	if err != nil {
		return nil, err
	}

	ny, nx := m.Dims()
	rows := make([][]int, ny)
	for y := range rows {
		rows[y] = make([]int, nx)
		for x := range rows[y] {
			rows[y][x] = int(m.At(y, x))
			if float64(rows[y][x]) != m.At(y, x) {
				return nil, fmt.Errorf(
					"Mask %s has non-integer value %g at (%d, %d).",
					fname, m.At(y, x), x, y,
				)
			}
		}
	}

	mask, err := geom.MaskFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("Invalid mask %s: %w", fname, err)
	}
	return mask, nil
}

// WriteMask writes a mask as a 0/1 text matrix.
func WriteMask(fname string, mask *geom.Mask) error {
	return writeAtomic(fname, func(w *bufio.Writer) error {
		for _, row := range mask.Rows() {
			fields := make([]string, len(row))
			for x, v := range row {
				fields[x] = strconv.Itoa(v)
			}
			if _, err := fmt.Fprintln(w, strings.Join(fields, " ")); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeAtomic writes a file through a temporary file in the same directory
// which is renamed to fname once it has been completely written.
func writeAtomic(fname string, write func(w *bufio.Writer) error) error {
	dir, base := filepath.Split(fname)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return fmt.Errorf("Could not create %s: %w", fname, err)
	}
	tmp := f.Name()

	w := bufio.NewWriter(f)
	err = write(w)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, fname)
	}

	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("Could not write %s: %w", fname, err)
	}
	return nil
}

// writeBinary is writeAtomic for callers which only need an io.Writer.
func writeBinary(fname string, write func(w io.Writer) error) error {
	return writeAtomic(fname, func(w *bufio.Writer) error { return write(w) })
}
