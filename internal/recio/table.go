package recio

import "fmt"

// ReadTableBytes implements spec.md §4.9: reads nchars bytes starting at
// 1-indexed firstRow/firstChar within a row-major table HDU.
func (eng *Engine) ReadTableBytes(file *FileState, firstRow, firstChar int64, nchars int64, dst []byte) error {
	if firstRow < 1 {
		return fmt.Errorf("recio: %w: first_row %d < 1", ErrBadRowNum, firstRow)
	}
	if firstChar < 1 {
		return fmt.Errorf("recio: %w: first_char %d < 1", ErrBadElemNum, firstChar)
	}
	if nchars <= 0 {
		return fmt.Errorf("recio: %w: nchars %d <= 0", ErrBadElemNum, nchars)
	}
	if int64(len(dst)) != nchars {
		return fmt.Errorf("recio: ReadTableBytes: dst length %d != nchars %d", len(dst), nchars)
	}

	endRow := (firstChar+nchars-2)/file.RowLength + firstRow
	if endRow > file.NumRows {
		return fmt.Errorf("recio: %w: end row %d exceeds %d rows", ErrBadRowNum, endRow, file.NumRows)
	}

	pos := file.DataStart + (firstRow-1)*file.RowLength + firstChar - 1
	if err := eng.SeekTo(file, pos, ReportEOF); err != nil {
		return err
	}
	return eng.GetBytes(file, dst)
}

// WriteTableBytes implements spec.md §4.9's write variant: symmetric to
// ReadTableBytes, but grows file.NumRows to endRow when exceeded rather
// than rejecting.
func (eng *Engine) WriteTableBytes(file *FileState, firstRow, firstChar int64, nchars int64, src []byte) error {
	if firstRow < 1 {
		return fmt.Errorf("recio: %w: first_row %d < 1", ErrBadRowNum, firstRow)
	}
	if firstChar < 1 {
		return fmt.Errorf("recio: %w: first_char %d < 1", ErrBadElemNum, firstChar)
	}
	if nchars <= 0 {
		return fmt.Errorf("recio: %w: nchars %d <= 0", ErrBadElemNum, nchars)
	}
	if int64(len(src)) != nchars {
		return fmt.Errorf("recio: WriteTableBytes: src length %d != nchars %d", len(src), nchars)
	}

	endRow := (firstChar+nchars-2)/file.RowLength + firstRow

	pos := file.DataStart + (firstRow-1)*file.RowLength + firstChar - 1
	if err := eng.SeekTo(file, pos, IgnoreEOF); err != nil {
		return err
	}
	if err := eng.PutBytes(file, src); err != nil {
		return err
	}

	if endRow > file.NumRows {
		file.NumRows = endRow
	}
	return nil
}
