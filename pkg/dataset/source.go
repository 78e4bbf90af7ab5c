package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
)

// LineSource 按行号随机读取 JSONL 文件
//
// 打开时扫描一遍记录每行的起始偏移，之后按行 ReadAt，不把文件整体读入内存。
// ReadAt 可并发调用，因此 LineSource 可以在多个 goroutine 间共享。
type LineSource struct {
	path    string
	file    *os.File
	offsets []int64 // 第 i 行的起始偏移，末尾追加文件长度
}

// OpenLineSource 打开并索引文件
func OpenLineSource(path string) (*LineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	offsets, err := indexLines(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index %s: %w", path, err)
	}

	return &LineSource{path: path, file: f, offsets: offsets}, nil
}

// indexLines 返回每行起始偏移，最后一个元素为文件长度。
// 末尾没有换行的非空行也算一行。
func indexLines(r io.Reader) ([]int64, error) {
	offsets := []int64{0}
	br := bufio.NewReaderSize(r, 64*1024)

	var pos int64
	for {
		chunk, err := br.ReadSlice('\n')
		pos += int64(len(chunk))
		if len(chunk) > 0 && chunk[len(chunk)-1] == '\n' {
			offsets = append(offsets, pos)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if last := offsets[len(offsets)-1]; last != pos {
		offsets = append(offsets, pos)
	}
	return offsets, nil
}

// Path 返回文件路径
func (s *LineSource) Path() string {
	return s.path
}

// Len 返回行数
func (s *LineSource) Len() int {
	return len(s.offsets) - 1
}

// Line 返回第 n 行（从 1 开始）的内容，不含行尾换行符
func (s *LineSource) Line(n int) ([]byte, error) {
	if n < 1 || n > s.Len() {
		return nil, fmt.Errorf("%w: line %d of %d in %s", kgerrors.ErrLineOutOfRange, n, s.Len(), s.path)
	}

	start, end := s.offsets[n-1], s.offsets[n]
	buf := make([]byte, end-start)
	if _, err := s.file.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read line %d of %s: %w", n, s.path, err)
	}
	return bytes.TrimRight(buf, "\r\n"), nil
}

// Close 关闭文件
func (s *LineSource) Close() error {
	return s.file.Close()
}
