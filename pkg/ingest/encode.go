package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrContentTooLarge is returned when the content read exceeds MaxSize even
// though the declared size passed the pre-check.
var ErrContentTooLarge = errors.New("ingest: content exceeds size limit")

// EncodeFunc turns a file into an encoded image string.
type EncodeFunc func(ctx context.Context, file File) (string, error)

// Encode reads the whole file and returns it as a base64 data URI using the
// file's declared MIME type.
func Encode(ctx context.Context, file File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file == nil {
		return "", errors.New("ingest: file is nil")
	}

	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("ingest: open %s: %w", file.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("ingest: read %s: %w", file.Name(), err)
	}
	if int64(len(data)) > MaxSize {
		return "", ErrContentTooLarge
	}
	return DataURI(file.Type(), data), nil
}

// DataURI formats data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Result is the outcome of one encode: either a data URI or an error.
type Result struct {
	// Seq is the selection sequence number the task was started with.
	Seq      uint64
	FileName string
	DataURI  string
	Err      error
}

// OK reports whether the encode succeeded.
func (r Result) OK() bool {
	return r.Err == nil && r.DataURI != ""
}

// Continuation receives a task's Result.
type Continuation func(Result)

// Task is a one-shot asynchronous encode.
type Task struct {
	seq    uint64
	done   chan struct{}
	result Result
}

// Start runs encode on a new goroutine. The continuation runs on that
// goroutine before the task is marked done.
func Start(ctx context.Context, seq uint64, file File, encode EncodeFunc, next Continuation) *Task {
	if encode == nil {
		encode = Encode
	}
	task := &Task{seq: seq, done: make(chan struct{})}

	name := ""
	if file != nil {
		name = file.Name()
	}

	go func() {
		defer close(task.done)
		uri, err := encode(ctx, file)
		task.result = Result{Seq: seq, FileName: name, DataURI: uri, Err: err}
		if err == nil && uri == "" {
			task.result.Err = errors.New("ingest: encoder returned an empty result")
		}
		if next != nil {
			next(task.result)
		}
	}()
	return task
}

// Seq returns the selection sequence number.
func (t *Task) Seq() uint64 {
	return t.seq
}

// Done is closed once the continuation returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finished or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
