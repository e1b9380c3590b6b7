package ingest_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-campcert/pkg/ingest"
)

type sizedFile struct {
	mimeType string
	size     int64
}

func (f sizedFile) Name() string                 { return "avatar" }
func (f sizedFile) Type() string                 { return f.mimeType }
func (f sizedFile) Size() int64                  { return f.size }
func (f sizedFile) Open() (io.ReadCloser, error) { return nil, errors.New("not readable") }

func TestPreCheck_Rules(t *testing.T) {
	tests := []struct {
		name     string
		file     ingest.File
		accepted bool
		reasons  []string
	}{
		{name: "jpeg below limit", file: sizedFile{ingest.TypeJPEG, ingest.MaxSize - 1}, accepted: true},
		{name: "png small", file: sizedFile{ingest.TypePNG, 10}, accepted: true},
		{name: "exactly 2MiB", file: sizedFile{ingest.TypePNG, 2097152}, reasons: []string{ingest.ReasonTooLarge}},
		{name: "gif small", file: sizedFile{"image/gif", 1}, reasons: []string{ingest.ReasonUnsupportedType}},
		{name: "gif large", file: sizedFile{"image/gif", 3 << 20}, reasons: []string{ingest.ReasonUnsupportedType, ingest.ReasonTooLarge}},
		{name: "empty type", file: sizedFile{"", 1}, reasons: []string{ingest.ReasonUnsupportedType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := ingest.PreCheck(tt.file)
			if candidate.Accepted != tt.accepted {
				t.Fatalf("accepted = %v, want %v", candidate.Accepted, tt.accepted)
			}
			var reasons []string
			for _, r := range candidate.Rejections {
				reasons = append(reasons, r.Reason)
			}
			if diff := cmp.Diff(tt.reasons, reasons); diff != "" {
				t.Fatalf("reasons mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreCheck_SizeBoundary(t *testing.T) {
	if got := ingest.PreCheck(sizedFile{ingest.TypeJPEG, 2097151}); !got.Accepted {
		t.Fatalf("2097151 bytes should pass, got %+v", got.Rejections)
	}
	got := ingest.PreCheck(sizedFile{ingest.TypeJPEG, 2097152})
	if got.Accepted {
		t.Fatalf("2097152 bytes should be rejected")
	}
	if diff := cmp.Diff([]string{"image must not exceed 2MB."}, got.Warnings()); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_RejectedFileNeverEncodes(t *testing.T) {
	var warnings []string
	encoded := false
	pipeline := ingest.NewPipeline(
		ingest.WithNotifier(ingest.NotifierFunc(func(msg string) { warnings = append(warnings, msg) })),
		ingest.WithEncoder(func(context.Context, ingest.File) (string, error) {
			encoded = true
			return "data:", nil
		}),
	)

	candidate, task := pipeline.Select(context.Background(), ingest.NewMemoryFile("a.gif", "image/gif", []byte("GIF89a")), nil)
	if candidate.Accepted || task != nil {
		t.Fatalf("gif must be rejected before encoding")
	}
	if encoded {
		t.Fatalf("encoder ran for rejected file")
	}
	if diff := cmp.Diff([]string{"only JPG/PNG images are accepted."}, warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_EncodesAcceptedFileAsynchronously(t *testing.T) {
	release := make(chan struct{})
	pipeline := ingest.NewPipeline(ingest.WithEncoder(func(ctx context.Context, f ingest.File) (string, error) {
		<-release
		return ingest.Encode(ctx, f)
	}))

	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	delivered := make(chan ingest.Result, 1)
	candidate, task := pipeline.Select(context.Background(), ingest.NewMemoryFile("a.jpg", "image/jpeg", payload), func(r ingest.Result) {
		delivered <- r
	})
	if !candidate.Accepted || task == nil {
		t.Fatalf("expected accepted candidate with task")
	}

	select {
	case <-task.Done():
		t.Fatalf("Select must return before the encode finishes")
	default:
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}

	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)
	if result.DataURI != want || !result.OK() {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := <-delivered; got.DataURI != want || got.Seq != task.Seq() {
		t.Fatalf("continuation got %+v", got)
	}
}

func TestPipeline_SequencesSelections(t *testing.T) {
	pipeline := ingest.NewPipeline()
	file := ingest.NewMemoryFile("a.png", "image/png", []byte("png"))

	_, first := pipeline.Select(context.Background(), file, nil)
	_, second := pipeline.Select(context.Background(), file, nil)
	if first.Seq() >= second.Seq() {
		t.Fatalf("expected increasing sequence numbers, got %d then %d", first.Seq(), second.Seq())
	}
}

type failingFile struct{}

func (failingFile) Name() string { return "broken.png" }
func (failingFile) Type() string { return ingest.TypePNG }
func (failingFile) Size() int64  { return 10 }
func (failingFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(iotestErrReader{}), nil
}

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncode_ReadFailure(t *testing.T) {
	_, err := ingest.Encode(context.Background(), failingFile{})
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected read error, got %v", err)
	}
}

type liarFile struct{ data []byte }

func (f liarFile) Name() string { return "liar.png" }
func (f liarFile) Type() string { return ingest.TypePNG }
func (f liarFile) Size() int64  { return 1 }
func (f liarFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func TestEncode_ContentLargerThanDeclared(t *testing.T) {
	_, err := ingest.Encode(context.Background(), liarFile{data: make([]byte, ingest.MaxSize+1)})
	if !errors.Is(err, ingest.ErrContentTooLarge) {
		t.Fatalf("expected ErrContentTooLarge, got %v", err)
	}
}

func TestOpenLocal_TypeFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.PNG")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := ingest.OpenLocal(path)
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	if file.Type() != ingest.TypePNG {
		t.Fatalf("expected image/png, got %q", file.Type())
	}
	if file.Size() != int64(len("png-bytes")) || file.Name() != "avatar.PNG" {
		t.Fatalf("unexpected file metadata: %s %d", file.Name(), file.Size())
	}
}

func TestFromMultipart_UsesPartContentType(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="me.bin"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("jpeg"))
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	file := ingest.FromMultipart(req.MultipartForm.File["file"][0])

	if file.Type() != ingest.TypeJPEG || file.Size() != 4 {
		t.Fatalf("unexpected multipart file: %s %d", file.Type(), file.Size())
	}
	uri, err := ingest.Encode(context.Background(), file)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if uri != ingest.DataURI(ingest.TypeJPEG, []byte("jpeg")) {
		t.Fatalf("unexpected uri %q", uri)
	}
}

func TestPreCheck_DeclaredTypeIsMatchedExactly(t *testing.T) {
	for _, declared := range []string{"image/PNG", "image/png; x=y", " image/jpeg", "IMAGE/JPEG"} {
		t.Run(declared, func(t *testing.T) {
			file := ingest.NewMemoryFile("avatar.png", declared, []byte("png"))
			if file.Type() != declared {
				t.Fatalf("type rewritten: %q", file.Type())
			}
			got := ingest.PreCheck(file)
			if got.Accepted {
				t.Fatalf("expected %q to be rejected", declared)
			}
			if diff := cmp.Diff([]string{ingest.WarningUnsupportedType}, got.Warnings()); diff != "" {
				t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromMultipart_KeepsDeclaredParameters(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	header.Set("Content-Type", "image/png; x=y")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("png"))
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	file := ingest.FromMultipart(req.MultipartForm.File["file"][0])
	if file.Type() != "image/png; x=y" {
		t.Fatalf("unexpected type %q", file.Type())
	}
	if ingest.PreCheck(file).Accepted {
		t.Fatalf("expected parameterised type to be rejected")
	}
}
