package ingest

// MaxSize is the exclusive upper bound on avatar size (2 MiB).
const MaxSize int64 = 2 * 1024 * 1024

// Accepted MIME types.
const (
	TypeJPEG = "image/jpeg"
	TypePNG  = "image/png"
)

// Rejection reasons.
const (
	ReasonUnsupportedType = "unsupported type"
	ReasonTooLarge        = "too large"
)

// User-facing warnings.
const (
	WarningUnsupportedType = "only JPG/PNG images are accepted."
	WarningTooLarge        = "image must not exceed 2MB."
	WarningReadFailed      = "failed to read image."
)

// Rejection is one failed pre-check rule.
type Rejection struct {
	Reason  string `json:"reason"`
	Warning string `json:"warning"`
}

// Candidate is a selected file together with its pre-check outcome. It only
// lives for one selection-to-encoding cycle.
type Candidate struct {
	File       File
	Accepted   bool
	Rejections []Rejection
}

// Warnings lists the user-facing messages for every failed rule.
func (c Candidate) Warnings() []string {
	if len(c.Rejections) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Rejections))
	for _, r := range c.Rejections {
		out = append(out, r.Warning)
	}
	return out
}

// PreCheck evaluates the type and size rules independently and accepts the
// file only when both pass.
func PreCheck(file File) Candidate {
	candidate := Candidate{File: file}
	if file == nil {
		candidate.Rejections = []Rejection{{Reason: ReasonUnsupportedType, Warning: WarningUnsupportedType}}
		return candidate
	}

	if !acceptedType(file.Type()) {
		candidate.Rejections = append(candidate.Rejections, Rejection{
			Reason:  ReasonUnsupportedType,
			Warning: WarningUnsupportedType,
		})
	}
	if file.Size() >= MaxSize {
		candidate.Rejections = append(candidate.Rejections, Rejection{
			Reason:  ReasonTooLarge,
			Warning: WarningTooLarge,
		})
	}

	candidate.Accepted = len(candidate.Rejections) == 0
	return candidate
}

func acceptedType(mimeType string) bool {
	return mimeType == TypeJPEG || mimeType == TypePNG
}
