package formstate

// Kind is the value shape a field control emits.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
)

// Field keys as emitted by the form controls.
const (
	FieldCampName         = "campName"
	FieldSessionNumber    = "sessionNumber"
	FieldTraineeName      = "traineeName"
	FieldTraineeAvatar    = "traineeAvatar"
	FieldCheckInDays      = "checkInDays"
	FieldTotalTargetCount = "totalTargetCount"
	FieldTotalPoints      = "totalPoints"
)

// AvatarUploadKey is the file picker's own key. It never reaches the state;
// the encoded avatar arrives separately under FieldTraineeAvatar.
const AvatarUploadKey = "traineeAvatarUpload"

// Range is an inclusive integer bound.
type Range struct {
	Min int
	Max int
}

// Contains reports whether value lies inside the bound.
func (r Range) Contains(value int) bool {
	return value >= r.Min && value <= r.Max
}

// Definition describes one form field. Range is nil for string fields.
type Definition struct {
	Key             string
	Label           string
	Kind            Kind
	Range           *Range
	RequiredMessage string
}

var definitions = []Definition{
	{Key: FieldCampName, Label: "训练营", Kind: KindString, RequiredMessage: "please select a camp"},
	{Key: FieldSessionNumber, Label: "训练营期数", Kind: KindInteger, Range: &Range{Min: 1, Max: 999}, RequiredMessage: "please enter the session number"},
	{Key: FieldTraineeName, Label: "学员姓名", Kind: KindString, RequiredMessage: "please enter the trainee name"},
	{Key: FieldTraineeAvatar, Label: "学员头像", Kind: KindString, RequiredMessage: "please upload the trainee avatar"},
	{Key: FieldCheckInDays, Label: "打卡天数", Kind: KindInteger, Range: &Range{Min: 0, Max: 21}, RequiredMessage: "please enter the check-in days"},
	{Key: FieldTotalTargetCount, Label: "总目标数", Kind: KindInteger, Range: &Range{Min: 0, Max: 99}, RequiredMessage: "please enter the total target count"},
	{Key: FieldTotalPoints, Label: "总积分", Kind: KindInteger, Range: &Range{Min: 0, Max: 99}, RequiredMessage: "please enter the total points"},
}

var definitionIndex = func() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}()

// Definitions returns the field catalogue in form order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition registered for key.
func Lookup(key string) (Definition, bool) {
	def, ok := definitionIndex[key]
	return def, ok
}

// IsField reports whether key names a form field.
func IsField(key string) bool {
	_, ok := definitionIndex[key]
	return ok
}

// DefaultCamps is the built-in camp catalogue.
func DefaultCamps() []string {
	return []string{"学习训练营"}
}
