package domain

// Field is one required entry of the delivery form.
type Field string

const (
	FieldName     Field = "name"
	FieldHouse    Field = "house"
	FieldStreet   Field = "street"
	FieldCity     Field = "city"
	FieldPostcode Field = "postcode"
)

// DeliveryFields is the fixed collection order of the checkout form.
var DeliveryFields = []Field{FieldName, FieldHouse, FieldStreet, FieldCity, FieldPostcode}

type FormStatus string

const (
	FormCollecting     FormStatus = "COLLECTING"
	FormReadyToConfirm FormStatus = "READY_TO_CONFIRM"
)

// Form is a per-user stepped address collection. Answers exist only for
// fields already passed; stepping back keeps the answer until overwritten.
type Form struct {
	Step    int
	Answers map[Field]string
}

func NewForm() *Form {
	return &Form{Answers: make(map[Field]string)}
}

func (f *Form) Status() FormStatus {
	if f.Step >= len(DeliveryFields) {
		return FormReadyToConfirm
	}
	return FormCollecting
}

// CurrentField returns the field the cursor points at.
// Only valid while Status() == FormCollecting.
func (f *Form) CurrentField() Field {
	return DeliveryFields[f.Step]
}

func (f *Form) Answer(field Field) (string, bool) {
	v, ok := f.Answers[field]
	return v, ok
}

// Address materializes the completed answers. Call only when ready.
func (f *Form) Address() Address {
	return Address{
		Name:     f.Answers[FieldName],
		House:    f.Answers[FieldHouse],
		Street:   f.Answers[FieldStreet],
		City:     f.Answers[FieldCity],
		Postcode: f.Answers[FieldPostcode],
	}
}

type Address struct {
	Name     string
	House    string
	Street   string
	City     string
	Postcode string
}
