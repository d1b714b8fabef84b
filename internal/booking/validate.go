package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so violations line up with request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ReservationInput carries the guest-editable fields of a reservation.
// Status may only be empty or "booked".
type ReservationInput struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	MobileNumber    string `json:"mobile_number" validate:"required"`
	ReservationDate string `json:"reservation_date" validate:"required"`
	ReservationTime string `json:"reservation_time" validate:"required"`
	People          int    `json:"people" validate:"gte=1"`
	Status          string `json:"status,omitempty" validate:"omitempty,eq=booked"`
}

// TableInput carries the fields of a new table.
type TableInput struct {
	TableName string `json:"table_name" validate:"required,min=2"`
	Capacity  int    `json:"capacity" validate:"gte=1"`
}

func (in *ReservationInput) trim() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.ReservationDate = strings.TrimSpace(in.ReservationDate)
	in.ReservationTime = strings.TrimSpace(in.ReservationTime)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
}

// ValidateReservation trims in, checks every field and then the time
// policy.  All failures are returned together.
func ValidateReservation(p Policy, in *ReservationInput) error {
	in.trim()
	v := fieldViolations(in)
	if in.ReservationDate != "" && in.ReservationTime != "" {
		v = append(v, p.CheckSlot(in.ReservationDate, in.ReservationTime)...)
	}
	return v.Err()
}

// ValidateTable trims in and checks its fields.
func ValidateTable(in *TableInput) error {
	in.TableName = strings.TrimSpace(in.TableName)
	return fieldViolations(in).Err()
}

// Apply copies validated input onto r.  The stored time is HH:MM.
func (in ReservationInput) Apply(r *model.Reservation) {
	r.FirstName = in.FirstName
	r.LastName = in.LastName
	r.MobileNumber = in.MobileNumber
	r.ReservationDate = in.ReservationDate
	r.ReservationTime = NormalizeClock(in.ReservationTime)
	r.People = in.People
}

func fieldViolations(s any) Violations {
	var v Violations
	err := validate.Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.add("", RuleFormat, err.Error())
		return v
	}
	for _, fe := range verrs {
		v = append(v, violationFor(fe))
	}
	return v
}

func violationFor(fe validator.FieldError) Violation {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return Violation{Field: field, Rule: RuleRequired, Message: field + " is required"}
	case "gte":
		return Violation{
			Field:   field,
			Rule:    RuleMin,
			Message: fmt.Sprintf("%s must be a whole number greater than or equal to %s", field, fe.Param()),
		}
	case "min":
		return Violation{
			Field:   field,
			Rule:    RuleMin,
			Message: fmt.Sprintf("%s must be at least %s characters", field, fe.Param()),
		}
	case "eq":
		return Violation{
			Field:   field,
			Rule:    RuleStatus,
			Message: fmt.Sprintf("%s must be %s, got %q", field, fe.Param(), fe.Value()),
		}
	}
	return Violation{Field: field, Rule: fe.Tag(), Message: fmt.Sprintf("%s failed %s", field, fe.Tag())}
}
