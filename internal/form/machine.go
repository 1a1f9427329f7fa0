package form

import "fmt"

// Step is one stage of the multi-step intake form.
type Step int

const (
	StepPreparation Step = iota
	StepRequestType
	StepDamages
	StepDocumentPhotos
	StepVehiclePhotos
	StepContact
	StepReview

	StepCount = int(StepReview) + 1
)

var stepNames = [...]string{
	"preparation", "request_type", "damages",
	"document_photos", "vehicle_photos", "contact", "review",
}

func (s Step) String() string {
	if s < 0 || int(s) >= StepCount {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// CanProceed evaluates the step's exit predicate against the snapshot.
func CanProceed(step Step, s *Snapshot) bool {
	return len(StepErrors(step, s)) == 0
}

// StepErrors returns the field errors blocking a step, empty when the step
// may be left. Preparation and damages have no predicate: an empty damage
// selection is a valid submission.
func StepErrors(step Step, s *Snapshot) FieldErrors {
	switch step {
	case StepRequestType:
		return ValidateRequestTypeStep(s)
	case StepDocumentPhotos:
		return ValidateDocumentPhotos(s)
	case StepVehiclePhotos:
		return ValidateVehiclePhotos(s)
	case StepContact:
		return ValidateContact(s.Contact)
	case StepReview:
		return ValidateAll(s)
	default:
		return FieldErrors{}
	}
}

// Machine tracks the current step of one form session. Navigation never
// mutates the snapshot.
type Machine struct {
	step Step
}

func NewMachine() *Machine {
	return &Machine{step: StepPreparation}
}

// RestoreMachine rebuilds a machine from a persisted step index, clamped into
// range.
func RestoreMachine(step int) *Machine {
	if step < 0 {
		step = 0
	}
	if step >= StepCount {
		step = StepCount - 1
	}
	return &Machine{step: Step(step)}
}

func (m *Machine) Current() Step {
	return m.step
}

// Next advances one step when the current step's predicate passes. At the
// last step, or when blocked, it reports false and the index is unchanged.
func (m *Machine) Next(s *Snapshot) bool {
	if int(m.step) >= StepCount-1 {
		return false
	}
	if !CanProceed(m.step, s) {
		return false
	}
	m.step++
	return true
}

// Prev moves back one step. Retreating is never blocked by validation.
func (m *Machine) Prev() bool {
	if m.step <= StepPreparation {
		return false
	}
	m.step--
	return true
}

// GoTo jumps to a step by index, used by the review summary navigation.
func (m *Machine) GoTo(index int) error {
	if index < 0 || index >= StepCount {
		return fmt.Errorf("step index %d out of range", index)
	}
	m.step = Step(index)
	return nil
}
