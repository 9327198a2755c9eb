package rules

import "fmt"

// ContractViolation describes a broken engine precondition: an agent picked
// an option it was not offered, or a zone was asked for a card it does not
// hold. It is raised with panic and is not meant to be handled by game logic.
type ContractViolation struct {
	Invariant string
	Detail    string
}

func (cv *ContractViolation) Error() string {
	if cv.Detail == "" {
		return "contract violation: " + cv.Invariant
	}
	return fmt.Sprintf("contract violation: %s: %s", cv.Invariant, cv.Detail)
}

// Violate panics with a ContractViolation.
func Violate(invariant, format string, args ...any) {
	panic(&ContractViolation{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}

// AsContractViolation inspects a recovered panic value.
func AsContractViolation(recovered any) (*ContractViolation, bool) {
	cv, ok := recovered.(*ContractViolation)
	return cv, ok
}
