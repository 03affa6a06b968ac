// Package jobstate creates publish jobs and classifies their states.
package jobstate

// State is the named state of a job. Jobs are created in Waiting and
// advanced by the publish workers.
type State string

const (
	Waiting    State = "Waiting"
	Importing  State = "Importing"
	Generating State = "Generating"
	Publishing State = "Publishing"
	Completed  State = "Completed"
	Cancelled  State = "Cancelled"

	ImportFailed   State = "ImportFailed"
	GenerateFailed State = "GenerateFailed"
	PublishFailed  State = "PublishFailed"
)

// Initial is the state every job is created in.
const Initial = Waiting

var errorStates = map[State]bool{
	ImportFailed:   true,
	GenerateFailed: true,
	PublishFailed:  true,
}

// IsErrorState reports whether a job in s has failed and waits for a retry or cancel.
func (s State) IsErrorState() bool {
	return errorStates[s]
}

// IsErrorState classifies a persisted state name.
func IsErrorState(name string) bool {
	return State(name).IsErrorState()
}
