package workspaces

// Message is the closed set of inputs the Controller accepts.
type Message interface {
	isMessage()
}

// WorkspacesChanged asks for a full reconciliation.
type WorkspacesChanged struct{}

// ChangeWorkspace switches to the workspace with ID. Non-positive IDs are ignored.
type ChangeWorkspace struct {
	ID int
}

// ToggleSpecialWorkspace shows or hides the special workspace with ID.
type ToggleSpecialWorkspace struct {
	ID int
}

// Scroll moves to the nearest workspace above (Direction > 0) or below
// (Direction < 0) the active one.
type Scroll struct {
	Direction int
}

func (WorkspacesChanged) isMessage()      {}
func (ChangeWorkspace) isMessage()        {}
func (ToggleSpecialWorkspace) isMessage() {}
func (Scroll) isMessage()                 {}
