package models

// Actor is the capability set of the user performing an operation. It is not
// persisted; authentication and group resolution live outside the engine.
type Actor struct {
	ID      string
	Name    string
	Email   string
	IsAdmin bool
}
