package mutate

import "fmt"

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type PermissionError struct {
	ProfileID string
	Action    string
	EntityID  string
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("permission denied: profile %s may not %s %s", e.ProfileID, e.Action, e.EntityID)
}
